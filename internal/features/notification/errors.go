package notification

import "github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"

var (
	ErrNotificationNotFound = apperrors.NotFound("Notification not found")
	ErrNotOwner             = apperrors.Forbidden("Not authorized to access this notification")
)
