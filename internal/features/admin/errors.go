package admin

import "github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"

var (
	ErrSelfDeactivation = apperrors.DomainRule("You cannot deactivate your own account")
	ErrNoPendingRequest = apperrors.DomainRule("No pending provider request for this user")
	ErrInvalidRole      = apperrors.Validation("Invalid role")
	ErrInvalidStatus    = apperrors.Validation("Invalid status")
	ErrLogNotFound      = apperrors.NotFound("Log file not found")
)
