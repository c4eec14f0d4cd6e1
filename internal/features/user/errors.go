package user

import "github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"

var (
	ErrUserNotFound       = apperrors.NotFound("User not found")
	ErrEmailTaken         = apperrors.Conflict("User already exists with this email")
	ErrEmailInUse         = apperrors.Conflict("Email already in use")
	ErrInvalidPassword    = apperrors.Validation("Password must be at least 8 characters long")
	ErrInvalidEmail       = apperrors.Validation("Please provide a valid email")
	ErrInvalidFullName    = apperrors.Validation("Full name must be between 1 and 50 characters")
	ErrAlreadyProvider    = apperrors.DomainRule("You are already a course provider")
	ErrAdminCannotRequest = apperrors.DomainRule("Admin cannot become a provider")
	ErrAlreadyPending     = apperrors.DomainRule("Your request is already pending approval")
	ErrAdminCannotDelete  = apperrors.Forbidden("Admin accounts cannot be deleted through this endpoint")
)
