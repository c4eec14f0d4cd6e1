package auth

import "github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"

var (
	ErrMissingFields       = apperrors.Validation("Please provide all required fields")
	ErrMissingCredentials  = apperrors.Validation("Please provide email and password")
	ErrInvalidCredentials  = apperrors.Unauthorized("Invalid email or password")
	ErrInactiveAccount     = apperrors.Forbidden("Account is inactive. Please contact support.")
	ErrInvalidRefreshToken = apperrors.Unauthorized("Invalid or expired refresh token")
	ErrInvalidOTP          = apperrors.Validation("Invalid or expired OTP")
	ErrInvalidResetToken   = apperrors.Validation("Invalid or expired reset token")
)
