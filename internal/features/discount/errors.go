package discount

import "github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"

var (
	ErrDiscountNotFound = apperrors.NotFound("Discount not found")
	ErrInvalidOrExpired = apperrors.NotFound("Invalid or expired discount code")
	ErrCourseNotFound   = apperrors.NotFound("Course not found")
	ErrNotCourseOwner   = apperrors.Forbidden("Not authorized to create discount for this course")
	ErrNotOwner         = apperrors.Forbidden("Not authorized")
	ErrCodeTaken        = apperrors.Conflict("Discount code already exists for this course")
	ErrValidation       = apperrors.Validation("Discount validation failed")
	ErrConstraint       = apperrors.Validation("Discount terms violate a data constraint")
)
