package course

import "github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"

var (
	ErrCourseNotFound    = apperrors.NotFound("Course not found")
	ErrCourseUnavailable = apperrors.Forbidden("Course is not available")
	ErrTitleTaken        = apperrors.Conflict("Course with this title already exists")
	ErrMissingFields     = apperrors.Validation("Please provide all required fields")
	ErrInvalidTitle      = apperrors.Validation("Title cannot be more than 200 characters")
	ErrInvalidDesc       = apperrors.Validation("Description cannot be more than 2000 characters")
	ErrNegativePrice     = apperrors.Validation("Price cannot be negative")
	ErrNotOwnerUpdate    = apperrors.Forbidden("You are not authorized to update this course")
	ErrNotOwnerDelete    = apperrors.Forbidden("You are not authorized to delete this course")
	ErrHasEnrollments    = apperrors.DomainRule("Cannot delete a course that has enrolled students")
	ErrAlreadyApproved   = apperrors.DomainRule("Course is already approved")
)
