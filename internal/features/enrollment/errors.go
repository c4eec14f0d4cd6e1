package enrollment

import "github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"

var (
	ErrNotEnrolled       = apperrors.Forbidden("You must be enrolled in this course")
	ErrAlreadyEnrolled   = apperrors.Conflict("You are already enrolled in this course")
	ErrCourseUnavailable = apperrors.DomainRule("This course is not available for enrollment")
)
