package lesson

import "github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"

var (
	ErrLessonNotFound  = apperrors.NotFound("Lesson not found")
	ErrCourseNotFound  = apperrors.NotFound("Course not found")
	ErrNotCourseOwner  = apperrors.Forbidden("Not authorized to manage lessons of this course")
	ErrInvalidTitle    = apperrors.Validation("Title is required and cannot be more than 200 characters")
	ErrInvalidVideoURL = apperrors.Validation("Please add a video URL")
	ErrInvalidDuration = apperrors.Validation("Duration cannot be negative")
	ErrInvalidResource = apperrors.Validation("Resource type must be one of pdf, document, link, other")
	ErrForeignLesson   = apperrors.Validation("All lessons must belong to the course")
)
