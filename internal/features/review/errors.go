package review

import "github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"

var (
	ErrReviewNotFound  = apperrors.NotFound("Review not found")
	ErrMissingFields   = apperrors.Validation("Please provide course ID, rating, and comment")
	ErrInvalidRating   = apperrors.Validation("Rating must be between 1 and 5")
	ErrInvalidComment  = apperrors.Validation("Comment cannot exceed 500 characters")
	ErrNotEnrolled     = apperrors.Forbidden("You must be enrolled in this course to leave a review")
	ErrAlreadyReviewed = apperrors.Conflict("You have already reviewed this course")
	ErrNotOwnerUpdate  = apperrors.Forbidden("Not authorized to update this review")
	ErrNotOwnerDelete  = apperrors.Forbidden("Not authorized to delete this review")
)
