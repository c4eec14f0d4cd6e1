package review

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/pkg/database"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

const (
	minRating        = 1
	maxRating        = 5
	maxCommentLength = 500
)

// Review is a user's rating of a course they are enrolled in.
type Review struct {
	types.BaseModel

	CourseID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_course_user,priority:1" json:"courseId"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_course_user,priority:2" json:"userId"`
	Rating       int       `gorm:"not null" json:"rating"`
	Comment      string    `gorm:"type:varchar(500);not null" json:"comment"`
	HelpfulVotes int       `gorm:"not null;default:0;column:helpful_votes" json:"helpfulVotes"`

	User *Reviewer `gorm:"foreignKey:UserID;-:migration" json:"user,omitempty"`
}

// TableName overrides the default table name.
func (Review) TableName() string { return "reviews" }

// Reviewer is the public summary of the review's author.
type Reviewer struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey" json:"id"`
	FullName  string    `gorm:"column:full_name" json:"fullName"`
	AvatarURL string    `gorm:"column:avatar_url" json:"avatarUrl"`
}

// TableName points Reviewer at the users table.
func (Reviewer) TableName() string { return "users" }

// ListByCourse returns a course's reviews with reviewers, newest first.
func ListByCourse(db *gorm.DB, courseID uuid.UUID) ([]Review, error) {
	var reviews []Review
	err := db.Preload("User").
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// Get retrieves a review by ID with its reviewer.
func Get(db *gorm.DB, id uuid.UUID) (Review, error) {
	var r Review
	if err := db.Preload("User").First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r, ErrReviewNotFound
		}
		return r, err
	}
	return r, nil
}

// FindByUser returns the user's review of courseID, or nil when there is none.
func FindByUser(db *gorm.DB, userID, courseID uuid.UUID) (*Review, error) {
	var r Review
	err := db.Preload("User").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// Create inserts a review. A second review by the same user is rejected by the unique index.
func Create(db *gorm.DB, r *Review) error {
	if err := db.Create(r).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrAlreadyReviewed
		}
		return err
	}
	return nil
}

// Stats are the aggregate rating figures of one course.
type Stats struct {
	Average float64
	Total   int64
}

// Aggregate computes the average rating (one decimal place) and review count of courseID.
func Aggregate(db *gorm.DB, courseID uuid.UUID) (Stats, error) {
	var stats Stats
	err := db.Model(&Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("course_id = ?", courseID).
		Scan(&stats).Error
	if err != nil {
		return Stats{}, err
	}
	stats.Average = math.Round(stats.Average*10) / 10
	return stats, nil
}

func validateRating(rating int) error {
	if rating < minRating || rating > maxRating {
		return ErrInvalidRating
	}
	return nil
}

func validateComment(comment string) error {
	if len([]rune(comment)) > maxCommentLength {
		return ErrInvalidComment
	}
	return nil
}
