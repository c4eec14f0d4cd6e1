package enrollment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/course"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/discount"
	"github.com/mo-amir99/coursemarket-server-go/pkg/database"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

// Enrollment grants a user access to one course. PricePaid and
// DiscountApplied are fixed at enrollment time.
type Enrollment struct {
	types.BaseModel

	UserID               uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course,priority:1" json:"userId"`
	CourseID             uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course,priority:2;index" json:"courseId"`
	PricePaid            types.Money        `gorm:"type:numeric(12,2);not null;default:0;column:price_paid" json:"pricePaid"`
	DiscountApplied      *discount.Snapshot `gorm:"type:jsonb;serializer:json;column:discount_applied" json:"discountApplied"`
	Progress             int                `gorm:"not null;default:0" json:"progress"`
	LastAccessedLessonID *uuid.UUID         `gorm:"type:uuid;column:last_accessed_lesson_id" json:"lastAccessedLessonId"`
	CompletedAt          *time.Time         `gorm:"column:completed_at" json:"completedAt"`
	CertificateIssued    bool               `gorm:"not null;default:false;column:certificate_issued" json:"certificateIssued"`

	Course *course.Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// TableName overrides the default table name.
func (Enrollment) TableName() string { return "enrollments" }

// Find returns the user's enrollment in courseID or ErrNotEnrolled.
func Find(db *gorm.DB, userID, courseID uuid.UUID) (Enrollment, error) {
	var e Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return e, ErrNotEnrolled
		}
		return e, err
	}
	return e, nil
}

// Exists reports whether the user is enrolled in courseID.
func Exists(db *gorm.DB, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// ListByUser returns the user's enrollments with their courses and providers, newest first.
func ListByUser(db *gorm.DB, userID uuid.UUID) ([]Enrollment, error) {
	var enrollments []Enrollment
	err := db.
		Preload("Course").
		Preload("Course.Provider").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

// Create inserts an enrollment. The unique index on (user_id, course_id)
// rejects a concurrent duplicate with ErrAlreadyEnrolled.
func Create(db *gorm.DB, e *Enrollment) error {
	if err := db.Create(e).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrAlreadyEnrolled
		}
		return err
	}
	return nil
}

// ProgressUpdate carries the bookkeeping written when a lesson changes state.
type ProgressUpdate struct {
	Percentage   int
	LastLessonID uuid.UUID
	CompletedAt  *time.Time
}

// RecordProgress stores completion bookkeeping on the enrollment.
func RecordProgress(db *gorm.DB, id uuid.UUID, update ProgressUpdate) error {
	return db.Model(&Enrollment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"progress":                update.Percentage,
		"last_accessed_lesson_id": update.LastLessonID,
		"completed_at":            update.CompletedAt,
	}).Error
}

// Count returns the total number of enrollments.
func Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&Enrollment{}).Count(&count).Error
	return count, err
}

// Revenue sums the current price of every enrolled course. It ignores
// discounts; PaidRevenue sums what was actually charged.
func Revenue(db *gorm.DB) (types.Money, error) {
	var result moneyTotal
	err := db.Model(&Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Select("COALESCE(SUM(courses.price), 0) AS total").
		Scan(&result).Error
	return result.Total, err
}

// PaidRevenue sums price_paid across all enrollments.
func PaidRevenue(db *gorm.DB) (types.Money, error) {
	var result moneyTotal
	err := db.Model(&Enrollment{}).
		Select("COALESCE(SUM(price_paid), 0) AS total").
		Scan(&result).Error
	return result.Total, err
}

type moneyTotal struct {
	Total types.Money
}

// TouchLesson records the lesson the user opened most recently.
func TouchLesson(db *gorm.DB, id, lessonID uuid.UUID) error {
	return db.Model(&Enrollment{}).Where("id = ?", id).Update("last_accessed_lesson_id", lessonID).Error
}
