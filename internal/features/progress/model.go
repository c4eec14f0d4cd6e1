package progress

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

// Progress records one user's state on one lesson.
type Progress struct {
	types.BaseModel

	UserID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_lesson,priority:1;index:idx_progress_user_course,priority:1" json:"userId"`
	CourseID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_progress_user_course,priority:2" json:"courseId"`
	LessonID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_lesson,priority:2" json:"lessonId"`
	Completed      bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completedAt"`
	LastAccessedAt time.Time  `gorm:"not null;column:last_accessed_at" json:"lastAccessedAt"`

	Lesson *lesson.Lesson `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"lesson,omitempty"`
}

// TableName overrides the default table name.
func (Progress) TableName() string { return "progress" }

// Find returns the user's progress on lessonID, or nil when none exists.
func Find(db *gorm.DB, userID, lessonID uuid.UUID) (*Progress, error) {
	var p Progress
	if err := db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListByCourse returns the user's progress rows in courseID with their lessons.
func ListByCourse(db *gorm.DB, userID, courseID uuid.UUID) ([]Progress, error) {
	var rows []Progress
	err := db.
		Preload("Lesson").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// CompletionPercentage is the share of the course's current lessons the user
// has completed, rounded to a whole percent. A course without lessons is 0.
func CompletionPercentage(db *gorm.DB, userID, courseID uuid.UUID) (int, error) {
	total, err := lesson.CountByCourse(db, courseID)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}

	var completed int64
	err = db.Model(&Progress{}).
		Joins("JOIN lessons ON lessons.id = progress.lesson_id").
		Where("progress.user_id = ? AND progress.course_id = ? AND progress.completed = ?", userID, courseID, true).
		Count(&completed).Error
	if err != nil {
		return 0, err
	}

	pct := int(math.Round(float64(completed) / float64(total) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct, nil
}
