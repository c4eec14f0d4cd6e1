package lesson

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
)

// Resource is an attachment listed under a lesson.
type Resource struct {
	Title string             `json:"title"`
	URL   string             `json:"url"`
	Type  types.ResourceType `json:"type"`
}

// Lesson is one ordered unit of a course.
type Lesson struct {
	types.BaseModel

	CourseID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_lessons_course_order,priority:1" json:"courseId"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:varchar(1000)" json:"description,omitempty"`
	VideoURL    string     `gorm:"type:varchar(1000);not null;column:video_url" json:"videoUrl"`
	Duration    int        `gorm:"not null;default:0" json:"duration"`
	Order       int        `gorm:"column:order;not null;default:0;index:idx_lessons_course_order,priority:2" json:"order"`
	Content     string     `gorm:"type:text" json:"content,omitempty"`
	Resources   []Resource `gorm:"type:jsonb;serializer:json" json:"resources"`
	IsFree      bool       `gorm:"not null;default:false;column:is_free" json:"isFree"`
}

// TableName overrides the default table name.
func (Lesson) TableName() string { return "lessons" }

// CreateInput carries the fields of a new lesson. Order is assigned by Create.
type CreateInput struct {
	CourseID    uuid.UUID
	Title       string
	Description string
	VideoURL    string
	Duration    int
	Content     string
	Resources   []Resource
	IsFree      bool
}

// UpdateInput captures mutable lesson fields.
type UpdateInput struct {
	Title       *string
	Description *string
	VideoURL    *string
	Duration    *int
	Content     *string
	Order       *int
	Resources   *[]Resource
	IsFree      *bool
}

// OrderChange moves one lesson to a new position.
type OrderChange struct {
	LessonID uuid.UUID
	Order    int
}

// ListByCourse returns a course's lessons in display order.
func ListByCourse(db *gorm.DB, courseID uuid.UUID) ([]Lesson, error) {
	var lessons []Lesson
	err := db.Where("course_id = ?", courseID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Find(&lessons).Error
	return lessons, err
}

// CountByCourse counts a course's lessons.
func CountByCourse(db *gorm.DB, courseID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&Lesson{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

// Get retrieves a lesson by ID.
func Get(db *gorm.DB, id uuid.UUID) (Lesson, error) {
	var l Lesson
	if err := db.First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return l, ErrLessonNotFound
		}
		return l, err
	}
	return l, nil
}

// Create inserts a lesson at the end of its course (max order + 1).
func Create(db *gorm.DB, input CreateInput) (Lesson, error) {
	title, err := normalizeTitle(input.Title)
	if err != nil {
		return Lesson{}, err
	}
	videoURL := strings.TrimSpace(input.VideoURL)
	if videoURL == "" {
		return Lesson{}, ErrInvalidVideoURL
	}
	if input.Duration < 0 {
		return Lesson{}, ErrInvalidDuration
	}
	if err := validateResources(input.Resources); err != nil {
		return Lesson{}, err
	}

	var maxOrder int
	if err := db.Model(&Lesson{}).
		Where("course_id = ?", input.CourseID).
		Select(`COALESCE(MAX("order"), 0)`).
		Scan(&maxOrder).Error; err != nil {
		return Lesson{}, err
	}

	l := Lesson{
		CourseID:    input.CourseID,
		Title:       title,
		Description: truncate(strings.TrimSpace(input.Description), maxDescriptionLength),
		VideoURL:    videoURL,
		Duration:    input.Duration,
		Order:       maxOrder + 1,
		Content:     input.Content,
		Resources:   input.Resources,
		IsFree:      input.IsFree,
	}
	if l.Resources == nil {
		l.Resources = []Resource{}
	}

	if err := db.Create(&l).Error; err != nil {
		return Lesson{}, err
	}
	return l, nil
}

// Update modifies an existing lesson.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Lesson, error) {
	current, err := Get(db, id)
	if err != nil {
		return current, err
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		title, err := normalizeTitle(*input.Title)
		if err != nil {
			return current, err
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = truncate(strings.TrimSpace(*input.Description), maxDescriptionLength)
	}
	if input.VideoURL != nil {
		videoURL := strings.TrimSpace(*input.VideoURL)
		if videoURL == "" {
			return current, ErrInvalidVideoURL
		}
		updates["video_url"] = videoURL
	}
	if input.Duration != nil {
		if *input.Duration < 0 {
			return current, ErrInvalidDuration
		}
		updates["duration"] = *input.Duration
	}
	if input.Content != nil {
		updates["content"] = *input.Content
	}
	if input.Order != nil {
		updates["order"] = *input.Order
	}
	if input.IsFree != nil {
		updates["is_free"] = *input.IsFree
	}

	if input.Resources != nil {
		if err := validateResources(*input.Resources); err != nil {
			return current, err
		}
		current.Resources = *input.Resources
		if err := db.Model(&current).Select("resources").Updates(&Lesson{Resources: *input.Resources}).Error; err != nil {
			return current, err
		}
	}

	if len(updates) > 0 {
		if err := db.Model(&Lesson{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return current, err
		}
	}

	return Get(db, id)
}

// Delete removes a lesson.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&Lesson{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLessonNotFound
	}
	return nil
}

// DeleteByCourse removes every lesson of a course.
func DeleteByCourse(db *gorm.DB, courseID uuid.UUID) error {
	return db.Where("course_id = ?", courseID).Delete(&Lesson{}).Error
}

// Reorder applies order changes. Every lesson must belong to courseID.
func Reorder(db *gorm.DB, courseID uuid.UUID, changes []OrderChange) error {
	if len(changes) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(changes))
	for _, change := range changes {
		ids = append(ids, change.LessonID)
	}

	var owned int64
	if err := db.Model(&Lesson{}).Where("course_id = ? AND id IN ?", courseID, ids).Count(&owned).Error; err != nil {
		return err
	}
	if owned != int64(len(uniqueIDs(ids))) {
		return ErrForeignLesson
	}

	for _, change := range changes {
		if err := db.Model(&Lesson{}).
			Where("id = ? AND course_id = ?", change.LessonID, courseID).
			Update("order", change.Order).Error; err != nil {
			return err
		}
	}
	return nil
}

func normalizeTitle(value string) (string, error) {
	title := strings.TrimSpace(value)
	if title == "" || len([]rune(title)) > maxTitleLength {
		return "", ErrInvalidTitle
	}
	return title, nil
}

func validateResources(resources []Resource) error {
	for _, r := range resources {
		switch r.Type {
		case types.ResourceTypePDF, types.ResourceTypeDocument, types.ResourceTypeLink, types.ResourceTypeOther:
		default:
			return ErrInvalidResource
		}
	}
	return nil
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}

func uniqueIDs(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
