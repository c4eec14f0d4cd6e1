package lesson

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
)

// courseOwner is the slice of a course lesson management needs.
type courseOwner struct {
	ID         uuid.UUID `gorm:"column:id"`
	ProviderID uuid.UUID `gorm:"column:provider_id"`
}

func (courseOwner) TableName() string { return "courses" }

// authorizeCourse checks the course exists and actor owns it.
func authorizeCourse(db *gorm.DB, actor user.User, courseID uuid.UUID) error {
	var owner courseOwner
	if err := db.First(&owner, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	if owner.ProviderID != actor.ID {
		return ErrNotCourseOwner
	}
	return nil
}

// CreateForProvider adds a lesson to a course the actor owns.
func CreateForProvider(db *gorm.DB, actor user.User, input CreateInput) (Lesson, error) {
	if err := authorizeCourse(db, actor, input.CourseID); err != nil {
		return Lesson{}, err
	}
	return Create(db, input)
}

// UpdateForProvider edits a lesson of a course the actor owns.
func UpdateForProvider(db *gorm.DB, actor user.User, id uuid.UUID, input UpdateInput) (Lesson, error) {
	current, err := Get(db, id)
	if err != nil {
		return current, err
	}
	if err := authorizeCourse(db, actor, current.CourseID); err != nil {
		return current, err
	}
	return Update(db, id, input)
}

// DeleteForProvider removes a lesson of a course the actor owns.
func DeleteForProvider(db *gorm.DB, actor user.User, id uuid.UUID) error {
	current, err := Get(db, id)
	if err != nil {
		return err
	}
	if err := authorizeCourse(db, actor, current.CourseID); err != nil {
		return err
	}
	return Delete(db, id)
}

// ReorderForProvider reorders lessons of a course the actor owns.
func ReorderForProvider(db *gorm.DB, actor user.User, courseID uuid.UUID, changes []OrderChange) error {
	if err := authorizeCourse(db, actor, courseID); err != nil {
		return err
	}
	return Reorder(db, courseID, changes)
}
