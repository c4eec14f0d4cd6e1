package course

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

// GetVisible returns a course with details. Courses that are not approved are
// visible only to their provider and to admins; actor may be nil for anonymous callers.
func GetVisible(db *gorm.DB, actor *user.User, id uuid.UUID) (Course, error) {
	c, err := GetDetailed(db, id)
	if err != nil {
		return c, err
	}
	if c.Status == types.CourseStatusApproved {
		return c, nil
	}
	if actor != nil && (actor.IsAdmin() || actor.ID == c.ProviderID) {
		return c, nil
	}
	return Course{}, ErrCourseUnavailable
}

// CreateForProvider creates a pending course owned by actor.
func CreateForProvider(db *gorm.DB, actor user.User, input CreateInput) (Course, error) {
	input.ProviderID = actor.ID
	return Create(db, input)
}

// UpdateForProvider edits a course the actor owns.
func UpdateForProvider(db *gorm.DB, actor user.User, id uuid.UUID, input UpdateInput) (Course, error) {
	current, err := Get(db, id)
	if err != nil {
		return current, err
	}
	if current.ProviderID != actor.ID {
		return current, ErrNotOwnerUpdate
	}
	return Update(db, id, input)
}

// DeleteForProvider removes a course the actor owns, refusing when students are enrolled.
func DeleteForProvider(db *gorm.DB, actor user.User, id uuid.UUID) error {
	current, err := Get(db, id)
	if err != nil {
		return err
	}
	if current.ProviderID != actor.ID {
		return ErrNotOwnerDelete
	}

	var enrolled int64
	if err := db.Table("enrollments").Where("course_id = ?", id).Count(&enrolled).Error; err != nil {
		return err
	}
	if enrolled > 0 {
		return ErrHasEnrollments
	}
	return Delete(db, id)
}
