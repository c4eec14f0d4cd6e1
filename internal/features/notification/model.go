package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/pkg/pagination"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

// Notification is a user-facing message created by system events.
type Notification struct {
	types.BaseModel

	UserID          uuid.UUID              `gorm:"type:uuid;not null;index:idx_notifications_user_read,priority:1" json:"userId"`
	Type            types.NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Title           string                 `gorm:"type:varchar(200);not null" json:"title"`
	Message         string                 `gorm:"type:varchar(500);not null" json:"message"`
	Link            string                 `gorm:"type:varchar(500)" json:"link,omitempty"`
	RelatedCourseID *uuid.UUID             `gorm:"type:uuid;column:related_course_id" json:"relatedCourseId,omitempty"`
	Read            bool                   `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2" json:"read"`

	RelatedCourse *CourseRef `gorm:"foreignKey:RelatedCourseID;-:migration" json:"relatedCourse,omitempty"`
}

// TableName overrides the default table name.
func (Notification) TableName() string { return "notifications" }

// CourseRef is the slice of a course a notification exposes.
type CourseRef struct {
	ID    uuid.UUID `gorm:"column:id;primaryKey" json:"id"`
	Title string    `gorm:"column:title" json:"title"`
}

// TableName points CourseRef at the courses table.
func (CourseRef) TableName() string { return "courses" }

// CreateInput carries the fields of a new notification.
type CreateInput struct {
	UserID          uuid.UUID
	Type            types.NotificationType
	Title           string
	Message         string
	Link            string
	RelatedCourseID *uuid.UUID
}

// Create inserts a notification.
func Create(db *gorm.DB, input CreateInput) (Notification, error) {
	n := Notification{
		UserID:          input.UserID,
		Type:            input.Type,
		Title:           input.Title,
		Message:         input.Message,
		Link:            input.Link,
		RelatedCourseID: input.RelatedCourseID,
	}
	if err := db.Create(&n).Error; err != nil {
		return Notification{}, err
	}
	return n, nil
}

// List returns a user's notifications, newest first.
func List(db *gorm.DB, userID uuid.UUID, unreadOnly bool, params pagination.Params) ([]Notification, int64, error) {
	query := db.Model(&Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Notification
	err := query.
		Preload("RelatedCourse").
		Order("created_at DESC").
		Scopes(params.Scope).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get retrieves a notification by ID.
func Get(db *gorm.DB, id uuid.UUID) (Notification, error) {
	var n Notification
	if err := db.First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return n, ErrNotificationNotFound
		}
		return n, err
	}
	return n, nil
}

// GetOwned retrieves a notification and checks it belongs to userID.
func GetOwned(db *gorm.DB, id, userID uuid.UUID) (Notification, error) {
	n, err := Get(db, id)
	if err != nil {
		return n, err
	}
	if n.UserID != userID {
		return n, ErrNotOwner
	}
	return n, nil
}

// CountUnread counts a user's unread notifications.
func CountUnread(db *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks one owned notification as read.
func MarkRead(db *gorm.DB, id, userID uuid.UUID) (Notification, error) {
	n, err := GetOwned(db, id, userID)
	if err != nil {
		return n, err
	}
	if n.Read {
		return n, nil
	}
	if err := db.Model(&Notification{}).Where("id = ?", id).Update("read", true).Error; err != nil {
		return n, err
	}
	n.Read = true
	return n, nil
}

// MarkAllRead marks every unread notification of userID as read.
func MarkAllRead(db *gorm.DB, userID uuid.UUID) (int64, error) {
	result := db.Model(&Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

// Delete removes one owned notification.
func Delete(db *gorm.DB, id, userID uuid.UUID) error {
	if _, err := GetOwned(db, id, userID); err != nil {
		return err
	}
	return db.Delete(&Notification{}, "id = ?", id).Error
}

// ClearRead deletes every read notification of userID.
func ClearRead(db *gorm.DB, userID uuid.UUID) (int64, error) {
	result := db.Where("user_id = ? AND read = ?", userID, true).Delete(&Notification{})
	return result.RowsAffected, result.Error
}

// PruneRead deletes read notifications created before cutoff across all users.
func PruneRead(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("read = ? AND created_at < ?", true, cutoff).Delete(&Notification{})
	return result.RowsAffected, result.Error
}
