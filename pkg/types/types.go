package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role represents the single role a user holds.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// UserStatus represents account state. pending_provider is a customer awaiting admin review.
type UserStatus string

const (
	UserStatusActive          UserStatus = "active"
	UserStatusInactive        UserStatus = "inactive"
	UserStatusPendingProvider UserStatus = "pending_provider"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusPendingProvider:
		return true
	}
	return false
}

// CourseStatus represents the moderation state of a course.
type CourseStatus string

const (
	CourseStatusPending  CourseStatus = "pending"
	CourseStatusApproved CourseStatus = "approved"
	CourseStatusRejected CourseStatus = "rejected"
)

// Valid reports whether s is a known course status.
func (s CourseStatus) Valid() bool {
	switch s {
	case CourseStatusPending, CourseStatusApproved, CourseStatusRejected:
		return true
	}
	return false
}

// DiscountType selects how a discount value is applied.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// NotificationType classifies user-facing notifications.
type NotificationType string

const (
	NotificationTypeEnrollment       NotificationType = "enrollment"
	NotificationTypeReview           NotificationType = "review"
	NotificationTypeCourseApproved   NotificationType = "course_approved"
	NotificationTypeCourseRejected   NotificationType = "course_rejected"
	NotificationTypeProviderApproved NotificationType = "provider_approved"
	NotificationTypeProviderRejected NotificationType = "provider_rejected"
	NotificationTypeSystem           NotificationType = "system"
)

// ResourceType classifies lesson attachments.
type ResourceType string

const (
	ResourceTypePDF      ResourceType = "pdf"
	ResourceTypeDocument ResourceType = "document"
	ResourceTypeLink     ResourceType = "link"
	ResourceTypeOther    ResourceType = "other"
)

// BaseModel contains common fields for all models.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// BeforeCreate assigns an id when the caller did not provide one.
func (m *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
