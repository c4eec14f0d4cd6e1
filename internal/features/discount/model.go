package discount

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

// Discount is a provider-issued code scoped to one course. Code is stored uppercased.
type Discount struct {
	types.BaseModel

	Code        string             `gorm:"type:varchar(20);not null;uniqueIndex:idx_discounts_course_code,priority:2" json:"code"`
	CourseID    uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_discounts_course_code,priority:1" json:"courseId"`
	ProviderID  uuid.UUID          `gorm:"type:uuid;not null;index:idx_discounts_provider_active,priority:1" json:"providerId"`
	Type        types.DiscountType `gorm:"type:varchar(20);not null" json:"type"`
	Value       types.Money        `gorm:"type:numeric(12,2);not null" json:"value"`
	MaxUses     *int               `gorm:"column:max_uses" json:"maxUses"`
	UsedCount   int                `gorm:"not null;default:0;column:used_count" json:"usedCount"`
	StartDate   time.Time          `gorm:"not null;index:idx_discounts_window,priority:1" json:"startDate"`
	EndDate     time.Time          `gorm:"not null;index:idx_discounts_window,priority:2" json:"endDate"`
	Active      bool               `gorm:"not null;default:true;index:idx_discounts_provider_active,priority:2" json:"active"`
	Description string             `gorm:"type:varchar(200)" json:"description,omitempty"`

	Course *CourseRef `gorm:"foreignKey:CourseID;-:migration" json:"course,omitempty"`
}

// TableName overrides the default table name.
func (Discount) TableName() string { return "discounts" }

// CourseRef is the slice of a course the discount engine reads.
type CourseRef struct {
	ID         uuid.UUID          `gorm:"column:id;primaryKey" json:"id"`
	Title      string             `gorm:"column:title" json:"title"`
	Price      types.Money        `gorm:"column:price" json:"price"`
	ProviderID uuid.UUID          `gorm:"column:provider_id" json:"-"`
	Status     types.CourseStatus `gorm:"column:status" json:"-"`
}

// TableName points CourseRef at the courses table.
func (CourseRef) TableName() string { return "courses" }

// ListFilters narrows a provider's discount listing.
type ListFilters struct {
	ProviderID uuid.UUID
	CourseID   *uuid.UUID
	Active     *bool
}

// List returns discounts matching filters, newest first.
func List(db *gorm.DB, filters ListFilters) ([]Discount, error) {
	query := db.Model(&Discount{}).Where("provider_id = ?", filters.ProviderID)
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.Active != nil {
		query = query.Where("active = ?", *filters.Active)
	}

	var discounts []Discount
	err := query.Preload("Course").Order("created_at DESC").Find(&discounts).Error
	return discounts, err
}

// Get retrieves a discount by ID with its course.
func Get(db *gorm.DB, id uuid.UUID) (Discount, error) {
	var d Discount
	if err := db.Preload("Course").First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return d, ErrDiscountNotFound
		}
		return d, err
	}
	return d, nil
}

// GetCourse loads the course fields a discount depends on.
func GetCourse(db *gorm.DB, courseID uuid.UUID) (CourseRef, error) {
	var ref CourseRef
	if err := db.First(&ref, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ref, ErrCourseNotFound
		}
		return ref, err
	}
	return ref, nil
}

// Delete removes a discount.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&Discount{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDiscountNotFound
	}
	return nil
}

// DeactivateExpired switches off active discounts whose window has closed.
func DeactivateExpired(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&Discount{}).
		Where("active = ? AND end_date < ?", true, now).
		Update("active", false)
	return result.RowsAffected, result.Error
}
