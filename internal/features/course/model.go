package course

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/database"
	"github.com/mo-amir99/coursemarket-server-go/pkg/pagination"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
)

// Course is a provider-owned, admin-moderated offering. EnrollmentCount,
// AverageRating and TotalReviews are denormalized and written only through
// IncrementEnrollmentCount and SetRatingStats.
type Course struct {
	types.BaseModel

	Title           string             `gorm:"type:varchar(200);not null;uniqueIndex" json:"title"`
	Description     string             `gorm:"type:varchar(2000);not null" json:"description"`
	Price           types.Money        `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	ThumbnailURL    string             `gorm:"type:varchar(1000);not null;column:thumbnail_url" json:"thumbnailUrl"`
	Category        string             `gorm:"type:varchar(100);not null;index" json:"category"`
	ProviderID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"providerId"`
	Status          types.CourseStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	EnrollmentCount int                `gorm:"not null;default:0;column:enrollment_count" json:"enrollmentCount"`
	AverageRating   float64            `gorm:"type:numeric(2,1);not null;default:0;column:average_rating" json:"averageRating"`
	TotalReviews    int                `gorm:"not null;default:0;column:total_reviews" json:"totalReviews"`

	Provider *user.User      `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Lessons  []lesson.Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

// TableName overrides the default table name.
func (Course) TableName() string { return "courses" }

// Sort options accepted by List.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortPopular   = "popular"
)

// ListFilters narrows course listings.
type ListFilters struct {
	Status     *types.CourseStatus
	ProviderID *uuid.UUID
	Category   string
	Search     string
	MinPrice   *types.Money
	MaxPrice   *types.Money
	Sort       string
}

// CreateInput carries the fields of a new course.
type CreateInput struct {
	Title        string
	Description  string
	Price        types.Money
	ThumbnailURL string
	Category     string
	ProviderID   uuid.UUID
}

// UpdateInput captures provider-editable course fields.
type UpdateInput struct {
	Title        *string
	Description  *string
	Price        *types.Money
	ThumbnailURL *string
	Category     *string
}

// List queries courses with filters, sorting and pagination.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Course, int64, error) {
	query := db.Model(&Course{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ProviderID != nil {
		query = query.Where("provider_id = ?", *filters.ProviderID)
	}
	if category := strings.TrimSpace(filters.Category); category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?", like, like, like)
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", *filters.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []Course
	err := query.
		Preload("Provider").
		Order(sortClause(filters.Sort)).
		Scopes(params.Scope).
		Find(&courses).Error
	if err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func sortClause(sort string) clause.OrderByColumn {
	switch sort {
	case SortPriceAsc:
		return clause.OrderByColumn{Column: clause.Column{Name: "price"}}
	case SortPriceDesc:
		return clause.OrderByColumn{Column: clause.Column{Name: "price"}, Desc: true}
	case SortRating:
		return clause.OrderByColumn{Column: clause.Column{Name: "average_rating"}, Desc: true}
	case SortPopular:
		return clause.OrderByColumn{Column: clause.Column{Name: "enrollment_count"}, Desc: true}
	default:
		return clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}
	}
}

// Get retrieves a course by ID.
func Get(db *gorm.DB, id uuid.UUID) (Course, error) {
	var c Course
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c, ErrCourseNotFound
		}
		return c, err
	}
	return c, nil
}

// GetDetailed retrieves a course with its provider and ordered lessons.
func GetDetailed(db *gorm.DB, id uuid.UUID) (Course, error) {
	var c Course
	err := db.
		Preload("Provider").
		Preload("Lessons", func(tx *gorm.DB) *gorm.DB {
			return tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}})
		}).
		First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c, ErrCourseNotFound
		}
		return c, err
	}
	return c, nil
}

// Create inserts a course in pending status.
func Create(db *gorm.DB, input CreateInput) (Course, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	thumbnail := strings.TrimSpace(input.ThumbnailURL)
	category := strings.TrimSpace(input.Category)

	if title == "" || description == "" || thumbnail == "" || category == "" {
		return Course{}, ErrMissingFields
	}
	if err := validateText(title, description); err != nil {
		return Course{}, err
	}
	if input.Price.IsNegative() {
		return Course{}, ErrNegativePrice
	}

	c := Course{
		Title:        title,
		Description:  description,
		Price:        input.Price,
		ThumbnailURL: thumbnail,
		Category:     category,
		ProviderID:   input.ProviderID,
		Status:       types.CourseStatusPending,
	}
	if err := db.Create(&c).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return Course{}, ErrTitleTaken
		}
		return Course{}, err
	}
	return c, nil
}

// Update applies edits. A rejected course returns to pending.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Course, error) {
	current, err := Get(db, id)
	if err != nil {
		return current, err
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return current, ErrMissingFields
		}
		if err := validateText(title, ""); err != nil {
			return current, err
		}
		updates["title"] = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return current, ErrMissingFields
		}
		if err := validateText("", description); err != nil {
			return current, err
		}
		updates["description"] = description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return current, ErrNegativePrice
		}
		updates["price"] = *input.Price
	}
	if input.ThumbnailURL != nil {
		updates["thumbnail_url"] = strings.TrimSpace(*input.ThumbnailURL)
	}
	if input.Category != nil {
		updates["category"] = strings.TrimSpace(*input.Category)
	}
	if current.Status == types.CourseStatusRejected {
		updates["status"] = types.CourseStatusPending
	}

	if len(updates) > 0 {
		if err := db.Model(&Course{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return current, ErrTitleTaken
			}
			return current, err
		}
	}
	return Get(db, id)
}

// SetStatus moves a course through moderation.
func SetStatus(db *gorm.DB, id uuid.UUID, status types.CourseStatus) (Course, error) {
	result := db.Model(&Course{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return Course{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Course{}, ErrCourseNotFound
	}
	return Get(db, id)
}

// IncrementEnrollmentCount atomically bumps the enrollment counter.
func IncrementEnrollmentCount(db *gorm.DB, id uuid.UUID) error {
	return db.Model(&Course{}).
		Where("id = ?", id).
		UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + ?", 1)).Error
}

// SetRatingStats stores recomputed rating aggregates.
func SetRatingStats(db *gorm.DB, id uuid.UUID, average float64, total int) error {
	return db.Model(&Course{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"average_rating": average,
		"total_reviews":  total,
	}).Error
}

// CountByStatus counts courses in status, or all courses when status is empty.
func CountByStatus(db *gorm.DB, status types.CourseStatus) (int64, error) {
	query := db.Model(&Course{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// Delete removes a course together with its lessons and discount codes.
// Callers must have checked there are no enrollments.
func Delete(db *gorm.DB, id uuid.UUID) error {
	if err := lesson.DeleteByCourse(db, id); err != nil {
		return err
	}
	if err := db.Exec("DELETE FROM discounts WHERE course_id = ?", id).Error; err != nil {
		return err
	}
	result := db.Delete(&Course{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func validateText(title, description string) error {
	if len([]rune(title)) > maxTitleLength {
		return ErrInvalidTitle
	}
	if len([]rune(description)) > maxDescriptionLength {
		return ErrInvalidDesc
	}
	return nil
}
