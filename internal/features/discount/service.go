package discount

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/database"
)

// CreateForProvider validates input and stores a discount on a course the actor owns.
func CreateForProvider(db *gorm.DB, actor user.User, input CreateInput) (Discount, error) {
	if err := validateStruct(input); err != nil {
		return Discount{}, err
	}

	course, err := GetCourse(db, input.CourseID)
	if err != nil {
		return Discount{}, err
	}
	if course.ProviderID != actor.ID {
		return Discount{}, ErrNotCourseOwner
	}

	d := Discount{
		Code:        strings.ToUpper(strings.TrimSpace(input.Code)),
		CourseID:    course.ID,
		ProviderID:  actor.ID,
		Type:        input.Type,
		Value:       input.Value,
		MaxUses:     input.MaxUses,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Active:      true,
		Description: strings.TrimSpace(input.Description),
	}
	if err := db.Create(&d).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return Discount{}, ErrCodeTaken
		}
		return Discount{}, err
	}

	d.Course = &course
	return d, nil
}

// GetOwned returns a discount only when the actor issued it.
func GetOwned(db *gorm.DB, actor user.User, id uuid.UUID) (Discount, error) {
	d, err := Get(db, id)
	if err != nil {
		return d, err
	}
	if d.ProviderID != actor.ID {
		return Discount{}, ErrNotOwner
	}
	return d, nil
}

// UpdateOwned re-validates the merged terms and saves them. A cap at or below
// the uses already redeemed is clamped to usedCount and deactivates the
// discount, so it reads as used up.
func UpdateOwned(db *gorm.DB, actor user.User, id uuid.UUID, input UpdateInput) (Discount, error) {
	current, err := GetOwned(db, actor, id)
	if err != nil {
		return current, err
	}

	terms := input.merge(current)
	if err := validateStruct(terms); err != nil {
		return current, err
	}

	updates := map[string]interface{}{
		"type":        terms.Type,
		"value":       terms.Value,
		"max_uses":    terms.MaxUses,
		"start_date":  terms.StartDate,
		"end_date":    terms.EndDate,
		"description": strings.TrimSpace(terms.Description),
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if terms.MaxUses != nil && *terms.MaxUses <= current.UsedCount {
		updates["max_uses"] = current.UsedCount
		updates["active"] = false
	}

	if err := db.Model(&Discount{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if database.IsCheckViolation(err) {
			return current, ErrConstraint
		}
		return current, err
	}
	return Get(db, id)
}

// DeleteOwned removes a discount the actor issued.
func DeleteOwned(db *gorm.DB, actor user.User, id uuid.UUID) error {
	if _, err := GetOwned(db, actor, id); err != nil {
		return err
	}
	return Delete(db, id)
}

// ToggleOwned flips the active flag of a discount the actor issued.
func ToggleOwned(db *gorm.DB, actor user.User, id uuid.UUID) (Discount, error) {
	current, err := GetOwned(db, actor, id)
	if err != nil {
		return current, err
	}

	if err := db.Model(&Discount{}).Where("id = ?", id).Update("active", !current.Active).Error; err != nil {
		return current, err
	}
	current.Active = !current.Active
	return current, nil
}
