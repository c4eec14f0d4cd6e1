package discount

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
	"github.com/mo-amir99/coursemarket-server-go/pkg/validation"
)

var maxPercentage = types.NewMoneyFromInt(100)

// Terms are the provider-controlled rules of a discount.
type Terms struct {
	Type        types.DiscountType `json:"type" validate:"required,oneof=percentage fixed"`
	Value       types.Money        `json:"value"`
	MaxUses     *int               `json:"maxUses" validate:"omitempty,min=1"`
	StartDate   time.Time          `json:"startDate" validate:"required"`
	EndDate     time.Time          `json:"endDate" validate:"required,gtfield=StartDate"`
	Description string             `json:"description" validate:"max=200"`
}

// CreateInput is a new discount for one of the provider's courses.
type CreateInput struct {
	Code     string    `json:"code" validate:"required,discountcode"`
	CourseID uuid.UUID `json:"courseId" validate:"required"`
	Terms
}

// UpdateInput changes some terms of an existing discount. ClearMaxUses
// removes the usage cap; the code and course are fixed once created.
type UpdateInput struct {
	Type         *types.DiscountType
	Value        *types.Money
	MaxUses      *int
	ClearMaxUses bool
	StartDate    *time.Time
	EndDate      *time.Time
	Description  *string
	Active       *bool
}

var fieldMessages = map[string]string{
	"code.required":      "Discount code is required",
	"code.discountcode":  "Invalid discount code. Use 3-20 characters (letters, numbers, hyphens, underscores)",
	"courseId.required":  "Course is required",
	"type.required":      "Discount type is required",
	"type.oneof":         "Discount type must be percentage or fixed",
	"value.min":          "Discount value cannot be negative",
	"value.maxpercent":   "Percentage discount cannot exceed 100",
	"maxUses.min":        "Max uses must be at least 1",
	"startDate.required": "Start date is required",
	"endDate.required":   "End date is required",
	"endDate.gtfield":    "End date must be after start date",
	"description.max":    "Description cannot exceed 200 characters",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("discountcode", func(fl validator.FieldLevel) bool {
		_, err := validation.NormalizeDiscountCode(fl.Field().String())
		return err == nil
	})
	v.RegisterStructValidation(validateTermsValue, Terms{})
	return v
}

func validateTermsValue(sl validator.StructLevel) {
	terms := sl.Current().Interface().(Terms)
	if terms.Value.IsNegative() {
		sl.ReportError(terms.Value, "value", "Value", "min", "0")
		return
	}
	if terms.Type == types.DiscountTypePercentage && terms.Value.GreaterThan(maxPercentage) {
		sl.ReportError(terms.Value, "value", "Value", "maxpercent", "100")
	}
}

// validateStruct runs the discount rules over s and converts failures to ErrValidation with per-field messages.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := fe.Field() + "." + fe.Tag()
		msg, ok := fieldMessages[key]
		if !ok {
			msg = fe.Error()
		}
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = msg
		}
	}
	return ErrValidation.WithFields(fields)
}

// merge applies the set fields of input over the current terms.
func (input UpdateInput) merge(current Discount) Terms {
	terms := Terms{
		Type:        current.Type,
		Value:       current.Value,
		MaxUses:     current.MaxUses,
		StartDate:   current.StartDate,
		EndDate:     current.EndDate,
		Description: current.Description,
	}
	if input.Type != nil {
		terms.Type = *input.Type
	}
	if input.Value != nil {
		terms.Value = *input.Value
	}
	if input.ClearMaxUses {
		terms.MaxUses = nil
	} else if input.MaxUses != nil {
		terms.MaxUses = input.MaxUses
	}
	if input.StartDate != nil {
		terms.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		terms.EndDate = *input.EndDate
	}
	if input.Description != nil {
		terms.Description = *input.Description
	}
	return terms
}
