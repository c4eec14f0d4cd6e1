package discount

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/pkg/metrics"
	"github.com/mo-amir99/coursemarket-server-go/pkg/telemetry"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

// IsValid reports whether d can be applied at now: active, inside its
// window (inclusive) and under its usage cap.
func (d Discount) IsValid(now time.Time) bool {
	if !d.Active {
		return false
	}
	if now.Before(d.StartDate) || now.After(d.EndDate) {
		return false
	}
	if d.MaxUses != nil && d.UsedCount >= *d.MaxUses {
		return false
	}
	return true
}

// CalculateDiscountedPrice applies d to original. An invalid discount leaves
// the price unchanged; the result is never negative.
func (d Discount) CalculateDiscountedPrice(original types.Money, now time.Time) types.Money {
	if !d.IsValid(now) {
		return original
	}
	switch d.Type {
	case types.DiscountTypePercentage:
		return original.Sub(original.Percent(d.Value)).FloorZero()
	case types.DiscountTypeFixed:
		return original.Sub(d.Value).FloorZero()
	default:
		return original
	}
}

// FindValid looks up code (case-insensitive) for courseID and returns it only if it is valid at now.
func FindValid(db *gorm.DB, code string, courseID uuid.UUID, now time.Time) (Discount, error) {
	var d Discount
	err := db.
		Where("code = ? AND course_id = ? AND active = ?", strings.ToUpper(strings.TrimSpace(code)), courseID, true).
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return d, ErrInvalidOrExpired
		}
		return d, err
	}
	if !d.IsValid(now) {
		return d, ErrInvalidOrExpired
	}
	return d, nil
}

// IncrementUsage consumes one use of the discount and deactivates it once the
// cap is reached. The update is guarded so concurrent redemptions cannot
// exceed max_uses; it reports false when no use was left.
func IncrementUsage(db *gorm.DB, id uuid.UUID) (bool, error) {
	result := db.Exec(`UPDATE discounts
		SET used_count = used_count + 1,
		    active = CASE WHEN max_uses IS NOT NULL AND used_count + 1 >= max_uses THEN false ELSE active END,
		    updated_at = ?
		WHERE id = ? AND (max_uses IS NULL OR used_count < max_uses)`, time.Now(), id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Snapshot freezes the terms a discount was redeemed under.
type Snapshot struct {
	Code            string             `json:"code"`
	Type            types.DiscountType `json:"type"`
	Value           types.Money        `json:"value"`
	OriginalPrice   types.Money        `json:"originalPrice"`
	DiscountedPrice types.Money        `json:"discountedPrice"`
}

// Redemption outcomes, also used as metric labels.
const (
	OutcomeNone      = "none"
	OutcomeApplied   = "applied"
	OutcomeInvalid   = "invalid"
	OutcomeExhausted = "exhausted"
	OutcomeError     = "error"
)

// Redemption is the result of Redeem.
type Redemption struct {
	Price    types.Money
	Snapshot *Snapshot
	Outcome  string
}

// Redeem prices a purchase of courseID at original, consuming one use of code
// when it applies. Any problem with the code falls back to the full price
// without an error; callers decide nothing based on the code's validity.
func Redeem(ctx context.Context, db *gorm.DB, logger *slog.Logger, code string, courseID uuid.UUID, original types.Money) Redemption {
	full := Redemption{Price: original, Outcome: OutcomeNone}
	if strings.TrimSpace(code) == "" {
		return full
	}

	ctx, span := telemetry.Tracer("discount").Start(ctx, "discount.redeem")
	defer span.End()
	span.SetAttributes(attribute.String("course_id", courseID.String()))

	record := func(r Redemption) Redemption {
		span.SetAttributes(attribute.String("outcome", r.Outcome))
		metrics.RecordDiscountOutcome(r.Outcome)
		return r
	}

	tx := db.WithContext(ctx)
	now := time.Now()

	d, err := FindValid(tx, code, courseID, now)
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpired) {
			full.Outcome = OutcomeInvalid
			return record(full)
		}
		telemetry.RecordError(ctx, err)
		logger.Warn("discount lookup failed, charging full price",
			slog.String("course_id", courseID.String()),
			slog.String("error", err.Error()),
		)
		full.Outcome = OutcomeError
		return record(full)
	}

	discounted := d.CalculateDiscountedPrice(original, now)

	consumed, err := IncrementUsage(tx, d.ID)
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.Warn("discount usage increment failed, charging full price",
			slog.String("discount_id", d.ID.String()),
			slog.String("error", err.Error()),
		)
		full.Outcome = OutcomeError
		return record(full)
	}
	if !consumed {
		full.Outcome = OutcomeExhausted
		return record(full)
	}

	return record(Redemption{
		Price:   discounted,
		Outcome: OutcomeApplied,
		Snapshot: &Snapshot{
			Code:            d.Code,
			Type:            d.Type,
			Value:           d.Value,
			OriginalPrice:   original,
			DiscountedPrice: discounted,
		},
	})
}

// Quote is the public preview of a discount against a course price.
type Quote struct {
	Code            string             `json:"code"`
	Type            types.DiscountType `json:"type"`
	Value           types.Money        `json:"value"`
	OriginalPrice   types.Money        `json:"originalPrice"`
	DiscountedPrice types.Money        `json:"discountedPrice"`
	Savings         types.Money        `json:"savings"`
}

// Preview validates code against courseID without consuming it.
func Preview(db *gorm.DB, code string, courseID uuid.UUID, now time.Time) (Quote, error) {
	course, err := GetCourse(db, courseID)
	if err != nil {
		return Quote{}, err
	}
	d, err := FindValid(db, code, courseID, now)
	if err != nil {
		return Quote{}, err
	}

	discounted := d.CalculateDiscountedPrice(course.Price, now)
	return Quote{
		Code:            d.Code,
		Type:            d.Type,
		Value:           d.Value,
		OriginalPrice:   course.Price,
		DiscountedPrice: discounted,
		Savings:         course.Price.Sub(discounted),
	}, nil
}
