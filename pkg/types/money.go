package types

import (
	"database/sql/driver"

	"github.com/shopspring/decimal"
)

// Money wraps decimal.Decimal for money values.
type Money decimal.Decimal

var hundred = decimal.NewFromInt(100)

// NewMoney creates Money from float64.
func NewMoney(value float64) Money {
	return Money(decimal.NewFromFloat(value))
}

// NewMoneyFromInt creates Money from a whole amount.
func NewMoneyFromInt(value int64) Money {
	return Money(decimal.NewFromInt(value))
}

// NewMoneyFromString creates Money from string.
func NewMoneyFromString(value string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, err
	}
	return Money(d), nil
}

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.Decimal(m)
}

// Float64 returns the float64 representation.
func (m Money) Float64() float64 {
	return decimal.Decimal(m).InexactFloat64()
}

func (m Money) String() string {
	return decimal.Decimal(m).String()
}

// Add adds two Money values.
func (m Money) Add(other Money) Money {
	return Money(decimal.Decimal(m).Add(decimal.Decimal(other)))
}

// Sub subtracts other from m.
func (m Money) Sub(other Money) Money {
	return Money(decimal.Decimal(m).Sub(decimal.Decimal(other)))
}

// Percent returns pct percent of m.
func (m Money) Percent(pct Money) Money {
	return Money(decimal.Decimal(m).Mul(decimal.Decimal(pct)).Div(hundred))
}

// FloorZero clamps negative amounts to zero.
func (m Money) FloorZero() Money {
	if decimal.Decimal(m).IsNegative() {
		return Money(decimal.Zero)
	}
	return m
}

// Equal reports whether both values represent the same amount.
func (m Money) Equal(other Money) bool {
	return decimal.Decimal(m).Equal(decimal.Decimal(other))
}

// GreaterThan returns true if m > other.
func (m Money) GreaterThan(other Money) bool {
	return decimal.Decimal(m).GreaterThan(decimal.Decimal(other))
}

// LessThan returns true if m < other.
func (m Money) LessThan(other Money) bool {
	return decimal.Decimal(m).LessThan(decimal.Decimal(other))
}

// IsNegative returns true if m < 0.
func (m Money) IsNegative() bool {
	return decimal.Decimal(m).IsNegative()
}

// IsZero returns true if value is zero.
func (m Money) IsZero() bool {
	return decimal.Decimal(m).IsZero()
}

// Value implements driver.Valuer for database serialization.
func (m Money) Value() (driver.Value, error) {
	return decimal.Decimal(m).Value()
}

// Scan implements sql.Scanner for database deserialization.
func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}

// MarshalJSON renders the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).String()), nil
}

// UnmarshalJSON accepts both numbers and quoted numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}
