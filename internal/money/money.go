// Package money provides an exact decimal value type for prices and totals.
// All arithmetic is performed on decimals; binary floating point never
// enters price calculation.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// minorUnitPlaces is the scale of the currency minor unit.
const minorUnitPlaces = 2

// Money is an exact decimal amount. The zero value is zero money.
type Money struct {
	amount decimal.Decimal
}

func Zero() Money {
	return Money{}
}

// FromString parses a decimal amount such as "33.33".
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money{amount: d}, nil
}

// MustFromString is FromString for literals; it panics on malformed input.
func MustFromString(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromMinorUnits builds an amount from an integer count of minor units,
// e.g. FromMinorUnits(5500) is 55.00.
func FromMinorUnits(units int64) Money {
	return Money{amount: decimal.New(units, -minorUnitPlaces)}
}

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

func (m Money) Mul(other Money) Money {
	return Money{amount: m.amount.Mul(other.amount)}
}

func (m Money) MulInt(n int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(n)))}
}

// DivInt divides by a non-zero integer at extended precision.
func (m Money) DivInt(n int) Money {
	return Money{amount: m.amount.Div(decimal.NewFromInt(int64(n)))}
}

// RoundMinor rounds half-up to the currency minor unit. This is the single
// rounding step applied when a computed total is settled.
func (m Money) RoundMinor() Money {
	return Money{amount: m.amount.Round(minorUnitPlaces)}
}

func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// String renders the exact amount without trailing-zero padding.
func (m Money) String() string {
	return m.amount.String()
}

// StringFixed renders the amount with exactly the given number of decimal
// places.
func (m Money) StringFixed(places int32) string {
	return m.amount.StringFixed(places)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.amount.StringFixed(minorUnitPlaces) + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.amount = d
	return nil
}

// Value implements driver.Valuer so Money maps onto NUMERIC columns.
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(src any) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("scan money: %w", err)
	}
	m.amount = d
	return nil
}
