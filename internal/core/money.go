// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and their decimal representation.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

var maxCents = decimal.New(1<<62, 0)

// ParseDecimalToCents converts a decimal string to cents with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Text that
// is not a number returns ErrInvalidAmount; zero, negative and sub-cent values
// return ErrNonPositiveAmount; values beyond the int64 cent range return
// ErrAmountOutOfRange. Both of the latter also match ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (half-up)
//	ParseDecimalToCents("12.344") -> 1234, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return DecimalToCents(d)
}

// DecimalToCents rounds d half-up to two places and returns it as cents.
func DecimalToCents(d decimal.Decimal) (int64, error) {
	if !d.IsPositive() {
		return 0, ErrNonPositiveAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThanOrEqual(maxCents) {
		return 0, ErrAmountOutOfRange
	}
	if !cents.IsPositive() {
		return 0, ErrNonPositiveAmount
	}
	return cents.IntPart(), nil
}

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Float() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}
