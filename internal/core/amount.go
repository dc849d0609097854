// Package core defines the domain model shared by the balance and chore
// engines: groups, members, chores, payments and shares, together with
// their validation rules.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts user-entered text into a currency amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Negative, non-numeric and non-finite inputs are rejected with a
// ValidationError. Amounts are kept as float64 to match the stored record
// semantics: equal splits divide without cent rounding.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	if v < 0 {
		return 0, ErrNegativeAmount
	}
	return v, nil
}
