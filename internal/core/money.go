// Package core provides the ledger domain types.
//
// This file contains the amount parsing and formatting helpers used when
// decoding line items submitted as form strings.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and ignores
// surrounding whitespace. Grouping separators are not accepted because a comma
// is read as the decimal point. Negative amounts are rejected; zero is allowed
// since a row may be recorded before its value is known.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrNegativeAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrNegativeAmount
	}
	s = strings.TrimPrefix(s, "+")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders d with two decimals, the way exports and logs show it.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
