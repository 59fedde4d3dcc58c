// Package core holds the domain model shared by every other package.
//
// This file contains parsing and display formatting for monetary amounts.
// Amounts are decimal values in the base currency unit (reais, not
// centavos); computations keep full precision and rounding happens only
// at display time.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// The backend speaks plain JSON numbers for amounts, not strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// ParseAmount converts a user-entered amount string to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rejects signs, thousands separators, and non-positive values. Form inputs
// in pt-BR locales usually carry the comma.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("0")     -> error
//	ParseAmount("-5")    -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return decimal.Zero, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return decimal.Zero, ErrInvalidAmount
			}
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatBRL formats an amount as Brazilian currency for display,
// e.g. "R$ 1.234,56". Rounding to centavos happens here and only here.
func FormatBRL(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	intPart, fracPart, _ := strings.Cut(s, ".")

	// Insert thousands separators from the right
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "R$ " + b.String() + "," + fracPart
	if neg {
		return "-" + out
	}
	return out
}

// FormatDate formats a date for display as dd/mm/yyyy. Zero dates render
// as an empty string.
func FormatDate(d Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02/01/2006")
}
