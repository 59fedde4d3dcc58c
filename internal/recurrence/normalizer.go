// Package recurrence normalizes recurring amounts across cadences.
//
// This file implements the Strategy Pattern for frequency normalization.
// Each frequency (daily, weekly, monthly, yearly) has its own strategy that
// converts an amount at that cadence to its monthly-equivalent value and
// advances a payment date by one period.
package recurrence

import (
	"fmt"

	"carteira/internal/core"

	"github.com/shopspring/decimal"
)

// Normalizer is the strategy interface for a single cadence.
type Normalizer interface {
	// MonthlyEquivalent converts an amount at this cadence to a monthly
	// figure. No rounding is applied; callers round at display time only.
	// Non-positive amounts pass through unchanged in sign.
	MonthlyEquivalent(amount decimal.Decimal) decimal.Decimal

	// Advance steps a payment date forward by one period.
	Advance(d core.Date) core.Date
}

// DailyNormalizer approximates a month as 30 days. The approximation is
// deliberate and matches the rest of the application; it is not
// calendar-exact.
type DailyNormalizer struct{}

func (DailyNormalizer) MonthlyEquivalent(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(30))
}

func (DailyNormalizer) Advance(d core.Date) core.Date {
	return d.AddDays(1)
}

// WeeklyNormalizer approximates a month as 4 weeks.
type WeeklyNormalizer struct{}

func (WeeklyNormalizer) MonthlyEquivalent(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(4))
}

func (WeeklyNormalizer) Advance(d core.Date) core.Date {
	return d.AddDays(7)
}

// MonthlyNormalizer is the identity cadence.
type MonthlyNormalizer struct{}

func (MonthlyNormalizer) MonthlyEquivalent(amount decimal.Decimal) decimal.Decimal {
	return amount
}

func (MonthlyNormalizer) Advance(d core.Date) core.Date {
	return d.AddMonths(1)
}

// YearlyNormalizer spreads a yearly amount over 12 months.
type YearlyNormalizer struct{}

func (YearlyNormalizer) MonthlyEquivalent(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(decimal.NewFromInt(12))
}

func (YearlyNormalizer) Advance(d core.Date) core.Date {
	return d.AddMonths(12)
}

// normalizers maps frequencies to their strategies.
var normalizers = map[core.Frequency]Normalizer{
	core.Daily:   DailyNormalizer{},
	core.Weekly:  WeeklyNormalizer{},
	core.Monthly: MonthlyNormalizer{},
	core.Yearly:  YearlyNormalizer{},
}

// NormalizerFor returns the strategy for a frequency.
// Returns an error if the frequency is not supported.
func NormalizerFor(frequency core.Frequency) (Normalizer, error) {
	n, ok := normalizers[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return n, nil
}

// MonthlyEquivalent is a convenience over NormalizerFor for the common case.
func MonthlyEquivalent(amount decimal.Decimal, frequency core.Frequency) (decimal.Decimal, error) {
	n, err := NormalizerFor(frequency)
	if err != nil {
		return decimal.Zero, err
	}
	return n.MonthlyEquivalent(amount), nil
}

// NextPaymentDate advances a subscription's next payment date by one period
// of its cadence.
func NextPaymentDate(s core.Subscription) (core.Date, error) {
	n, err := NormalizerFor(s.Frequency)
	if err != nil {
		return core.Date{}, err
	}
	return n.Advance(s.NextPaymentDate), nil
}
