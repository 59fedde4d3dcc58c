package recurrence

import (
	"testing"

	"carteira/internal/core"

	"github.com/shopspring/decimal"
)

func TestMonthlyEquivalent(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		frequency core.Frequency
		want      string
	}{
		{name: "monthly is identity", amount: "100", frequency: core.Monthly, want: "100"},
		{name: "daily times 30", amount: "100", frequency: core.Daily, want: "3000"},
		{name: "weekly times 4", amount: "100", frequency: core.Weekly, want: "400"},
		{name: "yearly divided by 12", amount: "1200", frequency: core.Yearly, want: "100"},
		{name: "yearly keeps precision", amount: "100", frequency: core.Yearly, want: "8.3333333333333333"},
		{name: "zero passes through", amount: "0", frequency: core.Daily, want: "0"},
		{name: "negative passes through without sign flip", amount: "-10", frequency: core.Weekly, want: "-40"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MonthlyEquivalent(decimal.RequireFromString(tt.amount), tt.frequency)
			if err != nil {
				t.Fatalf("MonthlyEquivalent() error: %v", err)
			}
			if want := decimal.RequireFromString(tt.want); !got.Equal(want) {
				t.Errorf("MonthlyEquivalent(%s, %s) = %s, want %s", tt.amount, tt.frequency, got, want)
			}
		})
	}
}

func TestMonthlyEquivalentUnknownFrequency(t *testing.T) {
	if _, err := MonthlyEquivalent(decimal.NewFromInt(10), "HOURLY"); err == nil {
		t.Error("MonthlyEquivalent() with unknown frequency should fail")
	}
	if _, err := NormalizerFor(""); err == nil {
		t.Error("NormalizerFor(\"\") should fail")
	}
}

func TestNormalizerAdvance(t *testing.T) {
	tests := []struct {
		name string
		n    Normalizer
		from core.Date
		want core.Date
	}{
		{name: "daily", n: DailyNormalizer{}, from: core.NewDate(2024, 1, 31), want: core.NewDate(2024, 2, 1)},
		{name: "weekly", n: WeeklyNormalizer{}, from: core.NewDate(2024, 1, 1), want: core.NewDate(2024, 1, 8)},
		{name: "monthly clamps day", n: MonthlyNormalizer{}, from: core.NewDate(2024, 1, 31), want: core.NewDate(2024, 2, 29)},
		{name: "yearly", n: YearlyNormalizer{}, from: core.NewDate(2024, 2, 29), want: core.NewDate(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.Advance(tt.from); !got.Equal(tt.want.Time) {
				t.Errorf("Advance(%s) = %s, want %s",
					tt.from.Format("2006-01-02"), got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestNextPaymentDate(t *testing.T) {
	s := core.Subscription{Frequency: core.Weekly, NextPaymentDate: core.NewDate(2024, 3, 4)}
	got, err := NextPaymentDate(s)
	if err != nil {
		t.Fatalf("NextPaymentDate() error: %v", err)
	}
	if want := core.NewDate(2024, 3, 11); !got.Equal(want.Time) {
		t.Errorf("NextPaymentDate() = %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}

	s.Frequency = "BIWEEKLY"
	if _, err := NextPaymentDate(s); err == nil {
		t.Error("NextPaymentDate() with unknown frequency should fail")
	}
}
