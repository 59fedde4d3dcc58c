package recurrence

import (
	"testing"

	"carteira/internal/core"

	"github.com/shopspring/decimal"
)

func TestSummarize(t *testing.T) {
	ref := core.NewDate(2024, 6, 15)
	subs := []core.Subscription{
		{
			Description:     "Salary bonus",
			Amount:          decimal.NewFromInt(100),
			Type:            core.Receita,
			Frequency:       core.Monthly,
			IsActive:        true,
			NextPaymentDate: core.NewDate(2024, 7, 1),
		},
		{
			Description:     "Gym",
			Amount:          decimal.NewFromInt(50),
			Type:            core.Despesa,
			Frequency:       core.Weekly,
			IsActive:        true,
			NextPaymentDate: core.NewDate(2024, 6, 1), // past due and active
		},
		{
			Description:     "Old freelance gig",
			Amount:          decimal.NewFromInt(999),
			Type:            core.Receita,
			Frequency:       core.Monthly,
			IsActive:        false,
			NextPaymentDate: core.NewDate(2024, 1, 1), // past due but inactive
		},
	}

	got := Summarize(ref, subs)

	if got.TotalActive != 2 {
		t.Errorf("TotalActive = %d, want 2", got.TotalActive)
	}
	if got.TotalInactive != 1 {
		t.Errorf("TotalInactive = %d, want 1", got.TotalInactive)
	}
	if got.TotalOverdue != 1 {
		t.Errorf("TotalOverdue = %d, want 1", got.TotalOverdue)
	}
	if want := decimal.NewFromInt(100); !got.MonthlyIncome.Equal(want) {
		t.Errorf("MonthlyIncome = %s, want %s", got.MonthlyIncome, want)
	}
	if want := decimal.NewFromInt(200); !got.MonthlyExpense.Equal(want) {
		t.Errorf("MonthlyExpense = %s, want %s", got.MonthlyExpense, want)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(core.NewDate(2024, 1, 1), nil)
	if got.TotalActive != 0 || got.TotalInactive != 0 || got.TotalOverdue != 0 {
		t.Errorf("counts should be zero, got %+v", got)
	}
	if !got.MonthlyIncome.IsZero() || !got.MonthlyExpense.IsZero() {
		t.Errorf("totals should be zero, got %+v", got)
	}
}

func TestIsOverdue(t *testing.T) {
	ref := core.NewDate(2024, 6, 15)

	tests := []struct {
		name string
		sub  core.Subscription
		want bool
	}{
		{
			name: "past due and active",
			sub:  core.Subscription{IsActive: true, NextPaymentDate: core.NewDate(2024, 6, 14)},
			want: true,
		},
		{
			name: "past due but inactive",
			sub:  core.Subscription{IsActive: false, NextPaymentDate: core.NewDate(2024, 6, 14)},
			want: false,
		},
		{
			name: "due today is not overdue",
			sub:  core.Subscription{IsActive: true, NextPaymentDate: core.NewDate(2024, 6, 15)},
			want: false,
		},
		{
			name: "future date",
			sub:  core.Subscription{IsActive: true, NextPaymentDate: core.NewDate(2024, 6, 16)},
			want: false,
		},
		{
			name: "unset payment date",
			sub:  core.Subscription{IsActive: true},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOverdue(ref, tt.sub); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDaysUntilPayment(t *testing.T) {
	ref := core.NewDate(2024, 6, 15)

	if got := DaysUntilPayment(ref, core.Subscription{NextPaymentDate: core.NewDate(2024, 6, 20)}); got != 5 {
		t.Errorf("DaysUntilPayment(future) = %d, want 5", got)
	}
	if got := DaysUntilPayment(ref, core.Subscription{NextPaymentDate: core.NewDate(2024, 6, 15)}); got != 0 {
		t.Errorf("DaysUntilPayment(today) = %d, want 0", got)
	}
	if got := DaysUntilPayment(ref, core.Subscription{NextPaymentDate: core.NewDate(2024, 6, 10)}); got != -5 {
		t.Errorf("DaysUntilPayment(past) = %d, want -5", got)
	}
}
