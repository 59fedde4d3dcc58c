package recurrence

import (
	"carteira/internal/core"

	"github.com/shopspring/decimal"
)

// Summary aggregates a subscription collection on a common monthly basis.
type Summary struct {
	TotalActive    int
	TotalInactive  int
	TotalOverdue   int
	MonthlyIncome  decimal.Decimal
	MonthlyExpense decimal.Decimal
}

// IsOverdue reports whether a subscription's next payment date has passed
// while it remains active. Always derived from the reference date, never
// stored, so it cannot go stale.
func IsOverdue(ref core.Date, s core.Subscription) bool {
	return s.IsActive && !s.NextPaymentDate.IsZero() && s.NextPaymentDate.Before(ref.Time)
}

// DaysUntilPayment returns the whole days between the reference date and
// the next payment date. Negative when the payment is overdue.
func DaysUntilPayment(ref core.Date, s core.Subscription) int {
	return int(s.NextPaymentDate.Sub(ref.Time).Hours() / 24)
}

// Summarize computes a fresh aggregate over the given subscriptions.
// Inactive subscriptions are excluded from the monthly totals but counted.
// Subscriptions with an unknown frequency contribute nothing to the totals.
func Summarize(ref core.Date, subscriptions []core.Subscription) Summary {
	sum := Summary{
		MonthlyIncome:  decimal.Zero,
		MonthlyExpense: decimal.Zero,
	}

	for _, s := range subscriptions {
		if s.IsActive {
			sum.TotalActive++
		} else {
			sum.TotalInactive++
		}
		if IsOverdue(ref, s) {
			sum.TotalOverdue++
		}

		if !s.IsActive {
			continue
		}
		n, err := NormalizerFor(s.Frequency)
		if err != nil {
			continue
		}
		switch s.Type {
		case core.Receita:
			sum.MonthlyIncome = sum.MonthlyIncome.Add(n.MonthlyEquivalent(s.Amount))
		case core.Despesa:
			sum.MonthlyExpense = sum.MonthlyExpense.Add(n.MonthlyEquivalent(s.Amount))
		}
	}

	return sum
}
