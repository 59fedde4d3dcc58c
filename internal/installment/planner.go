// Package installment derives dated installment schedules from lump sums
// and reports payment progress over them.
package installment

import (
	"errors"
	"fmt"
	"math"
	"time"

	"carteira/internal/core"

	"github.com/shopspring/decimal"
)

// ErrAlreadyPaid reports a mark-paid call on an installment that is
// already PAGO. The UI never offers the action on a paid installment, so
// hitting this is a caller bug, not a user error.
var ErrAlreadyPaid = errors.New("installment already paid")

// Plan splits a total amount into count installments due at the given
// cadence, starting at first.
//
// The per-installment amount is total/count with no per-installment
// rounding; rounding to centavos happens only at display time. Monthly due
// dates are computed from the first date, not from the previous
// installment, so a plan starting Jan 31 runs Jan 31, Feb 29, Mar 31
// rather than drifting to the 29th.
//
// The installment count range is enforced at the form layer too; it is
// re-checked here so a validation gap upstream fails loudly instead of
// producing a wrong schedule.
func Plan(total decimal.Decimal, count int, frequency core.InstallmentFrequency, first core.Date) ([]core.Installment, error) {
	if count < core.MinInstallmentCount || count > core.MaxInstallmentCount {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]",
			core.ErrInvalidInstallmentCount, count, core.MinInstallmentCount, core.MaxInstallmentCount)
	}
	if !total.IsPositive() {
		return nil, core.ErrInvalidAmount
	}
	if !frequency.Valid() {
		return nil, core.ErrInvalidFrequency
	}
	if err := first.Validate(); err != nil {
		return nil, err
	}

	amount := total.Div(decimal.NewFromInt(int64(count)))

	installments := make([]core.Installment, count)
	for i := range installments {
		var due core.Date
		switch frequency {
		case core.InstallmentMonthly:
			due = first.AddMonths(i)
		case core.InstallmentWeekly:
			due = first.AddDays(7 * i)
		}
		installments[i] = core.Installment{
			Number:  i + 1,
			Amount:  amount,
			DueDate: due,
			Status:  core.StatusPendente,
		}
	}

	return installments, nil
}

// ProgressReport is display data for progress bars.
type ProgressReport struct {
	Paid       int
	Total      int
	Percentage float64
}

// Progress counts paid installments. An empty schedule reports 0%.
func Progress(installments []core.Installment) ProgressReport {
	report := ProgressReport{Total: len(installments)}
	for _, inst := range installments {
		if inst.Status == core.StatusPago {
			report.Paid++
		}
	}
	if report.Total > 0 {
		report.Percentage = float64(report.Paid) / float64(report.Total) * 100
	}
	return report
}

// MarkPaid transitions an installment to PAGO with the given payment time.
// Both PENDENTE and ATRASADO installments can be paid; a second call on a
// PAGO installment returns ErrAlreadyPaid without touching the input.
func MarkPaid(inst core.Installment, now time.Time) (core.Installment, error) {
	if inst.Status == core.StatusPago {
		return inst, ErrAlreadyPaid
	}
	inst.Status = core.StatusPago
	inst.PaidDate = &now
	return inst, nil
}

// EffectiveStatus derives the display status for a reference date: an
// unpaid installment whose due date has passed shows as ATRASADO. The
// stored status never becomes ATRASADO; it is recomputed on every read.
func EffectiveStatus(ref core.Date, inst core.Installment) core.InstallmentStatus {
	if inst.Status == core.StatusPendente && inst.DueDate.Before(ref.Time) {
		return core.StatusAtrasado
	}
	return inst.Status
}

// DaysOverdue returns how many whole days past due a date is at the
// reference date. Due today or in the future reports zero.
func DaysOverdue(due, ref core.Date) int {
	days := int(math.Ceil(ref.Sub(due.Time).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}
