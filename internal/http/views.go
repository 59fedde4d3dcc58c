package http

import (
	"carteira/internal/core"
	"carteira/internal/installment"
	"carteira/internal/recurrence"

	"github.com/shopspring/decimal"
)

// View shapes returned by the gateway. Derived figures (monthly
// equivalents, effective statuses, overdue day counts) are computed at
// render time and never stored.

type subscriptionView struct {
	ID                int64                `json:"id"`
	Description       string               `json:"description"`
	Amount            decimal.Decimal      `json:"amount"`
	AmountDisplay     string               `json:"amountDisplay"`
	Type              core.TransactionType `json:"type"`
	Frequency         core.Frequency       `json:"frequency"`
	StartDate         core.Date            `json:"startDate"`
	EndDate           *core.Date           `json:"endDate,omitempty"`
	IsActive          bool                 `json:"isActive"`
	NextPaymentDate   core.Date            `json:"nextPaymentDate"`
	MonthlyEquivalent decimal.Decimal      `json:"monthlyEquivalent"`
	IsOverdue         bool                 `json:"isOverdue"`
	CategoryID        int64                `json:"categoryId,omitempty"`
}

func subscriptionToView(ref core.Date, s core.Subscription) subscriptionView {
	v := subscriptionView{
		ID:              s.ID,
		Description:     s.Description,
		Amount:          s.Amount,
		AmountDisplay:   core.FormatBRL(s.Amount),
		Type:            s.Type,
		Frequency:       s.Frequency,
		StartDate:       s.StartDate,
		IsActive:        s.IsActive,
		NextPaymentDate: s.NextPaymentDate,
		IsOverdue:       recurrence.IsOverdue(ref, s),
		CategoryID:      s.CategoryID,
	}
	if !s.EndDate.IsZero() {
		end := s.EndDate
		v.EndDate = &end
	}
	if eq, err := recurrence.MonthlyEquivalent(s.Amount, s.Frequency); err == nil {
		v.MonthlyEquivalent = eq
	}
	return v
}

type summaryView struct {
	TotalActive    int             `json:"totalActive"`
	TotalInactive  int             `json:"totalInactive"`
	TotalOverdue   int             `json:"totalOverdue"`
	MonthlyIncome  decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpense decimal.Decimal `json:"monthlyExpense"`
	MonthlyBalance decimal.Decimal `json:"monthlyBalance"`
}

func summaryToView(sum recurrence.Summary) summaryView {
	return summaryView{
		TotalActive:    sum.TotalActive,
		TotalInactive:  sum.TotalInactive,
		TotalOverdue:   sum.TotalOverdue,
		MonthlyIncome:  sum.MonthlyIncome,
		MonthlyExpense: sum.MonthlyExpense,
		MonthlyBalance: sum.MonthlyIncome.Sub(sum.MonthlyExpense),
	}
}

type installmentView struct {
	Number        int                    `json:"number"`
	Amount        decimal.Decimal        `json:"amount"`
	AmountDisplay string                 `json:"amountDisplay"`
	DueDate       core.Date              `json:"dueDate"`
	Status        core.InstallmentStatus `json:"status"`
	DaysOverdue   int                    `json:"daysOverdue"`
	PaidDate      *core.Date             `json:"paidDate,omitempty"`
}

func installmentToView(ref core.Date, inst core.Installment) installmentView {
	v := installmentView{
		Number:        inst.Number,
		Amount:        inst.Amount,
		AmountDisplay: core.FormatBRL(inst.Amount),
		DueDate:       inst.DueDate,
		Status:        installment.EffectiveStatus(ref, inst),
	}
	if v.Status == core.StatusAtrasado {
		v.DaysOverdue = installment.DaysOverdue(inst.DueDate, ref)
	}
	if inst.PaidDate != nil {
		paid := core.Today(*inst.PaidDate)
		v.PaidDate = &paid
	}
	return v
}

type progressView struct {
	Paid       int     `json:"paid"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

type debtView struct {
	ID           int64             `json:"id"`
	DebtorID     int64             `json:"debtorId"`
	Description  string            `json:"description"`
	TotalAmount  decimal.Decimal   `json:"totalAmount"`
	Mode         string            `json:"mode"`
	DueDate      *core.Date        `json:"dueDate,omitempty"`
	Installments []installmentView `json:"installments,omitempty"`
	Progress     *progressView     `json:"progress,omitempty"`
}

func debtToView(ref core.Date, d core.Debt) debtView {
	v := debtView{
		ID:          d.ID,
		DebtorID:    d.DebtorID,
		Description: d.Description,
		TotalAmount: d.TotalAmount,
	}
	switch mode := d.Mode.(type) {
	case core.OneOff:
		v.Mode = "ONE_OFF"
		due := mode.DueDate
		v.DueDate = &due
	case core.Recurring:
		v.Mode = "RECURRING"
	case core.InstallmentPlan:
		v.Mode = "INSTALLMENT_PLAN"
	case core.PartialPayment:
		v.Mode = "PARTIAL_PAYMENT"
	}
	for _, inst := range d.Installments {
		v.Installments = append(v.Installments, installmentToView(ref, inst))
	}
	if len(d.Installments) > 0 {
		p := installment.Progress(d.Installments)
		v.Progress = &progressView{Paid: p.Paid, Total: p.Total, Percentage: p.Percentage}
	}
	return v
}

type debtorView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

func debtorToView(d core.Debtor) debtorView {
	return debtorView{ID: d.ID, Name: d.Name, Phone: d.Phone, Email: d.Email}
}
