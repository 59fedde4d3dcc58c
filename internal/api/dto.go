package api

import (
	"carteira/internal/core"

	"github.com/shopspring/decimal"
)

// Wire shapes for the backend. The payment-mode booleans
// (isInstallmentPlan, isRecurring, isPartialPayment) exist only here;
// conversion to and from core.PaymentMode happens at this boundary so the
// rest of the code never sees the loose flags.

type subscriptionDTO struct {
	ID              int64                `json:"id,omitempty"`
	Description     string               `json:"description"`
	Amount          decimal.Decimal      `json:"amount"`
	Type            core.TransactionType `json:"type"`
	Frequency       core.Frequency       `json:"frequency"`
	StartDate       core.Date            `json:"startDate"`
	EndDate         *core.Date           `json:"endDate,omitempty"`
	IsActive        bool                 `json:"isActive"`
	NextPaymentDate core.Date            `json:"nextPaymentDate"`
	CategoryID      int64                `json:"categoryId,omitempty"`
}

type installmentDTO struct {
	InstallmentNumber int                    `json:"installmentNumber"`
	Amount            decimal.Decimal        `json:"amount"`
	DueDate           core.Date              `json:"dueDate"`
	Status            core.InstallmentStatus `json:"status"`
	PaidDate          *core.Date             `json:"paidDate,omitempty"`
}

type debtDTO struct {
	ID                   int64                     `json:"id,omitempty"`
	DebtorID             int64                     `json:"debtorId"`
	Description          string                    `json:"description"`
	TotalAmount          decimal.Decimal           `json:"totalAmount"`
	DueDate              *core.Date                `json:"dueDate,omitempty"`
	IsInstallmentPlan    bool                      `json:"isInstallmentPlan,omitempty"`
	InstallmentCount     int                       `json:"installmentCount,omitempty"`
	InstallmentFrequency core.InstallmentFrequency `json:"installmentFrequency,omitempty"`
	FirstInstallmentDate *core.Date                `json:"firstInstallmentDate,omitempty"`
	Installments         []installmentDTO          `json:"installments,omitempty"`
}

type debtorDTO struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type transactionDTO struct {
	ID          int64                `json:"id,omitempty"`
	Description string               `json:"description"`
	Amount      decimal.Decimal      `json:"amount"`
	Type        core.TransactionType `json:"type"`
	Date        core.Date            `json:"date"`
	CategoryID  int64                `json:"categoryId,omitempty"`
	AccountID   int64                `json:"accountId,omitempty"`
}

type accountDTO struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type categoryDTO struct {
	ID   int64                `json:"id"`
	Name string               `json:"name"`
	Type core.TransactionType `json:"type"`
}

type paymentDTO struct {
	DebtID   int64           `json:"debtId"`
	Amount   decimal.Decimal `json:"amount"`
	PaidDate core.Date       `json:"paidDate"`
}

func subscriptionToCore(d subscriptionDTO) core.Subscription {
	s := core.Subscription{
		ID:              d.ID,
		Description:     d.Description,
		Amount:          d.Amount,
		Type:            d.Type,
		Frequency:       d.Frequency,
		StartDate:       d.StartDate,
		IsActive:        d.IsActive,
		NextPaymentDate: d.NextPaymentDate,
		CategoryID:      d.CategoryID,
	}
	if d.EndDate != nil {
		s.EndDate = *d.EndDate
	}
	return s
}

func subscriptionFromCore(s core.Subscription) subscriptionDTO {
	d := subscriptionDTO{
		ID:              s.ID,
		Description:     s.Description,
		Amount:          s.Amount,
		Type:            s.Type,
		Frequency:       s.Frequency,
		StartDate:       s.StartDate,
		IsActive:        s.IsActive,
		NextPaymentDate: s.NextPaymentDate,
		CategoryID:      s.CategoryID,
	}
	if !s.EndDate.IsZero() {
		end := s.EndDate
		d.EndDate = &end
	}
	return d
}

func installmentToCore(d installmentDTO) core.Installment {
	inst := core.Installment{
		Number:  d.InstallmentNumber,
		Amount:  d.Amount,
		DueDate: d.DueDate,
		Status:  d.Status,
	}
	if d.PaidDate != nil {
		t := d.PaidDate.Time
		inst.PaidDate = &t
	}
	return inst
}

func installmentFromCore(inst core.Installment) installmentDTO {
	d := installmentDTO{
		InstallmentNumber: inst.Number,
		Amount:            inst.Amount,
		DueDate:           inst.DueDate,
		Status:            inst.Status,
	}
	if inst.PaidDate != nil {
		paid := core.Today(*inst.PaidDate)
		d.PaidDate = &paid
	}
	return d
}

func debtToCore(d debtDTO) core.Debt {
	debt := core.Debt{
		ID:          d.ID,
		DebtorID:    d.DebtorID,
		Description: d.Description,
		TotalAmount: d.TotalAmount,
	}
	if d.IsInstallmentPlan {
		plan := core.InstallmentPlan{
			Count:     d.InstallmentCount,
			Frequency: d.InstallmentFrequency,
		}
		if d.FirstInstallmentDate != nil {
			plan.FirstDate = *d.FirstInstallmentDate
		}
		debt.Mode = plan
	} else {
		mode := core.OneOff{}
		if d.DueDate != nil {
			mode.DueDate = *d.DueDate
		}
		debt.Mode = mode
	}
	for _, inst := range d.Installments {
		debt.Installments = append(debt.Installments, installmentToCore(inst))
	}
	return debt
}

func debtFromCore(debt core.Debt) debtDTO {
	d := debtDTO{
		ID:          debt.ID,
		DebtorID:    debt.DebtorID,
		Description: debt.Description,
		TotalAmount: debt.TotalAmount,
	}
	switch mode := debt.Mode.(type) {
	case core.OneOff:
		due := mode.DueDate
		d.DueDate = &due
	case core.InstallmentPlan:
		d.IsInstallmentPlan = true
		d.InstallmentCount = mode.Count
		d.InstallmentFrequency = mode.Frequency
		first := mode.FirstDate
		d.FirstInstallmentDate = &first
	}
	for _, inst := range debt.Installments {
		d.Installments = append(d.Installments, installmentFromCore(inst))
	}
	return d
}

func debtorToCore(d debtorDTO) core.Debtor {
	return core.Debtor{ID: d.ID, Name: d.Name, Phone: d.Phone, Email: d.Email}
}

func transactionToCore(d transactionDTO) core.Transaction {
	return core.Transaction{
		ID:          d.ID,
		Description: d.Description,
		Amount:      d.Amount,
		Type:        d.Type,
		Date:        d.Date,
		CategoryID:  d.CategoryID,
		AccountID:   d.AccountID,
	}
}
