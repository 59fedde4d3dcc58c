package core

import "errors"

// PaymentMode is the tagged variant describing how an amount is settled.
// Exactly one mode applies to a debt or transaction at a time; the loose
// boolean flags the wire format uses (isInstallmentPlan, isRecurring,
// isPartialPayment) exist only at the API boundary, never in the domain.
type PaymentMode interface {
	Validate() error
	paymentMode()
}

// OneOff settles the full amount on a single due date.
type OneOff struct {
	DueDate Date
}

// Recurring repeats the amount at a fixed cadence.
type Recurring struct {
	Frequency Frequency
}

// InstallmentPlan splits the amount into Count dated parts.
type InstallmentPlan struct {
	Count     int
	Frequency InstallmentFrequency
	FirstDate Date
}

// PartialPayment registers an amount against an existing debt.
type PartialPayment struct {
	DebtID int64
}

func (OneOff) paymentMode()          {}
func (Recurring) paymentMode()       {}
func (InstallmentPlan) paymentMode() {}
func (PartialPayment) paymentMode()  {}

func (m OneOff) Validate() error {
	return m.DueDate.Validate()
}

func (m Recurring) Validate() error {
	if !m.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	return nil
}

func (m InstallmentPlan) Validate() error {
	if m.Count < MinInstallmentCount || m.Count > MaxInstallmentCount {
		return ErrInvalidInstallmentCount
	}
	if !m.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	return m.FirstDate.Validate()
}

func (m PartialPayment) Validate() error {
	if m.DebtID <= 0 {
		return errors.New("missing debt reference")
	}
	return nil
}
