package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Receita TransactionType = "RECEITA"
	Despesa TransactionType = "DESPESA"
)

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
)

const (
	InstallmentMonthly InstallmentFrequency = "MONTHLY"
	InstallmentWeekly  InstallmentFrequency = "WEEKLY"
)

const (
	StatusPendente InstallmentStatus = "PENDENTE"
	StatusPago     InstallmentStatus = "PAGO"
	StatusAtrasado InstallmentStatus = "ATRASADO"
)

// Installment count bounds accepted by the planner and by debt creation forms.
const (
	MinInstallmentCount = 1
	MaxInstallmentCount = 48
)

type (
	TransactionType string

	Frequency string

	InstallmentFrequency string

	InstallmentStatus string

	Date struct {
		time.Time
	}

	// Subscription is a recurring income or expense commitment. The
	// monthly-equivalent figure is never stored on it; it is recomputed
	// from Amount and Frequency every time it is needed.
	Subscription struct {
		ID              int64
		Description     string
		Amount          decimal.Decimal
		Type            TransactionType
		Frequency       Frequency
		StartDate       Date
		EndDate         Date // zero means open-ended
		IsActive        bool
		NextPaymentDate Date
		CategoryID      int64
	}

	// Installment is one dated part of a split amount. PaidDate is set
	// only on the PAGO transition.
	Installment struct {
		Number   int
		Amount   decimal.Decimal
		DueDate  Date
		Status   InstallmentStatus
		PaidDate *time.Time
	}

	Debtor struct {
		ID    int64
		Name  string
		Phone string
		Email string
	}

	// Debt is an amount owed by a Debtor, either as a single dated sum or
	// split across installments depending on Mode.
	Debt struct {
		ID           int64
		DebtorID     int64
		Description  string
		TotalAmount  decimal.Decimal
		Mode         PaymentMode
		Installments []Installment
	}

	Transaction struct {
		ID          int64
		Description string
		Amount      decimal.Decimal
		Type        TransactionType
		Date        Date
		CategoryID  int64
		AccountID   int64
	}

	Account struct {
		ID      int64
		Name    string
		Balance decimal.Decimal
	}

	Category struct {
		ID   int64
		Name string
		Type TransactionType
	}
)

var (
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInvalidInstallmentCount = errors.New("invalid installment count")
	ErrInvalidDate             = errors.New("invalid date")
	ErrInvalidFrequency        = errors.New("invalid frequency")
	ErrInvalidType             = errors.New("invalid transaction type")
	ErrEmptyDescription        = errors.New("empty description")
	ErrEndBeforeStart          = errors.New("end date must be after start date")
)

func (t TransactionType) Valid() bool {
	return t == Receita || t == Despesa
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (f InstallmentFrequency) Valid() bool {
	return f == InstallmentMonthly || f == InstallmentWeekly
}

// NewDate creates a new Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today truncates t to a UTC calendar date.
func Today(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a date in ISO-8601 day format (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// IsEmpty returns true if the date is zero (optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// AddMonths steps the date forward by n calendar months, clamping the day
// to the last valid day of the target month. Jan 31 + 1 month lands on
// Feb 29 in a leap year and Feb 28 otherwise, never on Mar 2.
func (d Date) AddMonths(n int) Date {
	y, m, day := d.Time.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	return NewDate(first.Year(), int(first.Month()), day)
}

// AddDays steps the date forward by n days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// MarshalJSON encodes the date as "YYYY-MM-DD", or null when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD", full RFC 3339 timestamps, and null.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		*d = Date{Time: t}
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return ErrInvalidDate
	}
	*d = Today(t.UTC())
	return nil
}

func (s Subscription) Validate() error {
	if len(strings.TrimSpace(s.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(s.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !s.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !s.Type.Valid() {
		return ErrInvalidType
	}
	if !s.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if err := s.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if !s.EndDate.IsZero() && !s.EndDate.After(s.StartDate.Time) {
		return ErrEndBeforeStart
	}
	return nil
}

func (d Debtor) Validate() error {
	if len(strings.TrimSpace(d.Name)) == 0 {
		return errors.New("empty debtor name")
	}
	if len(d.Name) > 100 {
		return errors.New("debtor name too long (max 100 characters)")
	}
	return nil
}

func (d Debt) Validate() error {
	if len(strings.TrimSpace(d.Description)) == 0 {
		return ErrEmptyDescription
	}
	if !d.TotalAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if d.Mode == nil {
		return errors.New("missing payment mode")
	}
	return d.Mode.Validate()
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	return t.Date.Validate()
}
