package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func validSubscription() Subscription {
	return Subscription{
		Description:     "Streaming",
		Amount:          decimal.NewFromInt(30),
		Type:            Despesa,
		Frequency:       Monthly,
		StartDate:       NewDate(2024, 1, 1),
		NextPaymentDate: NewDate(2024, 2, 1),
		IsActive:        true,
	}
}

func TestSubscriptionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Subscription)
		wantErr error
	}{
		{name: "valid", mutate: func(*Subscription) {}},
		{
			name:    "empty description",
			mutate:  func(s *Subscription) { s.Description = "  " },
			wantErr: ErrEmptyDescription,
		},
		{
			name:    "zero amount",
			mutate:  func(s *Subscription) { s.Amount = decimal.Zero },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			mutate:  func(s *Subscription) { s.Amount = decimal.NewFromInt(-10) },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unknown type",
			mutate:  func(s *Subscription) { s.Type = "OUTRO" },
			wantErr: ErrInvalidType,
		},
		{
			name:    "unknown frequency",
			mutate:  func(s *Subscription) { s.Frequency = "HOURLY" },
			wantErr: ErrInvalidFrequency,
		},
		{
			name:    "end date before start",
			mutate:  func(s *Subscription) { s.EndDate = NewDate(2023, 12, 31) },
			wantErr: ErrEndBeforeStart,
		},
		{
			name:    "end date equal to start",
			mutate:  func(s *Subscription) { s.EndDate = NewDate(2024, 1, 1) },
			wantErr: ErrEndBeforeStart,
		},
		{
			name:   "end date after start is fine",
			mutate: func(s *Subscription) { s.EndDate = NewDate(2024, 6, 1) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSubscription()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDateAddMonthsClampsDay(t *testing.T) {
	tests := []struct {
		name  string
		start Date
		n     int
		want  Date
	}{
		{"plain step", NewDate(2024, 1, 15), 1, NewDate(2024, 2, 15)},
		{"jan 31 to leap february", NewDate(2024, 1, 31), 1, NewDate(2024, 2, 29)},
		{"jan 31 to non-leap february", NewDate(2023, 1, 31), 1, NewDate(2023, 2, 28)},
		{"jan 31 two steps keeps day 31", NewDate(2024, 1, 31), 2, NewDate(2024, 3, 31)},
		{"year rollover", NewDate(2024, 11, 30), 3, NewDate(2025, 2, 28)},
		{"may 31 to june 30", NewDate(2024, 5, 31), 1, NewDate(2024, 6, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.start.AddMonths(tt.n); !got.Equal(tt.want.Time) {
				t.Errorf("AddMonths(%d) = %s, want %s", tt.n, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestPaymentModeValidate(t *testing.T) {
	tests := []struct {
		name    string
		mode    PaymentMode
		wantErr bool
	}{
		{name: "one-off", mode: OneOff{DueDate: NewDate(2024, 3, 1)}},
		{name: "one-off missing date", mode: OneOff{}, wantErr: true},
		{name: "recurring", mode: Recurring{Frequency: Weekly}},
		{name: "recurring bad frequency", mode: Recurring{Frequency: "FORTNIGHTLY"}, wantErr: true},
		{name: "installment plan", mode: InstallmentPlan{Count: 12, Frequency: InstallmentMonthly, FirstDate: NewDate(2024, 3, 1)}},
		{name: "installment count too low", mode: InstallmentPlan{Count: 0, Frequency: InstallmentMonthly, FirstDate: NewDate(2024, 3, 1)}, wantErr: true},
		{name: "installment count too high", mode: InstallmentPlan{Count: 49, Frequency: InstallmentMonthly, FirstDate: NewDate(2024, 3, 1)}, wantErr: true},
		{name: "partial payment", mode: PartialPayment{DebtID: 7}},
		{name: "partial payment without debt", mode: PartialPayment{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mode.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, 2, 29)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(b) != `"2024-02-29"` {
		t.Fatalf("MarshalJSON = %s", b)
	}

	var back Date
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("round trip = %v, want %v", back, d)
	}

	var fromTimestamp Date
	if err := fromTimestamp.UnmarshalJSON([]byte(`"2024-02-29T15:04:05Z"`)); err != nil {
		t.Fatalf("UnmarshalJSON timestamp: %v", err)
	}
	if !fromTimestamp.Equal(d.Time) {
		t.Errorf("timestamp parse = %v, want %v", fromTimestamp, d)
	}

	var null Date
	if err := null.UnmarshalJSON([]byte(`null`)); err != nil {
		t.Fatalf("UnmarshalJSON null: %v", err)
	}
	if !null.IsZero() {
		t.Errorf("null should decode to zero date")
	}
}
