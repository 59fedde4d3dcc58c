package api

import (
	"errors"

	"carteira/internal/core"

	"github.com/shopspring/decimal"
)

// Wire payload builders for the offline outbox. Entries replayed by Push
// must carry exactly the shape the backend expects, so queuing code goes
// through these instead of marshalling core types directly.

func WireSubscription(s core.Subscription) any {
	return subscriptionFromCore(s)
}

func WireDebt(d core.Debt) any {
	return debtFromCore(d)
}

func WireDebtor(d core.Debtor) any {
	return debtorDTO{ID: d.ID, Name: d.Name, Phone: d.Phone, Email: d.Email}
}

func WireTransaction(t core.Transaction) any {
	return transactionDTO{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        t.Type,
		Date:        t.Date,
		CategoryID:  t.CategoryID,
		AccountID:   t.AccountID,
	}
}

func WirePayment(debtID int64, amount decimal.Decimal, paidDate core.Date) any {
	return paymentDTO{DebtID: debtID, Amount: amount, PaidDate: paidDate}
}

// Unreachable reports whether err is a transport failure rather than a
// backend rejection. Rejections come back as *APIError; anything else
// means the request never got an answer and is worth queuing offline.
func Unreachable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	return !errors.As(err, &apiErr)
}
