package api

import (
	"context"
	"fmt"
	"net/http"

	"carteira/internal/core"

	"github.com/shopspring/decimal"
)

// ListSubscriptions fetches every subscription for the authenticated user.
func (c *Client) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	var dtos []subscriptionDTO
	if err := c.do(ctx, http.MethodGet, "/subscriptions", nil, &dtos); err != nil {
		return nil, err
	}
	subs := make([]core.Subscription, len(dtos))
	for i, d := range dtos {
		subs[i] = subscriptionToCore(d)
	}
	return subs, nil
}

func (c *Client) CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error) {
	if err := s.Validate(); err != nil {
		return core.Subscription{}, fmt.Errorf("validate subscription: %w", err)
	}
	var out subscriptionDTO
	if err := c.do(ctx, http.MethodPost, "/subscriptions", subscriptionFromCore(s), &out); err != nil {
		return core.Subscription{}, err
	}
	return subscriptionToCore(out), nil
}

func (c *Client) UpdateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error) {
	if err := s.Validate(); err != nil {
		return core.Subscription{}, fmt.Errorf("validate subscription: %w", err)
	}
	var out subscriptionDTO
	if err := c.do(ctx, http.MethodPut, idPath("/subscriptions", s.ID), subscriptionFromCore(s), &out); err != nil {
		return core.Subscription{}, err
	}
	return subscriptionToCore(out), nil
}

// SetSubscriptionActive toggles a subscription without resending the full
// entity.
func (c *Client) SetSubscriptionActive(ctx context.Context, id int64, active bool) error {
	body := map[string]bool{"isActive": active}
	return c.do(ctx, http.MethodPatch, idPath("/subscriptions", id), body, nil)
}

func (c *Client) DeleteSubscription(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/subscriptions", id), nil, nil)
}

// ListTransactions fetches transactions, optionally filtered to a month.
// Pass zero year/month for everything.
func (c *Client) ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error) {
	path := "/transactions"
	if year > 0 && month > 0 {
		path = fmt.Sprintf("/transactions?year=%d&month=%d", year, month)
	}
	var dtos []transactionDTO
	if err := c.do(ctx, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, err
	}
	txs := make([]core.Transaction, len(dtos))
	for i, d := range dtos {
		txs[i] = transactionToCore(d)
	}
	return txs, nil
}

func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	var out transactionDTO
	body := transactionDTO{
		Description: t.Description,
		Amount:      t.Amount,
		Type:        t.Type,
		Date:        t.Date,
		CategoryID:  t.CategoryID,
		AccountID:   t.AccountID,
	}
	if err := c.do(ctx, http.MethodPost, "/transactions", body, &out); err != nil {
		return core.Transaction{}, err
	}
	return transactionToCore(out), nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/transactions", id), nil, nil)
}

func (c *Client) ListDebtors(ctx context.Context) ([]core.Debtor, error) {
	var dtos []debtorDTO
	if err := c.do(ctx, http.MethodGet, "/debtors", nil, &dtos); err != nil {
		return nil, err
	}
	debtors := make([]core.Debtor, len(dtos))
	for i, d := range dtos {
		debtors[i] = debtorToCore(d)
	}
	return debtors, nil
}

func (c *Client) CreateDebtor(ctx context.Context, d core.Debtor) (core.Debtor, error) {
	if err := d.Validate(); err != nil {
		return core.Debtor{}, fmt.Errorf("validate debtor: %w", err)
	}
	var out debtorDTO
	body := debtorDTO{Name: d.Name, Phone: d.Phone, Email: d.Email}
	if err := c.do(ctx, http.MethodPost, "/debtors", body, &out); err != nil {
		return core.Debtor{}, err
	}
	return debtorToCore(out), nil
}

func (c *Client) DeleteDebtor(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/debtors", id), nil, nil)
}

// ListDebts fetches debts, optionally for one debtor (zero means all).
func (c *Client) ListDebts(ctx context.Context, debtorID int64) ([]core.Debt, error) {
	path := "/debts"
	if debtorID > 0 {
		path = fmt.Sprintf("/debts?debtorId=%d", debtorID)
	}
	var dtos []debtDTO
	if err := c.do(ctx, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, err
	}
	debts := make([]core.Debt, len(dtos))
	for i, d := range dtos {
		debts[i] = debtToCore(d)
	}
	return debts, nil
}

func (c *Client) CreateDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, fmt.Errorf("validate debt: %w", err)
	}
	var out debtDTO
	if err := c.do(ctx, http.MethodPost, "/debts", debtFromCore(d), &out); err != nil {
		return core.Debt{}, err
	}
	return debtToCore(out), nil
}

func (c *Client) DeleteDebt(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/debts", id), nil, nil)
}

// MarkInstallmentPaid records the payment of one installment of a debt.
func (c *Client) MarkInstallmentPaid(ctx context.Context, debtID int64, number int, paidDate core.Date) error {
	path := fmt.Sprintf("/debts/%d/installments/%d/pay", debtID, number)
	body := map[string]core.Date{"paidDate": paidDate}
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// CreatePayment registers a partial payment against a debt.
func (c *Client) CreatePayment(ctx context.Context, debtID int64, amount decimal.Decimal, paidDate core.Date) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}
	body := paymentDTO{DebtID: debtID, Amount: amount, PaidDate: paidDate}
	return c.do(ctx, http.MethodPost, "/payments", body, nil)
}

func (c *Client) ListAccounts(ctx context.Context) ([]core.Account, error) {
	var dtos []accountDTO
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, &dtos); err != nil {
		return nil, err
	}
	accounts := make([]core.Account, len(dtos))
	for i, d := range dtos {
		accounts[i] = core.Account{ID: d.ID, Name: d.Name, Balance: d.Balance}
	}
	return accounts, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var dtos []categoryDTO
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &dtos); err != nil {
		return nil, err
	}
	categories := make([]core.Category, len(dtos))
	for i, d := range dtos {
		categories[i] = core.Category{ID: d.ID, Name: d.Name, Type: d.Type}
	}
	return categories, nil
}
