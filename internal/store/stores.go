package store

import (
	"context"
	"fmt"
	"log/slog"

	"carteira/internal/core"

	"golang.org/x/sync/errgroup"
)

// Backend is the slice of the API client the stores need to fill
// themselves.
type Backend interface {
	ListSubscriptions(ctx context.Context) ([]core.Subscription, error)
	ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error)
	ListDebtors(ctx context.Context) ([]core.Debtor, error)
	ListDebts(ctx context.Context, debtorID int64) ([]core.Debt, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
}

// Stores bundles one cache per entity type.
type Stores struct {
	Subscriptions *Store[core.Subscription]
	Transactions  *Store[core.Transaction]
	Debtors       *Store[core.Debtor]
	Debts         *Store[core.Debt]
	Accounts      *Store[core.Account]
	Categories    *Store[core.Category]
}

func NewStores() *Stores {
	return &Stores{
		Subscriptions: New[core.Subscription](),
		Transactions:  New[core.Transaction](),
		Debtors:       New[core.Debtor](),
		Debts:         New[core.Debt](),
		Accounts:      New[core.Account](),
		Categories:    New[core.Category](),
	}
}

// RefreshAll refreshes every cache from the backend. Caches are
// independent, so the fetches run concurrently; the first failure wins
// and cancels the rest.
func (s *Stores) RefreshAll(ctx context.Context, backend Backend) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.Subscriptions.Refresh(ctx, backend.ListSubscriptions); err != nil {
			return fmt.Errorf("refresh subscriptions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := s.Transactions.Refresh(ctx, func(ctx context.Context) ([]core.Transaction, error) {
			return backend.ListTransactions(ctx, 0, 0)
		})
		if err != nil {
			return fmt.Errorf("refresh transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.Debtors.Refresh(ctx, backend.ListDebtors); err != nil {
			return fmt.Errorf("refresh debtors: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := s.Debts.Refresh(ctx, func(ctx context.Context) ([]core.Debt, error) {
			return backend.ListDebts(ctx, 0)
		})
		if err != nil {
			return fmt.Errorf("refresh debts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.Accounts.Refresh(ctx, backend.ListAccounts); err != nil {
			return fmt.Errorf("refresh accounts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.Categories.Refresh(ctx, backend.ListCategories); err != nil {
			return fmt.Errorf("refresh categories: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Caches refreshed",
		"subscriptions", s.Subscriptions.Len(),
		"transactions", s.Transactions.Len(),
		"debtors", s.Debtors.Len(),
		"debts", s.Debts.Len(),
		"accounts", s.Accounts.Len(),
		"categories", s.Categories.Len())
	return nil
}
