// Package worker replays offline mutations against the backend and keeps
// the offline snapshots warm.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"carteira/internal/amqp"
	"carteira/internal/core"
	"carteira/internal/storage"
	"carteira/internal/store"
)

// Pusher is the slice of the API client the worker needs.
type Pusher interface {
	Push(ctx context.Context, entity, op string, payload json.RawMessage) error
}

// SyncWorker drains the outbox against the remote backend.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	backend   Pusher
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, backend Pusher, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		backend:   backend,
		batchSize: batchSize,
	}
}

// HandleChangeMessage processes a single change notification from AMQP by
// replaying the referenced outbox entry.
func (w *SyncWorker) HandleChangeMessage(ctx context.Context, msg *amqp.ChangeMessage) error {
	entry, err := w.storage.Get(ctx, msg.OutboxID)
	if err != nil {
		// Entry already drained by a periodic pass; nothing to do.
		slog.WarnContext(ctx, "Change message without outbox entry",
			"outbox_id", msg.OutboxID,
			"entity", msg.Entity)
		return nil
	}
	return w.replay(ctx, entry)
}

// Drain replays queued mutations oldest-first until the outbox is empty
// or a batch fails completely. Returns how many entries were replayed.
func (w *SyncWorker) Drain(ctx context.Context) (int, error) {
	if w.storage == nil || w.backend == nil {
		return 0, fmt.Errorf("worker not properly initialized")
	}

	replayed := 0
	for {
		entries, err := w.storage.Pending(ctx, w.batchSize)
		if err != nil {
			return replayed, fmt.Errorf("list pending mutations: %w", err)
		}
		if len(entries) == 0 {
			return replayed, nil
		}

		progressed := false
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return replayed, err
			}
			if err := w.replay(ctx, entry); err != nil {
				slog.ErrorContext(ctx, "Failed to replay mutation",
					"id", entry.ID,
					"entity", entry.Entity,
					"op", entry.Op,
					"attempts", entry.Attempts,
					"error", err)
				continue
			}
			progressed = true
			replayed++
		}

		// Every entry in the batch failed; stop instead of spinning.
		if !progressed {
			return replayed, fmt.Errorf("no mutation in batch of %d could be replayed", len(entries))
		}
	}
}

func (w *SyncWorker) replay(ctx context.Context, entry storage.OutboxEntry) error {
	if err := w.backend.Push(ctx, entry.Entity, entry.Op, entry.Payload); err != nil {
		if markErr := w.storage.MarkFailed(ctx, entry.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to record replay failure",
				"id", entry.ID, "error", markErr)
		}
		return fmt.Errorf("push %s %s: %w", entry.Op, entry.Entity, err)
	}

	if err := w.storage.MarkDone(ctx, entry.ID); err != nil {
		return fmt.Errorf("mark entry done: %w", err)
	}

	slog.InfoContext(ctx, "Mutation synced",
		"id", entry.ID,
		"entity", entry.Entity,
		"op", entry.Op)
	return nil
}

// RefreshAndSnapshot refreshes every cache from the backend and persists
// the result so the next start can seed offline.
func RefreshAndSnapshot(ctx context.Context, stores *store.Stores, backend store.Backend, repo *storage.SQLiteRepository) error {
	if err := stores.RefreshAll(ctx, backend); err != nil {
		return err
	}
	return SaveSnapshots(ctx, repo, stores)
}

// SaveSnapshots persists the cached collections. Debts are excluded: the
// payment-mode variant has no stable offline encoding, and debts are
// refetched on first contact anyway.
func SaveSnapshots(ctx context.Context, repo *storage.SQLiteRepository, stores *store.Stores) error {
	saves := []struct {
		entity     string
		collection any
	}{
		{storage.EntitySubscriptions, stores.Subscriptions.Snapshot()},
		{storage.EntityTransactions, stores.Transactions.Snapshot()},
		{storage.EntityDebtors, stores.Debtors.Snapshot()},
		{storage.EntityAccounts, stores.Accounts.Snapshot()},
		{storage.EntityCategories, stores.Categories.Snapshot()},
	}
	for _, s := range saves {
		if err := repo.SaveSnapshot(ctx, s.entity, s.collection); err != nil {
			return err
		}
	}
	return nil
}

// SeedStores fills the caches from the last snapshots so the app is
// usable before the first refresh completes. Missing snapshots are fine
// on a cold start.
func SeedStores(ctx context.Context, repo *storage.SQLiteRepository, stores *store.Stores) {
	seed := func(entity string, load func() error) {
		if err := load(); err != nil {
			if err != storage.ErrNoSnapshot {
				slog.WarnContext(ctx, "Failed to seed cache from snapshot",
					"entity", entity, "error", err)
			}
			return
		}
		slog.DebugContext(ctx, "Cache seeded from snapshot", "entity", entity)
	}

	seed(storage.EntitySubscriptions, func() error {
		var items []core.Subscription
		if err := repo.LoadSnapshot(ctx, storage.EntitySubscriptions, &items); err != nil {
			return err
		}
		stores.Subscriptions.Replace(items)
		return nil
	})
	seed(storage.EntityTransactions, func() error {
		var items []core.Transaction
		if err := repo.LoadSnapshot(ctx, storage.EntityTransactions, &items); err != nil {
			return err
		}
		stores.Transactions.Replace(items)
		return nil
	})
	seed(storage.EntityDebtors, func() error {
		var items []core.Debtor
		if err := repo.LoadSnapshot(ctx, storage.EntityDebtors, &items); err != nil {
			return err
		}
		stores.Debtors.Replace(items)
		return nil
	})
	seed(storage.EntityAccounts, func() error {
		var items []core.Account
		if err := repo.LoadSnapshot(ctx, storage.EntityAccounts, &items); err != nil {
			return err
		}
		stores.Accounts.Replace(items)
		return nil
	})
	seed(storage.EntityCategories, func() error {
		var items []core.Category
		if err := repo.LoadSnapshot(ctx, storage.EntityCategories, &items); err != nil {
			return err
		}
		stores.Categories.Replace(items)
		return nil
	})
}
