package worker

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"carteira/internal/amqp"
	"carteira/internal/core"
	"carteira/internal/storage"
	"carteira/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushRecord struct {
	entity  string
	op      string
	payload string
}

type fakePusher struct {
	pushes   []pushRecord
	failWith map[string]error // keyed by entity
}

func (f *fakePusher) Push(_ context.Context, entity, op string, payload json.RawMessage) error {
	if err := f.failWith[entity]; err != nil {
		return err
	}
	f.pushes = append(f.pushes, pushRecord{entity: entity, op: op, payload: string(payload)})
	return nil
}

func newTestWorker(t *testing.T, pusher *fakePusher) (*SyncWorker, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "carteira.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return NewSyncWorker(repo, pusher, 10), repo
}

func enqueue(t *testing.T, repo *storage.SQLiteRepository, entity, op string, payload any) storage.OutboxEntry {
	t.Helper()
	entry, err := storage.NewOutboxEntry(entity, op, payload)
	require.NoError(t, err)
	require.NoError(t, repo.Enqueue(context.Background(), entry))
	return entry
}

func TestDrainReplaysAndClears(t *testing.T) {
	pusher := &fakePusher{}
	w, repo := newTestWorker(t, pusher)
	ctx := context.Background()

	enqueue(t, repo, storage.EntityDebtors, storage.OpCreate, map[string]string{"name": "Ana"})
	enqueue(t, repo, storage.EntityDebts, storage.OpDelete, map[string]int{"id": 4})

	count, err := w.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, pusher.pushes, 2)
	assert.Equal(t, "debtors", pusher.pushes[0].entity)
	assert.Equal(t, "create", pusher.pushes[0].op)
	assert.JSONEq(t, `{"name":"Ana"}`, pusher.pushes[0].payload)

	pending, err := repo.Pending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDrainKeepsFailedEntries(t *testing.T) {
	pusher := &fakePusher{failWith: map[string]error{storage.EntityDebts: errors.New("backend down")}}
	w, repo := newTestWorker(t, pusher)
	ctx := context.Background()

	enqueue(t, repo, storage.EntityDebts, storage.OpCreate, map[string]string{"description": "Loan"})
	enqueue(t, repo, storage.EntityDebtors, storage.OpCreate, map[string]string{"name": "Ana"})

	count, err := w.Drain(ctx)
	require.Error(t, err, "second pass sees only the failing entry and must stop")
	assert.Equal(t, 1, count, "the healthy entry still syncs")

	pending, err := repo.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, storage.EntityDebts, pending[0].Entity)
	// One failed attempt per drain pass: the mixed batch and the retry-only batch.
	assert.Equal(t, 2, pending[0].Attempts)
}

func TestDrainEmptyOutbox(t *testing.T) {
	w, _ := newTestWorker(t, &fakePusher{})
	count, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHandleChangeMessage(t *testing.T) {
	pusher := &fakePusher{}
	w, repo := newTestWorker(t, pusher)
	ctx := context.Background()

	entry := enqueue(t, repo, storage.EntityTransactions, storage.OpCreate, map[string]string{"description": "Mercado"})

	msg := amqp.NewChangeMessage(storage.EntityTransactions, storage.OpCreate, entry.ID)
	require.NoError(t, w.HandleChangeMessage(ctx, msg))
	require.Len(t, pusher.pushes, 1)

	// Drained entries referenced again are a no-op, not an error.
	require.NoError(t, w.HandleChangeMessage(ctx, msg))
	assert.Len(t, pusher.pushes, 1)
}

type snapshotBackend struct{}

func (snapshotBackend) ListSubscriptions(context.Context) ([]core.Subscription, error) {
	return []core.Subscription{{ID: 1, Description: "Gym", Amount: decimal.NewFromInt(90), Type: core.Despesa, Frequency: core.Monthly, IsActive: true}}, nil
}
func (snapshotBackend) ListTransactions(context.Context, int, int) ([]core.Transaction, error) {
	return []core.Transaction{{ID: 7, Description: "Mercado", Amount: decimal.NewFromInt(120), Type: core.Despesa, Date: core.NewDate(2024, 6, 1)}}, nil
}
func (snapshotBackend) ListDebtors(context.Context) ([]core.Debtor, error) {
	return []core.Debtor{{ID: 2, Name: "Ana"}}, nil
}
func (snapshotBackend) ListDebts(context.Context, int64) ([]core.Debt, error) { return nil, nil }
func (snapshotBackend) ListAccounts(context.Context) ([]core.Account, error) {
	return []core.Account{{ID: 1, Name: "Checking", Balance: decimal.NewFromInt(500)}}, nil
}
func (snapshotBackend) ListCategories(context.Context) ([]core.Category, error) {
	return []core.Category{{ID: 3, Name: "Mercado", Type: core.Despesa}}, nil
}

func TestRefreshAndSnapshotThenSeed(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "carteira.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	ctx := context.Background()

	stores := store.NewStores()
	require.NoError(t, RefreshAndSnapshot(ctx, stores, snapshotBackend{}, repo))

	// A fresh process seeds its caches from what the last one saved.
	fresh := store.NewStores()
	SeedStores(ctx, repo, fresh)

	assert.Equal(t, 1, fresh.Subscriptions.Len())
	assert.Equal(t, 1, fresh.Transactions.Len())
	assert.Equal(t, 1, fresh.Debtors.Len())
	assert.Equal(t, 1, fresh.Accounts.Len())
	assert.Equal(t, 1, fresh.Categories.Len())

	sub, ok := fresh.Subscriptions.Find(func(s core.Subscription) bool { return s.ID == 1 })
	require.True(t, ok)
	assert.Equal(t, "Gym", sub.Description)
	assert.True(t, sub.Amount.Equal(decimal.NewFromInt(90)))
}

func TestSeedStoresColdStart(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "carteira.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	stores := store.NewStores()
	SeedStores(context.Background(), repo, stores) // must not panic or error

	for i, n := range []int{stores.Subscriptions.Len(), stores.Transactions.Len(), stores.Debtors.Len()} {
		if n != 0 {
			t.Errorf("store %d should be empty on cold start, got %d", i, n)
		}
	}
}
