package storage

import (
	"context"
	"path/filepath"
	"testing"

	"carteira/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "carteira.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSnapshotRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	subs := []core.Subscription{
		{
			ID:              1,
			Description:     "Streaming",
			Amount:          decimal.RequireFromString("29.9"),
			Type:            core.Despesa,
			Frequency:       core.Monthly,
			StartDate:       core.NewDate(2024, 1, 1),
			IsActive:        true,
			NextPaymentDate: core.NewDate(2024, 7, 1),
		},
	}
	require.NoError(t, repo.SaveSnapshot(ctx, EntitySubscriptions, subs))

	var loaded []core.Subscription
	require.NoError(t, repo.LoadSnapshot(ctx, EntitySubscriptions, &loaded))
	require.Len(t, loaded, 1)
	assert.Equal(t, "Streaming", loaded[0].Description)
	assert.True(t, loaded[0].Amount.Equal(subs[0].Amount))
	assert.Equal(t, core.NewDate(2024, 7, 1), loaded[0].NextPaymentDate)

	// Overwrite replaces, not appends.
	require.NoError(t, repo.SaveSnapshot(ctx, EntitySubscriptions, []core.Subscription{}))
	loaded = nil
	require.NoError(t, repo.LoadSnapshot(ctx, EntitySubscriptions, &loaded))
	assert.Empty(t, loaded)
}

func TestLoadSnapshotMissing(t *testing.T) {
	repo := newTestRepo(t)

	var debtors []core.Debtor
	err := repo.LoadSnapshot(context.Background(), EntityDebtors, &debtors)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	_, err = repo.SnapshotAge(context.Background(), EntityDebtors)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestOutboxQueueOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := NewOutboxEntry(EntityDebts, OpCreate, map[string]any{"description": "first"})
	require.NoError(t, err)
	second, err := NewOutboxEntry(EntityDebts, OpDelete, map[string]any{"id": 2})
	require.NoError(t, err)
	second.CreatedAt = first.CreatedAt.Add(1) // deterministic ordering

	require.NoError(t, repo.Enqueue(ctx, first))
	require.NoError(t, repo.Enqueue(ctx, second))

	pending, err := repo.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, OpCreate, pending[0].Op)
	assert.JSONEq(t, `{"description":"first"}`, string(pending[0].Payload))

	require.NoError(t, repo.MarkDone(ctx, first.ID))
	pending, err = repo.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}

func TestOutboxMarkFailedBumpsAttempts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	entry, err := NewOutboxEntry(EntityDebtors, OpCreate, map[string]any{"name": "Ana"})
	require.NoError(t, err)
	require.NoError(t, repo.Enqueue(ctx, entry))

	require.NoError(t, repo.MarkFailed(ctx, entry.ID))
	require.NoError(t, repo.MarkFailed(ctx, entry.ID))

	pending, err := repo.Pending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Attempts)
}

func TestPendingLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		entry, err := NewOutboxEntry(EntityTransactions, OpCreate, map[string]int{"i": i})
		require.NoError(t, err)
		require.NoError(t, repo.Enqueue(ctx, entry))
	}

	pending, err := repo.Pending(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}
