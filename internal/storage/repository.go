// Package storage is the offline layer: entity snapshots for warm starts
// and an outbox for mutations made while the backend is unreachable.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned when an entity has never been snapshotted.
var ErrNoSnapshot = errors.New("no snapshot for entity")

// Entity names used as snapshot keys and outbox routing.
const (
	EntitySubscriptions = "subscriptions"
	EntityTransactions  = "transactions"
	EntityDebtors       = "debtors"
	EntityDebts         = "debts"
	EntityAccounts      = "accounts"
	EntityCategories    = "categories"
	EntityPayments      = "payments"
)

// Outbox operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// OutboxEntry is one remote mutation waiting to be replayed against the
// backend.
type OutboxEntry struct {
	ID        string
	Entity    string
	Op        string
	Payload   json.RawMessage
	Attempts  int
	CreatedAt time.Time
}

// NewOutboxEntry builds an entry with a fresh id. The payload must be the
// backend's wire shape for the operation.
func NewOutboxEntry(entity, op string, payload any) (OutboxEntry, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutboxEntry{}, fmt.Errorf("marshal outbox payload: %w", err)
	}
	return OutboxEntry{
		ID:        uuid.NewString(),
		Entity:    entity,
		Op:        op,
		Payload:   body,
		CreatedAt: time.Now().UTC(),
	}, nil
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveSnapshot stores the current collection for an entity, replacing any
// previous snapshot.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, entity string, collection any) error {
	payload, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("marshal %s snapshot: %w", entity, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshots (entity, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (entity) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		entity, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save %s snapshot: %w", entity, err)
	}

	slog.DebugContext(ctx, "Snapshot saved", "entity", entity, "bytes", len(payload))
	return nil
}

// LoadSnapshot decodes the stored collection for an entity into dest.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context, entity string, dest any) error {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE entity = ?`, entity).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoSnapshot
	}
	if err != nil {
		return fmt.Errorf("load %s snapshot: %w", entity, err)
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return fmt.Errorf("decode %s snapshot: %w", entity, err)
	}
	return nil
}

// SnapshotAge returns when an entity was last snapshotted.
func (r *SQLiteRepository) SnapshotAge(ctx context.Context, entity string) (time.Time, error) {
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT updated_at FROM snapshots WHERE entity = ?`, entity).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("snapshot age for %s: %w", entity, err)
	}
	return updatedAt, nil
}

// Enqueue appends a mutation to the outbox.
func (r *SQLiteRepository) Enqueue(ctx context.Context, entry OutboxEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO outbox (id, entity, op, payload, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Entity, entry.Op, string(entry.Payload), entry.Attempts, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("enqueue outbox entry: %w", err)
	}

	slog.InfoContext(ctx, "Mutation queued for sync",
		"id", entry.ID,
		"entity", entry.Entity,
		"op", entry.Op)
	return nil
}

// Pending returns the oldest queued mutations, oldest first.
func (r *SQLiteRepository) Pending(ctx context.Context, limit int) ([]OutboxEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, entity, op, payload, attempts, created_at
		FROM outbox ORDER BY created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending outbox entries: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		var payload string
		if err := rows.Scan(&e.ID, &e.Entity, &e.Op, &payload, &e.Attempts, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		e.Payload = json.RawMessage(payload)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns one outbox entry by id.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (OutboxEntry, error) {
	var e OutboxEntry
	var payload string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, entity, op, payload, attempts, created_at
		FROM outbox WHERE id = ?`, id).Scan(&e.ID, &e.Entity, &e.Op, &payload, &e.Attempts, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return OutboxEntry{}, fmt.Errorf("outbox entry %s not found", id)
	}
	if err != nil {
		return OutboxEntry{}, fmt.Errorf("get outbox entry: %w", err)
	}
	e.Payload = json.RawMessage(payload)
	return e, nil
}

// MarkDone removes a replayed entry.
func (r *SQLiteRepository) MarkDone(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM outbox WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark outbox entry done: %w", err)
	}
	return nil
}

// MarkFailed bumps the attempt counter so repeatedly failing entries can
// be spotted.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE outbox SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark outbox entry failed: %w", err)
	}
	return nil
}
