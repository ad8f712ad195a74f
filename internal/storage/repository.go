// Package storage persists the ledger as a single SQLite-backed snapshot
// record, rewritten after every mutation and read once at startup.
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

	"quantofalta/internal/ledger"

	_ "modernc.org/sqlite"
)

// snapshotRowID is the only row of ledger_snapshots.
const snapshotRowID = 1

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

// LoadSnapshot reads and validates the persisted ledger. A missing row yields
// the default ledger; a structurally broken payload is logged and replaced by
// the default ledger rather than failing startup.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context) (*ledger.Ledger, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM ledger_snapshots WHERE id = ?`, snapshotRowID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		slog.InfoContext(ctx, "No ledger snapshot found, starting from default")
		return ledger.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	l, dropped, err := DecodeSnapshot(payload)
	if err != nil {
		slog.WarnContext(ctx, "Malformed ledger snapshot, falling back to default",
			"error", err, "payload_bytes", len(payload))
		return ledger.Default(), nil
	}
	if dropped > 0 {
		slog.WarnContext(ctx, "Dropped invalid records while loading snapshot",
			"dropped", dropped)
	}
	return l, nil
}

// SaveSnapshot serializes the ledger and rewrites the single snapshot row.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, l *ledger.Ledger) error {
	payload, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO ledger_snapshots (id, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		snapshotRowID, string(payload))
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}

// DecodeSnapshot parses a snapshot payload and normalizes it, reporting how
// many invalid records were dropped. The stored blob is never trusted as-is.
func DecodeSnapshot(payload []byte) (*ledger.Ledger, int, error) {
	var l ledger.Ledger
	if err := json.Unmarshal(payload, &l); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot: %w", err)
	}
	dropped := l.Normalize()
	return &l, dropped, nil
}
