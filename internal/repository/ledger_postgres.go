// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-clock-bot/internal/ledger"
	"telegram-clock-bot/internal/model"
)

var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var ledgerColumns = []string{"id", "name", "action", "recorded_at", "zone", "created_at"}

// PostgresLedger stores ledger entries in PostgreSQL.
type PostgresLedger struct {
	pool *pgxpool.Pool
}

var (
	_ ledger.Recorder = (*PostgresLedger)(nil)
	_ ledger.Lister   = (*PostgresLedger)(nil)
)

// NewPostgresLedger creates a new PostgresLedger instance.
func NewPostgresLedger(pool *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

// MigrateLedger creates the ledger table if it does not exist.
func MigrateLedger(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_entries (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			action VARCHAR(50) NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			zone VARCHAR(64) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_ledger_entries_name_time ON ledger_entries(name, recorded_at DESC);
		CREATE INDEX IF NOT EXISTS idx_ledger_entries_time ON ledger_entries(recorded_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to create ledger_entries table: %w", err)
	}
	return nil
}

// Record inserts one entry.
func (r *PostgresLedger) Record(ctx context.Context, e ledger.Entry) error {
	query, args, err := psq.Insert("ledger_entries").
		Columns("name", "action", "recorded_at", "zone").
		Values(e.Name, e.Action, e.Timestamp, e.Timestamp.Location().String()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build ledger insert: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

// List returns entries newest first, optionally filtered by name.
func (r *PostgresLedger) List(ctx context.Context, f ledger.Filter) ([]ledger.Entry, error) {
	qb := psq.Select(ledgerColumns...).From("ledger_entries")
	if f.Name != "" {
		qb = qb.Where(sq.Eq{"name": f.Name})
	}
	qb = qb.OrderBy("recorded_at DESC", "id DESC").Limit(uint64(f.EffectiveLimit()))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]ledger.Entry, 0, f.EffectiveLimit())
	for rows.Next() {
		var m model.LedgerEntry
		if err := rows.Scan(&m.ID, &m.Name, &m.Action, &m.RecordedAt, &m.Zone, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, toEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}

// toEntry converts a stored row back to an entry, restoring the zone the
// timestamp was captured in when it is a loadable location.
func toEntry(m model.LedgerEntry) ledger.Entry {
	ts := m.RecordedAt
	if m.Zone != "" {
		if loc, err := time.LoadLocation(m.Zone); err == nil {
			ts = ts.In(loc)
		}
	}
	return ledger.Entry{Name: m.Name, Action: m.Action, Timestamp: ts}
}
