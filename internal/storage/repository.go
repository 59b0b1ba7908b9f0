// Package storage implements the durable, per-user transaction store on
// SQLite. Each user gets one database file so ledgers are namespaced by
// username.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"budgetledger/internal/core"
	applog "budgetledger/internal/log"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB

	// Mutations are serialized; the access pattern is single-user and
	// low-frequency, so an exclusive writer is enough.
	writeMu sync.Mutex
}

// Open opens (or creates) the ledger database for username under dataDir and
// runs pending migrations. The returned store owns the handle; callers must
// Close it.
func Open(dataDir, username string) (*SQLiteStore, error) {
	if username == "" {
		return nil, fmt.Errorf("open ledger: empty username")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, username+".sqlite")

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

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Add validates t, inserts it and returns the assigned ID. The INTEGER
// PRIMARY KEY column hands out monotonically increasing IDs that are never
// reused while rows exist.
func (s *SQLiteStore) Add(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO budget (date, category, subcategory, amount_cents) VALUES (?, ?, ?, ?)`,
		t.Date.String(), t.Category, t.Subcategory, t.Amount.Cents)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}

	fields := applog.NewFields().
		WithComponent(applog.ComponentStorage).
		WithOperation(applog.OpCreate).
		WithTransaction(id, t.Date.String(), t.Category, t.Subcategory, t.Amount.Cents)
	slog.InfoContext(ctx, "Transaction saved", fields.ToSlice()...)

	return id, nil
}

// Remove deletes the transaction with the given ID.
func (s *SQLiteStore) Remove(ctx context.Context, id int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM budget WHERE transaction_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction removed", "id", id)
	return nil
}

// filterClause renders the optional WHERE clause for f. The date column is
// stored in yyyy/MM/dd form, so ORDER BY date, transaction_id gives the
// ledger ordering key directly.
func filterClause(f core.Filter) (string, []any) {
	switch {
	case f.Category == "":
		return "", nil
	case f.Subcategory == "":
		return " WHERE category = ?", []any{f.Category}
	default:
		return " WHERE category = ? AND subcategory = ?", []any{f.Category, f.Subcategory}
	}
}

// Query returns all matching transactions ordered by (date, id).
func (s *SQLiteStore) Query(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	where, args := filterClause(f)
	rows, err := s.db.QueryContext(ctx,
		`SELECT transaction_id, date, category, subcategory, amount_cents FROM budget`+
			where+` ORDER BY date, transaction_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			dateRaw string
		)
		if err := rows.Scan(&t.ID, &dateRaw, &t.Category, &t.Subcategory, &t.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date, err = core.ParseDate(dateRaw)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", dateRaw, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Aggregate returns the bounding date and amount values over the matching
// set, or core.ErrEmptySet when nothing matches.
func (s *SQLiteStore) Aggregate(ctx context.Context, f core.Filter) (core.Bounds, error) {
	where, args := filterClause(f)
	row := s.db.QueryRowContext(ctx,
		`SELECT MIN(date), MAX(date), MIN(amount_cents), MAX(amount_cents) FROM budget`+where,
		args...)

	var (
		minDate, maxDate   sql.NullString
		minCents, maxCents sql.NullInt64
	)
	if err := row.Scan(&minDate, &maxDate, &minCents, &maxCents); err != nil {
		return core.Bounds{}, fmt.Errorf("aggregate bounds: %w", err)
	}
	// MIN/MAX over zero rows yield NULL.
	if !minDate.Valid || !maxDate.Valid {
		return core.Bounds{}, core.ErrEmptySet
	}

	lo, err := core.ParseDate(minDate.String)
	if err != nil {
		return core.Bounds{}, fmt.Errorf("parse min date %q: %w", minDate.String, err)
	}
	hi, err := core.ParseDate(maxDate.String)
	if err != nil {
		return core.Bounds{}, fmt.Errorf("parse max date %q: %w", maxDate.String, err)
	}

	return core.Bounds{
		MinDate:   lo,
		MaxDate:   hi,
		MinAmount: core.Money{Cents: minCents.Int64},
		MaxAmount: core.Money{Cents: maxCents.Int64},
	}, nil
}
