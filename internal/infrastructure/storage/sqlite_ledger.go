package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"QuotePress/internal/domain"
	"QuotePress/internal/ports"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const processedTable = "processed_items"

// SQLiteLedger persists processed records into an SQLite table.
type SQLiteLedger struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.Ledger = (*SQLiteLedger)(nil)

// OpenSQLiteLedger opens (or creates) the database and applies the schema.
func OpenSQLiteLedger(ctx context.Context, dsn string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	db.SetMaxOpenConns(1)

	l := NewSQLiteLedger(db)
	if err := l.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// NewSQLiteLedger wires an already opened database.
func NewSQLiteLedger(db *sql.DB) *SQLiteLedger {
	return &SQLiteLedger{db: db, now: time.Now}
}

// Close releases the database handle.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

func (l *SQLiteLedger) migrate(ctx context.Context) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		stmt, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := l.db.ExecContext(ctx, string(stmt)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// Load returns every record in insertion order.
func (l *SQLiteLedger) Load(ctx context.Context) ([]domain.ProcessedRecord, error) {
	query, args, err := sq.Select("item_id", "processed_at").
		From(processedTable).
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query processed: %w", err)
	}

	var records []domain.ProcessedRecord
	for rows.Next() {
		var id, stamp string
		if err := rows.Scan(&id, &stamp); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec := domain.ProcessedRecord{ID: id}
		if ts, err := time.Parse(time.RFC3339, stamp); err == nil {
			rec.ProcessedAt = ts
		}
		records = append(records, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return records, nil
}

// Append inserts id; a second insert of the same id is ignored.
func (l *SQLiteLedger) Append(ctx context.Context, id string) error {
	query, args, err := sq.Insert(processedTable).
		Options("OR IGNORE").
		Columns("item_id", "processed_at").
		Values(id, l.now().UTC().Format(time.RFC3339)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert processed: %w", err)
	}
	return nil
}
