// Package sqlite stores the dataset in a SQLite table through database/sql
// and the pure-Go modernc driver. Replace drops and recreates the table inside
// one transaction, so readers see the old or the new dataset, never both.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"flowback/internal/ddl"
	"flowback/internal/storage"
	"flowback/pkg/records"
)

const insertBatch = 500

// Store is the sqlite storage backend.
type Store struct {
	db    *sql.DB
	table string
}

// Open connects to dsn (a file path or "file:" URI) and pings it.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("sqlite: table must not be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Store{db: db, table: table}, nil
}

// open is a test hook.
var open = Open

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Store, error) {
		return open(ctx, cfg.DSN, cfg.Table)
	})
}

// Load implements storage.Store. A missing table yields storage.ErrNotFound.
func (s *Store) Load(ctx context.Context) ([]records.Record, error) {
	exists, err := s.tableExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("sqlite table %s: %w", s.table, storage.ErrNotFound)
	}

	q := fmt.Sprintf("SELECT * FROM %s ORDER BY %s", ddl.QuoteFQN(s.table), ddl.QuoteIdent(ddl.OrderColumn))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlite: columns: %w", err)
	}
	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	var out []records.Record
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		r := make(records.Record, len(cols)-1)
		for i, c := range cols {
			if c == ddl.OrderColumn {
				continue
			}
			r[c] = vals[i].String
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}
	return out, nil
}

func (s *Store) tableExists(ctx context.Context) (bool, error) {
	name := s.table
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: table lookup: %w", err)
	}
	return n > 0, nil
}

// Replace implements storage.Store.
func (s *Store) Replace(ctx context.Context, columns []string, rows []records.Record) error {
	create, err := ddl.BuildCreateTableSQL(ddl.DatasetTable(s.table, columns))
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, ddl.BuildDropTableSQL(s.table)); err != nil {
		return fmt.Errorf("sqlite: drop: %w", err)
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("sqlite: create: %w", err)
	}

	all := append([]string{ddl.OrderColumn}, columns...)
	stmt, err := tx.PrepareContext(ctx, insertSQL(s.table, all))
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	copyFn := func(ctx context.Context, _ []string, batch [][]any) (int64, error) {
		var n int64
		for _, row := range batch {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				return n, fmt.Errorf("sqlite: insert: %w", err)
			}
			n++
		}
		return n, nil
	}
	if _, err := storage.CopyBatches(ctx, all, orderedRows(columns, rows), insertBatch, copyFn); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Close implements storage.Store.
func (s *Store) Close() error { return s.db.Close() }

func insertSQL(table string, columns []string) string {
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", ddl.QuoteFQN(table), ddl.QuoteList(columns), ph)
}

// orderedRows prefixes each positional row with its 1-based order.
func orderedRows(columns []string, recs []records.Record) [][]any {
	rows := storage.Rows(columns, recs, false)
	for i, r := range rows {
		rows[i] = append([]any{int64(i + 1)}, r...)
	}
	return rows
}
