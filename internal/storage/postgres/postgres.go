// Package postgres stores the dataset in a Postgres table using pgx v5.
// Replace recreates the table and bulk-loads it with COPY inside a single
// transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"flowback/internal/ddl"
	"flowback/internal/storage"
	"flowback/pkg/records"
)

const copyBatch = 5000

// Store is the postgres storage backend.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

// Open creates a connection pool for dsn. table may be schema-qualified,
// e.g. "public.flowback_dataset".
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("postgres: table must not be empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &Store{pool: pool, table: table}, nil
}

// open is a test hook.
var open = Open

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Store, error) {
		return open(ctx, cfg.DSN, cfg.Table)
	})
}

// Load implements storage.Store. A missing table yields storage.ErrNotFound.
func (s *Store) Load(ctx context.Context) ([]records.Record, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", ddl.QuoteFQN(s.table)).Scan(&exists); err != nil {
		return nil, fmt.Errorf("postgres: table lookup: %w", pgDetail(err))
	}
	if !exists {
		return nil, fmt.Errorf("postgres table %s: %w", s.table, storage.ErrNotFound)
	}

	q := fmt.Sprintf("SELECT * FROM %s ORDER BY %s", ddl.QuoteFQN(s.table), ddl.QuoteIdent(ddl.OrderColumn))
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("postgres: load: %w", pgDetail(err))
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	var out []records.Record
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: values: %w", err)
		}
		r := make(records.Record, len(fds)-1)
		for i, fd := range fds {
			if fd.Name == ddl.OrderColumn {
				continue
			}
			r[fd.Name] = toString(vals[i])
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", pgDetail(err))
	}
	return out, nil
}

// Replace implements storage.Store.
func (s *Store) Replace(ctx context.Context, columns []string, rows []records.Record) error {
	create, err := ddl.BuildCreateTableSQL(ddl.DatasetTable(s.table, columns))
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, ddl.BuildDropTableSQL(s.table)); err != nil {
		return fmt.Errorf("postgres: drop: %w", pgDetail(err))
	}
	if _, err := tx.Exec(ctx, create); err != nil {
		return fmt.Errorf("postgres: create: %w", pgDetail(err))
	}

	ident := splitFQN(s.table)
	all := append([]string{ddl.OrderColumn}, columns...)
	copyFn := func(ctx context.Context, cols []string, batch [][]any) (int64, error) {
		n, err := tx.CopyFrom(ctx, ident, cols, pgx.CopyFromRows(batch))
		if err != nil {
			return n, fmt.Errorf("postgres: copy: %w", pgDetail(err))
		}
		return n, nil
	}
	if _, err := storage.CopyBatches(ctx, all, orderedRows(columns, rows), copyBatch, copyFn); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", pgDetail(err))
	}
	return nil
}

// Close implements storage.Store.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// orderedRows prefixes each positional row with its 1-based order. Blank
// cells are written as NULL.
func orderedRows(columns []string, recs []records.Record) [][]any {
	rows := storage.Rows(columns, recs, true)
	for i, r := range rows {
		rows[i] = append([]any{int64(i + 1)}, r...)
	}
	return rows
}

// splitFQN turns "schema.table" into a pgx.Identifier.
func splitFQN(fqn string) pgx.Identifier {
	var id pgx.Identifier
	for _, p := range strings.Split(fqn, ".") {
		if p = strings.TrimSpace(p); p != "" {
			id = append(id, p)
		}
	}
	return id
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// pgDetail surfaces the server's detail and SQLSTATE when present.
func pgDetail(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w (%s, %s)", err, pgErr.Detail, pgErr.SQLState())
	}
	return err
}
