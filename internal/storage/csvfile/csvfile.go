// Package csvfile stores the dataset as a UTF-8 CSV file with a byte order
// mark, the layout spreadsheet tools open without an import dialog. Writes go
// to a temporary file in the target directory which is synced and renamed
// over the target, so a crash never leaves a half-written dataset.
package csvfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"flowback/internal/storage"
	"flowback/pkg/records"
)

const utf8BOM = "\ufeff"

// Store is the csv storage backend.
type Store struct{ path string }

// New returns a Store for path.
func New(path string) *Store { return &Store{path: path} }

func init() {
	storage.Register("csv", func(_ context.Context, cfg storage.Config) (storage.Store, error) {
		if strings.TrimSpace(cfg.DSN) == "" {
			return nil, fmt.Errorf("csv: DSN (file path) must not be empty")
		}
		return New(cfg.DSN), nil
	})
}

// Load implements storage.Store. A missing file yields storage.ErrNotFound.
func (s *Store) Load(ctx context.Context) ([]records.Record, error) {
	b, err := ReadFile(ctx, s.path)
	if err != nil {
		return nil, err
	}
	return b.Rows, nil
}

// Replace implements storage.Store.
func (s *Store) Replace(ctx context.Context, columns []string, rows []records.Record) error {
	return WriteFile(ctx, s.path, records.Batch{Columns: columns, Rows: rows})
}

// Close implements storage.Store.
func (s *Store) Close() error { return nil }

// ReadFile reads a CSV file with a header row into a batch. Rows shorter or
// longer than the header are padded or cut. A missing file yields
// storage.ErrNotFound.
func ReadFile(ctx context.Context, path string) (records.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return records.Batch{}, fmt.Errorf("%s: %w", path, storage.ErrNotFound)
		}
		return records.Batch{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return records.Batch{}, nil
	}
	if err != nil {
		return records.Batch{}, fmt.Errorf("read header %s: %w", path, err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	b := records.Batch{Columns: header}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return records.Batch{}, fmt.Errorf("read %s line %d: %w", path, line, err)
		}
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return records.Batch{}, err
			}
		}
		b.Rows = append(b.Rows, records.FromValues(header, rec))
	}
	return b, nil
}

// WriteFile atomically replaces path with b rendered as CSV.
func WriteFile(ctx context.Context, path string, b records.Batch) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if _, err = bw.WriteString(utf8BOM); err != nil {
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	w := csv.NewWriter(bw)
	if err = w.Write(b.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range b.Rows {
		if err = w.Write(r.Values(b.Columns)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
