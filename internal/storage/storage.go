// Package storage holds the persistent dataset contract and the backend
// registry. Backends register a Factory under a kind in their init function;
// callers import storage/all and stay backend-agnostic.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"flowback/pkg/records"
)

// ErrNotFound is returned by Store.Load when the dataset does not exist yet.
var ErrNotFound = errors.New("dataset not found")

// Store persists the dataset. Replace swaps the whole dataset atomically: a
// reader sees either the previous rows or the new ones, never a mix.
type Store interface {
	Load(ctx context.Context) ([]records.Record, error)
	Replace(ctx context.Context, columns []string, rows []records.Record) error
	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	Kind  string
	DSN   string
	Table string
}

// Factory opens a Store for cfg.
type Factory func(ctx context.Context, cfg Config) (Store, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Registering a kind twice
// replaces the previous factory.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens the Store registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Store, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Rows renders records positionally for columns. Blank values become nil
// (SQL NULL) when nullBlank is set.
func Rows(columns []string, recs []records.Record, nullBlank bool) [][]any {
	out := make([][]any, len(recs))
	for i, r := range recs {
		row := make([]any, len(columns))
		for j, c := range columns {
			v := r[c]
			if v == "" && nullBlank {
				row[j] = nil
				continue
			}
			row[j] = v
		}
		out[i] = row
	}
	return out
}
