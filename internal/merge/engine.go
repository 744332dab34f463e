package merge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"flowback/internal/schema"
	"flowback/internal/storage"
	"flowback/pkg/records"
)

// Engine runs the load → upsert → replace cycle against a Store. It holds
// the advisory lock at LockPath for the whole cycle so two runs over the
// same dataset never interleave.
type Engine struct {
	Store    storage.Store
	LockPath string
	Columns  []string
	Synonyms *schema.Synonyms
	Keyer    Keyer
	// Policy resolves duplicate keys inside the stored dataset and inside
	// the incoming rows. Empty means keep-last.
	Policy string
}

// Run merges incoming into the stored dataset and persists the result.
// A dataset that does not exist yet is treated as empty.
func (e *Engine) Run(ctx context.Context, incoming records.Batch) (Result, error) {
	if e.Store == nil {
		return Result{}, errors.New("merge: no store configured")
	}
	columns := e.Columns
	if columns == nil {
		columns = schema.Canonical
	}

	if e.LockPath != "" {
		unlock, err := storage.Lock(ctx, e.LockPath)
		if err != nil {
			return Result{}, fmt.Errorf("merge: %w", err)
		}
		defer func() {
			if err := unlock(); err != nil {
				log.Printf("merge: unlock %s: %v", e.LockPath, err)
			}
		}()
	}

	existing, err := e.Store.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Printf("merge: no existing dataset, starting empty")
		existing = nil
	case err != nil:
		return Result{}, fmt.Errorf("merge: load dataset: %w", err)
	}
	existing = e.conform(existing, columns)
	in := schema.Project(incoming, columns)

	res := Upsert(existing, in.Rows, e.Keyer, e.Policy)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := e.Store.Replace(ctx, columns, res.Rows); err != nil {
		return Result{}, fmt.Errorf("merge: replace dataset: %w", err)
	}
	log.Printf("merge: retained=%d replaced=%d inserted=%d collapsed=%d total=%d",
		res.Retained, res.Replaced, res.Inserted, res.Collapsed, len(res.Rows))
	return res, nil
}

// conform maps stored rows written under an older column list onto columns.
// Rows whose columns already belong to the list are only projected.
func (e *Engine) conform(rows []records.Record, columns []string) []records.Record {
	if len(rows) == 0 {
		return rows
	}
	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		known[c] = struct{}{}
	}
	seen := map[string]struct{}{}
	var header []string
	drift := false
	for _, r := range rows {
		for c := range r {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			header = append(header, c)
			if _, ok := known[c]; !ok {
				drift = true
			}
		}
	}
	if !drift || e.Synonyms == nil {
		return schema.Project(records.Batch{Rows: rows}, columns).Rows
	}

	// Known columns first so their values win over legacy duplicates.
	sort.SliceStable(header, func(i, j int) bool {
		_, ki := known[header[i]]
		_, kj := known[header[j]]
		if ki != kj {
			return ki
		}
		return header[i] < header[j]
	})
	raw := records.RawBatch{Header: header, Rows: make([][]string, len(rows))}
	for i, r := range rows {
		raw.Rows[i] = r.Values(header)
	}
	m := e.Synonyms.Map(raw)
	if len(m.Unmapped) > 0 {
		log.Printf("merge: dataset columns without a mapping dropped: %v", m.Unmapped)
	}
	return schema.Project(m.Batch, columns).Rows
}
