package schema

import (
	"fmt"
	"sort"
	"strings"

	"flowback/pkg/records"
)

// Synonyms is an exact-match lookup from normalized labels to canonical
// column names. Build it with NewSynonyms; the zero value maps nothing.
type Synonyms struct {
	table map[string]string
}

// NewSynonyms builds a Synonyms table for the given canonical column list.
// Every canonical column maps to itself. Keys of extra are normalized; an
// entry whose target is not canonical, or two keys that normalize to the
// same label with different targets, is an error.
func NewSynonyms(canonical []string, extra map[string]string) (*Synonyms, error) {
	known := make(map[string]struct{}, len(canonical))
	table := make(map[string]string, len(canonical)+len(extra))
	origin := make(map[string]string, len(canonical)+len(extra))

	add := func(raw, target string) error {
		key := Normalize(raw)
		if key == "" {
			return fmt.Errorf("synonym %q normalizes to an empty label", raw)
		}
		if prev, ok := table[key]; ok && prev != target {
			return fmt.Errorf("synonyms %q and %q both normalize to %q but map to %q and %q",
				origin[key], raw, key, prev, target)
		}
		table[key] = target
		origin[key] = raw
		return nil
	}

	for _, c := range canonical {
		known[c] = struct{}{}
		if err := add(c, c); err != nil {
			return nil, err
		}
	}

	// Deterministic error reporting.
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		target := extra[k]
		if _, ok := known[target]; !ok {
			return nil, fmt.Errorf("synonym %q targets unknown column %q", k, target)
		}
		if err := add(k, target); err != nil {
			return nil, err
		}
	}
	return &Synonyms{table: table}, nil
}

// Lookup returns the canonical column for a raw label.
func (s *Synonyms) Lookup(label string) (string, bool) {
	if s == nil {
		return "", false
	}
	c, ok := s.table[Normalize(label)]
	return c, ok
}

// Len returns the number of normalized labels in the table.
func (s *Synonyms) Len() int {
	if s == nil {
		return 0
	}
	return len(s.table)
}

// ignoredLabels are dropped before mapping and never reported as unmapped.
var ignoredLabels = map[string]struct{}{
	"":         {},
	"comments": {},
}

// Mapping is the outcome of mapping one file's header.
type Mapping struct {
	Batch records.Batch
	// Unmapped lists raw labels that have no synonym, in header order.
	Unmapped []string
}

// Map renames the columns of raw to canonical names. Labels without a
// synonym are dropped and reported. When several raw columns map to the same
// canonical column the first non-blank value of each row wins. The output
// column order follows the first appearance in the header.
func (s *Synonyms) Map(raw records.RawBatch) Mapping {
	target := make([]string, len(raw.Header)) // "" = dropped
	var (
		columns  []string
		seen     = map[string]struct{}{}
		unmapped []string
	)
	for i, h := range raw.Header {
		if _, skip := ignoredLabels[Normalize(h)]; skip {
			continue
		}
		c, ok := s.Lookup(h)
		if !ok {
			unmapped = append(unmapped, strings.TrimSpace(h))
			continue
		}
		target[i] = c
		if _, dup := seen[c]; !dup {
			seen[c] = struct{}{}
			columns = append(columns, c)
		}
	}

	rows := make([]records.Record, 0, len(raw.Rows))
	for _, cells := range raw.Rows {
		r := make(records.Record, len(columns))
		for i, c := range target {
			if c == "" || i >= len(cells) {
				continue
			}
			v := strings.TrimSpace(cells[i])
			if cur, ok := r[c]; ok && cur != "" {
				continue
			}
			r[c] = v
		}
		rows = append(rows, r)
	}
	return Mapping{
		Batch:    records.Batch{Columns: columns, Rows: rows},
		Unmapped: unmapped,
	}
}
