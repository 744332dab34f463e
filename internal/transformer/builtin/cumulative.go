package builtin

import "flowback/pkg/records"

// CollapseCumulative drops duplicate instrument snapshots: a row whose
// three cumulative columns all equal those of the immediately preceding
// input row. Values compare numerically; a missing value never equals
// anything. The pass is a no-op unless the batch carries all three columns.
type CollapseCumulative struct {
	Columns []string
}

// Apply implements transformer.Transformer.
func (t CollapseCumulative) Apply(in records.Batch) records.Batch {
	cols := resolve(in, t.Columns)
	if len(t.Columns) != 3 || len(cols) != 3 || len(in.Rows) == 0 {
		return in.Clone()
	}
	triples := make([]series, len(cols))
	for i, c := range cols {
		triples[i] = coerce(in.Rows, c)
	}

	rows := make([]records.Record, 0, len(in.Rows))
	rows = append(rows, in.Rows[0].Clone())
	for i := 1; i < len(in.Rows); i++ {
		if !sameAsPrevious(triples, i) {
			rows = append(rows, in.Rows[i].Clone())
		}
	}
	return in.WithRows(rows)
}

func sameAsPrevious(cols []series, i int) bool {
	for _, s := range cols {
		if !s.known[i] || !s.known[i-1] || s.vals[i] != s.vals[i-1] {
			return false
		}
	}
	return true
}
