package schema

import "flowback/pkg/records"

// Project returns a batch whose rows carry exactly columns, in that order:
// absent columns are inserted blank and surplus columns are dropped. The
// input is not modified. A nil columns slice means Canonical.
func Project(in records.Batch, columns []string) records.Batch {
	if columns == nil {
		columns = Canonical
	}
	out := records.Batch{
		Columns: append([]string(nil), columns...),
		Rows:    make([]records.Record, 0, len(in.Rows)),
	}
	for _, r := range in.Rows {
		p := make(records.Record, len(columns))
		for _, c := range columns {
			p[c] = r[c]
		}
		out.Rows = append(out.Rows, p)
	}
	return out
}

// Concat projects every batch onto columns and appends the rows in order.
func Concat(columns []string, batches ...records.Batch) records.Batch {
	out := records.Batch{Columns: append([]string(nil), columns...)}
	for _, b := range batches {
		out.Rows = append(out.Rows, Project(b, columns).Rows...)
	}
	return out
}
