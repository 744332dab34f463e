// Package records holds the in-memory data model shared by the parsers,
// transformers, merge engine and storage backends.
//
// Values are always strings. A blank value ("") is the single representation
// of a missing cell; numeric stages re-render the numbers they touch back into
// strings so that every stage sees the same shape.
package records

import "strings"

// Record maps a column name to its value.
type Record map[string]string

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Values returns the values of r in the order given by columns. Missing
// columns yield "".
func (r Record) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = r[c]
	}
	return out
}

// FromValues builds a Record from parallel column/value slices. Extra values
// are ignored and missing values are left blank.
func FromValues(columns, values []string) Record {
	r := make(Record, len(columns))
	for i, c := range columns {
		if i < len(values) {
			r[c] = values[i]
		} else {
			r[c] = ""
		}
	}
	return r
}

// Metadata is the per-file well description found in a file's preamble.
type Metadata struct {
	WellName  string `json:"well_name"`
	WellID    string `json:"well_id"`
	Formation string `json:"formation"`
}

// Missing lists the names of the empty metadata fields.
func (m Metadata) Missing() []string {
	var out []string
	if m.WellName == "" {
		out = append(out, "well name")
	}
	if m.WellID == "" {
		out = append(out, "unique well id")
	}
	if m.Formation == "" {
		out = append(out, "formation")
	}
	return out
}

// RawBatch is the parser's view of one input file: the leading lines kept for
// metadata extraction, the raw header labels, and the data rows. Every row has
// exactly len(Header) cells.
type RawBatch struct {
	Source   string
	Preamble []string
	Header   []string
	Rows     [][]string

	// DroppedRows counts data rows skipped because their width did not match
	// the header.
	DroppedRows int
}

// Batch is an ordered record set with an ordered column list.
type Batch struct {
	Columns []string
	Rows    []Record
}

// Len returns the number of rows.
func (b Batch) Len() int { return len(b.Rows) }

// ColumnName resolves column against the batch's column list using
// case-insensitive trimmed equality and returns the name as stored.
func (b Batch) ColumnName(column string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(column))
	for _, c := range b.Columns {
		if strings.ToLower(strings.TrimSpace(c)) == want {
			return c, true
		}
	}
	return "", false
}

// WithRows returns a batch with the same columns and the given rows.
func (b Batch) WithRows(rows []Record) Batch {
	return Batch{Columns: append([]string(nil), b.Columns...), Rows: rows}
}

// Clone deep-copies the batch so later stages may modify the result without
// touching the input.
func (b Batch) Clone() Batch {
	rows := make([]Record, len(b.Rows))
	for i, r := range b.Rows {
		rows[i] = r.Clone()
	}
	return Batch{Columns: append([]string(nil), b.Columns...), Rows: rows}
}
