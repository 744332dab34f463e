package builtin

import (
	"strings"

	"flowback/internal/schema"
	"flowback/pkg/records"
)

// FixUWI canonicalizes the well-segment suffix of a unique well identifier
// so identifiers from different systems compare equal. The first matching
// rule wins:
//
//	".../00" (slash + two digits)  unchanged
//	".../3"  (slash + one digit)   ".../30"
//	".../"                         ".../00"
//	anything else                  ".../00" appended
//
// Blank identifiers pass through unchanged. FixUWI is idempotent.
func FixUWI(id string) string {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return id
	}
	i := strings.LastIndexByte(trimmed, '/')
	if i < 0 {
		return trimmed + "/00"
	}
	switch tail := trimmed[i+1:]; {
	case len(tail) == 2 && isDigit(tail[0]) && isDigit(tail[1]):
		return trimmed
	case len(tail) == 1 && isDigit(tail[0]):
		return trimmed + "0"
	case tail == "":
		return trimmed + "00"
	}
	return trimmed + "/00"
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// CanonicalizeUWI applies FixUWI to Column (default: the canonical unique
// well identifier column).
type CanonicalizeUWI struct {
	Column string
}

// Apply implements transformer.Transformer.
func (t CanonicalizeUWI) Apply(in records.Batch) records.Batch {
	out := in.Clone()
	col := t.Column
	if col == "" {
		col = schema.ColWellID
	}
	name, ok := out.ColumnName(col)
	if !ok {
		return out
	}
	for _, r := range out.Rows {
		r[name] = FixUWI(r[name])
	}
	return out
}
