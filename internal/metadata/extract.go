// Package metadata pulls the well description out of the lines a report
// carries above its table.
package metadata

import (
	"strings"

	"flowback/internal/parser"
	"flowback/pkg/records"
)

// DefaultLookahead is the number of leading lines scanned when the caller
// passes a non-positive lookahead.
const DefaultLookahead = 10

type field int

const (
	wellName field = iota
	wellID
	formation
)

var keys = map[string]field{
	"well name":              wellName,
	"unique well id":         wellID,
	"unique well identifier": wellID,
	"uwi":                    wellID,
	"formation":              formation,
}

// Extract scans at most lookahead lines for "key, value" (comma or tab
// separated) and "key: value" pairs. Keys match case-insensitively after
// trimming. A later match overwrites an earlier one. Fields that are never
// found stay empty.
func Extract(lines []string, lookahead int) records.Metadata {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	if len(lines) > lookahead {
		lines = lines[:lookahead]
	}

	var m records.Metadata
	for _, line := range lines {
		k, v, ok := pair(line)
		if !ok {
			continue
		}
		f, known := keys[strings.ToLower(k)]
		if !known {
			continue
		}
		switch f {
		case wellName:
			m.WellName = v
		case wellID:
			m.WellID = v
		case formation:
			m.Formation = v
		}
	}
	return m
}

// pair splits one line into a trimmed key and value.
func pair(line string) (key, value string, ok bool) {
	if cells := parser.SplitLine(line); len(cells) > 1 {
		return strings.TrimSpace(cells[0]), strings.TrimSpace(cells[1]), true
	}
	k, v, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(k), strings.TrimSpace(v), true
}
