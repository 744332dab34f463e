// Package parser holds the format-independent half of reading a field
// report: splitting delimited lines, locating the header row among metadata
// lines, and enforcing row width. Format readers (csv, xlsx) turn a file into
// []Line and call Frame.
package parser

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"flowback/internal/config"
	"flowback/pkg/records"
)

var (
	// ErrHeaderNotFound is returned when no line qualifies as a header row.
	ErrHeaderNotFound = errors.New("header row not found")
	// ErrNoDataRows is returned when the header is followed by no usable rows.
	ErrNoDataRows = errors.New("no data rows after header")
	// ErrUnsupportedFormat is returned for file types no reader handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Reader turns one input file into a RawBatch.
type Reader interface {
	Read(ctx context.Context, path string) (records.RawBatch, error)
}

// Line is one physical line (or spreadsheet row) of an input file.
type Line struct {
	Text  string
	Cells []string
}

// Options controls framing. Zero values are replaced by defaults in
// OptionsFrom.
type Options struct {
	// Lookahead bounds how many leading lines are kept for metadata.
	Lookahead int
	// MinHeaderCells is the fallback header rule: the first line with at
	// least this many non-empty cells.
	MinHeaderCells int
	// SkipUnitsRow drops the first data row (a units line under the header).
	SkipUnitsRow bool
	// PadShortRows pads rows narrower than the header with blanks instead of
	// dropping them. Spreadsheet readers trim trailing empty cells.
	PadShortRows bool
}

// OptionsFrom reads framing options from a parser options bag.
func OptionsFrom(o config.Options, skipUnitsDefault bool) Options {
	return Options{
		Lookahead:      o.Int("metadata_lookahead", 10),
		MinHeaderCells: o.Int("min_header_cells", 6),
		SkipUnitsRow:   o.Bool("skip_units_row", skipUnitsDefault),
	}
}

var (
	dateWord = regexp.MustCompile(`(?i)\bdate\b`)
	timeWord = regexp.MustCompile(`(?i)\btime\b`)
)

// FindHeader returns the index of the header line: the first line that
// mentions both "date" and "time" as words, otherwise the first line with at
// least minCells non-empty cells. It returns -1 when neither rule matches.
func FindHeader(lines []Line, minCells int) int {
	for i, l := range lines {
		if dateWord.MatchString(l.Text) && timeWord.MatchString(l.Text) {
			return i
		}
	}
	for i, l := range lines {
		n := 0
		for _, c := range l.Cells {
			if strings.TrimSpace(c) != "" {
				n++
			}
		}
		if n >= minCells {
			return i
		}
	}
	return -1
}

// Frame locates the header in lines and returns the resulting RawBatch.
// Blank lines are skipped and a trailing delimiter on the header adds no
// column. Rows whose width still differs from the header are counted in
// DroppedRows.
func Frame(source string, lines []Line, opt Options) (records.RawBatch, error) {
	if opt.MinHeaderCells <= 0 {
		opt.MinHeaderCells = 6
	}
	rb := records.RawBatch{Source: source}

	lead := len(lines)
	if opt.Lookahead > 0 && opt.Lookahead < lead {
		lead = opt.Lookahead
	}
	for _, l := range lines[:lead] {
		rb.Preamble = append(rb.Preamble, l.Text)
	}

	hi := FindHeader(lines, opt.MinHeaderCells)
	if hi < 0 {
		return rb, fmt.Errorf("%s: %w", source, ErrHeaderNotFound)
	}
	full := len(lines[hi].Cells)
	hdr := trimTrailingBlank(lines[hi].Cells)
	rb.Header = make([]string, len(hdr))
	for i, h := range hdr {
		rb.Header[i] = strings.TrimSpace(h)
	}

	width := len(rb.Header)
	for _, l := range lines[hi+1:] {
		if strings.TrimSpace(l.Text) == "" {
			continue
		}
		cells := l.Cells
		// Cells under trailing blank labels carry no column; drop them.
		if len(cells) > width && (len(cells) <= full || len(trimTrailingBlank(cells)) <= width) {
			cells = cells[:width]
		}
		if opt.PadShortRows && len(cells) < width {
			padded := make([]string, width)
			copy(padded, cells)
			cells = padded
		}
		if len(cells) != width {
			rb.DroppedRows++
			continue
		}
		rb.Rows = append(rb.Rows, cells)
	}

	if opt.SkipUnitsRow && len(rb.Rows) > 0 {
		rb.Rows = rb.Rows[1:]
	}
	if len(rb.Rows) == 0 {
		return rb, fmt.Errorf("%s: %w", source, ErrNoDataRows)
	}
	return rb, nil
}

// trimTrailingBlank drops the blank cells a trailing delimiter leaves at the
// end of a line.
func trimTrailingBlank(cells []string) []string {
	n := len(cells)
	for n > 0 && strings.TrimSpace(cells[n-1]) == "" {
		n--
	}
	return cells[:n]
}
