// Package probe inspects one field report without running the pipeline:
// where the header was found, what metadata the preamble carries, how each
// raw label maps onto the canonical columns, and which date and time layouts
// the values use. Operators use it to extend the synonym table and layout
// lists before a run.
package probe

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"flowback/internal/metadata"
	"flowback/internal/parser"
	"flowback/internal/parser/reader"
	"flowback/internal/schema"
	"flowback/pkg/records"
)

// Options control what is probed and how the result is rendered.
type Options struct {
	Path     string
	Parser   parser.Options
	Synonyms *schema.Synonyms

	// DateLayouts and TimeLayouts are the candidates scored against the
	// Date and Time columns.
	DateLayouts []string
	TimeLayouts []string

	// OutputJSON renders a config fragment instead of CSV lines.
	OutputJSON bool
}

// Column describes one raw header label.
type Column struct {
	Raw       string `json:"raw"`
	Canonical string `json:"canonical,omitempty"`
	// Kind is one of number, date, time, text, empty.
	Kind   string `json:"kind"`
	Layout string `json:"layout,omitempty"`
}

// Result is the outcome of a probe. Body holds the rendered output.
type Result struct {
	Source      string
	Metadata    records.Metadata
	Columns     []Column
	Unmapped    []string
	Rows        int
	DroppedRows int

	Body []byte
}

// readFn is a test seam.
var readFn = func(ctx context.Context, path string, opt parser.Options) (records.RawBatch, error) {
	r, err := reader.For(path, opt)
	if err != nil {
		return records.RawBatch{}, err
	}
	return r.Read(ctx, path)
}

// Probe reads opt.Path and describes it.
func Probe(ctx context.Context, opt Options) (Result, error) {
	raw, err := readFn(ctx, opt.Path, opt.Parser)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		Source:      raw.Source,
		Metadata:    metadata.Extract(raw.Preamble, opt.Parser.Lookahead),
		Rows:        len(raw.Rows),
		DroppedRows: raw.DroppedRows,
		Unmapped:    opt.Synonyms.Map(raw).Unmapped,
	}

	for i, h := range raw.Header {
		col := Column{Raw: h}
		col.Canonical, _ = opt.Synonyms.Lookup(h)

		values := make([]string, 0, len(raw.Rows))
		for _, row := range raw.Rows {
			values = append(values, row[i])
		}
		var layouts []string
		temporal := ""
		switch col.Canonical {
		case schema.ColDate:
			layouts, temporal = opt.DateLayouts, "date"
		case schema.ColTime:
			layouts, temporal = opt.TimeLayouts, "time"
		}
		col.Kind, col.Layout = inferColumn(values, layouts, temporal)
		res.Columns = append(res.Columns, col)
	}

	if opt.OutputJSON {
		res.Body, err = renderJSON(res)
	} else {
		res.Body, err = renderCSV(res)
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// renderCSV writes one line per header label.
func renderCSV(res Result) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"label", "canonical", "kind", "layout"})
	for _, c := range res.Columns {
		_ = w.Write([]string{c.Raw, c.Canonical, c.Kind, c.Layout})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return buf.Bytes(), nil
}

// fragment is the config subset a probe can suggest. Unmapped labels are
// listed with an empty target for the operator to fill in.
type fragment struct {
	Source   string           `json:"source"`
	Metadata records.Metadata `json:"metadata"`
	Columns  []Column         `json:"columns"`
	Schema   struct {
		Synonyms map[string]string `json:"synonyms,omitempty"`
	} `json:"schema"`
	Merge struct {
		DateLayouts []string `json:"date_layouts,omitempty"`
		TimeLayouts []string `json:"time_layouts,omitempty"`
	} `json:"merge"`
}

func renderJSON(res Result) ([]byte, error) {
	var f fragment
	f.Source = res.Source
	f.Metadata = res.Metadata
	f.Columns = res.Columns
	if len(res.Unmapped) > 0 {
		f.Schema.Synonyms = make(map[string]string, len(res.Unmapped))
		for _, u := range res.Unmapped {
			f.Schema.Synonyms[u] = ""
		}
	}
	for _, c := range res.Columns {
		switch {
		case c.Layout == "":
		case c.Canonical == schema.ColDate:
			f.Merge.DateLayouts = append(f.Merge.DateLayouts, c.Layout)
		case c.Canonical == schema.ColTime:
			f.Merge.TimeLayouts = append(f.Merge.TimeLayouts, c.Layout)
		}
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	return append(b, '\n'), nil
}
