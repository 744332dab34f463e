// Package xlsx reads Office Open XML workbooks. Only the first sheet is read;
// each spreadsheet row becomes one parser.Line.
package xlsx

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"flowback/internal/datasource/file"
	"flowback/internal/parser"
	"flowback/pkg/records"
)

// Reader implements parser.Reader for .xlsx reports.
type Reader struct{ opt parser.Options }

// NewReader returns a Reader. Spreadsheet rows lose their trailing empty
// cells, so short rows are always padded to the header width.
func NewReader(opt parser.Options) *Reader {
	opt.PadShortRows = true
	return &Reader{opt: opt}
}

// Read opens the workbook at path and frames its first sheet.
func (r *Reader) Read(ctx context.Context, path string) (records.RawBatch, error) {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return records.RawBatch{Source: path}, err
	}
	defer rc.Close()

	wb, err := excelize.OpenReader(rc)
	if err != nil {
		return records.RawBatch{Source: path}, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return records.RawBatch{Source: path}, fmt.Errorf("%s: workbook has no sheets: %w", path, parser.ErrHeaderNotFound)
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return records.RawBatch{Source: path}, fmt.Errorf("read sheet %q of %s: %w", sheets[0], path, err)
	}
	if err := ctx.Err(); err != nil {
		return records.RawBatch{Source: path}, err
	}

	lines := make([]parser.Line, len(rows))
	for i, cells := range rows {
		lines[i] = parser.Line{Text: strings.Join(cells, "\t"), Cells: cells}
	}
	return parser.Frame(path, lines, r.opt)
}
