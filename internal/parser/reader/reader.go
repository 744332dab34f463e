// Package reader picks the format reader for an input file by extension.
package reader

import (
	"fmt"

	"flowback/internal/datasource/file"
	"flowback/internal/parser"
	csvparser "flowback/internal/parser/csv"
	xlsxparser "flowback/internal/parser/xlsx"
)

// For returns the reader for path. Legacy binary workbooks (.xls) and
// unknown extensions yield parser.ErrUnsupportedFormat.
func For(path string, opt parser.Options) (parser.Reader, error) {
	switch ext := file.NewLocal(path).Ext(); ext {
	case ".csv", ".txt", ".tsv":
		return csvparser.NewReader(opt), nil
	case ".xlsx", ".xlsm":
		return xlsxparser.NewReader(opt), nil
	default:
		return nil, fmt.Errorf("%s: %w", ext, parser.ErrUnsupportedFormat)
	}
}
