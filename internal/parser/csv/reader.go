// Package csv reads delimited field reports. Reports are small, so a file is
// read whole into lines before the header is located.
package csv

import (
	"bufio"
	"context"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"flowback/internal/datasource/file"
	"flowback/internal/parser"
	"flowback/pkg/records"
)

const maxLineBytes = 4 << 20

// Reader implements parser.Reader for .csv (and tab-delimited) reports.
type Reader struct{ opt parser.Options }

// NewReader returns a Reader with the given framing options.
func NewReader(opt parser.Options) *Reader { return &Reader{opt: opt} }

// Read decodes path as UTF-8 (a UTF-8 or UTF-16 BOM overrides the default
// and is dropped), splits every line and frames the result.
func (r *Reader) Read(ctx context.Context, path string) (records.RawBatch, error) {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return records.RawBatch{Source: path}, err
	}
	defer rc.Close()

	dec := transform.NewReader(rc, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []parser.Line
	for sc.Scan() {
		if len(lines)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return records.RawBatch{Source: path}, err
			}
		}
		text := sc.Text()
		lines = append(lines, parser.Line{Text: text, Cells: parser.SplitLine(text)})
	}
	if err := sc.Err(); err != nil {
		return records.RawBatch{Source: path}, fmt.Errorf("read %s: %w", path, err)
	}
	return parser.Frame(path, lines, r.opt)
}
