// Package report writes the run artifacts next to the inputs: one canonical
// CSV per processed file, the concatenated run file, the list of files with
// incomplete metadata, and the end-of-run summary.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"flowback/internal/storage/csvfile"
	"flowback/pkg/records"
)

// OutputName returns the per-file output name for source: the processed
// prefix followed by the full source base name, with .csv appended unless
// the source already is a .csv. Keeping the original extension means
// a.csv and a.xlsx never share an output.
func OutputName(prefix, source string) string {
	base := filepath.Base(source)
	if strings.EqualFold(filepath.Ext(base), ".csv") {
		return prefix + base
	}
	return prefix + base + ".csv"
}

// WriteFileOutput writes b to dir/OutputName(prefix, source) and returns the
// path written.
func WriteFileOutput(ctx context.Context, dir, prefix, source string, b records.Batch) (string, error) {
	p := filepath.Join(dir, OutputName(prefix, source))
	if err := csvfile.WriteFile(ctx, p, b); err != nil {
		return "", fmt.Errorf("write output for %s: %w", filepath.Base(source), err)
	}
	return p, nil
}

// WriteMerged writes the concatenated run batch to path.
func WriteMerged(ctx context.Context, path string, b records.Batch) error {
	if err := csvfile.WriteFile(ctx, path, b); err != nil {
		return fmt.Errorf("write merged output: %w", err)
	}
	return nil
}

// WriteProblems writes one file name per line to path. With no names the
// report of a previous run is removed instead, so a stale list never
// survives a clean run. It reports whether a file was written.
func WriteProblems(path string, names []string) (bool, error) {
	if len(names) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("remove %s: %w", path, err)
		}
		return false, nil
	}
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
