// Package file implements the local filesystem data source: opening a single
// report and discovering the reports of a run.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"flowback/internal/datasource"
)

var _ datasource.Source = (*Local)(nil)

// Local is a filesystem data source bound to one path. It is safe for
// concurrent use.
type Local struct{ path string }

// NewLocal returns a Local data source for path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound path.
func (l *Local) Path() string { return l.path }

// Ext returns the lower-cased file extension including the dot.
func (l *Local) Ext() string { return strings.ToLower(filepath.Ext(l.path)) }

// Open opens the bound path for reading. A canceled context short-circuits
// before the filesystem is touched. Filesystem errors are wrapped with the
// path and still satisfy errors.Is(err, os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
