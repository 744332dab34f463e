// Package datasource abstracts where report bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens one input for reading.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
