//go:build !unix

package storage

import (
	"context"
	"fmt"
	"os"
)

// Lock creates path so that operators can see a run holds the dataset. No
// advisory locking is available on this platform.
func Lock(ctx context.Context, path string) (unlock func() error, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	return f.Close, nil
}
