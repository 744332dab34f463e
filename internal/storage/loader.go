package storage

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CopyFn inserts rows (aligned to columns) and returns the number inserted.
// Backends implement it with their bulk primitive: COPY for Postgres, a
// prepared INSERT for SQLite.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// CopyBatches feeds rows to copyFn in chunks of batchSize and returns the
// total reported inserted. It stops at the first error or when ctx is done.
// Progress is logged after every chunk.
func CopyBatches(ctx context.Context, columns []string, rows [][]any, batchSize int, copyFn CopyFn) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total   int64
		batches int
		start   = time.Now()
	)
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := min(lo+batchSize, len(rows))
		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			log.Printf("loader: copy failed after=%d total=%d err=%v", n, total, err)
			return total, err
		}
		batches++
		log.Printf("loader: batch #%d inserted=%d total_inserted=%d elapsed=%s",
			batches, n, total, time.Since(start).Truncate(time.Millisecond))
	}
	return total, nil
}
