package storage

import "time"

const lockRetry = 50 * time.Millisecond
