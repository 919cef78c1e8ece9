// Package lock provides named, short-lived mutual exclusion for operations
// that read-then-write shared sequences (document numbering).
package lock

import (
	"context"
	"errors"
	"time"
)

var ErrNotObtained = errors.New("lock not obtained")

// Lock is a held lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker hands out named locks. ttl bounds how long a crashed holder can keep the key.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}
