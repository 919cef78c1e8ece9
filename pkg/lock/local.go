package lock

import (
	"context"
	"sync"
	"time"
)

// LocalLocker serializes holders of the same key inside one process
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{})}
}

var _ Locker = (*LocalLocker)(nil)

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Obtain blocks until the key is free or ctx is done. ttl is not enforced locally.
func (l *LocalLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
		return &localLock{ch: ch}, nil
	case <-ctx.Done():
		return nil, ErrNotObtained
	}
}

type localLock struct {
	once sync.Once
	ch   chan struct{}
}

func (k *localLock) Release(ctx context.Context) error {
	k.once.Do(func() { <-k.ch })
	return nil
}
