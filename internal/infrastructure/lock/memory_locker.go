// Package lock adaptadores de ports.Locker.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/perecibles-api/internal/application/ports"
	"github.com/jhoicas/perecibles-api/internal/domain"
)

var _ ports.Locker = (*MemoryLocker)(nil)

// MemoryLocker locks en proceso para una sola instancia (sin REDIS_ADDR).
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]heldLock
	seq   uint64
	clock func() time.Time
}

type heldLock struct {
	token   uint64
	expires time.Time
}

// NewMemoryLocker crea el locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]heldLock), clock: time.Now}
}

// Obtain toma el lock si está libre o si el anterior ya expiró.
func (l *MemoryLocker) Obtain(_ context.Context, key string, ttl time.Duration) (ports.Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if h, ok := l.held[key]; ok && now.Before(h.expires) {
		return nil, fmt.Errorf("%w: trabajo %s en curso", domain.ErrConflict, key)
	}
	l.seq++
	l.held[key] = heldLock{token: l.seq, expires: now.Add(ttl)}
	return &memoryLock{locker: l, key: key, token: l.seq}, nil
}

type memoryLock struct {
	locker *MemoryLocker
	key    string
	token  uint64
}

// Release libera el lock sólo si sigue siendo el dueño.
func (m *memoryLock) Release(context.Context) error {
	m.locker.mu.Lock()
	defer m.locker.mu.Unlock()
	if h, ok := m.locker.held[m.key]; ok && h.token == m.token {
		delete(m.locker.held, m.key)
	}
	return nil
}
