package runlock

import (
	"context"
	"sync"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"
)

// MemoryRunLock - блокировка в пределах одного процесса
type MemoryRunLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

var _ port.RunLockPort = (*MemoryRunLock)(nil)

func NewMemoryRunLock() *MemoryRunLock {
	return &MemoryRunLock{held: make(map[string]struct{})}
}

func (l *MemoryRunLock) Acquire(ctx context.Context, key string) (context.Context, port.ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, nil, domain.ErrReconcileInProgress
	}
	l.held[key] = struct{}{}

	lockCtx, cancel := context.WithCancel(ctx)

	var once sync.Once
	return lockCtx, func(context.Context) {
		once.Do(func() {
			cancel()
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
