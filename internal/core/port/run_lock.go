package port

import "context"

// ReleaseFunc освобождает захваченную блокировку
type ReleaseFunc func(ctx context.Context)

// RunLockPort - взаимное исключение запусков.
// Если блокировка занята, Acquire возвращает domain.ErrReconcileInProgress.
// Возвращенный контекст отменяется при потере блокировки (причина
// domain.ErrRunLockLost) и при вызове ReleaseFunc.
type RunLockPort interface {
	Acquire(ctx context.Context, key string) (context.Context, ReleaseFunc, error)
}
