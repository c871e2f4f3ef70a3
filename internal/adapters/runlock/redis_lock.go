package runlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisConfig - подключение к Redis для распределенной блокировки
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient создает клиента и проверяет соединение
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to ping redis at %s: %w", cfg.Address, err)
	}
	return client, nil
}

// RedisRunLock - блокировка запуска, общая для всех экземпляров сервиса.
// Пока блокировка удерживается, ее TTL продлевается в фоне.
type RedisRunLock struct {
	locker *redislock.Client
	ttl    time.Duration
}

var _ port.RunLockPort = (*RedisRunLock)(nil)

func NewRedisRunLock(client redislock.RedisClient, ttl time.Duration) (*RedisRunLock, error) {
	if client == nil {
		return nil, fmt.Errorf("redis run lock: client cannot be nil")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("redis run lock: ttl must be positive")
	}
	return &RedisRunLock{locker: redislock.New(client), ttl: ttl}, nil
}

// Acquire захватывает блокировку. Возвращенный контекст отменяется
// с причиной domain.ErrRunLockLost, если продлить блокировку не удалось.
func (l *RedisRunLock) Acquire(ctx context.Context, key string) (context.Context, port.ReleaseFunc, error) {
	lockLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "RedisRunLock",
		"lock_key":  key,
	})

	lock, err := l.locker.Obtain(ctx, key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, nil, domain.ErrReconcileInProgress
	}
	if err != nil {
		lockLogger.Error("Error obtaining redis lock", err, nil)
		return nil, nil, fmt.Errorf("failed to obtain run lock %s: %w", key, err)
	}

	lockLogger.Debug("Run lock obtained", port.Fields{"ttl": l.ttl.String()})

	lockCtx, cancel := context.WithCancelCause(ctx)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.keepAlive(lock, stop, cancel, lockLogger)
	}()

	var once sync.Once
	return lockCtx, func(releaseCtx context.Context) {
		once.Do(func() {
			close(stop)
			wg.Wait()
			cancel(nil)
			if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				lockLogger.Warn("Failed to release redis lock", port.Fields{"error": err.Error()})
				return
			}
			lockLogger.Debug("Run lock released", nil)
		})
	}, nil
}

// keepAlive продлевает TTL каждые ttl/2. Блокировка считается потерянной,
// если ключ больше не наш или с последнего продления прошел целый ttl.
func (l *RedisRunLock) keepAlive(lock *redislock.Lock, stop <-chan struct{}, cancel context.CancelCauseFunc, lockLogger port.LoggerPort) {
	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()

	lastRefresh := time.Now()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancelRefresh := context.WithTimeout(context.Background(), l.ttl/2)
			err := lock.Refresh(ctx, l.ttl, nil)
			cancelRefresh()
			if err == nil {
				lastRefresh = time.Now()
				continue
			}
			if errors.Is(err, redislock.ErrNotObtained) || time.Since(lastRefresh) >= l.ttl {
				lockLogger.Error("Run lock lost, aborting reconciliation", err, port.Fields{
					"since_last_refresh": time.Since(lastRefresh).String(),
				})
				cancel(domain.ErrRunLockLost)
				return
			}
			lockLogger.Warn("Failed to refresh redis lock, will retry", port.Fields{"error": err.Error()})
		}
	}
}
