// Package lock provides a Redis-backed per-profile mutex for deployments
// running more than one instance against the same database.
package lock

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
	"safereturn/pkg/requestcontext"
)

const (
	keyPrefix            = "safereturn:lock:profile:"
	defaultTTL           = 10 * time.Second
	defaultRetryInterval = 25 * time.Millisecond
)

// ErrNotHeld is returned by a release whose token no longer owns the key,
// typically because the TTL expired first.
var ErrNotHeld = errors.New("lock not held")

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker acquires expiring locks with SET NX PX.
type RedisLocker struct {
	client        *redis.Client
	ttl           time.Duration
	retryInterval time.Duration
}

type Option func(*RedisLocker)

func WithTTL(ttl time.Duration) Option {
	return func(l *RedisLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

func WithRetryInterval(d time.Duration) Option {
	return func(l *RedisLocker) {
		if d > 0 {
			l.retryInterval = d
		}
	}
}

func NewRedisLocker(client *redis.Client, opts ...Option) *RedisLocker {
	l := &RedisLocker{client: client, ttl: defaultTTL, retryInterval: defaultRetryInterval}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Release gives up a held lock.
type Release func(ctx context.Context) error

// Acquire blocks until the key is free or ctx ends.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (Release, error) {
	token := uuid.NewString()
	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "timed out waiting for profile lock")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to acquire profile lock")
		}
		if ok {
			return func(ctx context.Context) error {
				n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
				if err != nil {
					return err
				}
				if n == 0 {
					return ErrNotHeld
				}
				return nil
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "timed out waiting for profile lock")
		case <-ticker.C:
		}
	}
}

// Tx is the unit-of-work boundary being guarded.
type Tx interface {
	RunInTx(ctx context.Context, profileID id.ProfileID, fn func(ctx context.Context) error) error
}

// LockingTx holds the profile's Redis lock around the inner unit of work.
type LockingTx struct {
	inner  Tx
	locker *RedisLocker
	logger *slog.Logger
}

func NewLockingTx(inner Tx, locker *RedisLocker, logger *slog.Logger) *LockingTx {
	if logger == nil {
		logger = slog.Default()
	}
	return &LockingTx{inner: inner, locker: locker, logger: logger}
}

func (t *LockingTx) RunInTx(ctx context.Context, profileID id.ProfileID, fn func(ctx context.Context) error) error {
	release, err := t.locker.Acquire(ctx, keyPrefix+profileID.String())
	if err != nil {
		return err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			t.logger.WarnContext(ctx, "failed to release profile lock",
				"request_id", requestcontext.RequestID(ctx),
				"profile_id", profileID.String(),
				"error", err,
			)
		}
	}()
	return t.inner.RunInTx(ctx, profileID, fn)
}
