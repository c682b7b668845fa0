package redis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeImportLocked, "import lock held by another run")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "import lock not held by this owner")
)

const defaultLockTTL = 2 * time.Hour

// LockOption configures an ImportLock.
type LockOption func(*ImportLock)

// WithLockTTL sets the lock expiry.  The watchdog renews it every third of
// the TTL while the lock is held.
func WithLockTTL(ttl time.Duration) LockOption {
	return func(l *ImportLock) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithOwner sets the value stored under the lock key, normally the run id.
func WithOwner(owner string) LockOption {
	return func(l *ImportLock) {
		if owner != "" {
			l.owner = owner
		}
	}
}

// WithWatchdogInterval overrides the renewal interval.
func WithWatchdogInterval(interval time.Duration) LockOption {
	return func(l *ImportLock) { l.watchdogInterval = interval }
}

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

var extendScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// ImportLock keeps two imports from writing into the same target at once.
// It is a single SET NX PX key whose value identifies the owning run.
type ImportLock struct {
	client           *Client
	key              string
	owner            string
	ttl              time.Duration
	watchdogInterval time.Duration
	logger           logging.Logger

	mu             sync.Mutex
	watchdogCancel context.CancelFunc
	watchdogDone   chan struct{}
}

// NewImportLock returns an unacquired lock on name under the client's key
// prefix.
func NewImportLock(client *Client, name string, log logging.Logger, opts ...LockOption) *ImportLock {
	if log == nil {
		log = logging.NewNopLogger()
	}
	l := &ImportLock{
		client: client,
		key:    client.Key("lock:" + name),
		owner:  uuid.NewString(),
		ttl:    defaultLockTTL,
		logger: log.Named("lock"),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.watchdogInterval <= 0 {
		l.watchdogInterval = l.ttl / 3
	}
	return l
}

func (l *ImportLock) Key() string { return l.key }

// Acquire takes the lock without waiting.  When another run holds it the
// returned error carries ErrCodeImportLocked and the holder's id.
func (l *ImportLock) Acquire(ctx context.Context) error {
	rdb := l.client.GetUnderlyingClient()
	ok, err := rdb.SetNX(ctx, l.key, l.owner, l.ttl).Result()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set import lock")
	}
	if !ok {
		holder, _ := rdb.Get(ctx, l.key).Result()
		return ErrLockNotAcquired.WithDetail("holder=" + holder)
	}
	l.logger.Info("import lock acquired",
		logging.String("key", l.key),
		logging.String("owner", l.owner),
		logging.Duration("ttl", l.ttl))
	l.startWatchdog()
	return nil
}

// Release deletes the key if this lock still owns it.
func (l *ImportLock) Release(ctx context.Context) error {
	l.stopWatchdog()
	res, err := unlockScript.Run(ctx, l.client.GetUnderlyingClient(), []string{l.key}, l.owner).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release import lock")
	}
	if res == 0 {
		return ErrLockNotHeld.WithDetail(l.key)
	}
	l.logger.Info("import lock released", logging.String("key", l.key))
	return nil
}

// Extend resets the expiry to ttl if this lock still owns the key.
func (l *ImportLock) Extend(ctx context.Context, ttl time.Duration) (bool, error) {
	res, err := extendScript.Run(ctx, l.client.GetUnderlyingClient(), []string{l.key}, l.owner, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (l *ImportLock) TTL(ctx context.Context) (time.Duration, error) {
	return l.client.GetUnderlyingClient().PTTL(ctx, l.key).Result()
}

func (l *ImportLock) startWatchdog() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.watchdogCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.watchdogCancel = cancel
	l.watchdogDone = make(chan struct{})
	go runWatchdog(ctx, l.Extend, l.watchdogInterval, l.ttl, l.logger, l.watchdogDone)
}

func (l *ImportLock) stopWatchdog() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.watchdogCancel != nil {
		l.watchdogCancel()
		<-l.watchdogDone
		l.watchdogCancel = nil
	}
}

func runWatchdog(ctx context.Context, extendFn func(context.Context, time.Duration) (bool, error), interval time.Duration, ttl time.Duration, log logging.Logger, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := extendFn(ctx, ttl)
			if err != nil {
				log.Error("Watchdog failed to extend lock", logging.Err(err))
				return
			}
			if !ok {
				log.Warn("Watchdog lost lock")
				return
			}
		}
	}
}

//Personal.AI order the ending
