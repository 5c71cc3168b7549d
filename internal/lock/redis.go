package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the key's TTL only if it still holds our token
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisConfig controls the distributed lock
type RedisConfig struct {
	Key string

	// TTL bounds how long a crashed holder can block others
	TTL time.Duration

	// RenewInterval is how often a live holder pushes the TTL back out, so a
	// slow store write cannot outlast the lease. Zero means TTL/3.
	RenewInterval time.Duration

	// Timeout bounds how long Lock waits
	Timeout time.Duration

	// RetryInterval is the pause between acquisition attempts
	RetryInterval time.Duration
}

// DefaultRedisConfig returns sensible defaults for the distributed lock
func DefaultRedisConfig(key string) RedisConfig {
	return RedisConfig{
		Key:           key,
		TTL:           30 * time.Second,
		RenewInterval: 10 * time.Second,
		Timeout:       10 * time.Second,
		RetryInterval: 25 * time.Millisecond,
	}
}

// Redis is a lock shared by every server process using the same Redis
type Redis struct {
	client *redis.Client
	cfg    RedisConfig
}

// NewRedis creates a distributed lock
func NewRedis(client *redis.Client, cfg RedisConfig) *Redis {
	return &Redis{client: client, cfg: cfg}
}

var _ Locker = (*Redis)(nil)

func (l *Redis) Lock(ctx context.Context) (func(), error) {
	ctx, cancel := withTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	token := uuid.NewString()
	ticker := time.NewTicker(l.cfg.RetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.cfg.Key, token, l.cfg.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, waitFailed(ctx.Err())
			}
			return nil, waitFailed(err)
		}
		if ok {
			return l.releaser(token), nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, waitFailed(ctx.Err())
		}
	}
}

// releaser keeps the lease alive until the returned func is called, then
// deletes the key if it is still ours
func (l *Redis) releaser(token string) func() {
	interval := l.cfg.RenewInterval
	if interval <= 0 {
		interval = l.cfg.TTL / 3
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !l.renew(token) {
					return
				}
			}
		}
	}()

	return func() {
		close(stop)
		<-done

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Errors are ignored: the TTL frees the key anyway
		_ = releaseScript.Run(ctx, l.client, []string{l.cfg.Key}, token).Err()
	}
}

// renew reports whether the lease is still held. A transient error keeps
// trying until the key is known to be gone.
func (l *Redis) renew(token string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), l.cfg.TTL)
	defer cancel()
	n, err := renewScript.Run(ctx, l.client, []string{l.cfg.Key}, token, l.cfg.TTL.Milliseconds()).Int()
	if err != nil {
		return true
	}
	return n == 1
}
