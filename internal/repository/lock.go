package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockLease     = 5 * time.Second
	lockRetryStep = 100 * time.Millisecond
)

// GameLocker serializes all mutations of a single game across event sources:
// socket handlers, bot loops and timer jobs. The lock is advisory and
// non-reentrant; only the outermost service entry point may acquire it, and
// every inner rule helper operates on the already-loaded state instead.
type GameLocker interface {
	Acquire(ctx context.Context, gameID string) (release func(), err error)
}

type redisLocker struct {
	client *redis.Client
}

func NewGameLocker(client *redis.Client) GameLocker {
	return &redisLocker{
		client: client,
	}
}

func lockKey(gameID string) string {
	return "lock:game:" + gameID
}

// releaseScript deletes the lock only while it still holds our token, so a
// release that arrives after the lease expired cannot free a successor's
// lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Acquire polls SET NX with a short lease until the lock is won or the
// context expires. The lease bounds how long a crashed holder can block the
// game.
func (that *redisLocker) Acquire(ctx context.Context, gameID string) (func(), error) {
	token := uuid.NewString()
	key := lockKey(gameID)

	for {
		ok, err := that.client.SetNX(ctx, key, token, lockLease).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire game lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up waiting for game lock: %w", ctx.Err())
		case <-time.After(lockRetryStep):
		}
	}

	release := func() {
		// best effort; an expired lease already freed the key
		_ = releaseScript.Run(context.WithoutCancel(ctx), that.client, []string{key}, token).Err()
	}
	return release, nil
}
