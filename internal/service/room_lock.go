package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hotelbook/room-reservation/internal/config"
)

// RoomLocker serialises check-then-write sequences on one room.  The
// returned unlock func must be called exactly once.
type RoomLocker interface {
	Lock(ctx context.Context, roomID int) (unlock func(), err error)
}

// NoRoomLock performs no locking.  Concurrent overlapping requests can both
// pass the availability check; this is the default behaviour.
type NoRoomLock struct{}

func (NoRoomLock) Lock(context.Context, int) (func(), error) { return func() {}, nil }

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock re-acquired by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

const lockPollInterval = 25 * time.Millisecond

// RedisRoomLocker takes a per-room lock with SET NX PX so the guarantee
// holds across server replicas.
type RedisRoomLocker struct {
	rdb *redis.Client
	cfg config.RoomLockConfig
}

func NewRedisRoomLocker(rdb *redis.Client, cfg config.RoomLockConfig) *RedisRoomLocker {
	return &RedisRoomLocker{rdb: rdb, cfg: cfg}
}

func (l *RedisRoomLocker) key(roomID int) string {
	return fmt.Sprintf("%s:%d", l.cfg.Prefix, roomID)
}

// Lock waits up to cfg.Wait for the room lock and returns ErrRoomBusy when
// it stays taken.
func (l *RedisRoomLocker) Lock(ctx context.Context, roomID int) (func(), error) {
	key := l.key(roomID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.cfg.Wait)
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.cfg.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire room lock: %w", err)
		}
		if ok {
			return func() {
				if err := releaseScript.Run(context.Background(), l.rdb, []string{key}, token).Err(); err != nil {
					log.Printf("room-lock: release %s failed: %v", key, err)
				}
			}, nil
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: room %d", ErrRoomBusy, roomID)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}
