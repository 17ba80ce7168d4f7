package config

import "time"

// RoomLockConfig controls the optional Redis lock taken around the
// availability check and the write that follows it.  When disabled, two
// concurrent requests for overlapping dates on the same room may both
// succeed.
type RoomLockConfig struct {
    Enabled bool
    TTL     time.Duration // lock expiry if the holder dies mid-request
    Wait    time.Duration // how long a request waits for a held lock
    Prefix  string
}

func LoadRoomLockConfig() RoomLockConfig {
    cfg := RoomLockConfig{
        Enabled: envBool("ROOM_LOCK_ENABLED", false),
        TTL:     envDur("ROOM_LOCK_TTL", 5*time.Second),
        Wait:    envDur("ROOM_LOCK_WAIT", 500*time.Millisecond),
        Prefix:  envStr("ROOM_LOCK_PREFIX", "lock:room"),
    }
    if cfg.TTL <= 0 { cfg.TTL = 5 * time.Second }
    if cfg.Wait < 0 { cfg.Wait = 0 }
    return cfg
}
