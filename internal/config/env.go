package config

import (
    "fmt"
    "os"
    "strconv"
    "strings"
    "time"
)

// envOr parses the variable named key with parse.  Unset, empty and
// unparsable values all fall back to def.
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
    raw := strings.TrimSpace(os.Getenv(key))
    if raw == "" {
        return def
    }
    v, err := parse(raw)
    if err != nil {
        return def
    }
    return v
}

func envStr(key, def string) string {
    return envOr(key, def, func(s string) (string, error) { return s, nil })
}

func envInt(key string, def int) int { return envOr(key, def, strconv.Atoi) }

func envDur(key string, def time.Duration) time.Duration {
    return envOr(key, def, time.ParseDuration)
}

// envBool understands 1/0, true/false, yes/no and on/off in any case.
func envBool(key string, def bool) bool {
    return envOr(key, def, parseSwitch)
}

func parseSwitch(s string) (bool, error) {
    switch strings.ToLower(s) {
    case "1", "true", "yes", "on":
        return true, nil
    case "0", "false", "no", "off":
        return false, nil
    }
    return false, fmt.Errorf("not a switch value: %q", s)
}
