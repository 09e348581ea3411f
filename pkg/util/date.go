package util

import (
	"strconv"
	"time"
)

// Trading session tags by UTC hour.
const (
	SessionAsian  = "ASIAN"  // 00:00-08:00 UTC
	SessionLondon = "LONDON" // 08:00-16:00 UTC
	SessionNY     = "NY"     // 16:00-00:00 UTC
)

// SessionAt classifies t into a trading session by its UTC hour.
func SessionAt(t time.Time) string {
	switch hour := t.UTC().Hour(); {
	case hour < 8:
		return SessionAsian
	case hour < 16:
		return SessionLondon
	default:
		return SessionNY
	}
}

// CurrentSession returns the session tag for the current wall clock.
func CurrentSession() string { return SessionAt(time.Now()) }

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
