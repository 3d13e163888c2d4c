package models

import "time"

type ContextKey string

const (
	ActorIDKey ContextKey = "actor_id"
)

// Now returns the current time in the precision every store can round-trip.
func Now() time.Time {
	return Normalize(time.Now())
}

// Normalize converts t to UTC truncated to microseconds.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
