// Package window derives the [start, end) collection window for one run.
package window

import (
	"time"

	"github.com/crimson-sun/szaudit/internal/checkpoint"
)

// DefaultLookback is how far back the first run reaches when no checkpoint
// exists.
const DefaultLookback = 90 * 24 * time.Hour

// Compute returns the collection window for a run starting at now: start is
// the last checkpointed end, or now − DefaultLookback when the checkpoint is
// absent, unreadable, or unparseable; end is always now. A checkpoint read
// failure is deliberately indistinguishable from absence here; the caller
// may log it, but it never aborts the run.
func Compute(store checkpoint.Store, key string, now time.Time) (start, end time.Time) {
	end = now
	start = now.Add(-DefaultLookback)

	cp, ok, err := store.Get(key)
	if err != nil || !ok {
		return start, end
	}
	parsed, err := ParseTimestamp(cp.LastEndTimestamp)
	if err != nil {
		return start, end
	}
	return parsed, end
}

// ParseTimestamp parses a persisted ISO-8601 checkpoint timestamp. A
// trailing space-less offset and fractional seconds are both accepted.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
