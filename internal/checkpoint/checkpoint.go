// Package checkpoint persists the last successfully processed window end per
// logical input, so collection resumes where it left off.
package checkpoint

import (
	"fmt"
	"time"
)

// Checkpoint marks the last successfully processed point in time for one
// (input, account) pair. It is overwritten whole on each successful run,
// never merged.
type Checkpoint struct {
	LastEndTimestamp string `json:"last_end_timestamp"`
	UpdatedAt        string `json:"updated_at"`
}

// New builds a checkpoint recording end as the last processed bound.
func New(end, now time.Time) Checkpoint {
	return Checkpoint{
		LastEndTimestamp: end.UTC().Format(time.RFC3339Nano),
		UpdatedAt:        now.UTC().Format(time.RFC3339Nano),
	}
}

// Key derives the store key for one (input, account) pair. Keys are disjoint
// per pair, so concurrent inputs never contend on the same entry.
func Key(inputName, accountName string) string {
	return fmt.Sprintf("%s_%s_last_end_date", inputName, accountName)
}

// Store is a durable key → checkpoint map. Get returns ok=false when the key
// has never been written. Read failures degrade to the default lookback
// window at the caller; write failures are fatal for checkpoint advancement.
type Store interface {
	Get(key string) (Checkpoint, bool, error)
	Set(key string, cp Checkpoint) error
}
