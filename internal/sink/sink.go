// Package sink defines where normalized audit events go.
package sink

import (
	"context"

	"github.com/crimson-sun/szaudit/internal/model"
)

// Sink is a destination for normalized audit events. Emission is one event
// at a time with no transactional batching guarantee; implementations may
// buffer internally. Downstream must tolerate duplicates; delivery is
// at-least-once across retried runs.
type Sink interface {
	Write(ctx context.Context, event model.AuditEvent) error
	Close() error
}

// Flusher is implemented by sinks that buffer accepted events. Flush forces
// delivery of everything Write has accepted so far; a nil return means all
// of it reached the destination. Callers that persist progress markers must
// flush before advancing them.
type Flusher interface {
	Flush() error
}
