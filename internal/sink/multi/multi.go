package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/szaudit/internal/model"
	"github.com/crimson-sun/szaudit/internal/sink"
)

// Multi fans out events to multiple sink.Sink implementations.
// Each Write call delivers the event to every wrapped sink sequentially.
// If one sink fails, the remaining sinks still receive the event.
type Multi struct {
	sinks []sink.Sink
}

// New creates a Multi that fans out to the given sinks.
func New(sinks ...sink.Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Write delivers the event to every wrapped sink. Errors are collected
// but do not prevent delivery to subsequent sinks.
func (m *Multi) Write(ctx context.Context, event model.AuditEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush forwards to every wrapped sink that buffers, collecting errors.
func (m *Multi) Flush() error {
	var errs []error
	for _, s := range m.sinks {
		f, ok := s.(sink.Flusher)
		if !ok {
			continue
		}
		if err := f.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on every wrapped sink, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
