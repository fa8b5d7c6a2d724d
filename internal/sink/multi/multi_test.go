package multi

import (
	"context"
	"errors"
	"testing"

	"github.com/crimson-sun/szaudit/internal/model"
)

// recordingSink captures events and optionally fails.
type recordingSink struct {
	events   []model.AuditEvent
	writeErr error
	closed   bool
}

func (s *recordingSink) Write(_ context.Context, ev model.AuditEvent) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}

func TestWrite_FansOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	m := New(a, b)

	ev := model.AuditEvent{Source: "Z1", Data: map[string]any{"record_id": "R1"}}
	if err := m.Write(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("expected both sinks to receive the event: %d, %d", len(a.events), len(b.events))
	}
}

func TestWrite_FailureDoesNotBlockOthers(t *testing.T) {
	bad := &recordingSink{writeErr: errors.New("down")}
	good := &recordingSink{}
	m := New(bad, good)

	err := m.Write(context.Background(), model.AuditEvent{Source: "Z1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(good.events) != 1 {
		t.Fatal("expected delivery to continue past the failing sink")
	}
}

// bufferingSink is a recordingSink that also buffers, tracking flushes.
type bufferingSink struct {
	recordingSink
	flushed  int
	flushErr error
}

func (s *bufferingSink) Flush() error {
	s.flushed++
	return s.flushErr
}

func TestFlush_ForwardsToBufferingSinks(t *testing.T) {
	buffered := &bufferingSink{}
	plain := &recordingSink{}
	m := New(buffered, plain)

	if err := m.Flush(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buffered.flushed != 1 {
		t.Fatalf("expected 1 flush, got %d", buffered.flushed)
	}
}

func TestFlush_CollectsErrors(t *testing.T) {
	bad := &bufferingSink{flushErr: errors.New("down")}
	good := &bufferingSink{}
	m := New(bad, good)

	if err := m.Flush(); err == nil {
		t.Fatal("expected error")
	}
	if good.flushed != 1 {
		t.Fatal("expected flush to continue past the failing sink")
	}
}

func TestClose_ClosesAll(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	if err := New(a, b).Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.closed || !b.closed {
		t.Fatal("expected both sinks closed")
	}
}
