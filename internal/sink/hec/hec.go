// Package hec sends audit events to a Splunk HTTP Event Collector endpoint.
package hec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/crimson-sun/szaudit/internal/model"
)

const (
	defaultBatchSize     = 50
	defaultFlushInterval = 5 * time.Second
	defaultTimeout       = 10 * time.Second
	maxRetries           = 3
)

// envelope is the HEC wire format: one JSON object per event, newline
// separated in the request body.
type envelope struct {
	Time       *float64 `json:"time,omitempty"`
	Source     string   `json:"source"`
	SourceType string   `json:"sourcetype"`
	Index      string   `json:"index,omitempty"`
	Event      any      `json:"event"`
}

// Option configures a hec Sink.
type Option func(*Sink)

// WithBatchSize sets the number of events accumulated before a flush. Default: 50.
func WithBatchSize(n int) Option {
	return func(s *Sink) { s.batchSize = n }
}

// WithFlushInterval sets the maximum time between flushes. Default: 5s.
func WithFlushInterval(d time.Duration) Option {
	return func(s *Sink) { s.flushInterval = d }
}

// WithTimeout sets the HTTP client timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(s *Sink) { s.client.Timeout = d }
}

// WithOnError sets a callback invoked when a timer-triggered flush fails.
// Default: logs a warning.
func WithOnError(f func(error)) Option {
	return func(s *Sink) { s.errFunc = f }
}

// Sink POSTs batched events to a Splunk HEC endpoint. Events accumulate in
// an internal buffer and are flushed when batchSize is reached or
// flushInterval elapses. Retries on 5xx with exponential backoff.
type Sink struct {
	client        *http.Client
	url           string
	token         string
	batchSize     int
	flushInterval time.Duration
	errFunc       func(error)
	mu            sync.Mutex
	pending       []envelope
	timer         *time.Timer
}

// New creates a HEC sink targeting the given collector URL
// (e.g. https://splunk.example.com:8088/services/collector/event).
func New(url, token string, opts ...Option) *Sink {
	s := &Sink{
		client:        &http.Client{Timeout: defaultTimeout},
		url:           url,
		token:         token,
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		errFunc:       func(err error) { logrus.Warnf("hec flush error: %s", err) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write appends an event to the batch. When batchSize is reached, the batch
// is flushed immediately. A timer is armed while events sit buffered so the
// batch flushes even if batchSize is never reached.
func (s *Sink) Write(_ context.Context, event model.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, envelope{
		Time:       event.Time,
		Source:     event.Source,
		SourceType: event.SourceType,
		Index:      event.Index,
		Event:      event.Data,
	})

	if len(s.pending) >= s.batchSize {
		return s.flushLocked()
	}

	if s.timer == nil {
		s.timer = time.AfterFunc(s.flushInterval, s.timerFlush)
	}
	return nil
}

func (s *Sink) timerFlush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flushLocked(); err != nil {
		s.errFunc(err)
	}
}

// Flush delivers every buffered event now. An error means at least one
// accepted event has not reached the endpoint; the batch is kept, so
// callers must not record progress past it.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// Close flushes any remaining events and stops the timer.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return s.flushLocked()
}

// flushLocked sends the pending batch. On failure the batch is restored so
// the next flush retries it instead of dropping it. Caller must hold s.mu.
func (s *Sink) flushLocked() error {
	if len(s.pending) == 0 {
		return nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	batch := s.pending
	s.pending = nil

	// HEC takes newline-separated JSON objects, not an array.
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, ev := range batch {
		if err := enc.Encode(ev); err != nil {
			s.pending = batch
			return fmt.Errorf("hec: marshal: %w", err)
		}
	}

	if err := s.postWithRetry(body.Bytes()); err != nil {
		s.pending = batch
		return err
	}
	return nil
}

// postWithRetry sends the body via HTTP POST with retry on 5xx.
func (s *Sink) postWithRetry(body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("hec: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Splunk "+s.token)

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("hec: %w", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("hec: HTTP %d", resp.StatusCode)

		// Only retry on 5xx server errors.
		if resp.StatusCode < 500 {
			return lastErr
		}
	}
	return lastErr
}
