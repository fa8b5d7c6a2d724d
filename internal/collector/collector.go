// Package collector sequences one collection run per logical input:
// resolve credentials, compute the window, enumerate zones, fetch and
// flatten records, emit events, then advance the checkpoint. A failure
// anywhere abandons the input's run without touching its checkpoint, so the
// whole window is retried next cycle. Failures never cross inputs.
package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/crimson-sun/szaudit/internal/checkpoint"
	"github.com/crimson-sun/szaudit/internal/creds"
	"github.com/crimson-sun/szaudit/internal/flatten"
	"github.com/crimson-sun/szaudit/internal/metrics"
	"github.com/crimson-sun/szaudit/internal/safezone"
	"github.com/crimson-sun/szaudit/internal/sink"
	"github.com/crimson-sun/szaudit/internal/window"
)

const defaultInterval = 5 * time.Minute

// Input is one logical collection input: one account feeding one index on
// its own interval.
type Input struct {
	Name     string
	Account  string
	Index    string
	Interval time.Duration
}

// RunResult is the outcome of one input's run, surfaced to the caller
// instead of being swallowed.
type RunResult struct {
	Input  string
	Zones  int
	Events int
	Err    error
}

// Option configures a Collector.
type Option func(*Collector)

// WithClientOptions forwards options to every vendor API client the
// collector creates. Tests use this to point at a local server.
func WithClientOptions(opts ...safezone.Option) Option {
	return func(c *Collector) { c.clientOpts = opts }
}

// WithClock overrides the wall clock. Tests only.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// Collector runs collection cycles over a set of inputs. Inputs are
// processed sequentially in a single goroutine; the only shared external
// resource is the checkpoint store, keyed disjointly per input.
type Collector struct {
	resolver   creds.Resolver
	store      checkpoint.Store
	sink       sink.Sink
	clientOpts []safezone.Option
	now        func() time.Time
}

// New creates a Collector over the given collaborators.
func New(resolver creds.Resolver, store checkpoint.Store, snk sink.Sink, opts ...Option) *Collector {
	c := &Collector{
		resolver: resolver,
		store:    store,
		sink:     snk,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunCycle runs every input once, sequentially. One input's failure is
// logged and recorded in its RunResult but never blocks the others.
func (c *Collector) RunCycle(ctx context.Context, inputs []Input) []RunResult {
	results := make([]RunResult, 0, len(inputs))
	for _, in := range inputs {
		res := c.runInput(ctx, in)
		results = append(results, res)
		if res.Err != nil {
			metrics.RunsTotal.WithLabelValues(in.Name, errStatus(res.Err)).Inc()
		}
	}
	return results
}

// Run schedules inputs on their configured intervals until the context is
// cancelled. All runs happen on the calling goroutine; an input whose run
// overlaps its own interval simply starts late. Concurrent runs against the
// same account are thereby never produced by this process.
func (c *Collector) Run(ctx context.Context, inputs []Input) error {
	next := make([]time.Time, len(inputs)) // zero value: due immediately

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		now := c.now()
		for i, in := range inputs {
			if now.Before(next[i]) {
				continue
			}
			res := c.runInput(ctx, in)
			if res.Err != nil {
				metrics.RunsTotal.WithLabelValues(in.Name, errStatus(res.Err)).Inc()
			}
			interval := in.Interval
			if interval <= 0 {
				interval = defaultInterval
			}
			next[i] = c.now().Add(interval)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// runInput executes the full state machine for one input. The checkpoint is
// advanced only when every zone's records were fetched and emitted; events
// already emitted before a later failure stay emitted, which is the
// at-least-once trade-off.
func (c *Collector) runInput(ctx context.Context, in Input) RunResult {
	runID := strings.Split(uuid.NewString(), "-")[0]
	log := logrus.WithFields(logrus.Fields{
		"input":   in.Name,
		"account": in.Account,
		"run":     runID,
	})
	log.Info("input run starting")

	res := RunResult{Input: in.Name}
	now := c.now()

	account, err := c.resolver.Resolve(in.Account)
	if err != nil {
		res.Err = &ConfigError{Input: in.Name, Account: in.Account, Err: err}
		log.Errorf("aborting run: %s", res.Err)
		return res
	}

	key := checkpoint.Key(in.Name, in.Account)
	start, end := window.Compute(c.store, key, now)
	log.Debugf("collection window [%s, %s)", safezone.FormatWindowTime(start), safezone.FormatWindowTime(end))

	client := safezone.New(account, c.clientOpts...)

	zones, err := client.ListZones(ctx)
	if err != nil {
		res.Err = fmt.Errorf("list zones: %w", err)
		log.Errorf("aborting run: %s", res.Err)
		return res
	}
	res.Zones = len(zones)

	for _, zone := range zones {
		records, err := client.FetchRecords(ctx, zone.ID, start, end)
		if err != nil {
			res.Err = fmt.Errorf("fetch records for zone[%s]: %w", zone.ID, err)
			log.Errorf("aborting run: %s", res.Err)
			return res
		}
		for _, record := range records {
			event := flatten.Record(record, zone.ID)
			event.Index = in.Index
			if epoch, ok := parseEventTime(event.Timestamp); ok {
				event.Time = &epoch
			}
			if err := c.sink.Write(ctx, event); err != nil {
				res.Err = fmt.Errorf("emit event from zone[%s]: %w", zone.ID, err)
				log.Errorf("aborting run: %s", res.Err)
				return res
			}
			res.Events++
			metrics.EventsIngested.WithLabelValues(in.Name).Inc()
		}
	}

	// Buffered sinks must confirm delivery before the checkpoint moves;
	// otherwise a failed flush would strand events past an advanced window.
	if f, ok := c.sink.(sink.Flusher); ok {
		if err := f.Flush(); err != nil {
			res.Err = fmt.Errorf("flush sink: %w", err)
			log.Errorf("aborting run: %s", res.Err)
			return res
		}
	}

	if err := c.store.Set(key, checkpoint.New(end, now)); err != nil {
		res.Err = &CheckpointError{Key: key, Err: err}
		log.Errorf("run collected %d events but %s", res.Events, res.Err)
		return res
	}

	metrics.RunsTotal.WithLabelValues(in.Name, "success").Inc()
	metrics.LastSuccessfulRun.WithLabelValues(in.Name).Set(float64(c.now().Unix()))
	log.Infof("ingested %d events from %d zones into index[%s]", res.Events, res.Zones, in.Index)
	return res
}

// parseEventTime converts a raw vendor timestamp to epoch seconds. A
// trailing Z and fractional seconds are accepted; zone-less timestamps are
// taken as UTC. On failure ok is false and the sink assigns ingestion time.
func parseEventTime(raw string) (epoch float64, ok bool) {
	if raw == "" {
		return 0, false
	}
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"}
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, raw, time.UTC)
		if err != nil {
			continue
		}
		// Keep sub-second precision without float drift on whole seconds.
		sec := float64(t.Unix())
		if nanos := t.Nanosecond(); nanos != 0 {
			frac, _ := strconv.ParseFloat(fmt.Sprintf("0.%09d", nanos), 64)
			sec += frac
		}
		return sec, true
	}
	return 0, false
}
