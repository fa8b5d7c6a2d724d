package szaudit

import (
	"context"
	"fmt"

	"github.com/crimson-sun/szaudit/internal/checkpoint"
	"github.com/crimson-sun/szaudit/internal/collector"
	"github.com/crimson-sun/szaudit/internal/config"
	"github.com/crimson-sun/szaudit/internal/creds"
	"github.com/crimson-sun/szaudit/internal/sink"
	"github.com/crimson-sun/szaudit/internal/sink/file"
	"github.com/crimson-sun/szaudit/internal/sink/hec"
	"github.com/crimson-sun/szaudit/internal/sink/stdout"
)

// RunResult is the outcome of one input's run.
type RunResult = collector.RunResult

// Settings is the subset of loaded configuration the host process needs.
type Settings struct {
	LogLevel    string
	LogJSON     bool
	MetricsAddr string
}

// Collector is a fully wired audit collector.
type Collector struct {
	inner    *collector.Collector
	inputs   []collector.Input
	sink     sink.Sink
	store    checkpoint.Store
	settings Settings
}

// FromConfigFile loads configuration and wires up the collector: checkpoint
// store, credential resolver, event sink, and inputs.
func FromConfigFile(path string) (*Collector, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(cfg.Checkpoint)
	if err != nil {
		return nil, err
	}
	snk, err := buildSink(cfg.Sink)
	if err != nil {
		return nil, err
	}

	resolver := creds.NewStaticResolver(cfg.AccountMap())

	inputs := make([]collector.Input, 0, len(cfg.Inputs))
	for _, in := range cfg.Inputs {
		inputs = append(inputs, collector.Input{
			Name:     in.Name,
			Account:  in.Account,
			Index:    in.Index,
			Interval: in.Interval,
		})
	}

	return &Collector{
		inner:  collector.New(resolver, store, snk),
		inputs: inputs,
		sink:   snk,
		store:  store,
		settings: Settings{
			LogLevel:    cfg.LogLevel,
			LogJSON:     cfg.LogJSON,
			MetricsAddr: cfg.MetricsAddr,
		},
	}, nil
}

// Settings returns the host-facing settings from the loaded configuration.
func (c *Collector) Settings() Settings {
	return c.settings
}

// RunOnce runs every input once and returns the per-input results.
func (c *Collector) RunOnce(ctx context.Context) []RunResult {
	return c.inner.RunCycle(ctx, c.inputs)
}

// Run keeps collecting on each input's interval until ctx is cancelled.
func (c *Collector) Run(ctx context.Context) error {
	return c.inner.Run(ctx, c.inputs)
}

// Close flushes the sink and releases the checkpoint store.
func (c *Collector) Close() error {
	err := c.sink.Close()
	if closer, ok := c.store.(interface{ Close() error }); ok {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func buildStore(cfg config.CheckpointConfig) (checkpoint.Store, error) {
	switch cfg.Type {
	case "file":
		return checkpoint.NewFileStore(cfg.Dir)
	case "redis":
		return checkpoint.NewRedisStore(checkpoint.RedisOpts{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	default:
		return nil, fmt.Errorf("unknown checkpoint store type %q", cfg.Type)
	}
}

func buildSink(cfg config.SinkConfig) (sink.Sink, error) {
	switch cfg.Type {
	case "stdout":
		return stdout.New(cfg.Pretty), nil
	case "file":
		return file.New(cfg.Path)
	case "hec":
		return hec.New(cfg.URL, cfg.Token), nil
	default:
		return nil, fmt.Errorf("unknown sink type %q", cfg.Type)
	}
}
