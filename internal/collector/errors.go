package collector

import (
	"errors"
	"fmt"

	"github.com/crimson-sun/szaudit/internal/safezone"
)

// ConfigError means credential or account resolution failed for an input.
// Fatal for that input's run; the checkpoint is untouched.
type ConfigError struct {
	Input   string
	Account string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config for input %q account %q: %v", e.Input, e.Account, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// CheckpointError means the checkpoint write after a successful run failed.
// The advance is not confirmed, so the next run repeats the window, a
// duplicate-delivery case the at-least-once model accepts.
type CheckpointError struct {
	Key string
	Err error
}

func (e *CheckpointError) Error() string {
	return fmt.Sprintf("checkpoint %q not advanced: %v", e.Key, e.Err)
}

func (e *CheckpointError) Unwrap() error { return e.Err }

// errStatus maps a run error to its metrics status label.
func errStatus(err error) string {
	var cfgErr *ConfigError
	var cpErr *CheckpointError
	var apiErr *safezone.APIError
	var parseErr *safezone.ParseError
	switch {
	case errors.As(err, &cfgErr):
		return "config"
	case errors.As(err, &cpErr):
		return "checkpoint"
	case errors.As(err, &apiErr):
		return "api"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "error"
	}
}
