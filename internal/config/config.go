// Package config loads collector configuration from a YAML file with
// SZAUDIT_* environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/crimson-sun/szaudit/internal/model"
)

// Config holds all szaudit configuration.
type Config struct {
	LogLevel    string `mapstructure:"log_level"`
	LogJSON     bool   `mapstructure:"log_json"`
	MetricsAddr string `mapstructure:"metrics_addr"`

	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	Sink       SinkConfig       `mapstructure:"sink"`
	Accounts   []AccountConfig  `mapstructure:"accounts"`
	Inputs     []InputConfig    `mapstructure:"inputs"`
}

// CheckpointConfig selects and configures the checkpoint store backend.
type CheckpointConfig struct {
	Type  string      `mapstructure:"type"` // "file" or "redis"
	Dir   string      `mapstructure:"dir"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection settings for the redis checkpoint store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SinkConfig selects and configures the event sink.
type SinkConfig struct {
	Type   string `mapstructure:"type"` // "stdout", "file", or "hec"
	Pretty bool   `mapstructure:"pretty"`
	Path   string `mapstructure:"path"`
	URL    string `mapstructure:"url"`
	Token  string `mapstructure:"token"`
}

// AccountConfig is one vendor account's credentials. Username and Password
// are optional; Customername selects the API host.
type AccountConfig struct {
	Name         string `mapstructure:"name"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	CustomerName string `mapstructure:"customername"`
}

// InputConfig is one logical collection input.
type InputConfig struct {
	Name     string        `mapstructure:"name"`
	Account  string        `mapstructure:"account"`
	Index    string        `mapstructure:"index"`
	Interval time.Duration `mapstructure:"interval"`
}

// Load reads configuration from the given file, applying defaults and
// SZAUDIT_* environment overrides, then validates cross-references.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("SZAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("checkpoint.type", "file")
	v.SetDefault("checkpoint.dir", "state")
	v.SetDefault("sink.type", "stdout")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if len(c.Inputs) == 0 {
		return fmt.Errorf("config: no inputs defined")
	}
	accounts := make(map[string]bool, len(c.Accounts))
	for _, a := range c.Accounts {
		if a.Name == "" {
			return fmt.Errorf("config: account without a name")
		}
		if a.CustomerName == "" {
			return fmt.Errorf("config: account %q has no customername", a.Name)
		}
		accounts[a.Name] = true
	}
	for _, in := range c.Inputs {
		if in.Name == "" {
			return fmt.Errorf("config: input without a name")
		}
		if !accounts[in.Account] {
			return fmt.Errorf("config: input %q references unknown account %q", in.Name, in.Account)
		}
	}
	switch c.Sink.Type {
	case "stdout":
	case "file":
		if c.Sink.Path == "" {
			return fmt.Errorf("config: file sink needs a path")
		}
	case "hec":
		if c.Sink.URL == "" || c.Sink.Token == "" {
			return fmt.Errorf("config: hec sink needs url and token")
		}
	default:
		return fmt.Errorf("config: unknown sink type %q", c.Sink.Type)
	}
	switch c.Checkpoint.Type {
	case "file":
	case "redis":
		if c.Checkpoint.Redis.Addr == "" {
			return fmt.Errorf("config: redis checkpoint store needs an addr")
		}
	default:
		return fmt.Errorf("config: unknown checkpoint store type %q", c.Checkpoint.Type)
	}
	return nil
}

// AccountMap converts configured accounts to resolver form.
func (c Config) AccountMap() map[string]model.Account {
	m := make(map[string]model.Account, len(c.Accounts))
	for _, a := range c.Accounts {
		m[a.Name] = model.Account{
			Username:     a.Username,
			Password:     a.Password,
			CustomerName: a.CustomerName,
		}
	}
	return m
}
