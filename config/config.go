// Package config loads gripterra settings.
//
// Scalar settings (port, upstream, logging) are read with Viper so they can
// come from the config file, GRIPTERRA_* environment variables, or flags.
// The ENTITIES / EDGE_TABLES catalog in the same file is decoded separately
// with yaml.v3: Viper folds map keys to lower case and entity type names are
// case-sensitive.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/teranos/gripterra/catalog"
	"github.com/teranos/gripterra/errors"
)

// Config represents the complete gripterra configuration
type Config struct {
	Port       int            `mapstructure:"port"`
	Server     ServerConfig   `mapstructure:"server"`
	Upstream   UpstreamConfig `mapstructure:"upstream"`
	Log        LogConfig      `mapstructure:"log"`
	Namespaces []string       `mapstructure:"namespaces"` // scan filter; empty = all

	// Catalog is decoded from the ENTITIES / EDGE_TABLES sections.
	Catalog *catalog.Catalog `mapstructure:"-"`

	// File is the config file that was read, empty when none existed.
	File string `mapstructure:"-"`
}

// ServerConfig configures the gRPC graph source
type ServerConfig struct {
	MaxWorkers        int `mapstructure:"max_workers"`        // concurrent streaming calls
	LookupConcurrency int `mapstructure:"lookup_concurrency"` // concurrent GetRowsByID lookups per stream
}

// UpstreamConfig configures the entity store client
type UpstreamConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	Token             string  `mapstructure:"token"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"` // 0 = unlimited
	Burst             int     `mapstructure:"burst"`
	AllowPrivate      bool    `mapstructure:"allow_private"` // permit private/loopback hosts
}

// LogConfig configures logging output
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

// Timeout returns the per-request upstream timeout.
func (u UpstreamConfig) Timeout() time.Duration {
	if u.TimeoutSeconds <= 0 {
		return DefaultUpstreamTimeoutSeconds * time.Second
	}
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// Address returns the listen address for the gRPC server.
func (c *Config) Address() string {
	return fmt.Sprintf("[::]:%d", c.Port)
}

// Load reads configuration from path (if it exists), the environment, and
// flags. flags may be nil; only flags that were set override other sources.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := newViper()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	cfg := &Config{Catalog: catalog.New()}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrapf(err, "failed to read config file %s", path)
			}

			cat, err := catalog.ReadFile(path)
			if err != nil {
				return nil, err
			}
			cfg.Catalog = cat
			cfg.File = path
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to stat config file %s", path)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newViper initializes Viper with environment binding and defaults
func newViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("GRIPTERRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	BindSensitiveEnvVars(v)
	SetDefaults(v)

	return v
}

// flagKeys maps command-line flags onto configuration keys
var flagKeys = map[string]string{
	"port":         "port",
	"upstream-url": "upstream.base_url",
	"json-logs":    "log.json",
	"namespace":    "namespaces",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "failed to bind flag --%s", name)
		}
	}
	return nil
}
