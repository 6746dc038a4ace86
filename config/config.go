// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/reflectvm/pebble"
	"github.com/ava-labs/reflectvm/pubsub"
	"github.com/ava-labs/reflectvm/server"
	"github.com/ava-labs/reflectvm/trace"
)

// MemoryDatabase selects a database that lives only as long as the process.
const MemoryDatabase = ":memory:"

var (
	ErrMissingDatabase  = errors.New("database path is empty")
	ErrMissingNamespace = errors.New("metrics namespace is empty")
)

type Config struct {
	LogLevel string `yaml:"logLevel"`
	LogDir   string `yaml:"logDir"`

	// Directory of the pebble database or [MemoryDatabase]
	Database string `yaml:"database"`
	Genesis  string `yaml:"genesis"`

	HTTPAddress      string `yaml:"httpAddress"`
	MetricsNamespace string `yaml:"metricsNamespace"`

	Server server.Config `yaml:"server"`
	Stream pubsub.Config `yaml:"stream"`
	Trace  trace.Config  `yaml:"trace"`
	Pebble pebble.Config `yaml:"pebble"`
}

func Default() *Config {
	return &Config{
		LogLevel:         "info",
		LogDir:           ".reflect/logs",
		Database:         ".reflect/db",
		Genesis:          "genesis.json",
		HTTPAddress:      "127.0.0.1:9650",
		MetricsNamespace: "reflectvm",
		Trace: trace.Config{
			Enabled:    false,
			SampleRate: 1,
			Endpoint:   trace.DefaultEndpoint,
			AppName:    "reflectvm",
		},
		Server: server.NewDefaultConfig(),
		Stream: pubsub.NewDefaultConfig(),
		Pebble: pebble.NewDefaultConfig(),
	}
}

// Load parses [b] on top of [Default]. Fields missing from [b] keep their
// default value.
func Load(b []byte) (*Config, error) {
	c := Default()
	if len(b) > 0 {
		if err := yaml.UnmarshalStrict(b, c); err != nil {
			return nil, fmt.Errorf("%w: unable to parse config", err)
		}
	}
	return c, c.Verify()
}

// LoadFile reads the config at [path]. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Load(nil)
	}
	if err != nil {
		return nil, err
	}
	return Load(b)
}

func (c *Config) Verify() error {
	if _, err := c.GetLogLevel(); err != nil {
		return err
	}
	if len(c.Database) == 0 {
		return ErrMissingDatabase
	}
	if len(c.MetricsNamespace) == 0 {
		return ErrMissingNamespace
	}
	return c.Stream.Verify()
}

func (c *Config) GetLogLevel() (logging.Level, error) {
	return logging.ToLevel(c.LogLevel)
}

func (c *Config) InMemory() bool {
	return c.Database == MemoryDatabase
}

func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
