// Package config loads the daemon configuration file (fireboltd.yaml).
// Device, app, and extension manifests are separate inputs loaded by
// pkg/manifest; this file configures the process itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fireboltd/fireboltd/pkg/broker"
)

// Log configures structured logging for the daemon.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Auth configures bearer-token auth on the session endpoint.
type Auth struct {
	Token string `yaml:"token"`
}

// Trace configures the OTLP trace exporter.
type Trace struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Config is the daemon configuration.
type Config struct {
	Listen       string        `yaml:"listen"`
	DataDir      string        `yaml:"dataDir"`
	ExtnManifest string        `yaml:"extnManifest"`
	AppLibrary   string        `yaml:"appLibrary"`
	APIVersion   string        `yaml:"apiVersion"`
	Auth         *Auth         `yaml:"auth"`
	Log          Log           `yaml:"log"`
	Trace        Trace         `yaml:"trace"`
	BrokerRules  []broker.Rule `yaml:"brokerRules"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Listen == "" {
		c.Listen = ":3473"
	}
	if c.DataDir == "" {
		home, _ := os.UserHomeDir()
		c.DataDir = filepath.Join(home, ".fireboltd")
	}
	if c.APIVersion == "" {
		c.APIVersion = "1.0.0"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	for _, rule := range c.BrokerRules {
		if rule.Pattern == "" || rule.Endpoint == "" {
			return fmt.Errorf("config: broker rule needs pattern and endpoint")
		}
	}
	return nil
}

// Load reads and parses a config file, expanding environment variables in
// string values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	cfg.Listen = os.ExpandEnv(cfg.Listen)
	cfg.DataDir = os.ExpandEnv(cfg.DataDir)
	cfg.ExtnManifest = os.ExpandEnv(cfg.ExtnManifest)
	cfg.AppLibrary = os.ExpandEnv(cfg.AppLibrary)
	if cfg.Auth != nil {
		cfg.Auth.Token = os.ExpandEnv(cfg.Auth.Token)
	}
	cfg.Trace.Endpoint = os.ExpandEnv(cfg.Trace.Endpoint)

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with defaults applied, for running without
// a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}
