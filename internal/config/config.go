// This file defines the configuration structure for dcpflow.
// It uses strict YAML decoding and explicit defaults.

package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the complete program configuration.
// All fields must have explicit defaults or be required.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Playback PlaybackConfig `yaml:"playback"`
}

// ServerConfig defines HTTP server settings.
type ServerConfig struct {
	HealthPort  int `yaml:"health_port"`  // Port for health endpoint
	PreviewPort int `yaml:"preview_port"` // Validated only; /preview is served on HealthPort
}

// PlaybackConfig defines the DCP container properties composition runs
// at.
type PlaybackConfig struct {
	DCPRate     float64 `yaml:"dcp_rate"`
	SampleRate  int     `yaml:"sample_rate"`
	DCPChannels int     `yaml:"dcp_channels"`
	// TuningProfile names a TOML file of Butler readahead tuning
	// constants, kept separate from this YAML document since it tunes
	// runtime performance rather than describing the program's shape.
	TuningProfile string `yaml:"tuning_profile,omitempty"`
}

// Default returns a Config populated with the same defaults Load applies
// to an unset file, for callers (e.g. the CLI) that run without an
// explicit config path.
func Default() Config {
	var cfg Config
	cfg.setDefaults()
	return cfg
}

// Load reads configuration from a YAML file.
// Returns an error if the file cannot be read or decoded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields

	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Apply defaults
	cfg.setDefaults()

	return &cfg, nil
}

// setDefaults applies explicit default values to unset fields.
func (c *Config) setDefaults() {
	if c.Server.HealthPort == 0 {
		c.Server.HealthPort = 8080
	}
	if c.Server.PreviewPort == 0 {
		c.Server.PreviewPort = 8081
	}
	if c.Playback.DCPRate == 0 {
		c.Playback.DCPRate = 24
	}
	if c.Playback.SampleRate == 0 {
		c.Playback.SampleRate = 48000
	}
	if c.Playback.DCPChannels == 0 {
		c.Playback.DCPChannels = 6
	}
}
