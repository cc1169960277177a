// If you are AI: This file validates configuration values and returns descriptive errors.

package config

import (
	"fmt"
)

// Validate checks that all configuration values are within acceptable ranges.
// Returns an error describing the first validation failure found.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Playback.Validate(); err != nil {
		return fmt.Errorf("playback config: %w", err)
	}
	return nil
}

// Validate checks server configuration values.
func (s *ServerConfig) Validate() error {
	if s.HealthPort <= 0 || s.HealthPort > 65535 {
		return fmt.Errorf("health_port must be between 1 and 65535, got %d", s.HealthPort)
	}
	if s.PreviewPort <= 0 || s.PreviewPort > 65535 {
		return fmt.Errorf("preview_port must be between 1 and 65535, got %d", s.PreviewPort)
	}
	if s.HealthPort == s.PreviewPort {
		return fmt.Errorf("health_port and preview_port must be different, both are %d", s.HealthPort)
	}
	return nil
}

// Validate checks playback configuration values.
func (p *PlaybackConfig) Validate() error {
	if p.DCPRate <= 0 {
		return fmt.Errorf("dcp_rate must be positive, got %g", p.DCPRate)
	}
	if p.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", p.SampleRate)
	}
	if p.DCPChannels <= 0 {
		return fmt.Errorf("dcp_channels must be positive, got %d", p.DCPChannels)
	}
	return nil
}
