package config

import "testing"

func TestServerConfigValidateRejectsSamePorts(t *testing.T) {
	s := ServerConfig{HealthPort: 8080, PreviewPort: 8080}
	if err := s.Validate(); err == nil {
		t.Fatal("expected an error when health_port equals preview_port")
	}
}

func TestServerConfigValidateRejectsOutOfRangePort(t *testing.T) {
	s := ServerConfig{HealthPort: 70000, PreviewPort: 8081}
	if err := s.Validate(); err == nil {
		t.Fatal("expected an error for an out-of-range port")
	}
}

func TestPlaybackConfigValidateRejectsNonPositive(t *testing.T) {
	cases := []PlaybackConfig{
		{DCPRate: 0, SampleRate: 48000, DCPChannels: 6},
		{DCPRate: 24, SampleRate: 0, DCPChannels: 6},
		{DCPRate: 24, SampleRate: 48000, DCPChannels: 0},
	}
	for _, c := range cases {
		if err := c.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want an error", c)
		}
	}
}
