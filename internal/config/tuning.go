// This file defines the playback tuning profile, a TOML document kept
// separate from the YAML app config since it tunes Butler readahead and
// worker-pool behavior rather than describing the program's shape.

package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// TuningProfile holds Butler readahead and prepare-pool sizing knobs.
// Zero values mean "let the Butler pick its own default".
type TuningProfile struct {
	VideoReadahead int `toml:"video_readahead"`
	PrepareWorkers int `toml:"prepare_workers"`
}

// DefaultTuningProfile returns the profile the Butler falls back to when
// no tuning file is configured.
func DefaultTuningProfile() TuningProfile {
	return TuningProfile{
		VideoReadahead: 20,
		PrepareWorkers: 0,
	}
}

// LoadTuningProfile reads a TOML tuning profile from path. An empty path
// returns DefaultTuningProfile with no error.
func LoadTuningProfile(path string) (TuningProfile, error) {
	profile := DefaultTuningProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return TuningProfile{}, fmt.Errorf("read tuning profile: %w", err)
	}
	if err := toml.Unmarshal(data, &profile); err != nil {
		return TuningProfile{}, fmt.Errorf("decode tuning profile: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return TuningProfile{}, err
	}
	return profile, nil
}

// Validate checks that tuning values, if set, are sane.
func (t *TuningProfile) Validate() error {
	if t.VideoReadahead < 0 {
		return fmt.Errorf("video_readahead must not be negative, got %d", t.VideoReadahead)
	}
	if t.PrepareWorkers < 0 {
		return fmt.Errorf("prepare_workers must not be negative, got %d", t.PrepareWorkers)
	}
	return nil
}
