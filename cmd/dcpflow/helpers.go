// If you are AI: shared helpers for loading config and building a Butler
// out of a playlist file, used by the render and play subcommands.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"dcpflow/internal/butler"
	"dcpflow/internal/config"
	"dcpflow/internal/content"
	"dcpflow/internal/xmlio"
)

// shouldColorize reports whether writer is a terminal that can render
// ANSI colour, so fatih/color output only appears when it will render
// correctly (piped output, e.g. into a log file, stays plain).
func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadPlaylist(path string) (*content.Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open playlist %s: %w", path, err)
	}
	defer f.Close()
	return xmlio.LoadPlaylist(f)
}

func newButler(cfg *config.Config, pl *content.Playlist) (*butler.Butler, error) {
	tuning := config.DefaultTuningProfile()
	if cfg.Playback.TuningProfile != "" {
		loaded, err := config.LoadTuningProfile(cfg.Playback.TuningProfile)
		if err != nil {
			return nil, err
		}
		tuning = loaded
	}

	return butler.New(butler.Config{
		Playlist:       pl,
		DecoderFactory: newDecoderFactory(cfg.Playback.SampleRate),
		DCPRate:        cfg.Playback.DCPRate,
		SampleRate:     cfg.Playback.SampleRate,
		DCPChannels:    cfg.Playback.DCPChannels,
		VideoReadahead: tuning.VideoReadahead,
		PrepareWorkers: tuning.PrepareWorkers,
	})
}
