// If you are AI: this file implements "dcpflow play", which drives a
// Butler and broadcasts every composed frame to the live preview
// websocket hub until the playlist ends or the process is interrupted.

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dcpflow/internal/butler"
	"dcpflow/internal/previewws"
	"dcpflow/internal/server"
	"dcpflow/internal/timeline"
)

func newPlayCommand(configFlag *string) *cobra.Command {
	var seekFlag string
	var muted bool

	cmd := &cobra.Command{
		Use:   "play <playlist.xml>",
		Short: "Play a playlist, streaming composed frames to the preview websocket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, args[0], *configFlag, seekFlag, muted)
		},
	}

	cmd.Flags().StringVar(&seekFlag, "seek", "", "start position as HH:MM:SS")
	cmd.Flags().BoolVar(&muted, "mute", false, "disable audio decoding/queuing")

	return cmd
}

func runPlay(cmd *cobra.Command, playlistPath, configPath, seekFlag string, muted bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	pl, err := loadPlaylist(playlistPath)
	if err != nil {
		return err
	}

	b, err := newButler(cfg, pl)
	if err != nil {
		return fmt.Errorf("play: start butler: %w", err)
	}
	defer b.Stop(context.Background())

	if muted {
		b.DisableAudio(true)
	}

	if seekFlag != "" {
		t, err := parseClockTime(seekFlag)
		if err != nil {
			return fmt.Errorf("play: %w", err)
		}
		b.Seek(timeline.DCPTimeFromSeconds(t))
	}

	srv := server.New(cfg)
	go func() {
		_ = srv.Start()
	}()
	defer srv.ShutdownWithTimeout()

	fmt.Fprintf(cmd.OutOrStdout(), "preview available on /preview; playing %s\n", playlistPath)

	return drivePlayback(ctx, b, srv.Preview)
}

func drivePlayback(ctx context.Context, b *butler.Butler, hub *previewws.Hub) error {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		video, _, err := b.GetVideo()
		switch {
		case err == nil:
			hub.Broadcast(video)
		case errors.Is(err, butler.ErrAgain):
			continue
		case errors.Is(err, butler.ErrFinished):
			return nil
		default:
			return fmt.Errorf("play: %w", err)
		}

		for {
			if _, _, _, audioErr := b.GetAudio(); audioErr != nil {
				break
			}
		}
	}
}

// parseClockTime parses "HH:MM:SS" or "MM:SS" into a seconds offset.
func parseClockTime(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed clock time %q: %w", s, err)
		}
		total = total*60 + v
	}
	return total, nil
}
