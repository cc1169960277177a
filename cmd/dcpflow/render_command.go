// If you are AI: this file implements "dcpflow render", which drives a
// Butler over a playlist to completion and reports throughput.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dcpflow/internal/butler"
	"dcpflow/internal/discovery"
	"dcpflow/internal/writer"
)

func newRenderCommand(configFlag *string) *cobra.Command {
	var discoverPeers bool

	cmd := &cobra.Command{
		Use:   "render <playlist.xml>",
		Short: "Drive playback of a playlist to completion, discarding output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], *configFlag, discoverPeers)
		},
	}

	cmd.Flags().BoolVar(&discoverPeers, "discover", false, "report encode servers visible on the LAN before rendering")

	return cmd
}

func runRender(cmd *cobra.Command, playlistPath, configPath string, discoverPeers bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if discoverPeers {
		n, err := countEncodeServers(cmd.Context())
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "discovery: %v\n", err)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%d encode server(s) visible\n", n)
		}
	}

	pl, err := loadPlaylist(playlistPath)
	if err != nil {
		return err
	}

	b, err := newButler(cfg, pl)
	if err != nil {
		return fmt.Errorf("render: start butler: %w", err)
	}

	out := writer.NewNullWriter()
	start := time.Now()

	for {
		video, vt, err := b.GetVideo()
		if err == nil {
			if werr := out.WriteVideo(video, vt); werr != nil {
				_ = b.Stop(context.Background())
				return fmt.Errorf("render: write video: %w", werr)
			}
		} else if errors.Is(err, butler.ErrAgain) {
			time.Sleep(2 * time.Millisecond)
			continue
		} else if errors.Is(err, butler.ErrFinished) {
			break
		} else {
			_ = b.Stop(context.Background())
			return fmt.Errorf("render: %w", err)
		}

		for {
			samples, channels, at, audioErr := b.GetAudio()
			if audioErr != nil {
				break
			}
			if werr := out.WriteAudio(samples, channels, at); werr != nil {
				_ = b.Stop(context.Background())
				return fmt.Errorf("render: write audio: %w", werr)
			}
		}
	}

	elapsed := time.Since(start)
	if err := b.Stop(context.Background()); err != nil {
		return fmt.Errorf("render: stop: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("render: close writer: %w", err)
	}

	dst := cmd.OutOrStdout()
	done := "done"
	if shouldColorize(dst) {
		done = color.New(color.FgGreen).Sprint("done")
	}
	stats := out.Stats()
	fmt.Fprintf(dst, "%s %d video frames, %s audio samples in %s (final memory %s)\n",
		done, stats.VideoFrames, humanize.Comma(stats.AudioSamples), elapsed.Round(time.Millisecond),
		humanize.Bytes(uint64(b.MemoryUsed())))

	return nil
}

func countEncodeServers(ctx context.Context) (int, error) {
	finder := discovery.NewFinder(nil)
	browseCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	go finder.Browse(browseCtx, 500*time.Millisecond)

	seen := make(map[string]struct{})
	for {
		select {
		case srv := <-finder.Found():
			seen[srv.Name] = struct{}{}
		case <-browseCtx.Done():
			// Drain whatever browseOnce already buffered before the
			// deadline fired; Browse's own goroutine stops sending once
			// browseCtx is done.
			for {
				select {
				case srv := <-finder.Found():
					seen[srv.Name] = struct{}{}
				default:
					return len(seen), nil
				}
			}
		}
	}
}
