// If you are AI: this file implements "dcpflow examine", which submits
// every playlist content item to an examine.Manager and prints the
// resulting status table once probing finishes.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"dcpflow/internal/content"
	"dcpflow/internal/examine"
)

func newExamineCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "examine <playlist.xml>",
		Short: "Probe every content item in a playlist and report the results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExamine(cmd, args[0], dbPath)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "dcpflow-examine.db", "examination result database path")

	return cmd
}

func runExamine(cmd *cobra.Command, playlistPath, dbPath string) error {
	pl, err := loadPlaylist(playlistPath)
	if err != nil {
		return err
	}

	store, err := examine.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	manager := examine.NewManager(store, statFileProber{}, 16)

	ctx, cancel := context.WithCancel(cmd.Context())
	go manager.Run(ctx)

	for _, c := range pl.Content() {
		if err := manager.Submit(ctx, c); err != nil {
			cancel()
			return fmt.Errorf("examine: submit %s: %w", c.ID, err)
		}
	}

	// Content has no "all submitted jobs finished" signal beyond polling
	// Store.Status, so give the single-worker queue a moment to drain
	// before reporting.
	time.Sleep(200 * time.Millisecond)
	cancel()
	manager.Wait()

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Content", "Kind", "Status"})
	for _, c := range pl.Content() {
		status, err := store.Status(cmd.Context(), c)
		if err != nil {
			status = "error: " + err.Error()
		}
		tw.AppendRow(table.Row{c.ID.String(), c.Kind.String(), status})
	}
	fmt.Fprintln(cmd.OutOrStdout(), tw.Render())

	return nil
}

// statFileProber is a minimal Prober that verifies a content item's
// backing paths exist and are readable; deep format probing (real
// frame rate/channel-count extraction from a container) is out of scope
// for this module, but the queue/store plumbing around it is real.
type statFileProber struct{}

func (statFileProber) Probe(ctx context.Context, c *content.Content) (examine.ExaminationRecord, error) {
	rec := examine.ExaminationRecord{ContentID: c.ID, Kind: c.Kind}
	if !c.PathsValid() {
		return rec, fmt.Errorf("no backing paths")
	}
	for _, p := range c.Paths {
		if _, err := os.Stat(p); err != nil {
			return rec, fmt.Errorf("stat %s: %w", p, err)
		}
	}
	if c.Video != nil {
		rate := c.Video.FrameRate
		rec.VideoFrameRate = &rate
	}
	if c.Audio != nil {
		channels := c.Audio.Channels
		rec.AudioChannels = &channels
	}
	length := c.LengthAfterTrim().Get()
	rec.LengthTicks = &length
	return rec, nil
}
