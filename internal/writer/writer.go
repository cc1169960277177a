// Package writer defines the consumer-side sink a Butler's output is
// delivered to once composed: a real implementation would serialize an
// MXF/XML DCP asset, which is out of scope per this module (only the
// interface is specified, the same way internal/decode only specifies
// the decoder pull API). NullWriter is the concrete stand-in exercised
// by the render CLI command.
package writer

import (
	"dcpflow/internal/player"
	"dcpflow/internal/timeline"
)

// Writer consumes composed playback output. WriteVideo/WriteAudio are
// called once per Butler.GetVideo/GetAudio result; Close flushes and
// releases any resources.
type Writer interface {
	WriteVideo(v *player.Video, t timeline.DCPTime) error
	WriteAudio(samples []float32, channels int, t timeline.DCPTime) error
	Close() error
}

// Stats accumulates the counters NullWriter tracks.
type Stats struct {
	VideoFrames  int64
	AudioSamples int64
}

// NullWriter discards everything it is given, counting frames and
// samples instead of serializing them -- the stand-in for a real DCP
// writer that this module does not implement.
type NullWriter struct {
	stats Stats
}

// NewNullWriter returns a NullWriter ready to count output.
func NewNullWriter() *NullWriter {
	return &NullWriter{}
}

func (w *NullWriter) WriteVideo(v *player.Video, t timeline.DCPTime) error {
	w.stats.VideoFrames++
	return nil
}

func (w *NullWriter) WriteAudio(samples []float32, channels int, t timeline.DCPTime) error {
	if channels > 0 {
		w.stats.AudioSamples += int64(len(samples) / channels)
	}
	return nil
}

func (w *NullWriter) Close() error { return nil }

// Stats returns the counters accumulated so far.
func (w *NullWriter) Stats() Stats { return w.stats }
