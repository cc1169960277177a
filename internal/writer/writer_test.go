package writer

import (
	"testing"

	"dcpflow/internal/player"
	"dcpflow/internal/timeline"
)

func TestNullWriterCountsVideoAndAudio(t *testing.T) {
	w := NewNullWriter()

	if err := w.WriteVideo(&player.Video{}, timeline.NewDCPTime(0)); err != nil {
		t.Fatalf("WriteVideo: %v", err)
	}
	if err := w.WriteVideo(&player.Video{}, timeline.NewDCPTime(1)); err != nil {
		t.Fatalf("WriteVideo: %v", err)
	}

	samples := make([]float32, 6) // 2 channels, 3 frames
	if err := w.WriteAudio(samples, 2, timeline.NewDCPTime(0)); err != nil {
		t.Fatalf("WriteAudio: %v", err)
	}

	stats := w.Stats()
	if stats.VideoFrames != 2 {
		t.Errorf("VideoFrames = %d, want 2", stats.VideoFrames)
	}
	if stats.AudioSamples != 3 {
		t.Errorf("AudioSamples = %d, want 3", stats.AudioSamples)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNullWriterIgnoresZeroChannelAudio(t *testing.T) {
	w := NewNullWriter()
	if err := w.WriteAudio(nil, 0, timeline.NewDCPTime(0)); err != nil {
		t.Fatalf("WriteAudio: %v", err)
	}
	if w.Stats().AudioSamples != 0 {
		t.Errorf("AudioSamples = %d, want 0", w.Stats().AudioSamples)
	}
}
