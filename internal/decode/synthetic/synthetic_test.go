package synthetic

import (
	"testing"

	"dcpflow/internal/decode"
	"dcpflow/internal/timeline"
)

func TestVideoDecoderPassEmitsUntilDuration(t *testing.T) {
	d := NewVideoDecoder(16, 16, 24, 3, nil)

	var frames []int64
	d.OnVideo(func(v decode.ContentVideo) { frames = append(frames, v.FrameIndex) })

	for {
		done, err := d.Pass()
		if err != nil {
			t.Fatalf("Pass() error = %v", err)
		}
		if done {
			break
		}
	}

	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	for i, f := range frames {
		if f != int64(i) {
			t.Fatalf("frames[%d] = %d, want %d", i, f, i)
		}
	}
}

func TestVideoDecoderSeekRepositionsCursor(t *testing.T) {
	d := NewVideoDecoder(16, 16, 24, 10, nil)
	if err := d.Seek(timeline.ContentTimeFromFrames(5, 24), true); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}

	var got int64 = -1
	d.OnVideo(func(v decode.ContentVideo) { got = v.FrameIndex })
	if _, err := d.Pass(); err != nil {
		t.Fatalf("Pass() error = %v", err)
	}
	if got != 5 {
		t.Fatalf("first frame after seek = %d, want 5", got)
	}
}

func TestAudioDecoderGetAudioClipsToRemainingDuration(t *testing.T) {
	d := NewAudioDecoder(48000, 2, 440, 100)
	ca, err := d.GetAudio(90, 50, true)
	if err != nil {
		t.Fatalf("GetAudio() error = %v", err)
	}
	if got := ca.Buffer.Frames(); got != 10 {
		t.Fatalf("GetAudio returned %d frames, want 10 (clipped to remaining duration)", got)
	}
}

func TestAudioDecoderPassProducesNonSilentSamples(t *testing.T) {
	d := NewAudioDecoder(48000, 1, 440, 4800)
	var got *decode.AudioBuffers
	d.OnAudio(func(a decode.ContentAudio) { got = a.Buffer })

	if _, err := d.Pass(); err != nil {
		t.Fatalf("Pass() error = %v", err)
	}
	if got == nil {
		t.Fatal("expected an emitted audio buffer")
	}

	var nonZero bool
	for _, v := range got.Data[0] {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatal("expected a non-silent sine wave")
	}
}
