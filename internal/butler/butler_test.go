package butler

import (
	"context"
	"errors"
	"testing"
	"time"

	"dcpflow/internal/content"
	"dcpflow/internal/decode"
	"dcpflow/internal/decode/synthetic"
	"dcpflow/internal/timeline"
)

const testDCPRate = 24.0

func testFactory(c *content.Content) (decode.Decoder, error) {
	if c.Video != nil {
		return synthetic.NewVideoDecoder(64, 64, c.Video.FrameRate, c.Length.Frames(c.Video.FrameRate)+1, nil), nil
	}
	return synthetic.NewAudioDecoder(48000, 2, 440, int64(c.Length.Seconds()*48000)+48000), nil
}

func newTestButler(t *testing.T) *Butler {
	b, _ := newTestButlerWithContent(t)
	return b
}

func newTestButlerWithContent(t *testing.T) (*Butler, *content.Content) {
	pl := content.NewPlaylist()
	v := content.NewContent(content.KindFFmpeg, []string{"v.mov"})
	v.Video = &content.VideoPart{FrameRate: testDCPRate}
	v.Length = timeline.NewContentTime(testDCPRate * timeline.HZ)
	pl.Add(v)

	b, err := New(Config{
		Playlist:       pl,
		DecoderFactory: testFactory,
		DCPRate:        testDCPRate,
		SampleRate:     48000,
		DCPChannels:    2,
		VideoReadahead: minVideoReadahead,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return b, v
}

func TestButlerProducesVideoFrames(t *testing.T) {
	b := newTestButler(t)
	defer stopButler(t, b)

	deadline := time.Now().Add(2 * time.Second)
	var got int
	for time.Now().Before(deadline) && got < 5 {
		_, _, err := b.GetVideo()
		if errors.Is(err, ErrAgain) {
			time.Sleep(time.Millisecond)
			continue
		}
		if err != nil {
			t.Fatalf("GetVideo() error = %v", err)
		}
		got++
	}
	if got < 5 {
		t.Fatalf("only received %d video frames before deadline", got)
	}
}

func TestButlerSeekClearsReadaheadAndResumes(t *testing.T) {
	b := newTestButler(t)
	defer stopButler(t, b)

	waitForAny := func() {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			_, _, err := b.GetVideo()
			if err == nil {
				return
			}
			if !errors.Is(err, ErrAgain) {
				t.Fatalf("GetVideo() error = %v", err)
			}
			time.Sleep(time.Millisecond)
		}
		t.Fatal("timed out waiting for a video frame")
	}
	waitForAny()

	b.Seek(timeline.NewDCPTime(0))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_, pos, err := b.GetVideo()
		if errors.Is(err, ErrAgain) {
			time.Sleep(time.Millisecond)
			continue
		}
		if err != nil {
			t.Fatalf("GetVideo() after seek error = %v", err)
		}
		if pos.Get() < 0 {
			t.Fatal("unexpected negative position after seek")
		}
		return
	}
	t.Fatal("timed out waiting for a frame after seek")
}

func TestButlerSuspendsDuringPendingChangeAndReseeksOnDone(t *testing.T) {
	b, v := newTestButlerWithContent(t)
	defer stopButler(t, b)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.video.Len() >= 3 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if b.video.Len() < 3 {
		t.Fatal("timed out waiting for readahead to fill")
	}

	v.Notify(content.ChangePending, content.PropertyPosition, false)

	if _, _, err := b.GetVideo(); !errors.Is(err, ErrAgain) {
		t.Fatalf("GetVideo() during pending change error = %v, want ErrAgain", err)
	}

	v.Notify(content.ChangeDone, content.PropertyPosition, false)

	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		b.mu.Lock()
		suspended := b.suspended
		b.mu.Unlock()
		if suspended == 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	b.mu.Lock()
	suspended := b.suspended
	b.mu.Unlock()
	if suspended != 0 {
		t.Fatalf("suspended = %d after matched Pending/Done, want 0", suspended)
	}

	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_, _, err := b.GetVideo()
		if err == nil {
			return
		}
		if !errors.Is(err, ErrAgain) {
			t.Fatalf("GetVideo() after change settled error = %v", err)
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for a frame after the change settled")
}

func TestButlerSuspensionNeverGoesNegative(t *testing.T) {
	b, v := newTestButlerWithContent(t)
	defer stopButler(t, b)

	v.Notify(content.ChangeDone, content.PropertyPosition, false)
	v.Notify(content.ChangeCancelled, content.PropertyPosition, false)

	b.mu.Lock()
	suspended := b.suspended
	b.mu.Unlock()
	if suspended != 0 {
		t.Fatalf("suspended = %d after unmatched Done/Cancelled, want 0", suspended)
	}
}

func stopButler(t *testing.T, b *Butler) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}
