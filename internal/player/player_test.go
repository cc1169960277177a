package player

import (
	"math"
	"testing"

	"dcpflow/internal/content"
	"dcpflow/internal/decode"
	"dcpflow/internal/decode/synthetic"
	"dcpflow/internal/timeline"
)

const dcpRate = 24.0

func factory(c *content.Content) (decode.Decoder, error) {
	if c.Video != nil {
		return synthetic.NewVideoDecoder(64, 64, c.Video.FrameRate, c.Length.Frames(c.Video.FrameRate)+1, nil), nil
	}
	return synthetic.NewAudioDecoder(48000, 2, 440, int64(c.Length.Seconds()*48000)+48000), nil
}

func newTestPlayer(t *testing.T) (*Player, *content.Playlist) {
	pl := content.NewPlaylist()
	v := content.NewContent(content.KindFFmpeg, []string{"v.mov"})
	v.Video = &content.VideoPart{FrameRate: dcpRate}
	v.Length = timeline.NewContentTime(dcpRate * timeline.HZ * 2) // 48 seconds
	pl.Add(v)

	p := New(pl, dcpRate)
	if err := p.Rebuild(factory); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	return p, pl
}

func TestGetVideoReturnsBlackFrameOutsideAnyPiece(t *testing.T) {
	p, _ := newTestPlayer(t)

	v, err := p.GetVideo(timeline.NewDCPTime(100 * timeline.HZ))
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if v.Image != nil {
		t.Fatal("expected a black frame (nil Image) outside any piece's span")
	}
}

func TestGetVideoReturnsImageInsidePiece(t *testing.T) {
	p, _ := newTestPlayer(t)

	v, err := p.GetVideo(timeline.NewDCPTime(0))
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if v.Image == nil {
		t.Fatal("expected a non-black frame inside the video piece's span")
	}
}

func TestRebuildAfterContentAddedPicksUpNewPiece(t *testing.T) {
	p, pl := newTestPlayer(t)

	audio := content.NewContent(content.KindSoundFile, []string{"a.wav"})
	audio.Audio = &content.AudioPart{FrameRate: 48000, Channels: 2, Mapping: content.NewAudioMapping(2, 2)}
	audio.Audio.Mapping.Map(0, 0)
	audio.Audio.Mapping.Map(1, 1)
	audio.Length = timeline.NewContentTime(timeline.HZ)
	pl.Add(audio)

	if err := p.Rebuild(factory); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	buf, err := p.GetAudio(timeline.NewDCPTime(0), 480, 48000, 2)
	if err != nil {
		t.Fatalf("GetAudio() error = %v", err)
	}
	if buf.Channels() != 2 {
		t.Fatalf("Channels() = %d, want 2", buf.Channels())
	}

	var nonZero bool
	for _, v := range buf.Data[0] {
		if v != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatal("expected accumulated audio to carry the sine wave through")
	}
}

func TestPlaceImageSubtitleScalesAboutCenterThenTranslates(t *testing.T) {
	r := decode.ImageRect{X: 0.4, Y: 0.8, W: 0.2, H: 0.1}
	tp := content.TextPart{XScale: 2, YScale: 1, XOffset: 0.05, YOffset: -0.02}

	got := placeImageSubtitle(r, tp)

	wantW, wantH := 0.4, 0.1
	if got.W != wantW || got.H != wantH {
		t.Fatalf("scaled size = (%v, %v), want (%v, %v)", got.W, got.H, wantW, wantH)
	}

	wantX := 0.4 + 0.1 - wantW/2 + 0.05
	wantY := 0.8 + 0.05 - wantH/2 - 0.02
	if math.Abs(got.X-wantX) > 1e-9 || math.Abs(got.Y-wantY) > 1e-9 {
		t.Fatalf("placed origin = (%v, %v), want (%v, %v)", got.X, got.Y, wantX, wantY)
	}
}
