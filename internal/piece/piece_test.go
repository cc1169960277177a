package piece

import (
	"testing"

	"dcpflow/internal/content"
	"dcpflow/internal/decode"
	"dcpflow/internal/decode/synthetic"
	"dcpflow/internal/timeline"
)

func newFactory() DecoderFactory {
	return func(c *content.Content) (decode.Decoder, error) {
		if c.Video != nil {
			return synthetic.NewVideoDecoder(64, 64, c.Video.FrameRate, c.Length.Frames(c.Video.FrameRate), nil), nil
		}
		return synthetic.NewAudioDecoder(48000, 2, 440, int64(c.Length.Seconds()*48000)), nil
	}
}

func TestSetupBuildsOnePiecePerContent(t *testing.T) {
	pl := content.NewPlaylist()
	v := content.NewContent(content.KindFFmpeg, []string{"v.mov"})
	v.Video = &content.VideoPart{FrameRate: 24}
	v.Length = timeline.NewContentTime(24 * timeline.HZ)
	pl.Add(v)

	pieces, err := Setup(pl, nil, newFactory(), 24)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if len(pieces) != 1 {
		t.Fatalf("got %d pieces, want 1", len(pieces))
	}
	if pieces[0].Content != v {
		t.Fatal("piece does not reference the original content")
	}
}

func TestSetupReusesDecoderAcrossRebuild(t *testing.T) {
	pl := content.NewPlaylist()
	v := content.NewContent(content.KindFFmpeg, []string{"v.mov"})
	v.Video = &content.VideoPart{FrameRate: 24}
	v.Length = timeline.NewContentTime(24 * timeline.HZ)
	pl.Add(v)

	factory := newFactory()
	first, err := Setup(pl, nil, factory, 24)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	second, err := Setup(pl, first, factory, 24)
	if err != nil {
		t.Fatalf("Setup() (rebuild) error = %v", err)
	}

	if first[0].Decoder != second[0].Decoder {
		t.Fatal("expected the decoder to be reused across rebuild")
	}
}

func TestSetupSkipsInvalidPaths(t *testing.T) {
	pl := content.NewPlaylist()
	noPath := content.NewContent(content.KindFFmpeg, nil)
	noPath.Video = &content.VideoPart{FrameRate: 24}
	pl.Add(noPath)

	pieces, err := Setup(pl, nil, newFactory(), 24)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if len(pieces) != 0 {
		t.Fatalf("got %d pieces, want 0 for content with no paths", len(pieces))
	}
}
