package hints

import (
	"testing"

	"dcpflow/internal/content"
	"dcpflow/internal/timeline"
)

func TestCheckEmptyPlaylist(t *testing.T) {
	pl := content.NewPlaylist()
	findings := CheckEmptyPlaylist(pl)
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
}

func TestCheckNoVideo(t *testing.T) {
	pl := content.NewPlaylist()
	a := content.NewContent(content.KindSoundFile, []string{"a.wav"})
	pl.Add(a)

	if findings := CheckNoVideo(pl); len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}

	v := content.NewContent(content.KindFFmpeg, []string{"v.mov"})
	v.Video = &content.VideoPart{FrameRate: 24}
	pl.Add(v)

	if findings := CheckNoVideo(pl); len(findings) != 0 {
		t.Fatalf("got %d findings, want 0 once video content is present", len(findings))
	}
}

func TestCheckMissingPaths(t *testing.T) {
	pl := content.NewPlaylist()
	c := content.NewContent(content.KindFFmpeg, nil)
	pl.Add(c)

	findings := CheckMissingPaths(pl)
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
}

func TestCheckOverlappingSubtitlesDetectsOverlap(t *testing.T) {
	pl := content.NewPlaylist()

	a := content.NewContent(content.KindSubRip, []string{"a.srt"})
	a.Length = timeline.NewContentTime(1000)
	a.Texts = append(a.Texts, burnedSubtitle())
	pl.Add(a)

	b := content.NewContent(content.KindSubRip, []string{"b.srt"})
	b.Length = timeline.NewContentTime(1000)
	b.SetPosition(timeline.NewDCPTime(500)) // overlaps a's [0,1000)
	b.Texts = append(b.Texts, burnedSubtitle())
	pl.Add(b)

	findings := CheckOverlappingSubtitles(pl)
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
}

func burnedSubtitle() content.TextPart {
	tp := content.DefaultTextPart()
	tp.Burn = true
	return tp
}
