package subrip

import (
	"os"
	"path/filepath"
	"testing"

	"dcpflow/internal/decode"
	"dcpflow/internal/timeline"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:04,500
Hello there
General Kenobi

2
00:00:05,000 --> 00:00:06,000
Single line cue
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.srt")
	if err := os.WriteFile(path, []byte(sampleSRT), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestNewDecoderParsesCues(t *testing.T) {
	d, err := NewDecoder(writeSample(t))
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	if len(d.cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(d.cues))
	}
	if len(d.cues[0].Lines) != 2 {
		t.Fatalf("expected 2 lines in first cue, got %d", len(d.cues[0].Lines))
	}
	if d.cues[0].Lines[0] != "Hello there" {
		t.Fatalf("unexpected first line: %q", d.cues[0].Lines[0])
	}
}

func TestGetTextSubtitlesFiltersByWindow(t *testing.T) {
	d, err := NewDecoder(writeSample(t))
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}

	from := timeline.NewContentTime(0)
	to := timeline.NewContentTime(int64(4.7 * float64(timeline.HZ)))
	cues, err := d.GetTextSubtitles(from, to)
	if err != nil {
		t.Fatalf("GetTextSubtitles: %v", err)
	}
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue overlapping [0, 4.7s), got %d", len(cues))
	}
}

func TestPassEmitsEveryCueThenReportsDone(t *testing.T) {
	d, err := NewDecoder(writeSample(t))
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}

	var emitted []string
	d.OnTextSubtitle(func(s decode.ContentTextSubtitle) {
		for _, l := range s.Lines {
			emitted = append(emitted, l.Text)
		}
	})

	for {
		done, err := d.Pass()
		if err != nil {
			t.Fatalf("Pass: %v", err)
		}
		if done {
			break
		}
	}

	if len(emitted) != 3 {
		t.Fatalf("expected 3 emitted lines, got %d: %v", len(emitted), emitted)
	}
}
