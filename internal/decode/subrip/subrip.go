// Package subrip implements decode.Decoder for plain SubRip (.srt) text
// subtitle files: no corpus example library parses this line-oriented
// text format, so it is hand-rolled here against the standard library,
// following the same Seek/Pass/Get pull shape as synthetic's decoders.
package subrip

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"dcpflow/internal/decode"
	"dcpflow/internal/timeline"
)

// cue is one parsed subtitle event.
type cue struct {
	From, To timeline.ContentTime
	Lines    []string
}

// Decoder serves a parsed .srt file's cues through the Decoder interface.
// It has no video or audio; HasSubtitle is its only true capability.
type Decoder struct {
	decode.Base
	path   string
	cues   []cue
	cursor int
}

// NewDecoder parses path as a SubRip file and returns a Decoder over its
// cues, sorted by start time.
func NewDecoder(path string) (*Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("subrip: open %s: %w", path, err)
	}
	defer f.Close()

	cues, err := parseSRT(f)
	if err != nil {
		return nil, fmt.Errorf("subrip: parse %s: %w", path, err)
	}
	sort.Slice(cues, func(i, j int) bool { return cues[i].From.Get() < cues[j].From.Get() })
	return &Decoder{path: path, cues: cues}, nil
}

func (d *Decoder) HasVideo() bool    { return false }
func (d *Decoder) HasAudio() bool    { return false }
func (d *Decoder) HasSubtitle() bool { return true }

func (d *Decoder) Seek(t timeline.ContentTime, accurate bool) error {
	d.cursor = sort.Search(len(d.cues), func(i int) bool {
		return d.cues[i].From.Get() >= t.Get()
	})
	return nil
}

func (d *Decoder) Pass() (bool, error) {
	if d.cursor >= len(d.cues) {
		return true, nil
	}
	c := d.cues[d.cursor]
	d.cursor++
	d.EmitTextSubtitle(contentTextSubtitle(c))
	return d.cursor >= len(d.cues), nil
}

func (d *Decoder) GetVideo(int64, bool) (decode.ContentVideo, error) {
	return decode.ContentVideo{}, fmt.Errorf("subrip: decoder has no video")
}

func (d *Decoder) GetAudio(int64, int, bool) (decode.ContentAudio, error) {
	return decode.ContentAudio{}, fmt.Errorf("subrip: decoder has no audio")
}

func (d *Decoder) GetImageSubtitles(from, to timeline.ContentTime) ([]decode.ContentImageSubtitle, error) {
	return nil, nil
}

func (d *Decoder) GetTextSubtitles(from, to timeline.ContentTime) ([]decode.ContentTextSubtitle, error) {
	var out []decode.ContentTextSubtitle
	for _, c := range d.cues {
		if c.From.Get() < to.Get() && from.Get() < c.To.Get() {
			out = append(out, contentTextSubtitle(c))
		}
	}
	return out, nil
}

func (d *Decoder) Close() error { return nil }

func contentTextSubtitle(c cue) decode.ContentTextSubtitle {
	lines := make([]decode.StyledLine, len(c.Lines))
	for i, text := range c.Lines {
		lines[i] = decode.StyledLine{
			Text:       text,
			FontSizePt: 42,
			VPosition:  0.9,
			VReference: decode.RefBottomOfSubtitle,
		}
	}
	return decode.ContentTextSubtitle{Lines: lines, From: c.From, To: c.To}
}

// parseSRT reads the classic numbered-block SubRip format:
//
//	1
//	00:00:01,000 --> 00:00:04,000
//	Line one
//	Line two
//
// blank line separated, repeated for each cue.
func parseSRT(f *os.File) ([]cue, error) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cues []cue
	var lines []string

	flush := func() error {
		if len(lines) == 0 {
			return nil
		}
		idx := 0
		if idx < len(lines) && isIndexLine(lines[idx]) {
			idx++
		}
		if idx >= len(lines) {
			lines = lines[:0]
			return nil
		}
		from, to, err := parseTimingLine(lines[idx])
		if err != nil {
			lines = lines[:0]
			return err
		}
		idx++
		cues = append(cues, cue{From: from, To: to, Lines: append([]string(nil), lines[idx:]...)})
		lines = lines[:0]
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cues, nil
}

func isIndexLine(s string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil
}

// parseTimingLine parses "00:00:01,000 --> 00:00:04,000" style lines.
func parseTimingLine(line string) (timeline.ContentTime, timeline.ContentTime, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return timeline.ContentTime{}, timeline.ContentTime{}, fmt.Errorf("malformed timing line %q", line)
	}
	from, err := parseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return timeline.ContentTime{}, timeline.ContentTime{}, err
	}
	to, err := parseTimestamp(strings.TrimSpace(firstField(parts[1])))
	if err != nil {
		return timeline.ContentTime{}, timeline.ContentTime{}, err
	}
	return from, to, nil
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}

// parseTimestamp parses "HH:MM:SS,mmm" into a ContentTime.
func parseTimestamp(s string) (timeline.ContentTime, error) {
	s = strings.Replace(s, ",", ".", 1)
	var h, m int
	var sec float64
	n, err := fmt.Sscanf(s, "%d:%d:%f", &h, &m, &sec)
	if err != nil || n != 3 {
		return timeline.ContentTime{}, fmt.Errorf("malformed timestamp %q", s)
	}
	seconds := float64(h)*3600 + float64(m)*60 + sec
	return timeline.NewContentTime(int64(seconds * float64(timeline.HZ))), nil
}
