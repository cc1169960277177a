// Package hints runs a set of composable checks over a Playlist and
// renders the findings as a table, the Go equivalent of DCP-o-matic's
// hints/lint pass.
package hints

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"dcpflow/internal/content"
)

// Severity ranks a Finding.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Finding is one issue a Check surfaced.
type Finding struct {
	Severity Severity
	Content  *content.Content // nil for playlist-wide findings
	Message  string
}

// Check inspects a Playlist and returns zero or more Findings.
type Check func(*content.Playlist) []Finding

// Run applies every check in order and returns the combined findings.
func Run(pl *content.Playlist, checks []Check) []Finding {
	var out []Finding
	for _, c := range checks {
		out = append(out, c(pl)...)
	}
	return out
}

// DefaultChecks is the standard check set, covering the most common
// authoring mistakes.
func DefaultChecks() []Check {
	return []Check{
		CheckEmptyPlaylist,
		CheckNoVideo,
		CheckMissingPaths,
		CheckZeroLength,
		CheckOverlappingSubtitles,
	}
}

// CheckEmptyPlaylist flags a playlist with no content at all.
func CheckEmptyPlaylist(pl *content.Playlist) []Finding {
	if len(pl.Content()) == 0 {
		return []Finding{{Severity: SeverityError, Message: "playlist has no content"}}
	}
	return nil
}

// CheckNoVideo flags a playlist with no video content anywhere, which
// cannot be rendered to a DCP.
func CheckNoVideo(pl *content.Playlist) []Finding {
	for _, c := range pl.Content() {
		if c.Video != nil {
			return nil
		}
	}
	return []Finding{{Severity: SeverityError, Message: "playlist has no video content"}}
}

// CheckMissingPaths flags content whose backing paths are missing.
func CheckMissingPaths(pl *content.Playlist) []Finding {
	var out []Finding
	for _, c := range pl.Content() {
		if !c.PathsValid() {
			out = append(out, Finding{Severity: SeverityError, Content: c, Message: "content has no source path"})
		}
	}
	return out
}

// CheckZeroLength flags content with zero duration after trim, which
// would be invisible on the timeline.
func CheckZeroLength(pl *content.Playlist) []Finding {
	var out []Finding
	for _, c := range pl.Content() {
		if c.LengthAfterTrim().Get() <= 0 {
			out = append(out, Finding{Severity: SeverityWarning, Content: c, Message: "content has zero length after trim"})
		}
	}
	return out
}

// CheckOverlappingSubtitles flags two burned-in open subtitle tracks
// active at the same position, which would overlap on screen.
func CheckOverlappingSubtitles(pl *content.Playlist) []Finding {
	var burning []*content.Content
	for _, c := range pl.Content() {
		for _, tp := range c.Texts {
			if tp.Kind == content.TextOpenSubtitle && tp.Use && tp.Burn {
				burning = append(burning, c)
				break
			}
		}
	}

	var out []Finding
	for i := 0; i < len(burning); i++ {
		for j := i + 1; j < len(burning); j++ {
			a, b := burning[i], burning[j]
			pa := period(a)
			pb := period(b)
			if pa.Overlaps(pb) {
				out = append(out, Finding{
					Severity: SeverityWarning,
					Content:  a,
					Message:  fmt.Sprintf("burned-in subtitles overlap with content %s", b.ID),
				})
			}
		}
	}
	return out
}

func period(c *content.Content) timePeriod {
	return timePeriod{From: c.GetPosition().Get(), To: c.End().Get()}
}

type timePeriod struct{ From, To int64 }

func (p timePeriod) Overlaps(o timePeriod) bool { return p.From < o.To && o.From < p.To }

// Render writes findings as a table to w, one row per finding in the
// order given.
func Render(w io.Writer, findings []Finding) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Severity", "Content", "Message"})

	for _, f := range findings {
		id := "-"
		if f.Content != nil {
			id = f.Content.ID.String()
		}
		t.AppendRow(table.Row{f.Severity.String(), id, f.Message})
	}
	t.Render()
}
