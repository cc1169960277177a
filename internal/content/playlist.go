package content

import (
	"sync"

	"dcpflow/internal/timeline"
)

// Playlist is an ordered set of Content. It publishes structural changes
// (add/remove/reorder) via Changed and per-content property changes via
// ContentChanged, so that Player can decide whether a change needs a full
// Piece rebuild or just a repaint.
type Playlist struct {
	mu       sync.RWMutex
	contents []*Content

	changed        *Signal
	contentChanged *Signal
}

func NewPlaylist() *Playlist {
	return &Playlist{
		changed:        &Signal{},
		contentChanged: &Signal{},
	}
}

// OnChanged subscribes to structural (add/remove) changes.
func (p *Playlist) OnChanged(f ChangeFunc) { p.changed.Connect(f) }

// OnChangedAtFront subscribes ahead of all other structural subscribers.
func (p *Playlist) OnChangedAtFront(f ChangeFunc) { p.changed.ConnectAtFront(f) }

// OnContentChanged subscribes to per-content property changes.
func (p *Playlist) OnContentChanged(f ChangeFunc) { p.contentChanged.Connect(f) }

// OnContentChangedAtFront subscribes ahead of all other property-change
// subscribers -- the Player uses this (and forwards to the Butler through
// Player.OnChange) so a change is seen before any consumer-facing
// get_video/get_audio call can race it.
func (p *Playlist) OnContentChangedAtFront(f ChangeFunc) { p.contentChanged.ConnectAtFront(f) }

// Add appends c to the playlist and starts forwarding its property
// changes, then emits a structural Changed.
func (p *Playlist) Add(c *Content) {
	p.mu.Lock()
	p.contents = append(p.contents, c)
	p.mu.Unlock()

	c.OnChange(func(ch Change) {
		p.contentChanged.Emit(ch)
	})

	p.changed.Emit(Change{Type: ChangeDone})
}

// Remove deletes c from the playlist, emitting a structural Changed.
func (p *Playlist) Remove(c *Content) {
	p.mu.Lock()
	for i, existing := range p.contents {
		if existing == c {
			p.contents = append(p.contents[:i], p.contents[i+1:]...)
			break
		}
	}
	p.mu.Unlock()

	p.changed.Emit(Change{Type: ChangeDone})
}

// Content returns a snapshot of the playlist's contents in order.
func (p *Playlist) Content() []*Content {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Content, len(p.contents))
	copy(out, p.contents)
	return out
}

// Overlapping returns, in playlist order, the contents whose
// [Position, End) span contains t and for which match returns true. This
// is O(N) per the spec's invariant; a playlist large enough to need better
// is out of scope.
func (p *Playlist) Overlapping(t timeline.DCPTime, match func(*Content) bool) []*Content {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []*Content
	for _, c := range p.contents {
		if !match(c) {
			continue
		}
		period := timeline.DCPTimePeriod{From: c.GetPosition(), To: c.End()}
		if period.Contains(t) {
			out = append(out, c)
		}
	}
	return out
}

// BestOverlap finds, among video contents, the one whose [Position, End)
// span overlaps other the most, used as the fallback frame-rate source for
// audio/subtitle-only content with no video part of its own.
func (p *Playlist) BestOverlap(other *Content) (*Content, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	otherPeriod := timeline.DCPTimePeriod{From: other.GetPosition(), To: other.End()}

	var best *Content
	var bestOverlap int64
	for _, c := range p.contents {
		if c.Video == nil {
			continue
		}
		cPeriod := timeline.DCPTimePeriod{From: c.GetPosition(), To: c.End()}
		overlap := overlapTicks(otherPeriod, cPeriod)
		if overlap > bestOverlap {
			best = c
			bestOverlap = overlap
		}
	}
	return best, best != nil
}

func overlapTicks(a, b timeline.DCPTimePeriod) int64 {
	from := a.From
	if b.From.Compare(from) > 0 {
		from = b.From
	}
	to := a.To
	if b.To.Compare(to) < 0 {
		to = b.To
	}
	d := to.Sub(from).Get()
	if d < 0 {
		return 0
	}
	return d
}
