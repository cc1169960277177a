package content

import "sync"

// ChangeType mirrors the Pending/Done/Cancelled lifecycle of a property
// change: a Player (or Playlist) observer sees Pending before the change is
// applied and Done (or Cancelled) afterwards, so consumers can suspend
// output for the duration of the change rather than reading torn state.
type ChangeType int

const (
	ChangePending ChangeType = iota
	ChangeDone
	ChangeCancelled
)

func (c ChangeType) String() string {
	switch c {
	case ChangePending:
		return "pending"
	case ChangeDone:
		return "done"
	case ChangeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// PropertyID identifies which field changed. The handful of composition-
// affecting IDs are published as constants; everything else is opaque to
// the core and only triggers a Changed notification, not a Piece rebuild.
type PropertyID int

const (
	PropertyPosition PropertyID = iota
	PropertyLength
	PropertyTrimStart
	PropertyTrimEnd
	PropertyPath
	PropertyVideoFrameType
	PropertySubtitleXOffset
	PropertySubtitleYOffset
	PropertySubtitleScale
	PropertyVideoCrop
	PropertyVideoScale
	PropertyVideoFrameRate
	PropertyAudioGain
	PropertyAudioMapping
)

// AffectsComposition reports whether a property change requires Piece
// reconstruction (a new decoder, a new frame-rate mapping) rather than just
// a repaint with the existing pieces.
func (p PropertyID) AffectsComposition() bool {
	switch p {
	case PropertyPosition, PropertyLength, PropertyTrimStart, PropertyTrimEnd,
		PropertyPath, PropertyVideoFrameType:
		return true
	default:
		return false
	}
}

// Change is a single notification: what changed, on which content (nil for
// playlist-structural changes), whether it's a rapid ("frequent") event a
// drag-coalescing consumer should throttle, and its lifecycle phase.
type Change struct {
	Type     ChangeType
	Content  *Content // nil for a structural Playlist change
	Property PropertyID
	Frequent bool
}

// ChangeFunc is a subscriber to a Playlist or Player's change stream.
type ChangeFunc func(Change)

// Signal is a minimal ordered pub-sub primitive: subscribers are invoked in
// registration order, with ConnectAtFront letting one subscriber (the
// Player) insert itself ahead of everyone else so it observes a Change before any
// consumer-facing code path reacts to it. This generalizes the signal/slot
// connection-ordering idiom from the original implementation into a plain
// Go slice of callbacks guarded by a mutex.
type Signal struct {
	mu   sync.Mutex
	subs []ChangeFunc
}

func (s *Signal) Connect(f ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, f)
}

// ConnectAtFront registers f so it is invoked before any previously or
// subsequently connected subscriber.
func (s *Signal) ConnectAtFront(f ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append([]ChangeFunc{f}, s.subs...)
}

func (s *Signal) Emit(c Change) {
	s.mu.Lock()
	subs := make([]ChangeFunc, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, f := range subs {
		f(c)
	}
}
