// If you are AI: this file defines the Content/Playlist value model and
// its change-notification pub-sub.
package content

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"dcpflow/internal/timeline"
)

// Kind tags which decoder family a Content item needs. The original
// implementation expressed this as a class hierarchy (VideoContent,
// AudioContent, FFmpegContent, DCPContent, ...); here it is a value plus
// independent optional sub-parts, per the spec's redesign note.
type Kind int

const (
	KindFFmpeg Kind = iota
	KindImageSequence
	KindSoundFile
	KindSubRip
	KindDCP
)

func (k Kind) String() string {
	switch k {
	case KindFFmpeg:
		return "ffmpeg"
	case KindImageSequence:
		return "image"
	case KindSoundFile:
		return "sound"
	case KindSubRip:
		return "subrip"
	case KindDCP:
		return "dcp"
	default:
		return "unknown"
	}
}

// VideoPart describes the video sub-part of a Content item.
type VideoPart struct {
	FrameRate float64
	Crop      Crop
	Scale     Scale
	Colour    ColourConversion
	// FrameType distinguishes 2D from 3D (left/right eye interleaving);
	// changing it affects composition because it changes how many source
	// frames map to one DCP frame.
	FrameType VideoFrameType
}

type VideoFrameType int

const (
	VideoFrameType2D VideoFrameType = iota
	VideoFrameType3DLeftRight
	VideoFrameType3DAlternate
)

// Crop is in pixels, from each edge of the source frame.
type Crop struct {
	Left, Right, Top, Bottom int
}

// Scale describes how a source frame is fitted into the DCP container;
// Approximate rounds output dimensions down to a multiple of 4, which
// some decoders require for chroma subsampling.
type Scale struct {
	Ratio       string // e.g. "178" for 1.78:1, "" for content's own ratio
	Approximate bool
}

// ColourConversion names a colour-space conversion matrix/transfer
// function; the actual matrices are an external collaborator (colour
// science is explicitly out of scope) so this is just an identifying tag.
type ColourConversion struct {
	Name string
}

// AudioPart describes the audio sub-part of a Content item.
type AudioPart struct {
	FrameRate int
	Channels  int
	GainDB    float64
	Mapping   AudioMapping
	// DelayMs is carried but never applied -- spec 9's open question:
	// audio_delay handling is left at 0 until the upstream behavior is
	// clarified.
	DelayMs int
}

// AudioMapping maps content channel -> DCP channel -> gain multiplier.
// Zero means "not mapped" so that get_audio only accumulates channels the
// author explicitly routed.
type AudioMapping struct {
	// Gain[contentChannel][dcpChannel] = linear gain, 0 if unmapped.
	Gain [][]float64
}

func NewAudioMapping(contentChannels, dcpChannels int) AudioMapping {
	g := make([][]float64, contentChannels)
	for i := range g {
		g[i] = make([]float64, dcpChannels)
	}
	return AudioMapping{Gain: g}
}

// Map routes contentChannel to dcpChannel at unity gain.
func (m AudioMapping) Map(contentChannel, dcpChannel int) {
	if contentChannel < 0 || contentChannel >= len(m.Gain) {
		return
	}
	if dcpChannel < 0 || dcpChannel >= len(m.Gain[contentChannel]) {
		return
	}
	m.Gain[contentChannel][dcpChannel] = 1.0
}

func (m AudioMapping) Get(contentChannel, dcpChannel int) float64 {
	if contentChannel < 0 || contentChannel >= len(m.Gain) {
		return 0
	}
	if dcpChannel < 0 || dcpChannel >= len(m.Gain[contentChannel]) {
		return 0
	}
	return m.Gain[contentChannel][dcpChannel]
}

func (m AudioMapping) ContentChannels() int { return len(m.Gain) }

// TextKind distinguishes the two subtitle/caption families the spec
// names: OPEN (burned in or rendered as an overlay) vs CLOSED_CAPTION
// (delivered as a side channel, never burned in).
type TextKind int

const (
	TextOpenSubtitle TextKind = iota
	TextClosedCaption
)

// TextPart describes one subtitle/caption track on a Content item.
type TextPart struct {
	Kind         TextKind
	Use          bool
	Burn         bool
	XOffset      float64
	YOffset      float64
	XScale       float64
	YScale       float64
	LineSpacing  float64
	OutlineWidth int
	FadeInMs     int
	FadeOutMs    int
	Language     string
	DCPTrack     int
	FontFiles    []string
	FontSizePt   int
}

// DefaultTextPart returns a TextPart with the spec's documented defaults
// (48pt font, unit scale, single line spacing).
func DefaultTextPart() TextPart {
	return TextPart{
		Use:         true,
		XScale:      1,
		YScale:      1,
		LineSpacing: 1,
		FontSizePt:  48,
	}
}

// DCPPart carries the fields specific to referencing an existing DCP as
// content (possibly encrypted).
type DCPPart struct {
	Name         string
	HasSubtitles bool
	Encrypted    bool
	KDM          []byte // opaque encoded KDM, format is an external concern
	KDMValid     bool
	Reference    struct {
		Video, Audio, Subtitle bool
	}
}

// CanBePlayed reports whether this DCP part can be decoded: it is either
// unencrypted, or encrypted with a KDM that has been checked valid.
func (d *DCPPart) CanBePlayed() bool {
	return !d.Encrypted || d.KDMValid
}

// ErrDCPNotPlayable is returned by a KindDCP decoder factory when the
// content is encrypted and has no valid KDM.
var ErrDCPNotPlayable = errors.New("content: dcp is encrypted and has no valid kdm")

// Content is an immutable-ish description of one playlist entry: where it
// sits on the timeline, what it's trimmed to, and its independent optional
// sub-parts. A tagged Kind says which decoder family applies, replacing the
// original's deep Content/VideoContent/.../FFmpegContent hierarchy.
type Content struct {
	mu sync.RWMutex

	ID    uuid.UUID
	Kind  Kind
	Paths []string

	Position  timeline.DCPTime
	TrimStart timeline.ContentTime
	TrimEnd   timeline.ContentTime
	// Length is the content's full native duration before trimming.
	Length timeline.ContentTime

	Video *VideoPart
	Audio *AudioPart
	Texts []TextPart
	DCP   *DCPPart

	changed *Signal
}

// NewContent creates a Content with a fresh ID and wires its change signal.
func NewContent(kind Kind, paths []string) *Content {
	return &Content{
		ID:      uuid.New(),
		Kind:    kind,
		Paths:   paths,
		changed: &Signal{},
	}
}

// OnChange subscribes to this content's property changes.
func (c *Content) OnChange(f ChangeFunc) {
	c.changed.Connect(f)
}

// emitChange notifies subscribers of a completed (non-staged) property
// change -- used by setters below, which is the common case for
// programmatic edits; UI-driven drags should instead emit Pending/Done
// pairs directly via Notify.
func (c *Content) emitChange(prop PropertyID, frequent bool) {
	c.changed.Emit(Change{Type: ChangeDone, Content: c, Property: prop, Frequent: frequent})
}

// Notify lets a caller (e.g. a GUI drag handler) emit an arbitrary
// Pending/Done/Cancelled change directly.
func (c *Content) Notify(t ChangeType, prop PropertyID, frequent bool) {
	c.changed.Emit(Change{Type: t, Content: c, Property: prop, Frequent: frequent})
}

func (c *Content) SetPosition(p timeline.DCPTime) {
	c.mu.Lock()
	c.Position = p
	c.mu.Unlock()
	c.emitChange(PropertyPosition, false)
}

func (c *Content) GetPosition() timeline.DCPTime {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Position
}

func (c *Content) SetTrim(start, end timeline.ContentTime) {
	c.mu.Lock()
	c.TrimStart = start
	c.TrimEnd = end
	c.mu.Unlock()
	c.emitChange(PropertyTrimStart, false)
}

// LengthAfterTrim is the content's duration once TrimStart/TrimEnd are
// applied, still expressed in the content's own time base.
func (c *Content) LengthAfterTrim() timeline.ContentTime {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l := c.Length.Sub(c.TrimStart).Sub(c.TrimEnd)
	if l.Get() < 0 {
		return timeline.NewContentTime(0)
	}
	return l
}

// End is the position on the DCP timeline at which this content's trimmed
// span finishes. DCPTime and ContentTime share the same HZ tick base, so
// a content-time duration converts to a DCP-time duration unchanged.
func (c *Content) End() timeline.DCPTime {
	c.mu.RLock()
	pos := c.Position
	length := c.LengthAfterTrimUnlocked()
	c.mu.RUnlock()
	return pos.Add(timeline.NewDCPTime(length.Get()))
}

func (c *Content) LengthAfterTrimUnlocked() timeline.ContentTime {
	l := c.Length.Sub(c.TrimStart).Sub(c.TrimEnd)
	if l.Get() < 0 {
		return timeline.NewContentTime(0)
	}
	return l
}

// VideoFrameRateOr returns the content's own video rate, or fallback if
// this content has no video part (used by non-video content computing a
// best-overlap frame rate).
func (c *Content) VideoFrameRateOr(fallback float64) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Video != nil {
		return c.Video.FrameRate
	}
	return fallback
}

// PathsValid reports whether this content's backing paths are usable.
// Missing/unreadable content is skipped by setup_pieces rather than
// failing the whole playlist.
func (c *Content) PathsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Paths) > 0
}

// SetVideoFrameRate updates the content's declared video frame rate. This
// is a composition-affecting change in the original design only via
// VIDEO_FRAME_TYPE; a frame-rate-only edit is a repaint, not a rebuild.
func (c *Content) SetVideoFrameRate(fps float64) {
	c.mu.Lock()
	if c.Video == nil {
		c.Video = &VideoPart{}
	}
	c.Video.FrameRate = fps
	c.mu.Unlock()
	c.emitChange(PropertyVideoFrameRate, false)
}
