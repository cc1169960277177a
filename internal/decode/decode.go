// If you are AI: this file defines the Decoder interface and its shared
// value types, described below.

// Package decode defines the uniform pull API that every format-specific
// decoder (ffmpeg, image sequence, sound file, subrip/dcp subtitle, dcp
// video/audio) implements, plus the value types decoders emit. Only the
// interface is specified here, not format internals, per the spec: format
// decoders are treated as external collaborators with minimal interfaces.
package decode

import (
	"image"
	"math"

	"dcpflow/internal/timeline"
)

// Eyes distinguishes which eye (for 3D content) a video frame belongs to.
type Eyes int

const (
	EyesBoth Eyes = iota
	EyesLeft
	EyesRight
)

// ImageProxy is a lazily-decodable image handle: Image() performs the
// (possibly expensive) decode/unpack, which the Butler's prepare pool
// calls ahead of time so consumers see a cheap Image() on the hot path.
type ImageProxy interface {
	Image() (image.Image, error)
	Size() (w, h int)
}

// ContentVideo is one decoded video frame pulled from a decoder.
type ContentVideo struct {
	Image       ImageProxy
	Eyes        Eyes
	FrameIndex  int64
}

// ContentAudio is a block of decoded planar audio pulled from a decoder,
// covering frames [ContentFrame, ContentFrame+len) at the content's own
// sample rate.
type ContentAudio struct {
	Buffer       *AudioBuffers
	ContentFrame int64
}

// AudioBuffers is planar float PCM: Channels rows of Frames samples each.
type AudioBuffers struct {
	Data [][]float32
}

// NewAudioBuffers allocates a silent buffer.
func NewAudioBuffers(channels, frames int) *AudioBuffers {
	d := make([][]float32, channels)
	for i := range d {
		d[i] = make([]float32, frames)
	}
	return &AudioBuffers{Data: d}
}

func (b *AudioBuffers) Channels() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data)
}

func (b *AudioBuffers) Frames() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// MakeSilent zeroes all samples.
func (b *AudioBuffers) MakeSilent() {
	for c := range b.Data {
		for i := range b.Data[c] {
			b.Data[c][i] = 0
		}
	}
}

// ApplyGainDB scales every sample by the linear equivalent of gainDB.
func (b *AudioBuffers) ApplyGainDB(gainDB float64) {
	if gainDB == 0 {
		return
	}
	g := float32(math.Pow(10, gainDB/20))
	for c := range b.Data {
		for i := range b.Data[c] {
			b.Data[c][i] *= g
		}
	}
}

// AccumulateChannel adds src channel srcCh, scaled by gain, into dst
// channel dstCh -- the primitive the Player's channel-mapping loop uses
// so multiple content channels can sum into one DCP channel.
func (b *AudioBuffers) AccumulateChannel(src *AudioBuffers, srcCh, dstCh int, gain float64) {
	if srcCh < 0 || srcCh >= src.Channels() || dstCh < 0 || dstCh >= b.Channels() {
		return
	}
	n := src.Frames()
	if n > b.Frames() {
		n = b.Frames()
	}
	g := float32(gain)
	for i := 0; i < n; i++ {
		b.Data[dstCh][i] += src.Data[srcCh][i] * g
	}
}

// AccumulateFrames adds all of src into dst starting at dst frame offset,
// clipped to not overrun dst, preserving per-channel alignment.
func (b *AudioBuffers) AccumulateFrames(src *AudioBuffers, dstOffset int64, maxFrames int) {
	if dstOffset < 0 {
		return
	}
	n := src.Frames()
	if maxFrames >= 0 && n > maxFrames {
		n = maxFrames
	}
	for c := 0; c < b.Channels() && c < src.Channels(); c++ {
		for i := 0; i < n; i++ {
			di := int64(i) + dstOffset
			if di < 0 || di >= int64(b.Frames()) {
				continue
			}
			b.Data[c][di] += src.Data[c][i]
		}
	}
}

// ImageRect is a normalized (0..1) rectangle, used for subtitle placement.
type ImageRect struct {
	X, Y, W, H float64
}

// ContentImageSubtitle is one bitmap subtitle event.
type ContentImageSubtitle struct {
	Image    ImageProxy
	Rect     ImageRect
	From, To timeline.ContentTime
}

// TextVerticalReference says what a text subtitle line's Y position is
// relative to.
type TextVerticalReference int

const (
	RefBottomOfSubtitle TextVerticalReference = iota
	RefTopOfSubtitle
)

// StyledLine is one line of a text subtitle cue with its own style.
type StyledLine struct {
	Text       string
	FontSizePt int
	VPosition  float64 // proportional vertical position, 0=top 1=bottom
	VReference TextVerticalReference
	FontFiles  []string
}

// ContentTextSubtitle is one styled text subtitle cue.
type ContentTextSubtitle struct {
	Lines    []StyledLine
	From, To timeline.ContentTime
}

// CaptionPayload is an opaque closed-caption cue payload (format is an
// external concern; the core only transports it).
type CaptionPayload struct {
	Data []byte
	From, To timeline.DCPTime
}

// Decoder is the uniform pull API every format-specific decoder
// implements. Decoders are single-threaded with respect to themselves;
// callers must not call methods on the same Decoder concurrently.
type Decoder interface {
	// Seek repositions the decoder's internal cursor. If accurate, the
	// caller needs frame-exact output from that point; decoders may
	// honor this by decoding from the preceding key frame and
	// discarding frames before t.
	Seek(t timeline.ContentTime, accurate bool) error

	// Pass advances one unit of work, delivering decoded output through
	// the callbacks registered via OnVideo/OnAudio/OnImageSubtitle/
	// OnTextSubtitle. Returns true at end of stream.
	Pass() (bool, error)

	// HasVideo/HasAudio/HasSubtitle report which sub-parts this decoder
	// can produce, mirroring the content's own optional sub-parts.
	HasVideo() bool
	HasAudio() bool
	HasSubtitle() bool

	// OnVideo/OnAudio/OnImageSubtitle/OnTextSubtitle register the
	// callbacks Pass emits decoded items through. Piece installs these
	// once, at construction.
	OnVideo(func(ContentVideo))
	OnAudio(func(ContentAudio))
	OnImageSubtitle(func(ContentImageSubtitle))
	OnTextSubtitle(func(ContentTextSubtitle))

	// GetVideo pulls the decoded frame at or after the given content
	// frame index, for pull-mode access (used by Player.get_video).
	GetVideo(frame int64, accurate bool) (ContentVideo, error)

	// GetAudio pulls up to `frames` samples starting at contentFrame.
	GetAudio(contentFrame int64, frames int, accurate bool) (ContentAudio, error)

	// GetImageSubtitles/GetTextSubtitles pull subtitle events whose
	// window intersects [from, to).
	GetImageSubtitles(from, to timeline.ContentTime) ([]ContentImageSubtitle, error)
	GetTextSubtitles(from, to timeline.ContentTime) ([]ContentTextSubtitle, error)

	// Close releases any resources (file handles, decoder contexts).
	Close() error
}
