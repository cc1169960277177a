// Package synthetic provides deterministic decoders with no external
// format dependency: solid-color video and sine-wave audio. They exist so
// the playback pipeline can be tested end-to-end without real media
// files, and so format-specific decoders (ffmpeg, image sequence, DCP)
// -- explicitly out of scope per the spec -- still have a concrete
// stand-in implementing decode.Decoder.
package synthetic

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"dcpflow/internal/decode"
	"dcpflow/internal/timeline"
)

// solidImageProxy is an ImageProxy that always returns the same solid
// color image; Image() is cheap by construction so there is nothing for
// the prepare pool to do, but it still satisfies the interface.
type solidImageProxy struct {
	w, h int
	c    color.Color
}

func (p *solidImageProxy) Size() (int, int) { return p.w, p.h }

func (p *solidImageProxy) Image() (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, p.w, p.h))
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			img.Set(x, y, p.c)
		}
	}
	return img, nil
}

// VideoDecoder emits a fixed-size solid-color frame per content frame
// index, up to DurationFrames.
type VideoDecoder struct {
	decode.Base
	Width, Height  int
	FrameRate      float64
	DurationFrames int64
	Color          color.Color

	cursor int64
}

// NewVideoDecoder builds a synthetic video decoder of the given duration.
func NewVideoDecoder(w, h int, fps float64, durationFrames int64, c color.Color) *VideoDecoder {
	if c == nil {
		c = color.Gray{Y: 128}
	}
	return &VideoDecoder{Width: w, Height: h, FrameRate: fps, DurationFrames: durationFrames, Color: c}
}

func (d *VideoDecoder) HasVideo() bool    { return true }
func (d *VideoDecoder) HasAudio() bool    { return false }
func (d *VideoDecoder) HasSubtitle() bool { return false }

func (d *VideoDecoder) Seek(t timeline.ContentTime, accurate bool) error {
	d.cursor = t.Frames(d.FrameRate)
	if d.cursor < 0 {
		d.cursor = 0
	}
	return nil
}

func (d *VideoDecoder) Pass() (bool, error) {
	if d.cursor >= d.DurationFrames {
		return true, nil
	}
	d.EmitVideo(decode.ContentVideo{
		Image:      &solidImageProxy{w: d.Width, h: d.Height, c: d.Color},
		Eyes:       decode.EyesBoth,
		FrameIndex: d.cursor,
	})
	d.cursor++
	return d.cursor >= d.DurationFrames, nil
}

func (d *VideoDecoder) GetVideo(frame int64, accurate bool) (decode.ContentVideo, error) {
	if frame < 0 {
		frame = 0
	}
	if frame >= d.DurationFrames {
		frame = d.DurationFrames - 1
	}
	return decode.ContentVideo{
		Image:      &solidImageProxy{w: d.Width, h: d.Height, c: d.Color},
		Eyes:       decode.EyesBoth,
		FrameIndex: frame,
	}, nil
}

func (d *VideoDecoder) GetAudio(int64, int, bool) (decode.ContentAudio, error) {
	return decode.ContentAudio{}, fmt.Errorf("synthetic video decoder has no audio")
}

func (d *VideoDecoder) GetImageSubtitles(from, to timeline.ContentTime) ([]decode.ContentImageSubtitle, error) {
	return nil, nil
}

func (d *VideoDecoder) GetTextSubtitles(from, to timeline.ContentTime) ([]decode.ContentTextSubtitle, error) {
	return nil, nil
}

func (d *VideoDecoder) Close() error { return nil }

// AudioDecoder emits a sine wave at Frequency, at SampleRate, for
// DurationFrames samples, on Channels planar channels.
type AudioDecoder struct {
	decode.Base
	SampleRate     int
	Channels       int
	Frequency      float64
	DurationFrames int64

	cursor int64
}

func NewAudioDecoder(sampleRate, channels int, frequency float64, durationFrames int64) *AudioDecoder {
	return &AudioDecoder{SampleRate: sampleRate, Channels: channels, Frequency: frequency, DurationFrames: durationFrames}
}

func (d *AudioDecoder) HasVideo() bool    { return false }
func (d *AudioDecoder) HasAudio() bool    { return true }
func (d *AudioDecoder) HasSubtitle() bool { return false }

func (d *AudioDecoder) Seek(t timeline.ContentTime, accurate bool) error {
	d.cursor = t.Frames(float64(d.SampleRate))
	if d.cursor < 0 {
		d.cursor = 0
	}
	return nil
}

const synthAudioPassFrames = 4800

func (d *AudioDecoder) Pass() (bool, error) {
	if d.cursor >= d.DurationFrames {
		return true, nil
	}
	n := int64(synthAudioPassFrames)
	if d.cursor+n > d.DurationFrames {
		n = d.DurationFrames - d.cursor
	}
	buf := d.render(d.cursor, int(n))
	d.EmitAudio(decode.ContentAudio{Buffer: buf, ContentFrame: d.cursor})
	d.cursor += n
	return d.cursor >= d.DurationFrames, nil
}

func (d *AudioDecoder) render(startFrame int64, n int) *decode.AudioBuffers {
	buf := decode.NewAudioBuffers(d.Channels, n)
	for i := 0; i < n; i++ {
		t := float64(startFrame+int64(i)) / float64(d.SampleRate)
		v := float32(math.Sin(2 * math.Pi * d.Frequency * t))
		for c := 0; c < d.Channels; c++ {
			buf.Data[c][i] = v
		}
	}
	return buf
}

func (d *AudioDecoder) GetVideo(int64, bool) (decode.ContentVideo, error) {
	return decode.ContentVideo{}, fmt.Errorf("synthetic audio decoder has no video")
}

func (d *AudioDecoder) GetAudio(contentFrame int64, frames int, accurate bool) (decode.ContentAudio, error) {
	if contentFrame < 0 {
		contentFrame = 0
	}
	avail := d.DurationFrames - contentFrame
	if avail < 0 {
		avail = 0
	}
	n := int64(frames)
	if n > avail {
		n = avail
	}
	buf := d.render(contentFrame, int(n))
	return decode.ContentAudio{Buffer: buf, ContentFrame: contentFrame}, nil
}

func (d *AudioDecoder) GetImageSubtitles(from, to timeline.ContentTime) ([]decode.ContentImageSubtitle, error) {
	return nil, nil
}

func (d *AudioDecoder) GetTextSubtitles(from, to timeline.ContentTime) ([]decode.ContentTextSubtitle, error) {
	return nil, nil
}

func (d *AudioDecoder) Close() error { return nil }
