// If you are AI: this file builds the DecoderFactory that routes each
// Content item to its format-specific decoder.

package main

import (
	"fmt"
	"image/color"

	"dcpflow/internal/content"
	"dcpflow/internal/decode"
	"dcpflow/internal/decode/soundfile"
	"dcpflow/internal/decode/subrip"
	"dcpflow/internal/decode/synthetic"
	"dcpflow/internal/timeline"
)

// newDecoderFactory returns a piece.DecoderFactory covering every
// content.Kind. Sound files and SubRip subtitles get real decoders
// (soundfile, subrip); ffmpeg, image-sequence, and DCP video/audio
// containers are explicitly out of scope for format internals, so they
// route to a synthetic stand-in sized from the content's own declared
// properties -- enough to exercise the Butler/Player pipeline end to end
// without a real container/codec implementation.
func newDecoderFactory(sampleRate int) func(c *content.Content) (decode.Decoder, error) {
	return func(c *content.Content) (decode.Decoder, error) {
		switch c.Kind {
		case content.KindSoundFile:
			if len(c.Paths) == 0 {
				return nil, fmt.Errorf("factory: sound file content %s has no path", c.ID)
			}
			return soundfile.NewDecoder(c.Paths[0])

		case content.KindSubRip:
			if len(c.Paths) == 0 {
				return nil, fmt.Errorf("factory: subrip content %s has no path", c.ID)
			}
			return subrip.NewDecoder(c.Paths[0])

		case content.KindDCP:
			if c.DCP != nil && !c.DCP.CanBePlayed() {
				return nil, fmt.Errorf("factory: dcp content %s: %w", c.ID, content.ErrDCPNotPlayable)
			}
			return newPlaceholderDecoder(c, sampleRate)

		case content.KindFFmpeg, content.KindImageSequence:
			return newPlaceholderDecoder(c, sampleRate)

		default:
			return nil, fmt.Errorf("factory: unrecognized content kind %v", c.Kind)
		}
	}
}

// newPlaceholderDecoder builds a synthetic video decoder, paired with a
// synthetic audio decoder when c has an audio part, sized from c's
// declared video rate and trimmed length, standing in for a
// container/codec this module does not implement.
func newPlaceholderDecoder(c *content.Content, sampleRate int) (decode.Decoder, error) {
	fps := c.VideoFrameRateOr(24)
	if fps <= 0 {
		fps = 24
	}
	durationFrames := c.LengthAfterTrim().Frames(fps)
	if durationFrames <= 0 {
		durationFrames = 1
	}

	video := synthetic.NewVideoDecoder(1998, 1080, fps, durationFrames, color.Gray{Y: 40})
	if c.Audio == nil {
		return video, nil
	}

	channels := c.Audio.Channels
	if channels <= 0 {
		channels = 2
	}
	audioDurationFrames := c.LengthAfterTrim().Frames(float64(sampleRate))
	audio := synthetic.NewAudioDecoder(sampleRate, channels, 440, audioDurationFrames)
	return &combinedDecoder{video: video, audio: audio}, nil
}

// combinedDecoder fans Pass/Seek out to an independent video decoder and
// audio decoder, presenting them as one decode.Decoder -- the shape a
// real ffmpeg/image-sequence decoder would otherwise implement natively
// against a single demuxed source.
type combinedDecoder struct {
	video *synthetic.VideoDecoder
	audio *synthetic.AudioDecoder
}

func (d *combinedDecoder) HasVideo() bool    { return true }
func (d *combinedDecoder) HasAudio() bool    { return true }
func (d *combinedDecoder) HasSubtitle() bool { return false }

func (d *combinedDecoder) OnVideo(f func(decode.ContentVideo))                 { d.video.OnVideo(f) }
func (d *combinedDecoder) OnAudio(f func(decode.ContentAudio))                 { d.audio.OnAudio(f) }
func (d *combinedDecoder) OnImageSubtitle(f func(decode.ContentImageSubtitle)) {}
func (d *combinedDecoder) OnTextSubtitle(f func(decode.ContentTextSubtitle))   {}

func (d *combinedDecoder) Seek(t timeline.ContentTime, accurate bool) error {
	if err := d.video.Seek(t, accurate); err != nil {
		return err
	}
	return d.audio.Seek(t, accurate)
}

func (d *combinedDecoder) Pass() (bool, error) {
	videoDone, err := d.video.Pass()
	if err != nil {
		return false, err
	}
	audioDone, err := d.audio.Pass()
	if err != nil {
		return false, err
	}
	return videoDone && audioDone, nil
}

func (d *combinedDecoder) GetVideo(frame int64, accurate bool) (decode.ContentVideo, error) {
	return d.video.GetVideo(frame, accurate)
}

func (d *combinedDecoder) GetAudio(contentFrame int64, frames int, accurate bool) (decode.ContentAudio, error) {
	return d.audio.GetAudio(contentFrame, frames, accurate)
}

func (d *combinedDecoder) GetImageSubtitles(from, to timeline.ContentTime) ([]decode.ContentImageSubtitle, error) {
	return nil, nil
}

func (d *combinedDecoder) GetTextSubtitles(from, to timeline.ContentTime) ([]decode.ContentTextSubtitle, error) {
	return nil, nil
}

func (d *combinedDecoder) Close() error {
	if err := d.video.Close(); err != nil {
		return err
	}
	return d.audio.Close()
}
