// Package soundfile implements decode.Decoder for standalone audio
// files (MP3, FLAC) used as sound-only playlist content, grounded on
// harperreed-resonate-go's internal/server/audio_source.go file-backed
// audio source pair (MP3Source/FLACSource): open the file, decode
// sequentially, and recreate the decoder to restart from the top since
// neither codec supports cheap random access over a compressed stream.
package soundfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"

	"dcpflow/internal/decode"
	"dcpflow/internal/timeline"
)

// passFrames is how many content frames Pass() decodes and emits at a
// time, mirroring synthetic.AudioDecoder's fixed pass granularity.
const passFrames = 4800

// NewDecoder opens path and returns the MP3 or FLAC decoder matching its
// extension. Any other extension is an error: this package only covers
// the "sound file" content kind, not general media containers (those go
// through the ffmpeg decoder).
func NewDecoder(path string) (decode.Decoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return newMP3Decoder(path)
	case ".flac":
		return newFLACDecoder(path)
	default:
		return nil, fmt.Errorf("soundfile: unsupported extension %q", filepath.Ext(path))
	}
}

// mp3Decoder decodes a single MP3 file via go-mp3, which exposes decoded
// PCM as a 16-bit little-endian stereo io.Reader.
type mp3Decoder struct {
	decode.Base
	path   string
	file   *os.File
	dec    *mp3.Decoder
	cursor int64
}

const mp3Channels = 2

func newMP3Decoder(path string) (*mp3Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("soundfile: open %s: %w", path, err)
	}
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("soundfile: decode mp3 %s: %w", path, err)
	}
	return &mp3Decoder{path: path, file: f, dec: dec}, nil
}

func (d *mp3Decoder) HasVideo() bool    { return false }
func (d *mp3Decoder) HasAudio() bool    { return true }
func (d *mp3Decoder) HasSubtitle() bool { return false }

// reopen restarts decoding from the file's beginning; go-mp3 has no
// native seek, so rewinding past the current cursor means reopening and
// decoding forward from zero.
func (d *mp3Decoder) reopen() error {
	if _, err := d.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("soundfile: seek mp3 %s: %w", d.path, err)
	}
	dec, err := mp3.NewDecoder(d.file)
	if err != nil {
		return fmt.Errorf("soundfile: reopen mp3 %s: %w", d.path, err)
	}
	d.dec = dec
	d.cursor = 0
	return nil
}

func (d *mp3Decoder) Seek(t timeline.ContentTime, accurate bool) error {
	target := t.Frames(float64(d.dec.SampleRate()))
	if target < 0 {
		target = 0
	}
	if target < d.cursor {
		if err := d.reopen(); err != nil {
			return err
		}
	}
	if !accurate {
		d.cursor = target
		return nil
	}
	for d.cursor < target {
		n := target - d.cursor
		if n > passFrames {
			n = passFrames
		}
		if _, eof, err := d.readFrames(int(n)); err != nil {
			return err
		} else if eof {
			break
		}
	}
	return nil
}

// readFrames reads up to n stereo frames from the decoder, converting
// go-mp3's interleaved int16 PCM into planar float32 in [-1, 1].
func (d *mp3Decoder) readFrames(n int) (*decode.AudioBuffers, bool, error) {
	raw := make([]byte, n*mp3Channels*2)
	read, err := io.ReadFull(d.dec, raw)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, false, fmt.Errorf("soundfile: read mp3 %s: %w", d.path, err)
	}
	got := read / (mp3Channels * 2)
	buf := decode.NewAudioBuffers(mp3Channels, got)
	for i := 0; i < got; i++ {
		for c := 0; c < mp3Channels; c++ {
			off := (i*mp3Channels + c) * 2
			s := int16(binary.LittleEndian.Uint16(raw[off : off+2]))
			buf.Data[c][i] = float32(s) / 32768.0
		}
	}
	d.cursor += int64(got)
	eof := got < n
	return buf, eof, nil
}

func (d *mp3Decoder) Pass() (bool, error) {
	buf, eof, err := d.readFrames(passFrames)
	if err != nil {
		return false, err
	}
	if buf.Frames() > 0 {
		d.EmitAudio(decode.ContentAudio{Buffer: buf, ContentFrame: d.cursor - int64(buf.Frames())})
	}
	return eof, nil
}

func (d *mp3Decoder) GetVideo(int64, bool) (decode.ContentVideo, error) {
	return decode.ContentVideo{}, fmt.Errorf("soundfile: mp3 decoder has no video")
}

func (d *mp3Decoder) GetAudio(contentFrame int64, frames int, accurate bool) (decode.ContentAudio, error) {
	if contentFrame != d.cursor {
		if err := d.Seek(timeline.NewContentTime(contentFrame*timeline.HZ/int64(d.dec.SampleRate())), accurate); err != nil {
			return decode.ContentAudio{}, err
		}
	}
	buf, _, err := d.readFrames(frames)
	if err != nil {
		return decode.ContentAudio{}, err
	}
	return decode.ContentAudio{Buffer: buf, ContentFrame: contentFrame}, nil
}

func (d *mp3Decoder) GetImageSubtitles(from, to timeline.ContentTime) ([]decode.ContentImageSubtitle, error) {
	return nil, nil
}

func (d *mp3Decoder) GetTextSubtitles(from, to timeline.ContentTime) ([]decode.ContentTextSubtitle, error) {
	return nil, nil
}

func (d *mp3Decoder) Close() error { return d.file.Close() }

// flacDecoder decodes a single FLAC file frame-by-frame via mewkiz/flac,
// buffering leftover decoded samples between Pass/GetAudio calls since a
// FLAC frame's block size rarely lines up with the caller's request size.
type flacDecoder struct {
	decode.Base
	path       string
	file       *os.File
	stream     *flac.Stream
	sampleRate int
	channels   int
	bitDepth   uint8
	cursor     int64
	leftover   *decode.AudioBuffers
}

func newFLACDecoder(path string) (*flacDecoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("soundfile: open %s: %w", path, err)
	}
	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("soundfile: decode flac %s: %w", path, err)
	}
	return &flacDecoder{
		path:       path,
		file:       f,
		stream:     stream,
		sampleRate: int(stream.Info.SampleRate),
		channels:   int(stream.Info.NChannels),
		bitDepth:   uint8(stream.Info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) HasVideo() bool    { return false }
func (d *flacDecoder) HasAudio() bool    { return true }
func (d *flacDecoder) HasSubtitle() bool { return false }

func (d *flacDecoder) reopen() error {
	if _, err := d.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("soundfile: seek flac %s: %w", d.path, err)
	}
	stream, err := flac.New(d.file)
	if err != nil {
		return fmt.Errorf("soundfile: reopen flac %s: %w", d.path, err)
	}
	d.stream = stream
	d.cursor = 0
	d.leftover = nil
	return nil
}

func (d *flacDecoder) Seek(t timeline.ContentTime, accurate bool) error {
	target := t.Frames(float64(d.sampleRate))
	if target < 0 {
		target = 0
	}
	if target < d.cursor {
		if err := d.reopen(); err != nil {
			return err
		}
	}
	if !accurate {
		d.cursor = target
		return nil
	}
	for d.cursor < target {
		n := target - d.cursor
		if n > passFrames {
			n = passFrames
		}
		if _, eof, err := d.readFrames(int(n)); err != nil {
			return err
		} else if eof {
			break
		}
	}
	return nil
}

// normalize converts a raw int32 FLAC sample (stored at bitDepth
// significant bits) to float32 in [-1, 1].
func (d *flacDecoder) normalize(sample int32) float32 {
	if d.bitDepth == 0 {
		return 0
	}
	max := float64(int64(1) << (d.bitDepth - 1))
	return float32(float64(sample) / max)
}

// readFrames returns up to n frames of planar audio, pulling leftover
// samples from the previous FLAC block before decoding new blocks.
func (d *flacDecoder) readFrames(n int) (*decode.AudioBuffers, bool, error) {
	out := decode.NewAudioBuffers(d.channels, 0)
	got := 0
	eof := false

	take := func(src *decode.AudioBuffers, from int) int {
		avail := src.Frames() - from
		if avail <= 0 {
			return 0
		}
		want := n - got
		if want > avail {
			want = avail
		}
		for c := 0; c < d.channels && c < src.Channels(); c++ {
			out.Data[c] = append(out.Data[c], src.Data[c][from:from+want]...)
		}
		return want
	}

	if d.leftover != nil {
		taken := take(d.leftover, 0)
		got += taken
		if taken < d.leftover.Frames() {
			rest := decode.NewAudioBuffers(d.channels, d.leftover.Frames()-taken)
			for c := 0; c < d.channels; c++ {
				copy(rest.Data[c], d.leftover.Data[c][taken:])
			}
			d.leftover = rest
		} else {
			d.leftover = nil
		}
	}

	for got < n {
		frame, err := d.stream.ParseNext()
		if err == io.EOF {
			eof = true
			break
		}
		if err != nil {
			return nil, false, fmt.Errorf("soundfile: read flac %s: %w", d.path, err)
		}
		block := decode.NewAudioBuffers(d.channels, int(frame.BlockSize))
		for c := 0; c < d.channels && c < len(frame.Subframes); c++ {
			for i := 0; i < int(frame.BlockSize); i++ {
				block.Data[c][i] = d.normalize(frame.Subframes[c].Samples[i])
			}
		}
		taken := take(block, 0)
		got += taken
		if taken < block.Frames() {
			rest := decode.NewAudioBuffers(d.channels, block.Frames()-taken)
			for c := 0; c < d.channels; c++ {
				copy(rest.Data[c], block.Data[c][taken:])
			}
			d.leftover = rest
		}
	}

	d.cursor += int64(got)
	return out, eof, nil
}

func (d *flacDecoder) Pass() (bool, error) {
	buf, eof, err := d.readFrames(passFrames)
	if err != nil {
		return false, err
	}
	if buf.Frames() > 0 {
		d.EmitAudio(decode.ContentAudio{Buffer: buf, ContentFrame: d.cursor - int64(buf.Frames())})
	}
	return eof, nil
}

func (d *flacDecoder) GetVideo(int64, bool) (decode.ContentVideo, error) {
	return decode.ContentVideo{}, fmt.Errorf("soundfile: flac decoder has no video")
}

func (d *flacDecoder) GetAudio(contentFrame int64, frames int, accurate bool) (decode.ContentAudio, error) {
	if contentFrame != d.cursor {
		if err := d.Seek(timeline.NewContentTime(contentFrame*timeline.HZ/int64(d.sampleRate)), accurate); err != nil {
			return decode.ContentAudio{}, err
		}
	}
	buf, _, err := d.readFrames(frames)
	if err != nil {
		return decode.ContentAudio{}, err
	}
	return decode.ContentAudio{Buffer: buf, ContentFrame: contentFrame}, nil
}

func (d *flacDecoder) GetImageSubtitles(from, to timeline.ContentTime) ([]decode.ContentImageSubtitle, error) {
	return nil, nil
}

func (d *flacDecoder) GetTextSubtitles(from, to timeline.ContentTime) ([]decode.ContentTextSubtitle, error) {
	return nil, nil
}

func (d *flacDecoder) Close() error { return d.file.Close() }
