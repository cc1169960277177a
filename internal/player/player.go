// If you are AI: this file composes pieces into video/audio/subtitle
// output for a single DCP time, as described below.

// Package player composes a Playlist's Pieces into the single video
// frame, audio block, and subtitle set visible at any DCP time. The
// composition rules (which piece wins at a given time, how subtitles are
// placed, how audio channels sum) are grounded on the Player class in the
// original implementation.
package player

import (
	"fmt"
	"html"
	"math"
	"sort"

	"dcpflow/internal/content"
	"dcpflow/internal/decode"
	"dcpflow/internal/piece"
	"dcpflow/internal/timeline"
)

// topOfSubtitleSpacing is the original implementation's fudge factor for
// stacking multiple text subtitle lines below a TOP_OF_SUBTITLE anchor;
// carried over unchanged since it has no principled derivation, only an
// empirically chosen value.
const topOfSubtitleSpacing = 1.015

// PositionedImageSubtitle is a bitmap subtitle placed in DCP frame space.
type PositionedImageSubtitle struct {
	Image decode.ImageProxy
	Rect  decode.ImageRect
}

// PositionedLine is one text subtitle line with its final proportional
// position resolved, ready for a caption/burn-in renderer to lay out.
type PositionedLine struct {
	Text       string // HTML-escaped
	FontSizePt int
	VPosition  float64
	FontFiles  []string
}

// Video is the fully composed output at one DCP video frame.
type Video struct {
	Time           timeline.DCPTime
	Image          decode.ImageProxy // nil means black frame
	Eyes           decode.Eyes
	ImageSubtitles []PositionedImageSubtitle
	TextSubtitles  []PositionedLine

	prepared bool
}

// Prepare forces the lazy decode/scale behind Image so a later Image()
// call on the hot path is cheap. The Butler's prepare pool calls this
// once per frame in the background, ahead of the consumer's get_video.
func (v *Video) Prepare() error {
	if v == nil || v.Image == nil || v.prepared {
		return nil
	}
	if _, err := v.Image.Image(); err != nil {
		return fmt.Errorf("player: prepare frame at %s: %w", v.Time, err)
	}
	v.prepared = true
	return nil
}

// Player pulls from a Playlist's current Pieces and composes them into a
// single output stream. It does not own the pieces' lifecycle; call
// Rebuild whenever the playlist signals a composition-affecting change.
type Player struct {
	playlist *content.Playlist
	dcpRate  float64

	pieces []*piece.Piece

	changed *content.Signal
}

// New creates a Player over playlist, running composition at dcpRate fps.
func New(playlist *content.Playlist, dcpRate float64) *Player {
	p := &Player{playlist: playlist, dcpRate: dcpRate, changed: &content.Signal{}}
	playlist.OnContentChangedAtFront(func(ch content.Change) {
		if ch.Property.AffectsComposition() {
			p.changed.Emit(ch)
		}
	})
	playlist.OnChangedAtFront(func(ch content.Change) {
		p.changed.Emit(ch)
	})
	return p
}

// OnChange subscribes to composition-affecting changes, so a Butler can
// invalidate its readahead and rebuild pieces.
func (p *Player) OnChange(f content.ChangeFunc) { p.changed.Connect(f) }

// Rebuild regenerates the piece set from the current playlist contents,
// reusing decoders for content that already has a piece.
func (p *Player) Rebuild(factory piece.DecoderFactory) error {
	pieces, err := piece.Setup(p.playlist, p.pieces, factory, p.dcpRate)
	if err != nil {
		return err
	}
	sortPiecesByPosition(pieces)
	p.pieces = pieces
	return nil
}

// DCPRate returns the DCP's video frame rate.
func (p *Player) DCPRate() float64 { return p.dcpRate }

// PiecesSnapshot returns the current piece set, for callers (the Butler's
// seek and shutdown paths) that need to reach every decoder directly.
func (p *Player) PiecesSnapshot() []*piece.Piece {
	out := make([]*piece.Piece, len(p.pieces))
	copy(out, p.pieces)
	return out
}

// videoPiecesAt returns, in playlist order, the pieces with a video part
// whose DCP span contains t.
func (p *Player) videoPiecesAt(t timeline.DCPTime) []*piece.Piece {
	var out []*piece.Piece
	for _, pc := range p.pieces {
		if pc.Content.Video == nil {
			continue
		}
		if pc.Period().Contains(t) {
			out = append(out, pc)
		}
	}
	return out
}

// GetVideo composes the video frame visible at DCP time t. With no
// overlapping video piece it returns a black-frame result (Image == nil)
// rather than an error, matching the original's preference for a black
// frame over a playback stall.
func (p *Player) GetVideo(t timeline.DCPTime) (*Video, error) {
	active := p.videoPiecesAt(t)
	out := &Video{Time: t, Eyes: decode.EyesBoth}

	// Later playlist entries paint over earlier ones at the same time,
	// so the topmost (last) active piece supplies the base image; this
	// mirrors a simple on-top composition order rather than true alpha
	// blending, which is out of scope.
	for _, pc := range active {
		cv, err := dcpToContentVideo(pc, t, p.dcpRate)
		if err != nil {
			return nil, fmt.Errorf("player: get video from content %s: %w", pc.Content.ID, err)
		}
		img, err := pc.Decoder.GetVideo(cv, true)
		if err != nil {
			return nil, fmt.Errorf("player: decode video from content %s: %w", pc.Content.ID, err)
		}
		out.Image = img.Image
		out.Eyes = img.Eyes
	}

	subs, err := p.activeImageSubtitles(t)
	if err != nil {
		return nil, err
	}
	out.ImageSubtitles = subs

	lines, err := p.activeTextSubtitles(t)
	if err != nil {
		return nil, err
	}
	out.TextSubtitles = lines

	return out, nil
}

// dcpToContentVideo converts a DCP frame time into the content-local
// frame index the piece's decoder should be asked for, the way
// dcp_to_content_video does in the original implementation: scale the
// relative DCP frame by source_rate/dcp_rate (Skip/Repeat are just the
// exact 2:1 and 1:2 instances of that same ratio, so one formula covers
// both and the general non-integer case) and add the trim-start offset
// expressed in source frames. The relative time is clamped to
// [0, length_after_trim] so a piece queried slightly outside its own
// span (readahead overrun, a seek landing a tick early) still maps to a
// valid content frame instead of a negative or out-of-range one.
func dcpToContentVideo(pc *piece.Piece, t timeline.DCPTime, dcpRate float64) (int64, error) {
	rel := t.Sub(pc.Content.GetPosition())
	if rel.Get() < 0 {
		rel = timeline.NewDCPTime(0)
	}
	if length := pc.Content.LengthAfterTrim(); rel.Get() > length.Get() {
		rel = timeline.NewDCPTime(length.Get())
	}
	dcpFrame := rel.Frames(dcpRate)

	frc := pc.FRC
	sourceRate := frc.SourceRate
	if sourceRate <= 0 {
		sourceRate = dcpRate
	}
	contentFrame := int64(math.Round(float64(dcpFrame) * sourceRate / dcpRate))
	contentFrame += pc.Content.TrimStart.Frames(sourceRate)
	return contentFrame, nil
}

// GetAudio composes the audio block covering [t, t+frames) at sampleRate,
// summing every overlapping audio piece through its AudioMapping and
// per-content gain, the Go counterpart of AudioMerger::pull.
func (p *Player) GetAudio(t timeline.DCPTime, frames int, sampleRate, dcpChannels int) (*decode.AudioBuffers, error) {
	out := decode.NewAudioBuffers(dcpChannels, frames)

	durationTicks := timeline.DCPTimeFromFrames(int64(frames), float64(sampleRate))
	period := timeline.DCPTimePeriod{From: t, To: t.Add(durationTicks)}

	for _, pc := range p.pieces {
		if pc.Content.Audio == nil {
			continue
		}
		if !pc.Period().Overlaps(period) {
			continue
		}
		if err := p.accumulatePieceAudio(out, pc, period, sampleRate); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Player) accumulatePieceAudio(out *decode.AudioBuffers, pc *piece.Piece, period timeline.DCPTimePeriod, sampleRate int) error {
	audio := pc.Content.Audio
	contentStart := period.From.Sub(pc.Content.GetPosition())
	contentFrame := contentStart.Frames(float64(audio.FrameRate)) + pc.Content.TrimStart.Frames(float64(audio.FrameRate))
	if contentFrame < 0 {
		contentFrame = 0
	}

	wantFrames := out.Frames()
	ca, err := pc.Decoder.GetAudio(contentFrame, wantFrames, true)
	if err != nil {
		return fmt.Errorf("player: decode audio from content %s: %w", pc.Content.ID, err)
	}
	if ca.Buffer == nil {
		return nil
	}
	ca.Buffer.ApplyGainDB(audio.GainDB)

	for contentCh := 0; contentCh < audio.Mapping.ContentChannels() && contentCh < ca.Buffer.Channels(); contentCh++ {
		for dcpCh := 0; dcpCh < out.Channels(); dcpCh++ {
			gain := audio.Mapping.Get(contentCh, dcpCh)
			if gain == 0 {
				continue
			}
			out.AccumulateChannel(&decode.AudioBuffers{Data: [][]float32{ca.Buffer.Data[contentCh]}}, 0, dcpCh, gain)
		}
	}
	return nil
}

// activeImageSubtitles gathers and places bitmap subtitles active at t.
func (p *Player) activeImageSubtitles(t timeline.DCPTime) ([]PositionedImageSubtitle, error) {
	var out []PositionedImageSubtitle
	for _, pc := range p.pieces {
		for _, tp := range pc.Content.Texts {
			if tp.Kind != content.TextOpenSubtitle || !tp.Use || !tp.Burn {
				continue
			}
			from := dcpToContentTime(pc, t)
			subs, err := pc.Decoder.GetImageSubtitles(from, from)
			if err != nil {
				return nil, fmt.Errorf("player: image subtitles from content %s: %w", pc.Content.ID, err)
			}
			for _, s := range subs {
				out = append(out, PositionedImageSubtitle{Image: s.Image, Rect: placeImageSubtitle(s.Rect, tp)})
			}
		}
	}
	return out, nil
}

// placeImageSubtitle scales the subtitle's rect about its own center by
// (XScale, YScale) and then translates by (XOffset, YOffset), matching
// the original's scale-about-center-then-translate placement rule.
func placeImageSubtitle(r decode.ImageRect, tp content.TextPart) decode.ImageRect {
	xScale, yScale := tp.XScale, tp.YScale
	if xScale == 0 {
		xScale = 1
	}
	if yScale == 0 {
		yScale = 1
	}

	cx := r.X + r.W/2
	cy := r.Y + r.H/2
	w := r.W * xScale
	h := r.H * yScale

	return decode.ImageRect{
		X: cx - w/2 + tp.XOffset,
		Y: cy - h/2 + tp.YOffset,
		W: w,
		H: h,
	}
}

// activeTextSubtitles gathers and vertically stacks text subtitle lines
// active at t, escaping markup-sensitive characters so a renderer can
// treat the text as literal.
func (p *Player) activeTextSubtitles(t timeline.DCPTime) ([]PositionedLine, error) {
	var out []PositionedLine
	for _, pc := range p.pieces {
		for _, tp := range pc.Content.Texts {
			if tp.Kind != content.TextOpenSubtitle || !tp.Use || !tp.Burn {
				continue
			}
			from := dcpToContentTime(pc, t)
			cues, err := pc.Decoder.GetTextSubtitles(from, from)
			if err != nil {
				return nil, fmt.Errorf("player: text subtitles from content %s: %w", pc.Content.ID, err)
			}
			for _, cue := range cues {
				out = append(out, placeTextLines(cue, tp)...)
			}
		}
	}
	return out, nil
}

func placeTextLines(cue decode.ContentTextSubtitle, tp content.TextPart) []PositionedLine {
	out := make([]PositionedLine, 0, len(cue.Lines))
	for i, line := range cue.Lines {
		size := line.FontSizePt
		if size == 0 {
			size = tp.FontSizePt
		}
		if size == 0 {
			size = 48
		}

		vpos := line.VPosition + tp.YOffset
		if line.VReference == decode.RefTopOfSubtitle {
			vpos += float64(i) * tp.LineSpacing * topOfSubtitleSpacing * float64(size) / 1000.0
		}

		fontFiles := line.FontFiles
		if len(fontFiles) == 0 {
			fontFiles = tp.FontFiles
		}

		out = append(out, PositionedLine{
			Text:       html.EscapeString(line.Text),
			FontSizePt: size,
			VPosition:  vpos,
			FontFiles:  fontFiles,
		})
	}
	return out
}

func dcpToContentTime(pc *piece.Piece, t timeline.DCPTime) timeline.ContentTime {
	rel := t.Sub(pc.Content.GetPosition())
	return timeline.NewContentTime(rel.Get())
}

// ActiveCaptions gathers closed-caption cues (TextClosedCaption parts,
// never burned into the image) active at t, the side-channel counterpart
// of activeImageSubtitles/activeTextSubtitles: these are transported to
// the consumer rather than composited onto the frame.
func (p *Player) ActiveCaptions(t timeline.DCPTime) ([]decode.CaptionPayload, error) {
	var out []decode.CaptionPayload
	for _, pc := range p.pieces {
		for _, tp := range pc.Content.Texts {
			if tp.Kind != content.TextClosedCaption || !tp.Use {
				continue
			}
			from := dcpToContentTime(pc, t)
			cues, err := pc.Decoder.GetTextSubtitles(from, from)
			if err != nil {
				return nil, fmt.Errorf("player: closed captions from content %s: %w", pc.Content.ID, err)
			}
			for _, cue := range cues {
				out = append(out, captionFromCue(pc, t, cue))
			}
		}
	}
	return out, nil
}

// captionFromCue flattens a cue's lines into one newline-joined, markup-
// escaped payload, converting its content-local window back to DCP time
// via the piece's position offset.
func captionFromCue(pc *piece.Piece, t timeline.DCPTime, cue decode.ContentTextSubtitle) decode.CaptionPayload {
	lines := make([]string, len(cue.Lines))
	for i, l := range cue.Lines {
		lines[i] = html.EscapeString(l.Text)
	}
	text := ""
	for i, l := range lines {
		if i > 0 {
			text += "\n"
		}
		text += l
	}
	pos := pc.Content.GetPosition()
	return decode.CaptionPayload{
		Data: []byte(text),
		From: pos.Add(timeline.NewDCPTime(cue.From.Get())),
		To:   pos.Add(timeline.NewDCPTime(cue.To.Get())),
	}
}

// sortPiecesByPosition orders pieces by DCP position, ascending; used
// wherever playlist order itself isn't already a reliable proxy (e.g.
// after a partial rebuild that appended reused pieces out of order).
func sortPiecesByPosition(pieces []*piece.Piece) {
	sort.SliceStable(pieces, func(i, j int) bool {
		return pieces[i].Content.GetPosition().Before(pieces[j].Content.GetPosition())
	})
}
