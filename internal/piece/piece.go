// Package piece turns a Playlist's Content items into Pieces: a Content
// paired with the Decoder that reads it and the FrameRateChange between
// the content's native rate and the DCP's rate. Rebuilding this set is
// grounded on Player::setup_pieces in the original implementation.
package piece

import (
	"fmt"

	"dcpflow/internal/content"
	"dcpflow/internal/decode"
	"dcpflow/internal/timeline"
)

// Piece couples one Content with its Decoder and the frame-rate
// relationship between the content and the DCP it's being composed into.
type Piece struct {
	Content *content.Content
	Decoder decode.Decoder
	FRC     timeline.FrameRateChange
}

// Period is the piece's span on the DCP timeline, [Position, End).
func (p *Piece) Period() timeline.DCPTimePeriod {
	return timeline.DCPTimePeriod{From: p.Content.GetPosition(), To: p.Content.End()}
}

// DecoderFactory builds a Decoder for a Content item. The concrete
// factory dispatches on content.Kind to the right format-specific
// decoder (ffmpeg, image sequence, sound file, ...); those decoders are
// external collaborators and out of this package's scope.
type DecoderFactory func(c *content.Content) (decode.Decoder, error)

// Setup rebuilds the full set of Pieces for playlist from scratch,
// called whenever a change affects composition (content added/removed,
// or a property with PropertyID.AffectsComposition true).
//
// old is the previous piece set, keyed by content ID; a Content that
// already has a piece and is still in the playlist keeps its existing
// Decoder rather than opening a new one, mirroring setup_pieces' reuse
// of already-open ImageDecoders across rebuilds triggered by unrelated
// content.
func Setup(pl *content.Playlist, old []*Piece, factory DecoderFactory, dcpRate float64) ([]*Piece, error) {
	existing := make(map[any]*Piece, len(old))
	for _, p := range old {
		existing[p.Content.ID] = p
	}

	var pieces []*Piece
	for _, c := range pl.Content() {
		if !c.PathsValid() {
			continue
		}

		sourceRate := resolveSourceRate(pl, c, dcpRate)
		frc := timeline.NewFrameRateChange(sourceRate, dcpRate)

		if reused, ok := existing[c.ID]; ok {
			reused.FRC = frc
			pieces = append(pieces, reused)
			continue
		}

		dec, err := factory(c)
		if err != nil {
			return nil, fmt.Errorf("piece: build decoder for content %s: %w", c.ID, err)
		}
		pieces = append(pieces, &Piece{Content: c, Decoder: dec, FRC: frc})
	}
	return pieces, nil
}

// resolveSourceRate is the content's own video rate if it has one, else
// the rate of the video content it overlaps the most (best-overlap
// fallback), else the DCP rate itself if nothing overlaps -- mirroring
// setup_pieces' frame-rate-change derivation for audio/subtitle-only
// content with no video part of its own.
func resolveSourceRate(pl *content.Playlist, c *content.Content, dcpRate float64) float64 {
	if c.Video != nil && c.Video.FrameRate > 0 {
		return c.Video.FrameRate
	}
	if best, ok := pl.BestOverlap(c); ok {
		return best.VideoFrameRateOr(dcpRate)
	}
	return dcpRate
}

// Close closes every piece's decoder, collecting the first error.
func Close(pieces []*Piece) error {
	var first error
	for _, p := range pieces {
		if err := p.Decoder.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
