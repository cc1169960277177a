// Package xmlio loads and saves Playlists as XML, matching the
// persistence format the spec mandates. Encoding is stdlib
// encoding/xml rather than a third-party library because the wire
// format itself is spec-dictated, not a library choice: there is
// nothing here for a richer XML library to add.
package xmlio

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/google/uuid"

	"dcpflow/internal/content"
	"dcpflow/internal/timeline"
)

// CurrentVersion is the tag-name version this package writes.
const CurrentVersion = 37

// textTagThreshold is the version at which the text-subtitle tag was
// renamed from <Subtitle> to <Text> to also cover closed captions.
const textTagThreshold = 37

type xmlPlaylist struct {
	XMLName xml.Name     `xml:"Playlist"`
	Version int          `xml:"Version,attr"`
	Content []xmlContent `xml:"Content"`
}

type xmlContent struct {
	ID        string     `xml:"ID"`
	Type      string     `xml:"Type"`
	Paths     []string   `xml:"Path"`
	Position  int64      `xml:"Position"`
	TrimStart int64      `xml:"TrimStart"`
	TrimEnd   int64      `xml:"TrimEnd"`
	Length    int64      `xml:"Length"`
	Video     *xmlVideo  `xml:"Video"`
	Audio     *xmlAudio  `xml:"Audio"`
	Texts     []xmlText  `xml:"Text"`
	// SubtitlesLegacy is populated only when reading a <37 document;
	// writers always use Texts under the current tag name.
	SubtitlesLegacy []xmlText `xml:"Subtitle"`
}

type xmlVideo struct {
	FrameRate float64 `xml:"FrameRate"`
	CropLeft  int     `xml:"CropLeft"`
	CropRight int     `xml:"CropRight"`
	CropTop   int     `xml:"CropTop"`
	CropBot   int     `xml:"CropBottom"`
	Ratio     string  `xml:"Ratio"`
}

type xmlAudio struct {
	FrameRate int     `xml:"FrameRate"`
	Channels  int     `xml:"Channels"`
	GainDB    float64 `xml:"Gain"`
}

type xmlText struct {
	Kind       string  `xml:"Kind"`
	Use        bool    `xml:"Use"`
	Burn       bool    `xml:"Burn"`
	XOffset    float64 `xml:"XOffset"`
	YOffset    float64 `xml:"YOffset"`
	XScale     float64 `xml:"XScale"`
	YScale     float64 `xml:"YScale"`
	FontSizePt int     `xml:"FontSize"`
	Language   string  `xml:"Language"`
}

// LoadPlaylist parses an XML playlist document, mapping the legacy
// <Subtitle> tag (documents written before version 37) onto the same
// TextPart fields that the current <Text> tag populates.
func LoadPlaylist(r io.Reader) (*content.Playlist, error) {
	var doc xmlPlaylist
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("xmlio: decode playlist: %w", err)
	}

	pl := content.NewPlaylist()
	for _, xc := range doc.Content {
		c, err := contentFromXML(xc, doc.Version)
		if err != nil {
			return nil, err
		}
		pl.Add(c)
	}
	return pl, nil
}

func contentFromXML(xc xmlContent, version int) (*content.Content, error) {
	kind, err := kindFromTag(xc.Type)
	if err != nil {
		return nil, err
	}

	c := content.NewContent(kind, xc.Paths)
	if id, err := uuid.Parse(xc.ID); err == nil {
		c.ID = id
	}
	c.Position = timeline.NewDCPTime(xc.Position)
	c.TrimStart = timeline.NewContentTime(xc.TrimStart)
	c.TrimEnd = timeline.NewContentTime(xc.TrimEnd)
	c.Length = timeline.NewContentTime(xc.Length)

	if xc.Video != nil {
		c.Video = &content.VideoPart{
			FrameRate: xc.Video.FrameRate,
			Crop: content.Crop{
				Left: xc.Video.CropLeft, Right: xc.Video.CropRight,
				Top: xc.Video.CropTop, Bottom: xc.Video.CropBot,
			},
			Scale: content.Scale{Ratio: xc.Video.Ratio},
		}
	}
	if xc.Audio != nil {
		c.Audio = &content.AudioPart{
			FrameRate: xc.Audio.FrameRate,
			Channels:  xc.Audio.Channels,
			GainDB:    xc.Audio.GainDB,
			Mapping:   content.NewAudioMapping(xc.Audio.Channels, xc.Audio.Channels),
		}
	}

	texts := xc.Texts
	if version < textTagThreshold {
		texts = xc.SubtitlesLegacy
	}
	for _, xt := range texts {
		c.Texts = append(c.Texts, textPartFromXML(xt))
	}

	return c, nil
}

func textPartFromXML(xt xmlText) content.TextPart {
	tp := content.DefaultTextPart()
	tp.Kind = textKindFromTag(xt.Kind)
	tp.Use = xt.Use
	tp.Burn = xt.Burn
	tp.XOffset = xt.XOffset
	tp.YOffset = xt.YOffset
	if xt.XScale != 0 {
		tp.XScale = xt.XScale
	}
	if xt.YScale != 0 {
		tp.YScale = xt.YScale
	}
	if xt.FontSizePt != 0 {
		tp.FontSizePt = xt.FontSizePt
	}
	tp.Language = xt.Language
	return tp
}

func kindFromTag(tag string) (content.Kind, error) {
	switch tag {
	case "ffmpeg":
		return content.KindFFmpeg, nil
	case "image":
		return content.KindImageSequence, nil
	case "sound":
		return content.KindSoundFile, nil
	case "subrip":
		return content.KindSubRip, nil
	case "dcp":
		return content.KindDCP, nil
	default:
		return 0, fmt.Errorf("xmlio: unknown content type %q", tag)
	}
}

func textKindFromTag(tag string) content.TextKind {
	if tag == "closed-caption" {
		return content.TextClosedCaption
	}
	return content.TextOpenSubtitle
}

// SavePlaylist writes pl as XML, always using the current tag names
// (never the legacy <Subtitle> tag) regardless of what version the
// document that produced pl was originally loaded from.
func SavePlaylist(w io.Writer, pl *content.Playlist) error {
	doc := xmlPlaylist{Version: CurrentVersion}
	for _, c := range pl.Content() {
		doc.Content = append(doc.Content, contentToXML(c))
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("xmlio: encode playlist: %w", err)
	}
	return nil
}

func contentToXML(c *content.Content) xmlContent {
	xc := xmlContent{
		ID:        c.ID.String(),
		Type:      c.Kind.String(),
		Paths:     c.Paths,
		Position:  c.GetPosition().Get(),
		TrimStart: c.TrimStart.Get(),
		TrimEnd:   c.TrimEnd.Get(),
		Length:    c.Length.Get(),
	}
	if c.Video != nil {
		xc.Video = &xmlVideo{
			FrameRate: c.Video.FrameRate,
			CropLeft:  c.Video.Crop.Left,
			CropRight: c.Video.Crop.Right,
			CropTop:   c.Video.Crop.Top,
			CropBot:   c.Video.Crop.Bottom,
			Ratio:     c.Video.Scale.Ratio,
		}
	}
	if c.Audio != nil {
		xc.Audio = &xmlAudio{
			FrameRate: c.Audio.FrameRate,
			Channels:  c.Audio.Channels,
			GainDB:    c.Audio.GainDB,
		}
	}
	for _, tp := range c.Texts {
		xc.Texts = append(xc.Texts, textPartToXML(tp))
	}
	return xc
}

func textPartToXML(tp content.TextPart) xmlText {
	kindTag := "open-subtitle"
	if tp.Kind == content.TextClosedCaption {
		kindTag = "closed-caption"
	}
	return xmlText{
		Kind:       kindTag,
		Use:        tp.Use,
		Burn:       tp.Burn,
		XOffset:    tp.XOffset,
		YOffset:    tp.YOffset,
		XScale:     tp.XScale,
		YScale:     tp.YScale,
		FontSizePt: tp.FontSizePt,
		Language:   tp.Language,
	}
}
