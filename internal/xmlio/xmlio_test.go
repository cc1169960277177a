package xmlio

import (
	"bytes"
	"strings"
	"testing"

	"dcpflow/internal/content"
	"dcpflow/internal/timeline"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	pl := content.NewPlaylist()
	v := content.NewContent(content.KindFFmpeg, []string{"v.mov"})
	v.Video = &content.VideoPart{FrameRate: 24, Crop: content.Crop{Left: 2, Right: 2}}
	v.Length = timeline.NewContentTime(1000)
	v.SetPosition(timeline.NewDCPTime(500))
	v.Texts = append(v.Texts, content.DefaultTextPart())
	pl.Add(v)

	var buf bytes.Buffer
	if err := SavePlaylist(&buf, pl); err != nil {
		t.Fatalf("SavePlaylist() error = %v", err)
	}

	loaded, err := LoadPlaylist(&buf)
	if err != nil {
		t.Fatalf("LoadPlaylist() error = %v", err)
	}

	got := loaded.Content()
	if len(got) != 1 {
		t.Fatalf("got %d contents, want 1", len(got))
	}
	if got[0].Kind != content.KindFFmpeg {
		t.Fatalf("Kind = %v, want ffmpeg", got[0].Kind)
	}
	if got[0].GetPosition().Get() != 500 {
		t.Fatalf("Position = %d, want 500", got[0].GetPosition().Get())
	}
	if got[0].Video == nil || got[0].Video.Crop.Left != 2 {
		t.Fatal("video crop did not round-trip")
	}
	if len(got[0].Texts) != 1 {
		t.Fatalf("got %d texts, want 1", len(got[0].Texts))
	}
}

func TestLoadLegacySubtitleTag(t *testing.T) {
	doc := `<Playlist Version="20">
  <Content>
    <ID>x</ID>
    <Type>ffmpeg</Type>
    <Path>v.mov</Path>
    <Subtitle>
      <Kind>open-subtitle</Kind>
      <Use>true</Use>
      <Burn>true</Burn>
    </Subtitle>
  </Content>
</Playlist>`

	pl, err := LoadPlaylist(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadPlaylist() error = %v", err)
	}
	got := pl.Content()
	if len(got) != 1 {
		t.Fatalf("got %d contents, want 1", len(got))
	}
	if len(got[0].Texts) != 1 {
		t.Fatalf("legacy <Subtitle> tag did not populate Texts, got %d entries", len(got[0].Texts))
	}
	if !got[0].Texts[0].Burn {
		t.Fatal("expected Burn=true to round-trip from legacy tag")
	}
}
