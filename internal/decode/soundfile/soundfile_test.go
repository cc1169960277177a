package soundfile

import "testing"

func TestNewDecoderRejectsUnsupportedExtension(t *testing.T) {
	_, err := NewDecoder("/tmp/does-not-matter.wav")
	if err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
}

func TestNewDecoderRejectsMissingFile(t *testing.T) {
	_, err := NewDecoder("/tmp/dcpflow-soundfile-test-missing.mp3")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
