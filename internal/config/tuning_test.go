package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTuningProfileEmptyPathReturnsDefault(t *testing.T) {
	profile, err := LoadTuningProfile("")
	if err != nil {
		t.Fatalf("LoadTuningProfile: %v", err)
	}
	if profile != DefaultTuningProfile() {
		t.Errorf("profile = %+v, want default", profile)
	}
}

func TestLoadTuningProfileParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.toml")
	content := "video_readahead = 30\nprepare_workers = 4\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write tuning file: %v", err)
	}

	profile, err := LoadTuningProfile(path)
	if err != nil {
		t.Fatalf("LoadTuningProfile: %v", err)
	}
	if profile.VideoReadahead != 30 || profile.PrepareWorkers != 4 {
		t.Errorf("profile = %+v, want {30 4}", profile)
	}
}

func TestLoadTuningProfileRejectsNegativeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.toml")
	if err := os.WriteFile(path, []byte("video_readahead = -1\n"), 0o644); err != nil {
		t.Fatalf("write tuning file: %v", err)
	}

	if _, err := LoadTuningProfile(path); err == nil {
		t.Fatal("expected an error for a negative readahead")
	}
}
