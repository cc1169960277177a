package main

import "testing"

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"90", 90},
		{"01:30", 90},
		{"00:01:30", 90},
		{"01:00:00", 3600},
	}
	for _, c := range cases {
		got, err := parseClockTime(c.in)
		if err != nil {
			t.Fatalf("parseClockTime(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("parseClockTime(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseClockTimeRejectsMalformed(t *testing.T) {
	if _, err := parseClockTime("1:2:3:4"); err == nil {
		t.Fatal("expected an error for too many segments")
	}
	if _, err := parseClockTime("abc"); err == nil {
		t.Fatal("expected an error for a non-numeric segment")
	}
}
