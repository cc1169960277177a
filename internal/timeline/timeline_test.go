package timeline

import "testing"

func TestDCPTimeFromSecondsRoundTrip(t *testing.T) {
	got := DCPTimeFromSeconds(5).Seconds()
	if got < 4.999 || got > 5.001 {
		t.Fatalf("expected ~5s, got %v", got)
	}
}

func TestDCPTimeFramesLosslessAtCommonRates(t *testing.T) {
	for _, fps := range []float64{24, 25, 30, 48} {
		dt := DCPTimeFromFrames(120, fps)
		if got := dt.Frames(fps); got != 120 {
			t.Errorf("fps=%v: expected 120 frames back, got %d", fps, got)
		}
	}
}

func TestDCPTimeClamp(t *testing.T) {
	lo := NewDCPTime(0)
	hi := NewDCPTime(100)
	if NewDCPTime(-10).Clamp(lo, hi) != lo {
		t.Error("expected clamp to lo")
	}
	if NewDCPTime(200).Clamp(lo, hi) != hi {
		t.Error("expected clamp to hi")
	}
	if NewDCPTime(50).Clamp(lo, hi) != NewDCPTime(50) {
		t.Error("expected value unchanged inside range")
	}
}

func TestDCPTimePeriodOverlaps(t *testing.T) {
	a := DCPTimePeriod{From: NewDCPTime(0), To: NewDCPTime(100)}
	b := DCPTimePeriod{From: NewDCPTime(50), To: NewDCPTime(150)}
	c := DCPTimePeriod{From: NewDCPTime(200), To: NewDCPTime(300)}

	if !a.Overlaps(b) {
		t.Error("expected a, b to overlap")
	}
	if a.Overlaps(c) {
		t.Error("expected a, c not to overlap")
	}
}

func TestFrameRateChangeSkipRepeat(t *testing.T) {
	skip := NewFrameRateChange(48, 24)
	if !skip.Skip || skip.Repeat {
		t.Errorf("expected skip for 48->24, got %+v", skip)
	}

	repeat := NewFrameRateChange(24, 48)
	if !repeat.Repeat || repeat.Skip {
		t.Errorf("expected repeat for 24->48, got %+v", repeat)
	}

	plain := NewFrameRateChange(24, 24)
	if plain.Skip || plain.Repeat {
		t.Errorf("expected neither for 24->24, got %+v", plain)
	}
}

func TestFrameRateChangeFactor(t *testing.T) {
	f := NewFrameRateChange(24, 48)
	if got := f.Factor(); got < 1.999 || got > 2.001 {
		t.Errorf("expected factor ~2, got %v", got)
	}
}
