// If you are AI: this file defines the fixed-tick time types every other
// package converts to/from, as described below.

// Package timeline implements the rational time base shared by the whole
// playback pipeline: DCPTime (the output timeline) and ContentTime (a
// single content item's native rate), plus the frame-rate-change mapping
// between the two.
package timeline

import "fmt"

// HZ is the fixed rational base of the timeline: large enough that 24, 25,
// 30 and 48 fps, and the common audio sample rates (44100, 48000 and
// 96000 Hz), all divide it exactly.
const HZ int64 = 14112000

// DCPTime is a signed tick count on the output timeline, measured in HZ.
type DCPTime struct {
	t int64
}

// NewDCPTime wraps a raw tick count.
func NewDCPTime(t int64) DCPTime { return DCPTime{t} }

// DCPTimeFromSeconds converts a duration in seconds to a DCPTime.
func DCPTimeFromSeconds(s float64) DCPTime {
	return DCPTime{int64(s * float64(HZ))}
}

// DCPTimeFromFrames converts a frame count at rate fps to a DCPTime.
func DCPTimeFromFrames(frames int64, fps float64) DCPTime {
	return DCPTime{int64(float64(frames) * float64(HZ) / fps)}
}

// Get returns the raw tick count.
func (t DCPTime) Get() int64 { return t.t }

// Seconds returns the time in seconds.
func (t DCPTime) Seconds() float64 { return float64(t.t) / float64(HZ) }

// Add returns t + o.
func (t DCPTime) Add(o DCPTime) DCPTime { return DCPTime{t.t + o.t} }

// Sub returns t - o.
func (t DCPTime) Sub(o DCPTime) DCPTime { return DCPTime{t.t - o.t} }

// Compare returns -1, 0 or 1 as t is less than, equal to, or greater than o.
func (t DCPTime) Compare(o DCPTime) int {
	switch {
	case t.t < o.t:
		return -1
	case t.t > o.t:
		return 1
	default:
		return 0
	}
}

// Before reports whether t is strictly earlier than o.
func (t DCPTime) Before(o DCPTime) bool { return t.t < o.t }

// AtOrAfter reports whether t is not earlier than o.
func (t DCPTime) AtOrAfter(o DCPTime) bool { return t.t >= o.t }

// Clamp restricts t to [lo, hi].
func (t DCPTime) Clamp(lo, hi DCPTime) DCPTime {
	if t.t < lo.t {
		return lo
	}
	if t.t > hi.t {
		return hi
	}
	return t
}

// Floor rounds t down to a multiple of the period of one frame at fps.
func (t DCPTime) Floor(fps float64) DCPTime {
	n := t.Frames(fps)
	return DCPTimeFromFrames(n, fps)
}

// Frames converts t to a (floor-rounded) frame count at the given rate.
func (t DCPTime) Frames(fps float64) int64 {
	return int64(float64(t.t) * fps / float64(HZ))
}

// ScaleRational scales t by the rational num/den, floor-rounded.
func (t DCPTime) ScaleRational(num, den int64) DCPTime {
	return DCPTime{(t.t * num) / den}
}

func (t DCPTime) String() string {
	return fmt.Sprintf("%.3fs", t.Seconds())
}

// DCPTimePeriod is a half-open [From, To) interval on the output timeline.
type DCPTimePeriod struct {
	From DCPTime
	To   DCPTime
}

// Overlaps reports whether the two periods share any instant.
func (p DCPTimePeriod) Overlaps(o DCPTimePeriod) bool {
	return p.From.Before(o.To) && o.From.Before(p.To)
}

// Contains reports whether t falls within [From, To).
func (p DCPTimePeriod) Contains(t DCPTime) bool {
	return t.AtOrAfter(p.From) && t.Before(p.To)
}

// ContentTime is a signed tick count scoped to one content item's native
// rate, using the same HZ base so it is directly comparable once converted.
type ContentTime struct {
	t int64
}

// NewContentTime wraps a raw tick count.
func NewContentTime(t int64) ContentTime { return ContentTime{t} }

// ContentTimeFromFrames converts a frame count at rate fps to a ContentTime.
func ContentTimeFromFrames(frames int64, fps float64) ContentTime {
	return ContentTime{int64(float64(frames) * float64(HZ) / fps)}
}

// Get returns the raw tick count.
func (t ContentTime) Get() int64 { return t.t }

// Seconds returns the time in seconds.
func (t ContentTime) Seconds() float64 { return float64(t.t) / float64(HZ) }

// Add returns t + o.
func (t ContentTime) Add(o ContentTime) ContentTime { return ContentTime{t.t + o.t} }

// Sub returns t - o.
func (t ContentTime) Sub(o ContentTime) ContentTime { return ContentTime{t.t - o.t} }

// Frames converts t to a (floor-rounded) frame count at the given rate.
func (t ContentTime) Frames(fps float64) int64 {
	return int64(float64(t.t) * fps / float64(HZ))
}

func (t ContentTime) String() string {
	return fmt.Sprintf("%.3fs", t.Seconds())
}

// FrameRateChange describes the mapping between a content item's native
// frame rate and the DCP's output frame rate, including the decimation or
// repeat policy used when the two rates are near-integer multiples of each
// other (e.g. 48fps content played into a 24fps DCP skips every other
// frame; 24fps content played into a 48fps DCP repeats each frame).
type FrameRateChange struct {
	SourceRate float64
	DCPRate    float64
	// Skip is true when the source should be decimated 2:1 into the DCP
	// (source is ~2x the DCP rate).
	Skip bool
	// Repeat is true when each source frame should be repeated 2:1 into
	// the DCP (DCP is ~2x the source rate).
	Repeat bool
}

// NewFrameRateChange derives the skip/repeat policy from the two rates.
func NewFrameRateChange(sourceRate, dcpRate float64) FrameRateChange {
	frc := FrameRateChange{SourceRate: sourceRate, DCPRate: dcpRate}
	if sourceRate > 0 && dcpRate > 0 {
		ratio := sourceRate / dcpRate
		if closeTo(ratio, 2) {
			frc.Skip = true
		} else if closeTo(ratio, 0.5) {
			frc.Repeat = true
		}
	}
	return frc
}

func closeTo(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-6
}

// Factor is dcp_rate / source_rate: the ratio used to convert a duration
// expressed at the source rate into DCP ticks of the same wall-clock span.
func (f FrameRateChange) Factor() float64 {
	if f.SourceRate == 0 {
		return 1
	}
	return f.DCPRate / f.SourceRate
}
