package decode

import "testing"

func TestAudioBuffersApplyGainDB(t *testing.T) {
	b := NewAudioBuffers(1, 4)
	for i := range b.Data[0] {
		b.Data[0][i] = 1.0
	}

	b.ApplyGainDB(-6.0206) // -6.0206 dB ~= half amplitude

	got := b.Data[0][0]
	if got < 0.49 || got > 0.51 {
		t.Fatalf("ApplyGainDB(-6dB) = %v, want ~0.5", got)
	}
}

func TestAudioBuffersApplyGainZeroIsNoop(t *testing.T) {
	b := NewAudioBuffers(1, 2)
	b.Data[0][0] = 0.25
	b.ApplyGainDB(0)
	if b.Data[0][0] != 0.25 {
		t.Fatalf("ApplyGainDB(0) changed sample to %v", b.Data[0][0])
	}
}

func TestAudioBuffersAccumulateChannel(t *testing.T) {
	src := NewAudioBuffers(2, 3)
	src.Data[1][0], src.Data[1][1], src.Data[1][2] = 1, 1, 1

	dst := NewAudioBuffers(1, 3)
	dst.AccumulateChannel(src, 1, 0, 0.5)

	for i, v := range dst.Data[0] {
		if v != 0.5 {
			t.Fatalf("dst.Data[0][%d] = %v, want 0.5", i, v)
		}
	}
}

func TestAudioBuffersAccumulateFramesClipsToDest(t *testing.T) {
	src := NewAudioBuffers(1, 5)
	for i := range src.Data[0] {
		src.Data[0][i] = 1
	}

	dst := NewAudioBuffers(1, 4)
	dst.AccumulateFrames(src, 2, -1)

	want := []float32{0, 0, 1, 1}
	for i, v := range dst.Data[0] {
		if v != want[i] {
			t.Fatalf("dst.Data[0][%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestAudioBuffersMakeSilent(t *testing.T) {
	b := NewAudioBuffers(2, 2)
	for c := range b.Data {
		for i := range b.Data[c] {
			b.Data[c][i] = 1
		}
	}
	b.MakeSilent()
	for c := range b.Data {
		for i, v := range b.Data[c] {
			if v != 0 {
				t.Fatalf("Data[%d][%d] = %v after MakeSilent, want 0", c, i, v)
			}
		}
	}
}
