package ring

import "testing"

func TestBufferPushPopFIFO(t *testing.T) {
	b := New[int](3, BackpressureReject)
	b.Push(1)
	b.Push(2)
	b.Push(3)

	if !b.Full() {
		t.Fatal("expected buffer to be full")
	}
	if ok := b.Push(4); ok {
		t.Fatal("Push on full BackpressureReject buffer should fail")
	}

	for _, want := range []int{1, 2, 3} {
		got, ok := b.Pop()
		if !ok || got != want {
			t.Fatalf("Pop() = (%d, %v), want (%d, true)", got, ok, want)
		}
	}
	if _, ok := b.Pop(); ok {
		t.Fatal("Pop on empty buffer should fail")
	}
}

func TestBufferDropOldest(t *testing.T) {
	b := New[int](2, BackpressureDropOldest)
	b.Push(1)
	b.Push(2)
	b.Push(3) // should evict 1

	got, _ := b.Pop()
	if got != 2 {
		t.Fatalf("after drop-oldest overflow, first item = %d, want 2", got)
	}
}

func TestBufferDropNewest(t *testing.T) {
	b := New[int](2, BackpressureDropNewest)
	b.Push(1)
	b.Push(2)
	if ok := b.Push(3); ok {
		t.Fatal("Push should report failure under BackpressureDropNewest when full")
	}
	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}
}

func TestBufferRemoveIf(t *testing.T) {
	b := New[int](5, BackpressureReject)
	for i := 1; i <= 5; i++ {
		b.Push(i)
	}
	removed := b.RemoveIf(func(v int) bool { return v%2 == 0 })
	if removed != 2 {
		t.Fatalf("RemoveIf removed %d, want 2", removed)
	}

	var got []int
	b.Each(func(v int) { got = append(got, v) })
	want := []int{1, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("Each gave %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Each gave %v, want %v", got, want)
		}
	}
}

func TestBufferClear(t *testing.T) {
	b := New[int](3, BackpressureReject)
	b.Push(1)
	b.Push(2)
	b.Clear()
	if b.Len() != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", b.Len())
	}
	if b.Full() {
		t.Fatal("buffer should not be full after Clear")
	}
}
