package dsp

import "testing"

func TestCircularBufferPowerOfTwoLength(t *testing.T) {
	tests := []struct {
		request  int
		wantLen  int
		wantMask int
	}{
		{0, 1, 0},
		{1, 1, 0},
		{2, 2, 1},
		{3, 4, 3},
		{10, 16, 15},
		{1024, 1024, 1023},
		{4411, 8192, 8191},
	}
	for _, tt := range tests {
		b := NewCircularBuffer(tt.request)
		if b.Len() != tt.wantLen || b.WrapMask() != tt.wantMask {
			t.Fatalf("request %d: len=%d mask=%d, want len=%d mask=%d",
				tt.request, b.Len(), b.WrapMask(), tt.wantLen, tt.wantMask)
		}
	}
}

func TestCircularBufferReadBeforeWrite(t *testing.T) {
	b := NewCircularBuffer(8)
	b.Write(0.5)
	if got := b.Read(0); got != 0.5 {
		t.Fatalf("Read(0) = %v, want 0.5", got)
	}
	if got := b.Read(1); got != 0 {
		t.Fatalf("Read(1) = %v, want 0 after flush", got)
	}
	b.Write(0.25)
	if got := b.Read(1); got != 0.5 {
		t.Fatalf("Read(1) after second write = %v, want 0.5", got)
	}
}

func TestCircularBufferWrapsSilently(t *testing.T) {
	b := NewCircularBuffer(4)
	for i := 1; i <= 11; i++ {
		b.Write(float64(i))
	}
	// Length 4 holds the last four writes: 8,9,10,11.
	for d, want := range []float64{11, 10, 9, 8, 11, 10} {
		if got := b.Read(d); got != want {
			t.Fatalf("Read(%d) = %v, want %v", d, got, want)
		}
	}
	if got := b.Read(-1); got != 8 {
		t.Fatalf("Read(-1) = %v, want 8 (wraps)", got)
	}
}

func TestCircularBufferFractionalRead(t *testing.T) {
	b := NewCircularBuffer(16)
	b.Write(1.0)
	b.Write(3.0) // delay 0 = 3, delay 1 = 1

	if got := b.ReadFractional(0.25); got != 0.25*1.0+0.75*3.0 {
		t.Fatalf("ReadFractional(0.25) = %v, want 2.5", got)
	}
	if got := b.ReadFractional(1.0); got != 1.0 {
		t.Fatalf("ReadFractional(1.0) = %v, want 1", got)
	}

	b.SetInterpolate(false)
	if got := b.ReadFractional(0.75); got != 3.0 {
		t.Fatalf("truncated ReadFractional(0.75) = %v, want 3", got)
	}
}

func TestCircularBufferFlushKeepsCursor(t *testing.T) {
	b := NewCircularBuffer(4)
	b.Write(1)
	b.Write(2)
	b.Flush()
	b.Write(7)
	if got := b.Read(0); got != 7 {
		t.Fatalf("Read(0) = %v, want 7", got)
	}
	if got := b.Read(1); got != 0 {
		t.Fatalf("Read(1) = %v, want 0", got)
	}
}
