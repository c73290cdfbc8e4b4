package math

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5, 0, 3) = %d", got)
	}
	if got := Clamp(-1.5, -1.0, 1.0); got != -1.0 {
		t.Errorf("Clamp(-1.5, -1, 1) = %f", got)
	}
	if got := Clamp(uint32(7), 1, 9); got != 7 {
		t.Errorf("Clamp(7, 1, 9) = %d", got)
	}
}

func TestAlignUp(t *testing.T) {
	cases := []struct {
		size, align, want uint64
	}{
		{64, 256, 256},
		{256, 256, 256},
		{257, 256, 512},
		{32, 0, 32},
		{0, 64, 0},
		{100, 48, 144},
	}
	for _, c := range cases {
		if got := AlignUp(c.size, c.align); got != c.want {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", c.size, c.align, got, c.want)
		}
	}
}

func TestDivCeil(t *testing.T) {
	cases := []struct {
		n, d, want uint32
	}{
		{1024, 256, 4},
		{1025, 256, 5},
		{1, 256, 1},
		{0, 256, 0},
		{5, 0, 0},
	}
	for _, c := range cases {
		if got := DivCeil(c.n, c.d); got != c.want {
			t.Errorf("DivCeil(%d, %d) = %d, want %d", c.n, c.d, got, c.want)
		}
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, v := range []uint32{1, 2, 64, 256} {
		if !IsPowerOfTwo(v) {
			t.Errorf("%d should be a power of two", v)
		}
	}
	for _, v := range []uint32{0, 3, 100, 255} {
		if IsPowerOfTwo(v) {
			t.Errorf("%d should not be a power of two", v)
		}
	}
}
