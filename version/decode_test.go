package version

import "testing"

func TestDecode(t *testing.T) {
	tests := []struct {
		raw  uint
		want Version
	}{
		// Legacy 2.x encoding: two-digit minor, no patch digit
		{249, New(2, 49, 0)},
		{250, New(2, 50, 0)},
		{279, New(2, 79, 0)},
		{293, New(2, 93, 0)},

		// 3.0 and later: one digit each for minor and patch
		{300, New(3, 0, 0)},
		{306, New(3, 0, 6)},
		{336, New(3, 3, 6)},
		{402, New(4, 0, 2)},
		{420, New(4, 2, 0)},
		{500, New(5, 0, 0)},

		// Values no real file carries still decode
		{0, New(0, 0, 0)},
		{99, New(0, 9, 9)},
		{199, New(1, 9, 9)},
		{123456, New(1234, 5, 6)},
	}

	for _, tt := range tests {
		if got := Decode(tt.raw); got != tt.want {
			t.Errorf("Decode(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	for major := uint(3); major <= 99; major++ {
		for minor := uint(0); minor <= 9; minor++ {
			for patch := uint(0); patch <= 9; patch++ {
				raw := major*100 + minor*10 + patch
				if got, want := Decode(raw), New(major, minor, patch); got != want {
					t.Fatalf("Decode(%d) = %v, want %v", raw, got, want)
				}
			}
		}
	}
}
