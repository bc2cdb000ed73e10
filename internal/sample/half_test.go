package sample

import (
	"math"
	"testing"
)

func TestDecodeHalfFixedPoints(t *testing.T) {
	tests := []struct {
		name string
		in   uint16
		want float64
	}{
		{"positive zero", 0x0000, 0},
		{"one", 0x3C00, 1},
		{"minus two", 0xC000, -2},
		{"one and a half", 0x3E00, 1.5},
		{"max normal", 0x7BFF, 65504},
		{"min normal", 0x0400, math.Ldexp(1, -14)},
		{"smallest subnormal", 0x0001, math.Ldexp(1, -24)},
		{"largest subnormal", 0x03FF, math.Ldexp(1023, -24)},
		{"positive infinity", 0x7C00, math.Inf(1)},
		{"negative infinity", 0xFC00, math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeHalf(tt.in); got != tt.want {
				t.Errorf("DecodeHalf(%#04x) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeHalfSignedZero(t *testing.T) {
	if got := DecodeHalf(0x0000); got != 0 || math.Signbit(got) {
		t.Errorf("DecodeHalf(0x0000) = %v, want +0", got)
	}
	if got := DecodeHalf(0x8000); got != 0 || !math.Signbit(got) {
		t.Errorf("DecodeHalf(0x8000) = %v, want -0", got)
	}
}

func TestDecodeHalfSmallestSubnormal(t *testing.T) {
	want := math.Ldexp(1, -24) // 2^-14 * (1/1024)
	if got := DecodeHalf(0x0001); got != want {
		t.Fatalf("DecodeHalf(0x0001) = %g, want %g", got, want)
	}
	if want != math.Ldexp(1, -14)/1024 {
		t.Fatalf("subnormal step mismatch")
	}
}

func TestDecodeHalfNaN(t *testing.T) {
	for _, in := range []uint16{0x7E00, 0x7C01, 0x7FFF, 0xFE00, 0xFC01} {
		if got := DecodeHalf(in); !math.IsNaN(got) {
			t.Errorf("DecodeHalf(%#04x) = %v, want NaN", in, got)
		}
	}
}

func TestDecodeHalfAllPatterns(t *testing.T) {
	for u := 0; u <= 0x7FFF; u++ {
		pos := DecodeHalf(uint16(u))
		neg := DecodeHalf(uint16(u) | 0x8000)

		if math.IsNaN(pos) != math.IsNaN(neg) {
			t.Fatalf("NaN mismatch for %#04x", u)
		}
		if math.IsNaN(pos) {
			continue
		}
		if neg != -pos || math.Signbit(neg) == math.Signbit(pos) {
			t.Fatalf("DecodeHalf(%#04x) = %v, DecodeHalf(%#04x) = %v, want negation", u, pos, u|0x8000, neg)
		}

		// Every finite half is exactly representable as float32.
		if !math.IsInf(pos, 0) && float64(float32(pos)) != pos {
			t.Fatalf("DecodeHalf(%#04x) = %v is not exact", u, pos)
		}
	}
}

func TestDecodeHalfMonotonic(t *testing.T) {
	prev := DecodeHalf(0)
	for u := 1; u <= 0x7C00; u++ {
		v := DecodeHalf(uint16(u))
		if !(v > prev) {
			t.Fatalf("DecodeHalf(%#04x) = %v not greater than %v", u, v, prev)
		}
		prev = v
	}
}

func TestDecodeScaled(t *testing.T) {
	if got := DecodeScaled(0, -60, 120); got != -60 {
		t.Errorf("DecodeScaled(0) = %v, want -60", got)
	}
	if got := DecodeScaled(math.MaxUint16, -60, 120); got != 120 {
		t.Errorf("DecodeScaled(max) = %v, want 120", got)
	}
	mid := DecodeScaled(32768, -60, 120)
	if mid < 29.9 || mid > 30.1 {
		t.Errorf("DecodeScaled(mid) = %v, want ~30", mid)
	}
}

func TestNewDecoder(t *testing.T) {
	tests := []struct {
		mode    string
		raw     uint16
		want    float64
		wantErr bool
	}{
		{mode: "", raw: 0x3C00, want: 1},
		{mode: DecodingHalf, raw: 0x3C00, want: 1},
		{mode: DecodingScaled, raw: 0, want: -60},
		{mode: "linear", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			dec, err := NewDecoder(tt.mode, -60, 120)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewDecoder(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := dec(tt.raw); got != tt.want {
				t.Errorf("decode(%#04x) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

// halfByFormula decodes the bit fields directly.
func halfByFormula(u uint16) float64 {
	exp := int(u>>10) & 0x1f
	mant := float64(u & 0x3ff)

	var v float64
	switch exp {
	case 0:
		v = math.Ldexp(mant, -24)
	case 0x1f:
		if mant != 0 {
			return math.NaN()
		}
		v = math.Inf(1)
	default:
		v = math.Ldexp(1+mant/1024, exp-15)
	}
	if u&0x8000 != 0 {
		return -v
	}
	return v
}

func TestDecodeHalfMatchesFormula(t *testing.T) {
	for u := 0; u <= 0xFFFF; u++ {
		got, want := DecodeHalf(uint16(u)), halfByFormula(uint16(u))
		if math.IsNaN(want) {
			if !math.IsNaN(got) {
				t.Fatalf("DecodeHalf(%#04x) = %v, want NaN", u, got)
			}
			continue
		}
		if got != want || math.Signbit(got) != math.Signbit(want) {
			t.Fatalf("DecodeHalf(%#04x) = %v, want %v", u, got, want)
		}
	}
}
