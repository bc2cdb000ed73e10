package sample

import (
	"fmt"
	"math"

	"github.com/x448/float16"
)

// Decoder turns a raw 16-bit temperature word into a value.
type Decoder func(raw uint16) float64

const (
	DecodingHalf   = "half"
	DecodingScaled = "scaled"
)

// NewDecoder returns the decoder selected by mode. min and max are only
// used by the scaled decoder.
func NewDecoder(mode string, min, max float64) (Decoder, error) {
	switch mode {
	case "", DecodingHalf:
		return DecodeHalf, nil
	case DecodingScaled:
		return func(raw uint16) float64 { return DecodeScaled(raw, min, max) }, nil
	default:
		return nil, fmt.Errorf("unknown temperature decoding %q", mode)
	}
}

// DecodeHalf converts an IEEE-754 half precision word to float64.
//
//	 S | EEEEE | MMMMMMMMMM
//	15 | 14 10 | 9        0
//
// Every half value is exact in float32, so widening through float32 loses
// nothing. Signed zero and infinities keep their sign; NaN stays NaN.
func DecodeHalf(u uint16) float64 {
	return float64(float16.Frombits(u).Float32())
}

// DecodeScaled maps raw linearly onto [min, max].
func DecodeScaled(raw uint16, min, max float64) float64 {
	normalized := float64(raw) / math.MaxUint16
	return min + normalized*(max-min)
}
