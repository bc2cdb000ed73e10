// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sample

import (
	"encoding/binary"
	"errors"
	"math"
)

const (
	IMULen  = 20 // raw IMU readings per sample
	TempLen = 3  // decoded temperatures per sample

	// Size is the wire size of a Sample: IMU block followed by the
	// temperature block, little-endian, no padding.
	Size = IMULen*4 + TempLen*8

	tempOffset = IMULen * 4

	// CountSize is the wire size of the queued-sample count.
	CountSize = 4
)

var ErrShortPayload = errors.New("sample: payload too short")

// Sample is one observation batch. It is copied byte for byte into the
// notification payload, so field order and widths are the wire format.
type Sample struct {
	IMU  [IMULen]uint32   `json:"imu"`
	Temp [TempLen]float64 `json:"temp"`
}

// AppendBinary appends the wire encoding of s to b.
func (s Sample) AppendBinary(b []byte) ([]byte, error) {
	for _, v := range s.IMU {
		b = binary.LittleEndian.AppendUint32(b, v)
	}
	for _, v := range s.Temp {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	}
	return b, nil
}

func (s Sample) MarshalBinary() ([]byte, error) {
	return s.AppendBinary(make([]byte, 0, Size))
}

// UnmarshalBinary decodes the first Size bytes of data. Trailing bytes
// are ignored so framed transports can hand over their raw buffer.
func (s *Sample) UnmarshalBinary(data []byte) error {
	if len(data) < Size {
		return ErrShortPayload
	}
	for i := range s.IMU {
		s.IMU[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	for i := range s.Temp {
		s.Temp[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[tempOffset+i*8:]))
	}
	return nil
}

// EncodeCount returns the 4-byte little-endian form of a queue count.
func EncodeCount(n uint32) []byte {
	return binary.LittleEndian.AppendUint32(make([]byte, 0, CountSize), n)
}

func DecodeCount(data []byte) (uint32, error) {
	if len(data) < CountSize {
		return 0, ErrShortPayload
	}
	return binary.LittleEndian.Uint32(data), nil
}
