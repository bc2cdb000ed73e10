// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package source

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/relabs-tech/sample_relay/internal/sample"
)

const (
	KindMock     = "mock"
	KindSequence = "sequence"
)

// Source is anything that can build a sample once per trigger.
// Implementations are called from a single trigger goroutine and must
// not block.
type Source interface {
	Next() (sample.Sample, error)
}

// New returns the source named by kind, decoding temperatures with dec.
func New(kind string, dec sample.Decoder) (Source, error) {
	switch kind {
	case "", KindMock:
		return NewMockSource(dec, time.Now().UnixNano()), nil
	case KindSequence:
		return NewSequenceSource(dec, time.Now().UnixNano()), nil
	default:
		return nil, fmt.Errorf("unknown sample source %q", kind)
	}
}

type mockSource struct {
	rng    *rand.Rand
	decode sample.Decoder
}

// NewMockSource creates a source of random raw IMU words and random
// 16-bit temperature words run through dec.
func NewMockSource(dec sample.Decoder, seed int64) Source {
	return &mockSource{
		rng:    rand.New(rand.NewSource(seed)),
		decode: dec,
	}
}

func (m *mockSource) Next() (sample.Sample, error) {
	var s sample.Sample
	for i := range s.IMU {
		s.IMU[i] = m.rng.Uint32()
	}
	for i := range s.Temp {
		s.Temp[i] = m.decode(uint16(m.rng.Uint32()))
	}
	return s, nil
}

// sequenceSource is a mock source whose first IMU word is a running
// counter, so a client can spot gaps and reordering on the wire.
type sequenceSource struct {
	mockSource
	seq uint32
}

func NewSequenceSource(dec sample.Decoder, seed int64) Source {
	return &sequenceSource{
		mockSource: mockSource{rng: rand.New(rand.NewSource(seed)), decode: dec},
	}
}

func (s *sequenceSource) Next() (sample.Sample, error) {
	out, err := s.mockSource.Next()
	if err != nil {
		return out, err
	}
	s.seq++
	out.IMU[0] = s.seq
	return out, nil
}
