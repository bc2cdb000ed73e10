package app

import (
	"context"
	"errors"
	"sync"

	"github.com/relabs-tech/sample_relay/internal/sample"
)

// mockNotifier records delivered samples and fails the next failNext
// deliveries.
type mockNotifier struct {
	mu       sync.Mutex
	ready    bool
	failNext int
	sent     []sample.Sample
	counts   []uint32
}

var errDeliver = errors.New("deliver failed")

func (m *mockNotifier) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *mockNotifier) Notify(_ context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext > 0 {
		m.failNext--
		return errDeliver
	}
	var s sample.Sample
	if err := s.UnmarshalBinary(payload); err != nil {
		return err
	}
	m.sent = append(m.sent, s)
	return nil
}

func (m *mockNotifier) PublishCount(_ context.Context, n uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = append(m.counts, n)
	return nil
}

func (m *mockNotifier) Close() error { return nil }

// seqSample returns a sample tagged with seq in IMU[0].
func seqSample(seq uint32) sample.Sample {
	var s sample.Sample
	s.IMU[0] = seq
	s.Temp[0] = float64(seq) / 2
	return s
}

func sentSeqs(m *mockNotifier) []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uint32, len(m.sent))
	for i, s := range m.sent {
		out[i] = s.IMU[0]
	}
	return out
}
