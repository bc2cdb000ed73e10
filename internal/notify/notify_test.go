package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// MockNotifier records payloads and fails on demand.
type MockNotifier struct {
	mu     sync.Mutex
	ready  bool
	fail   error
	sent   [][]byte
	counts []uint32
	closed bool
}

func (m *MockNotifier) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *MockNotifier) Notify(_ context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, append([]byte(nil), payload...))
	return nil
}

func (m *MockNotifier) PublishCount(_ context.Context, n uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = append(m.counts, n)
	return nil
}

func (m *MockNotifier) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.fail
}

func TestMultiReady(t *testing.T) {
	a, b := &MockNotifier{}, &MockNotifier{}
	m := Multi{a, b}
	if m.Ready() {
		t.Fatal("Ready() with no ready child")
	}
	b.ready = true
	if !m.Ready() {
		t.Fatal("Ready() = false with a ready child")
	}
}

func TestMultiNotify(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name     string
		children []*MockNotifier
		wantErr  error
		wantSent []int
	}{
		{
			name:     "all deliver",
			children: []*MockNotifier{{ready: true}, {ready: true}},
			wantSent: []int{1, 1},
		},
		{
			name:     "one of two fails",
			children: []*MockNotifier{{ready: true, fail: boom}, {ready: true}},
			wantSent: []int{0, 1},
		},
		{
			name:     "not ready skipped",
			children: []*MockNotifier{{ready: false}, {ready: true}},
			wantSent: []int{0, 1},
		},
		{
			name:     "none ready",
			children: []*MockNotifier{{}, {}},
			wantErr:  ErrNotReady,
			wantSent: []int{0, 0},
		},
		{
			name:     "all fail",
			children: []*MockNotifier{{ready: true, fail: boom}},
			wantErr:  boom,
			wantSent: []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := make(Multi, len(tt.children))
			for i, c := range tt.children {
				m[i] = c
			}
			err := m.Notify(context.Background(), []byte{1, 2, 3})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Notify() error = %v, want %v", err, tt.wantErr)
			}
			for i, c := range tt.children {
				if len(c.sent) != tt.wantSent[i] {
					t.Errorf("child %d got %d payloads, want %d", i, len(c.sent), tt.wantSent[i])
				}
			}
		})
	}
}

func TestMultiPublishCountAndClose(t *testing.T) {
	a := &MockNotifier{ready: true}
	b := &MockNotifier{ready: false}
	m := Multi{a, b}

	if err := m.PublishCount(context.Background(), 7); err != nil {
		t.Fatalf("PublishCount() error = %v", err)
	}
	if len(a.counts) != 1 || a.counts[0] != 7 || len(b.counts) != 0 {
		t.Fatalf("counts a=%v b=%v", a.counts, b.counts)
	}

	boom := errors.New("close failed")
	b.fail = boom
	if err := m.Close(); !errors.Is(err, boom) {
		t.Fatalf("Close() error = %v, want %v", err, boom)
	}
	if !a.closed || !b.closed {
		t.Fatal("Close() did not reach every child")
	}
}
