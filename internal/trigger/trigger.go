// Package trigger provides the periodic contexts that drive sampling.
// The fire callback stands in for an interrupt handler: it runs on the
// trigger goroutine and must return quickly without blocking.
package trigger

import (
	"context"
	"fmt"
	"time"
)

const (
	KindTimer = "timer"
	KindGPIO  = "gpio"
)

// Trigger calls fire once per event until ctx is cancelled.
type Trigger interface {
	Run(ctx context.Context, fire func(time.Time)) error
}

// Ticker fires at a fixed interval.
type Ticker struct {
	interval time.Duration
}

func NewTicker(interval time.Duration) (*Ticker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("trigger: interval must be > 0, got %v", interval)
	}
	return &Ticker{interval: interval}, nil
}

func (t *Ticker) Run(ctx context.Context, fire func(time.Time)) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ts := <-ticker.C:
			fire(ts)
		}
	}
}
