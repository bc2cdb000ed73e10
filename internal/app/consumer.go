package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/sample_relay/internal/notify"
	"github.com/relabs-tech/sample_relay/internal/sample"
)

// SampleQueue is the transmit loop's view of the cache.
type SampleQueue interface {
	Pop() (sample.Sample, bool)
	RequeueFront(s sample.Sample) bool
	Count() int
}

// Consumer moves at most one sample per tick from the cache to the
// notifier.
type Consumer struct {
	queue    SampleQueue
	notifier notify.Notifier
	stats    *Stats
	logger   *zap.Logger

	buf       []byte
	ready     bool
	lastCount int
}

func NewConsumer(queue SampleQueue, notifier notify.Notifier, stats *Stats, logger *zap.Logger) *Consumer {
	return &Consumer{
		queue:     queue,
		notifier:  notifier,
		stats:     stats,
		logger:    logger,
		buf:       make([]byte, 0, sample.Size),
		lastCount: -1,
	}
}

func (c *Consumer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("[consumer] received shutdown signal", zap.Int("queued", c.queue.Count()))
			return nil
		case <-ticker.C:
			c.Transmit(ctx)
		}
	}
}

// Transmit runs one transmit cycle. Nothing is popped while no consumer
// is listening. A sample whose delivery fails goes back to the front of
// the cache; if that fails too it is lost and reported.
func (c *Consumer) Transmit(ctx context.Context) {
	if !c.checkReady() {
		return
	}

	s, ok := c.queue.Pop()
	if !ok {
		c.publishCount(ctx)
		return
	}

	c.buf, _ = s.AppendBinary(c.buf[:0])
	if err := c.notifier.Notify(ctx, c.buf); err != nil {
		c.logger.Warn("[consumer] notify failed, requeueing sample", zap.Error(err))
		if c.queue.RequeueFront(s) {
			c.stats.requeued.Add(1)
		} else {
			n := c.stats.lost.Add(1)
			c.logger.Error("[consumer] sample cache full, undelivered sample lost",
				zap.String("reason", "delivery_lost"),
				zap.Uint64("lost", n),
			)
		}
	} else {
		c.stats.delivered.Add(1)
	}

	c.publishCount(ctx)
}

func (c *Consumer) checkReady() bool {
	ready := c.notifier.Ready()
	if ready != c.ready {
		c.ready = ready
		if ready {
			c.logger.Info("[consumer] notifications enabled")
		} else {
			c.logger.Info("[consumer] notifications disabled")
			c.lastCount = -1
		}
	}
	return ready
}

// publishCount pushes the queued count to notifiers that expose it,
// only when it changed.
func (c *Consumer) publishCount(ctx context.Context) {
	cp, ok := c.notifier.(notify.CountPublisher)
	if !ok {
		return
	}
	n := c.queue.Count()
	if n == c.lastCount {
		return
	}
	if err := cp.PublishCount(ctx, uint32(n)); err != nil {
		c.logger.Warn("[consumer] count publish failed", zap.Error(err), zap.Int("count", n))
		return
	}
	c.lastCount = n
}
