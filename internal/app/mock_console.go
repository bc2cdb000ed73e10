// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/sample_relay/internal/cache"
	"github.com/relabs-tech/sample_relay/internal/config"
	"github.com/relabs-tech/sample_relay/internal/sample"
	"github.com/relabs-tech/sample_relay/internal/source"
)

// consoleNotifier prints every delivered record instead of sending it.
type consoleNotifier struct {
	out io.Writer
}

func (c consoleNotifier) Ready() bool { return true }

func (c consoleNotifier) Notify(_ context.Context, payload []byte) error {
	var s sample.Sample
	if err := s.UnmarshalBinary(payload); err != nil {
		return err
	}
	_, err := fmt.Fprintln(c.out, formatSample(s))
	return err
}

func (c consoleNotifier) Close() error { return nil }

// RunMockConsole runs the producer and consumer against a mock source and
// prints transmitted samples to out. No hardware or broker is needed.
func RunMockConsole(ctx context.Context, cfg *config.Config, out io.Writer, logger *zap.Logger) error {
	dec, err := sample.NewDecoder(cfg.TempDecoding, cfg.TempMin, cfg.TempMax)
	if err != nil {
		return err
	}

	samples := cache.New[sample.Sample](cfg.CacheSize)
	stats := &Stats{}
	producer := NewProducer(source.NewSequenceSource(dec, time.Now().UnixNano()), samples, stats, logger)
	consumer := NewConsumer(samples, consoleNotifier{out: out}, stats, logger)

	sampleTicker := time.NewTicker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	defer sampleTicker.Stop()
	txTicker := time.NewTicker(time.Duration(cfg.TransmitInterval) * time.Millisecond)
	defer txTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("mock console stopped", zap.Any("stats", stats.Snapshot()))
			return nil
		case t := <-sampleTicker.C:
			producer.Sample(t)
		case <-txTicker.C:
			consumer.Transmit(ctx)
		}
	}
}
