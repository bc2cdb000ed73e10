// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/sample_relay/internal/sample"
	"github.com/relabs-tech/sample_relay/internal/source"
)

// SampleSink is the producer's view of the cache.
type SampleSink interface {
	Push(s sample.Sample) bool
}

// Producer builds one sample per trigger event and hands it to the cache.
type Producer struct {
	src    source.Source
	sink   SampleSink
	stats  *Stats
	logger *zap.Logger
}

func NewProducer(src source.Source, sink SampleSink, stats *Stats, logger *zap.Logger) *Producer {
	return &Producer{src: src, sink: sink, stats: stats, logger: logger}
}

// Sample is the trigger callback. A full cache drops the new sample;
// there is no retry and no backpressure.
func (p *Producer) Sample(t time.Time) {
	s, err := p.src.Next()
	if err != nil {
		p.logger.Warn("[producer] sample source error", zap.Error(err))
		return
	}
	p.stats.produced.Add(1)

	if !p.sink.Push(s) {
		n := p.stats.overruns.Add(1)
		p.logger.Warn("[producer] sample cache full, dropping sample",
			zap.String("reason", "producer_overrun"),
			zap.Uint64("overruns", n),
			zap.Time("tick", t),
		)
	}
}
