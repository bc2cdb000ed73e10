// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/sample_relay/internal/cache"
	"github.com/relabs-tech/sample_relay/internal/config"
	"github.com/relabs-tech/sample_relay/internal/notify"
	"github.com/relabs-tech/sample_relay/internal/sample"
	"github.com/relabs-tech/sample_relay/internal/source"
	"github.com/relabs-tech/sample_relay/internal/trigger"
)

// ErrNoNotifier is returned by RunRelay when no delivery channel is
// configured.
var ErrNoNotifier = errors.New("relay: NOTIFIER is required")

// RunRelay samples on the configured trigger, buffers into one cache
// and transmits on the configured notifiers until ctx is cancelled.
func RunRelay(ctx context.Context, cfg *config.Config, logger *zap.Logger) (err error) {
	if len(cfg.Notifiers) == 0 {
		return ErrNoNotifier
	}

	logger.Info("starting sample relay",
		zap.Int("cacheSize", cfg.CacheSize),
		zap.Int("sampleIntervalMs", cfg.SampleInterval),
		zap.Int("transmitIntervalMs", cfg.TransmitInterval),
		zap.Strings("notifiers", cfg.Notifiers),
	)

	dec, err := sample.NewDecoder(cfg.TempDecoding, cfg.TempMin, cfg.TempMax)
	if err != nil {
		return err
	}
	src, err := source.New(cfg.Source, dec)
	if err != nil {
		return err
	}
	trig, err := newTrigger(cfg)
	if err != nil {
		return err
	}

	notifiers, hub, err := openNotifiers(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := notifiers.Close(); cerr != nil {
			logger.Warn("[relay] error closing notifiers", zap.Error(cerr))
			err = multierr.Append(err, cerr)
		}
	}()

	samples := cache.New[sample.Sample](cfg.CacheSize)
	stats := &Stats{}
	producer := NewProducer(src, samples, stats, logger)
	consumer := NewConsumer(samples, notifiers, stats, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := trig.Run(gctx, producer.Sample); err != nil {
			return fmt.Errorf("trigger: %w", err)
		}
		logger.Info("[producer] trigger stopped")
		return nil
	})

	g.Go(func() error {
		return consumer.Run(gctx, time.Duration(cfg.TransmitInterval)*time.Millisecond)
	})

	if cfg.WebServerPort != 0 {
		var ws http.Handler
		if hub != nil {
			ws = hub
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
			Handler:           NewStatusHandler(samples, samples.Cap(), stats, notifiers, ws, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			logger.Info("[web] status server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("sample relay stopped",
		zap.Int("queued", samples.Count()),
		zap.Any("stats", stats.Snapshot()),
	)
	return err
}

func newTrigger(cfg *config.Config) (trigger.Trigger, error) {
	switch cfg.Trigger {
	case trigger.KindGPIO:
		return trigger.NewGPIO(cfg.TriggerGPIOPin)
	default:
		return trigger.NewTicker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	}
}

// openNotifiers opens every configured delivery channel. On error the
// ones already opened are closed again.
func openNotifiers(cfg *config.Config, logger *zap.Logger) (notify.Multi, *notify.Hub, error) {
	var (
		out notify.Multi
		hub *notify.Hub
	)

	for _, name := range cfg.Notifiers {
		var (
			n   notify.Notifier
			err error
		)
		switch name {
		case "mqtt":
			n, err = notify.NewMQTT(notify.MQTTOptions{
				Broker:         cfg.MQTTBroker,
				ClientID:       cfg.MQTTClientID,
				TopicSamples:   cfg.TopicSamples,
				TopicCount:     cfg.TopicCount,
				QoS:            cfg.MQTTQoS,
				PublishTimeout: time.Duration(cfg.MQTTPublishTimeout) * time.Millisecond,
			}, logger)
		case "websocket":
			hub = notify.NewHub(logger)
			n = hub
		case "serial":
			n, err = notify.NewSerial(cfg.SerialPort, cfg.SerialBaudRate)
		default:
			err = fmt.Errorf("unknown notifier %q", name)
		}
		if err != nil {
			return nil, nil, multierr.Append(err, out.Close())
		}
		logger.Info("[relay] notifier opened", zap.String("notifier", name))
		out = append(out, n)
	}

	return out, hub, nil
}
