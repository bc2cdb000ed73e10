// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package notify

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/relabs-tech/sample_relay/internal/sample"
)

// MQTTOptions configures the MQTT notifier.
type MQTTOptions struct {
	Broker         string
	ClientID       string
	TopicSamples   string
	TopicCount     string // empty disables count publishing
	QoS            byte
	PublishTimeout time.Duration
}

// MQTT publishes each sample record verbatim to TopicSamples.
type MQTT struct {
	client mqtt.Client
	opts   MQTTOptions
	logger *zap.Logger
}

// NewMQTT connects to the broker. Lost connections are re-established
// in the background; Ready reports false in the meantime.
func NewMQTT(opts MQTTOptions, logger *zap.Logger) (*MQTT, error) {
	co := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(mqtt.Client) {
			logger.Info("[mqtt] connected", zap.String("broker", opts.Broker))
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("[mqtt] connection lost", zap.Error(err), zap.String("broker", opts.Broker))
		})

	client := mqtt.NewClient(co)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", opts.Broker, token.Error())
	}

	return newMQTTWithClient(client, opts, logger), nil
}

func newMQTTWithClient(client mqtt.Client, opts MQTTOptions, logger *zap.Logger) *MQTT {
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 500 * time.Millisecond
	}
	return &MQTT{client: client, opts: opts, logger: logger}
}

func (m *MQTT) Ready() bool {
	return m.client.IsConnectionOpen()
}

func (m *MQTT) Notify(ctx context.Context, payload []byte) error {
	if !m.Ready() {
		return ErrNotReady
	}
	token := m.client.Publish(m.opts.TopicSamples, m.opts.QoS, false, payload)
	if err := m.wait(ctx, token); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", m.opts.TopicSamples, err)
	}
	return nil
}

// PublishCount stores the queued-sample count as a retained 4-byte
// little-endian message, so late subscribers can read it at once.
func (m *MQTT) PublishCount(ctx context.Context, n uint32) error {
	if m.opts.TopicCount == "" {
		return nil
	}
	if !m.Ready() {
		return ErrNotReady
	}
	token := m.client.Publish(m.opts.TopicCount, m.opts.QoS, true, sample.EncodeCount(n))
	if err := m.wait(ctx, token); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", m.opts.TopicCount, err)
	}
	return nil
}

func (m *MQTT) wait(ctx context.Context, token mqtt.Token) error {
	timer := time.NewTimer(m.opts.PublishTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timed out after %v", m.opts.PublishTimeout)
	}
}

func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}
