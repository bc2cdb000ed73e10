package app

import (
	"context"
	"errors"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/relabs-tech/sample_relay/internal/config"
	"github.com/relabs-tech/sample_relay/internal/sample"
)

// RunConsoleMQTT subscribes to the relay's topics and prints every
// decoded sample and count update until ctx is cancelled.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.MQTTBroker == "" {
		return errors.New("console: MQTT_BROKER is required")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID + "-console")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	logger.Info("console: connected to MQTT broker", zap.String("broker", cfg.MQTTBroker))

	// Subscribe to samples
	var gaps seqTracker
	sampleToken := client.Subscribe(cfg.TopicSamples, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s sample.Sample
		if err := s.UnmarshalBinary(msg.Payload()); err != nil {
			logger.Warn("console: sample decode error", zap.Error(err), zap.Int("payloadLength", len(msg.Payload())))
			return
		}
		fmt.Println(formatSample(s))
		if missed := gaps.observe(s.IMU[0]); missed != "" {
			logger.Warn("console: sequence break", zap.String("detail", missed))
		}
	})
	sampleToken.Wait()
	if sampleToken.Error() != nil {
		return sampleToken.Error()
	}
	logger.Info("console: subscribed", zap.String("topic", cfg.TopicSamples))

	// Subscribe to count
	if cfg.TopicCount != "" {
		countToken := client.Subscribe(cfg.TopicCount, 0, func(_ mqtt.Client, msg mqtt.Message) {
			n, err := sample.DecodeCount(msg.Payload())
			if err != nil {
				logger.Warn("console: count decode error", zap.Error(err))
				return
			}
			fmt.Printf("[COUNT] queued=%d\n", n)
		})
		countToken.Wait()
		if countToken.Error() != nil {
			return countToken.Error()
		}
		logger.Info("console: subscribed", zap.String("topic", cfg.TopicCount))
	}

	<-ctx.Done()
	logger.Info("console: shutting down")
	return nil
}

func formatSample(s sample.Sample) string {
	return fmt.Sprintf(
		"[SAMPLE] imu=%08x %08x %08x %08x ... %08x  temp=%8.3f %8.3f %8.3f",
		s.IMU[0], s.IMU[1], s.IMU[2], s.IMU[3], s.IMU[sample.IMULen-1],
		s.Temp[0], s.Temp[1], s.Temp[2],
	)
}

// seqTracker checks the counter a sequence source writes into IMU[0].
// It only reports once two consecutive values look like a counter.
type seqTracker struct {
	prev    uint32
	counted bool
}

func (t *seqTracker) observe(seq uint32) string {
	prev, counted := t.prev, t.counted
	t.prev = seq
	t.counted = prev != 0 && seq == prev+1

	switch {
	case !counted || seq == prev+1:
		return ""
	case seq <= prev:
		return fmt.Sprintf("sample %d after %d (reordered or duplicated)", seq, prev)
	default:
		return fmt.Sprintf("samples %d..%d missing", prev+1, seq-1)
	}
}
