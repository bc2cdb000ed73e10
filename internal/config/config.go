package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration values.
type Config struct {
	// Cache
	CacheSize int

	// Timing
	SampleInterval   int // milliseconds
	TransmitInterval int // milliseconds

	// Sampling
	Source       string // "mock" or "sequence"
	TempDecoding string // "half" or "scaled"
	TempMin      float64
	TempMax      float64

	// Trigger
	Trigger        string // "timer" or "gpio"
	TriggerGPIOPin string

	// Delivery
	Notifiers []string // any of "mqtt", "websocket", "serial"

	// MQTT
	MQTTBroker         string
	MQTTClientID       string
	MQTTQoS            byte
	MQTTPublishTimeout int // milliseconds
	TopicSamples       string
	TopicCount         string

	// Serial
	SerialPort     string
	SerialBaudRate int

	// Web Server
	WebServerPort int // 0 disables the status server

	// Logging
	LogLevel string
	LogFile  string
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every optional value filled in.
func Default() *Config {
	return &Config{
		CacheSize:          32,
		SampleInterval:     1000,
		TransmitInterval:   1000,
		Source:             "mock",
		TempDecoding:       "half",
		TempMin:            -60,
		TempMax:            120,
		Trigger:            "timer",
		MQTTClientID:       "sample-relay",
		MQTTPublishTimeout: 500,
		TopicSamples:       "sensor/samples",
		TopicCount:         "sensor/samples/count",
		SerialBaudRate:     115200,
		WebServerPort:      8080,
		LogLevel:           "info",
	}
}

// Load reads the configuration file and returns a Config struct.
// Files ending in .yaml or .yml hold the same keys in lower case;
// anything else is read as KEY=VALUE lines.
func Load(configPath string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		return loadYAML(configPath)
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadYAML(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}

	// Sorted so that errors are reported deterministically.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cfg := Default()
	for _, k := range keys {
		if err := cfg.setValue(strings.ToUpper(k), yamlScalar(raw[k])); err != nil {
			return nil, fmt.Errorf("config key %s: %w", k, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// yamlScalar flattens a decoded YAML value into the text form setValue
// expects. Sequences become comma separated lists.
func yamlScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = yamlScalar(e)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(x)
	}
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Cache
	case "CACHE_SIZE":
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CACHE_SIZE %q: %w", value, err)
		}
		if size <= 0 {
			return fmt.Errorf("CACHE_SIZE must be > 0, got %d", size)
		}
		c.CacheSize = size

	// Timing
	case "SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.SampleInterval = interval
	case "TRANSMIT_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TRANSMIT_INTERVAL %q: %w", value, err)
		}
		c.TransmitInterval = interval

	// Sampling
	case "SOURCE":
		c.Source = value
	case "TEMP_DECODING":
		if value != "half" && value != "scaled" {
			return fmt.Errorf("TEMP_DECODING must be half or scaled, got %q", value)
		}
		c.TempDecoding = value
	case "TEMP_MIN":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid TEMP_MIN %q: %w", value, err)
		}
		c.TempMin = v
	case "TEMP_MAX":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid TEMP_MAX %q: %w", value, err)
		}
		c.TempMax = v

	// Trigger
	case "TRIGGER":
		c.Trigger = value
	case "TRIGGER_GPIO_PIN":
		c.TriggerGPIOPin = value

	// Delivery
	case "NOTIFIER":
		var names []string
		for _, n := range strings.Split(value, ",") {
			n = strings.TrimSpace(n)
			switch n {
			case "":
				continue
			case "mqtt", "websocket", "serial":
				names = append(names, n)
			default:
				return fmt.Errorf("unknown NOTIFIER %q", n)
			}
		}
		c.Notifiers = names

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "MQTT_QOS":
		qos, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MQTT_QOS %q: %w", value, err)
		}
		if qos < 0 || qos > 2 {
			return fmt.Errorf("MQTT_QOS must be 0-2, got %d", qos)
		}
		c.MQTTQoS = byte(qos)
	case "MQTT_PUBLISH_TIMEOUT":
		timeout, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MQTT_PUBLISH_TIMEOUT %q: %w", value, err)
		}
		c.MQTTPublishTimeout = timeout
	case "TOPIC_SAMPLES":
		c.TopicSamples = value
	case "TOPIC_COUNT":
		c.TopicCount = value

	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Logging
	case "LOG_LEVEL":
		c.LogLevel = value
	case "LOG_FILE":
		c.LogFile = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// HasNotifier reports whether name is among the enabled notifiers.
func (c *Config) HasNotifier(name string) bool {
	for _, n := range c.Notifiers {
		if n == name {
			return true
		}
	}
	return false
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.SampleInterval <= 0 {
		return fmt.Errorf("SAMPLE_INTERVAL must be > 0")
	}
	if c.TransmitInterval <= 0 {
		return fmt.Errorf("TRANSMIT_INTERVAL must be > 0")
	}
	if c.TempDecoding == "scaled" && c.TempMin >= c.TempMax {
		return fmt.Errorf("TEMP_MIN must be below TEMP_MAX")
	}
	switch c.Trigger {
	case "timer":
	case "gpio":
		if c.TriggerGPIOPin == "" {
			return fmt.Errorf("TRIGGER_GPIO_PIN is required for gpio trigger")
		}
	default:
		return fmt.Errorf("TRIGGER must be timer or gpio, got %q", c.Trigger)
	}
	if c.HasNotifier("mqtt") {
		if c.MQTTBroker == "" {
			return fmt.Errorf("MQTT_BROKER is required")
		}
		if c.TopicSamples == "" {
			return fmt.Errorf("TOPIC_SAMPLES is required")
		}
	}
	if c.HasNotifier("serial") && c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required")
	}
	if c.HasNotifier("websocket") && c.WebServerPort == 0 {
		return fmt.Errorf("websocket notifier needs WEB_SERVER_PORT")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads; later calls return the first result.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
