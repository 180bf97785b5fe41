package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/observability"
)

// Radio transports selectable with RADIO_TRANSPORT.
const (
	TransportLoopback = "loopback"
	TransportMQTT     = "mqtt"
	TransportBLE      = "ble"
)

const maxSampleQueueSize = 64

// Config holds all node settings, populated from environment variables.
type Config struct {
	NodeID          string
	LogLevel        string
	LogFormat       string
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Task periods.
	SamplePeriod    time.Duration
	CalcPeriod      time.Duration
	IndicatorPeriod time.Duration
	DispatchPeriod  time.Duration
	SampleQueueSize int

	// Receiver display.
	AlertHold      time.Duration
	DisplayRefresh time.Duration

	// Radio link.
	PeerAddress     domain.MAC
	NodeAddress     domain.MAC
	RadioTransport  string
	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string
	MQTTTimeout     time.Duration
	BLEAdapter      string
	BLEBurst        time.Duration

	// Hardware inputs and outputs.
	Hardware      bool
	BME280Address uint16
	ADCReference  float64
	PinMotion     string
	PinNormal     string
	PinModerate   string
	PinCritical   string
	PinDangerous  string

	// Simulated inputs used when Hardware is false.
	SimTemperature float64
	SimHumidity    float64
	SimWindRaw     uint16
	SimDMCRaw      uint16
	SimDCRaw       uint16
	SimMotionEvery time.Duration

	// FWI telemetry export.
	TelemetryEnabled bool
	KafkaBrokers     []string
	KafkaTopic       string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		NodeID:          sharedcfg.EnvOrDefault("NODE_ID", "firesense"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: shutdownTimeout,
		RadioTransport:  strings.ToLower(sharedcfg.EnvOrDefault("RADIO_TRANSPORT", TransportMQTT)),
		MQTTBroker:      sharedcfg.EnvOrDefault("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID:    os.Getenv("MQTT_CLIENT_ID"),
		MQTTTopicPrefix: sharedcfg.EnvOrDefault("MQTT_TOPIC_PREFIX", "firesense/radio"),
		BLEAdapter:      sharedcfg.EnvOrDefault("BLE_ADAPTER", "hci0"),
		PinMotion:       sharedcfg.EnvOrDefault("PIN_MOTION", "GPIO7"),
		PinNormal:       sharedcfg.EnvOrDefault("PIN_NORMAL", "GPIO1"),
		PinModerate:     sharedcfg.EnvOrDefault("PIN_MODERATE", "GPIO2"),
		PinCritical:     sharedcfg.EnvOrDefault("PIN_CRITICAL", "GPIO42"),
		PinDangerous:    sharedcfg.EnvOrDefault("PIN_DANGEROUS", "GPIO41"),
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TELEMETRY_TOPIC", "fire-weather-readings"),
	}

	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"SAMPLE_PERIOD", "20ms", &cfg.SamplePeriod},
		{"CALC_PERIOD", "15.625ms", &cfg.CalcPeriod},
		{"INDICATOR_PERIOD", "500ms", &cfg.IndicatorPeriod},
		{"DISPATCH_PERIOD", "500ms", &cfg.DispatchPeriod},
		{"ALERT_HOLD", "2s", &cfg.AlertHold},
		{"DISPLAY_REFRESH", "50ms", &cfg.DisplayRefresh},
		{"MQTT_TIMEOUT", "5s", &cfg.MQTTTimeout},
		{"BLE_BURST", "600ms", &cfg.BLEBurst},
		{"SIM_MOTION_EVERY", "5s", &cfg.SimMotionEvery},
	}
	for _, d := range durations {
		if *d.dest, err = parsePositiveDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	if cfg.SampleQueueSize, err = parseInt("SAMPLE_QUEUE_SIZE", 5); err != nil {
		return nil, err
	}
	if cfg.SampleQueueSize < 1 || cfg.SampleQueueSize > maxSampleQueueSize {
		return nil, fmt.Errorf("SAMPLE_QUEUE_SIZE must be between 1 and %d, got %d", maxSampleQueueSize, cfg.SampleQueueSize)
	}

	if cfg.PeerAddress, err = domain.ParseMAC(sharedcfg.EnvOrDefault("PEER_ADDRESS", domain.DefaultPeerAddress.String())); err != nil {
		return nil, fmt.Errorf("invalid PEER_ADDRESS: %w", err)
	}
	if cfg.NodeAddress, err = domain.ParseMAC(sharedcfg.EnvOrDefault("NODE_ADDRESS", "24:ec:4a:0e:bc:5d")); err != nil {
		return nil, fmt.Errorf("invalid NODE_ADDRESS: %w", err)
	}

	if cfg.Hardware, err = parseBool("HARDWARE", false); err != nil {
		return nil, err
	}
	if cfg.TelemetryEnabled, err = parseBool("TELEMETRY_ENABLED", false); err != nil {
		return nil, err
	}

	addr, err := strconv.ParseUint(sharedcfg.EnvOrDefault("BME280_ADDRESS", "0x76"), 0, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid BME280_ADDRESS: %w", err)
	}
	cfg.BME280Address = uint16(addr)

	if cfg.ADCReference, err = parseFloat("ADC_REFERENCE_VOLTS", 3.3); err != nil {
		return nil, err
	}
	if cfg.ADCReference <= 0 {
		return nil, errors.New("ADC_REFERENCE_VOLTS must be positive")
	}

	if cfg.SimTemperature, err = parseFloat("SIM_TEMPERATURE", 25); err != nil {
		return nil, err
	}
	if cfg.SimHumidity, err = parseFloat("SIM_HUMIDITY", 50); err != nil {
		return nil, err
	}
	raws := []struct {
		key  string
		def  uint16
		dest *uint16
	}{
		{"SIM_WIND_RAW", 819, &cfg.SimWindRaw},
		{"SIM_DMC_RAW", 1024, &cfg.SimDMCRaw},
		{"SIM_DC_RAW", 819, &cfg.SimDCRaw},
	}
	for _, r := range raws {
		if *r.dest, err = parseRaw(r.key, r.def); err != nil {
			return nil, err
		}
	}

	if _, err := observability.ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	switch cfg.RadioTransport {
	case TransportLoopback, TransportMQTT, TransportBLE:
	default:
		return nil, fmt.Errorf("invalid RADIO_TRANSPORT %q (allowed: loopback, mqtt, ble)", cfg.RadioTransport)
	}
	if cfg.TelemetryEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when TELEMETRY_ENABLED is true")
	}
	if cfg.TelemetryEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TELEMETRY_TOPIC is required when TELEMETRY_ENABLED is true")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, s)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return f, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func parseRaw(key string, def uint16) (uint16, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil || n > uint64(domain.ADCFullScale) {
		return 0, fmt.Errorf("invalid %s %q: must be an ADC count between 0 and 4095", key, s)
	}
	return uint16(n), nil
}

// ClientID returns MQTT_CLIENT_ID or a role-specific default.
func (c *Config) ClientID(role string) string {
	if c.MQTTClientID != "" {
		return c.MQTTClientID
	}
	return "firesense-" + role
}
