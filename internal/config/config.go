package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// Sensor hardware
	BMESPIDevice string // humidity + temperature (BME280)
	BMPSPIDevice string // pressure (BMP280)

	// Mode button; empty disables the manual metric view
	ButtonPin string

	// Storage
	LogDir string

	// Timing (milliseconds unless noted)
	LogIntervalMS  int
	SyncIntervalMS int
	AverageWindow  int // samples, not ms
	AverageDwellMS int
	DebounceMS     int

	// MQTT telemetry; empty broker disables publishing
	MQTTBroker          string
	MQTTClientIDLogger  string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string
	TopicSample         string
	TopicAverage        string

	// GPS clock sync; empty port disables the auto-set attempt
	GPSSerialPort string
	GPSBaudRate   int

	// Web server
	WebServerPort int
}

// Package-level unexported variables for singleton pattern. External code
// must use InitGlobal() to set and Get() to read.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// defaults returns a Config pre-filled with the timing and naming values
// the device ships with; the file only needs to override them.
func defaults() *Config {
	return &Config{
		LogIntervalMS:  2000,
		SyncIntervalMS: 20000,
		AverageWindow:  10,
		AverageDwellMS: 2000,
		DebounceMS:     200,

		MQTTClientIDLogger:  "weather-logger",
		MQTTClientIDConsole: "weather-console-subscriber",
		MQTTClientIDWeb:     "weather-web-subscriber",
		TopicSample:         "weather/sample",
		TopicAverage:        "weather/average",

		GPSBaudRate: 9600,

		WebServerPort: 8080,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
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

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Sensor hardware
	case "BME_SPI_DEVICE":
		c.BMESPIDevice = value
	case "BMP_SPI_DEVICE":
		c.BMPSPIDevice = value

	// Button
	case "BUTTON_PIN":
		c.ButtonPin = value

	// Storage
	case "LOG_DIR":
		c.LogDir = value

	// Timing
	case "LOG_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid LOG_INTERVAL_MS %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("LOG_INTERVAL_MS must be positive, got %d", interval)
		}
		c.LogIntervalMS = interval
	case "SYNC_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SYNC_INTERVAL_MS %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("SYNC_INTERVAL_MS must be positive, got %d", interval)
		}
		c.SyncIntervalMS = interval
	case "AVERAGE_WINDOW":
		window, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid AVERAGE_WINDOW %q: %w", value, err)
		}
		if window <= 0 {
			return fmt.Errorf("AVERAGE_WINDOW must be positive, got %d", window)
		}
		c.AverageWindow = window
	case "AVERAGE_DWELL_MS":
		dwell, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid AVERAGE_DWELL_MS %q: %w", value, err)
		}
		c.AverageDwellMS = dwell
	case "DEBOUNCE_MS":
		debounce, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DEBOUNCE_MS %q: %w", value, err)
		}
		c.DebounceMS = debounce

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_LOGGER":
		c.MQTTClientIDLogger = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "TOPIC_SAMPLE":
		c.TopicSample = value
	case "TOPIC_AVERAGE":
		c.TopicAverage = value

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.BMESPIDevice == "" {
		return fmt.Errorf("BME_SPI_DEVICE is required")
	}
	if c.BMPSPIDevice == "" {
		return fmt.Errorf("BMP_SPI_DEVICE is required")
	}
	if c.LogDir == "" {
		return fmt.Errorf("LOG_DIR is required")
	}
	if c.GPSSerialPort != "" && c.GPSBaudRate == 0 {
		return fmt.Errorf("GPS_BAUD_RATE is required when GPS_SERIAL_PORT is set")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
