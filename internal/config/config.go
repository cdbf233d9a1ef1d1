// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/panorama/internal/panorama"
)

// Source kinds for SOURCE.
const (
	SourceMock   = "mock"
	SourceIMU    = "imu"
	SourceSerial = "serial"
)

// Surface is one SURFACE line. Zero fields fall back to the global image settings.
type Surface struct {
	Name     string
	Settings panorama.Settings
}

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDTracker  string
	MQTTClientIDWeb      string
	MQTTClientIDConsole  string
	MQTTClientIDDisplay  string

	// Topics
	TopicOrientation string
	TopicOffsets     string
	TopicControl     string

	// Orientation source: "mock", "imu" or "serial"
	Source string

	// IMU Hardware
	IMUSPIDevice string
	IMUCSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte

	// Serial orientation stream
	SerialPort     string
	SerialBaudRate int

	// Timing
	SampleInterval        int // milliseconds
	DisplayUpdateInterval int // milliseconds

	// Panorama
	ViewportHeight float64
	Image          panorama.Settings // global image settings, over the defaults
	Surfaces       []Surface

	// Web Server
	WebServerPort int
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: ensures InitGlobal() only runs once.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every optional value filled in.
func Default() *Config {
	return &Config{
		MQTTClientIDProducer:  "panorama-producer",
		MQTTClientIDTracker:   "panorama-tracker",
		MQTTClientIDWeb:       "panorama-web",
		MQTTClientIDConsole:   "panorama-console",
		MQTTClientIDDisplay:   "panorama-display",
		TopicOrientation:      "panorama/orientation",
		TopicOffsets:          "panorama/offsets",
		TopicControl:          "panorama/control",
		Source:                SourceMock,
		SerialBaudRate:        9600,
		SampleInterval:        100,
		DisplayUpdateInterval: 250,
		WebServerPort:         8080,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
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

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_TRACKER":
		c.MQTTClientIDTracker = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_ORIENTATION":
		c.TopicOrientation = value
	case "TOPIC_OFFSETS":
		c.TopicOffsets = value
	case "TOPIC_CONTROL":
		c.TopicControl = value

	// Source
	case "SOURCE":
		switch value {
		case SourceMock, SourceIMU, SourceSerial:
			c.Source = value
		default:
			return fmt.Errorf("SOURCE must be one of %s, %s, %s, got %q", SourceMock, SourceIMU, SourceSerial, value)
		}

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)

	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		if rate <= 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE must be positive, got %d", rate)
		}
		c.SerialBaudRate = rate

	// Timing
	case "SAMPLE_INTERVAL":
		interval, err := positiveInt(key, value)
		if err != nil {
			return err
		}
		c.SampleInterval = interval
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := positiveInt(key, value)
		if err != nil {
			return err
		}
		c.DisplayUpdateInterval = interval

	// Panorama
	case "VIEWPORT_HEIGHT":
		h, err := positiveFloat(key, value)
		if err != nil {
			return err
		}
		c.ViewportHeight = h
	case "IMAGE_URL":
		c.Image.ImageURL = value
	case "IMAGE_WIDTH":
		w, err := positiveFloat(key, value)
		if err != nil {
			return err
		}
		c.Image.ImageWidth = w
	case "IMAGE_HEIGHT":
		h, err := positiveFloat(key, value)
		if err != nil {
			return err
		}
		c.Image.ImageHeight = h
	case "VERTICAL_RESIZE_RATIO":
		r, err := positiveFloat(key, value)
		if err != nil {
			return err
		}
		c.Image.VerticalResizeRatio = r
	case "RATIO":
		r, err := positiveFloat(key, value)
		if err != nil {
			return err
		}
		c.Image.Ratio = r
	case "SURFACE":
		s, err := parseSurface(value)
		if err != nil {
			return err
		}
		for _, existing := range c.Surfaces {
			if existing.Name == s.Name {
				return fmt.Errorf("duplicate SURFACE %q", s.Name)
			}
		}
		c.Surfaces = append(c.Surfaces, s)

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		if port <= 0 || port > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", port)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// parseSurface parses "name[,image_url,width,height,vertical_resize_ratio,ratio]".
// Empty fields keep the global settings.
func parseSurface(value string) (Surface, error) {
	fields := strings.Split(value, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if fields[0] == "" {
		return Surface{}, fmt.Errorf("SURFACE needs a name: %q", value)
	}
	if len(fields) > 6 {
		return Surface{}, fmt.Errorf("SURFACE has %d fields, want at most 6: %q", len(fields), value)
	}

	s := Surface{Name: fields[0]}
	if len(fields) > 1 {
		s.Settings.ImageURL = fields[1]
	}

	targets := []*float64{
		&s.Settings.ImageWidth,
		&s.Settings.ImageHeight,
		&s.Settings.VerticalResizeRatio,
		&s.Settings.Ratio,
	}
	names := []string{"width", "height", "vertical_resize_ratio", "ratio"}
	for i, f := range fields[min(len(fields), 2):] {
		if f == "" {
			continue
		}
		v, err := positiveFloat("SURFACE "+s.Name+" "+names[i], f)
		if err != nil {
			return Surface{}, err
		}
		*targets[i] = v
	}

	return s, nil
}

func positiveInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, v)
	}
	return v, nil
}

func positiveFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if !(v > 0) {
		return 0, fmt.Errorf("%s must be positive, got %v", key, v)
	}
	return v, nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.ViewportHeight == 0 {
		return fmt.Errorf("VIEWPORT_HEIGHT is required")
	}
	if len(c.Surfaces) == 0 {
		return fmt.Errorf("at least one SURFACE is required")
	}
	switch c.Source {
	case SourceIMU:
		if c.IMUSPIDevice == "" || c.IMUCSPin == "" {
			return fmt.Errorf("IMU_SPI_DEVICE and IMU_CS_PIN are required for SOURCE=imu")
		}
	case SourceSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required for SOURCE=serial")
		}
	}
	return nil
}

// SurfaceSettings returns the effective settings of s: defaults, then the
// global image settings, then the surface's own fields.
func (c *Config) SurfaceSettings(s Surface) panorama.Settings {
	return panorama.DefaultSettings.Merge(c.Image).Merge(s.Settings)
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once: only the first call loads the file.
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
