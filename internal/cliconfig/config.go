package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Defaults used by DefaultConfig.
const (
	DefaultInterval = 83 * time.Millisecond
	DefaultDebounce = 50 * time.Millisecond
	DefaultListen   = "localhost:8083"
	DefaultTopic    = "artview/frame"
	DefaultClientID = "artview"
)

// Config holds CLI configuration for artview.
type Config struct {
	FrameFile string

	Interval       time.Duration
	Debounce       time.Duration
	BlankOnFailure bool

	Listen string

	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		FrameFile:    "", // Derived during Validate
		Interval:     DefaultInterval,
		Debounce:     DefaultDebounce,
		Listen:       DefaultListen,
		MQTTTopic:    DefaultTopic,
		MQTTClientID: DefaultClientID,
		MQTTPassword: os.Getenv("ARTVIEW_MQTT_PASSWORD"),
		LogLevel:     zerolog.InfoLevel.String(),
	}
}

// DefaultFramePath returns where the converter writes its output,
// ~/.artview/output.data.
func DefaultFramePath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".artview", "output.data")
	}
	return ""
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.FrameFile == "" {
		c.FrameFile = DefaultFramePath()
	}
	if c.FrameFile == "" {
		return fmt.Errorf("frame-file is required")
	}

	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}

	if c.Listen == "" && c.MQTTBroker == "" {
		return fmt.Errorf("at least one display is required (listen or mqtt-broker)")
	}
	if c.MQTTBroker != "" && c.MQTTTopic == "" {
		c.MQTTTopic = DefaultTopic
	}

	if c.LogLevel == "" {
		c.LogLevel = zerolog.InfoLevel.String()
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}

	return nil
}

// Masked returns a copy safe to log.
func (c Config) Masked() Config {
	if c.MQTTPassword != "" {
		c.MQTTPassword = "*****"
	}
	return c
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
