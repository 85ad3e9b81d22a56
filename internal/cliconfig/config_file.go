package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	FrameFile      string `toml:"frame_file" yaml:"frame_file"`
	Interval       string `toml:"interval" yaml:"interval"`
	Debounce       string `toml:"debounce" yaml:"debounce"`
	BlankOnFailure *bool  `toml:"blank_on_failure" yaml:"blank_on_failure"`
	Listen         string `toml:"listen" yaml:"listen"`
	MQTTBroker     string `toml:"mqtt_broker" yaml:"mqtt_broker"`
	MQTTTopic      string `toml:"mqtt_topic" yaml:"mqtt_topic"`
	MQTTClientID   string `toml:"mqtt_client_id" yaml:"mqtt_client_id"`
	MQTTUsername   string `toml:"mqtt_username" yaml:"mqtt_username"`
	MQTTPassword   string `toml:"mqtt_password" yaml:"mqtt_password"`
	LogLevel       string `toml:"log_level" yaml:"log_level"`
}

// LoadFileConfig reads a config file. Files ending in .yaml or .yml are
// parsed as YAML, anything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(b, &fc); err != nil {
			return fc, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.artview/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".artview", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("frame-file", fc.FrameFile, &cfg.FrameFile)
	s.setString("listen", fc.Listen, &cfg.Listen)
	s.setString("mqtt-broker", fc.MQTTBroker, &cfg.MQTTBroker)
	s.setString("mqtt-topic", fc.MQTTTopic, &cfg.MQTTTopic)
	s.setString("mqtt-client-id", fc.MQTTClientID, &cfg.MQTTClientID)
	s.setString("mqtt-username", fc.MQTTUsername, &cfg.MQTTUsername)
	s.setString("mqtt-password", fc.MQTTPassword, &cfg.MQTTPassword)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("interval", fc.Interval, &cfg.Interval); err != nil {
		return err
	}
	if err := s.setDuration("debounce", fc.Debounce, &cfg.Debounce); err != nil {
		return err
	}

	s.setBool("blank-on-failure", fc.BlankOnFailure, &cfg.BlankOnFailure)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
