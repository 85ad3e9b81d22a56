package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (ARTVIEW_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("frame-file", os.Getenv("ARTVIEW_FRAME_FILE"), &cfg.FrameFile)
	s.setString("listen", os.Getenv("ARTVIEW_LISTEN"), &cfg.Listen)
	s.setString("mqtt-broker", os.Getenv("ARTVIEW_MQTT_BROKER"), &cfg.MQTTBroker)
	s.setString("mqtt-topic", os.Getenv("ARTVIEW_MQTT_TOPIC"), &cfg.MQTTTopic)
	s.setString("mqtt-client-id", os.Getenv("ARTVIEW_MQTT_CLIENT_ID"), &cfg.MQTTClientID)
	s.setString("mqtt-username", os.Getenv("ARTVIEW_MQTT_USERNAME"), &cfg.MQTTUsername)
	s.setString("mqtt-password", os.Getenv("ARTVIEW_MQTT_PASSWORD"), &cfg.MQTTPassword)
	s.setString("log-level", os.Getenv("ARTVIEW_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("interval", os.Getenv("ARTVIEW_INTERVAL"), &cfg.Interval); err != nil {
		return err
	}
	if err := s.setDuration("debounce", os.Getenv("ARTVIEW_DEBOUNCE"), &cfg.Debounce); err != nil {
		return err
	}

	s.setBoolFromString("blank-on-failure", os.Getenv("ARTVIEW_BLANK_ON_FAILURE"), &cfg.BlankOnFailure)

	return nil
}
