// Package mqtt publishes rendered frames to an MQTT topic so remote
// displays can follow the animation.
package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/art2ascii/artview/internal/ports"
	"github.com/art2ascii/artview/pkg/log"
)

// Defaults for Config.
const (
	DefaultTopic          = "artview/frame"
	DefaultClientID       = "artview"
	DefaultPublishTimeout = 2 * time.Second
)

// ErrTimeout is returned when the broker does not acknowledge in time.
var ErrTimeout = errors.New("mqtt: operation timed out")

// Config describes the broker connection.
type Config struct {
	Broker         string
	Topic          string
	ClientID       string
	Username       string
	Password       string
	PublishTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.Topic == "" {
		c.Topic = DefaultTopic
	}
	if c.ClientID == "" {
		c.ClientID = DefaultClientID
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = DefaultPublishTimeout
	}
}

// publisher is the subset of paho.Client the sink uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// Sink is a ports.DisplaySink that publishes each frame's markup.
type Sink struct {
	client  publisher
	topic   string
	timeout time.Duration
	logger  log.Logger

	mu     sync.Mutex
	closed bool
}

// Dial connects to the broker and returns a Sink publishing to cfg.Topic.
func Dial(cfg Config, logger log.Logger) (*Sink, error) {
	cfg.setDefaults()
	logger = log.OrNoop(logger)

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(paho.Client) {
			logger.Info("mqtt connected", log.String("broker", cfg.Broker))
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warn("mqtt connection lost", log.Err(err))
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}
	return newSink(client, cfg, logger), nil
}

func newSink(client publisher, cfg Config, logger log.Logger) *Sink {
	cfg.setDefaults()
	return &Sink{
		client:  client,
		topic:   cfg.Topic,
		timeout: cfg.PublishTimeout,
		logger:  log.OrNoop(logger),
	}
}

// Render publishes markup at QoS 0, not retained.
func (s *Sink) Render(markup string) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ports.ErrSinkClosed
	}

	token := s.client.Publish(s.topic, 0, false, markup)
	if !token.WaitTimeout(s.timeout) {
		return fmt.Errorf("publish to %s: %w", s.topic, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", s.topic, err)
	}
	return nil
}

// Close disconnects from the broker. Further Render calls return
// ErrSinkClosed.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.Disconnect(250)
	s.logger.Info("mqtt sink closed", log.String("topic", s.topic))
	return nil
}
