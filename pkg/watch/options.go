package watch

import (
	"time"

	"github.com/art2ascii/artview/pkg/clock"
	"github.com/art2ascii/artview/pkg/lifecycle"
	"github.com/art2ascii/artview/pkg/log"
	"github.com/art2ascii/artview/pkg/playback"
)

// Config holds coordinator settings.
type Config struct {
	// Interval between frames.
	// Default: 83 milliseconds
	Interval time.Duration

	// DebounceDelay collapses bursts of write events into one reload.
	// Zero reloads on every event.
	// Default: 50 milliseconds
	DebounceDelay time.Duration

	// BlankOnFailure stops playback and clears the sink when a reload
	// fails, instead of keeping the previous animation.
	BlankOnFailure bool

	// RetryInitial and RetryMax bound the backoff used while the frame
	// file's directory cannot be watched.
	// Defaults: 500 milliseconds, 30 seconds
	RetryInitial time.Duration
	RetryMax     time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:      playback.DefaultInterval,
		DebounceDelay: 50 * time.Millisecond,
		RetryInitial:  500 * time.Millisecond,
		RetryMax:      30 * time.Second,
	}
}

func (c *Config) setDefaults() {
	d := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.DebounceDelay < 0 {
		c.DebounceDelay = 0
	}
	if c.RetryInitial <= 0 {
		c.RetryInitial = d.RetryInitial
	}
	if c.RetryMax < c.RetryInitial {
		c.RetryMax = c.RetryInitial
	}
}

// LoadedEvent describes a successfully installed animation.
type LoadedEvent struct {
	Generation uint64
	SessionID  string
	Frames     int
	Anomalies  int
}

// EventHandler receives coordinator notifications. Calls are synchronous
// and must return quickly.
type EventHandler interface {
	OnStateChange(previous, current lifecycle.State, reason string)
	OnLoaded(e LoadedEvent)
	OnLoadError(err error)
}

// Option configures a Coordinator.
type Option func(*options)

type options struct {
	clock   clock.Clock
	logger  log.Logger
	handler EventHandler
}

func defaultOptions() options {
	return options{
		clock:  clock.Real(),
		logger: log.NoopLogger{},
	}
}

// WithClock sets the clock used for playback ticks and debouncing.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.logger = log.OrNoop(l)
	}
}

// WithEventHandler sets a handler for coordinator events.
func WithEventHandler(h EventHandler) Option {
	return func(o *options) {
		o.handler = h
	}
}
