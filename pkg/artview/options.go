package artview

import (
	"github.com/art2ascii/artview/internal/ports"
	"github.com/art2ascii/artview/pkg/clock"
	"github.com/art2ascii/artview/pkg/log"
)

// Option configures optional behavior of a Player.
type Option func(*options)

type options struct {
	logger       log.Logger
	sinks        []ports.DisplaySink
	clock        clock.Clock
	eventHandler EventHandler
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		clock:  clock.Real(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = log.OrNoop(logger)
	}
}

// WithSink adds a display sink. At least one is required; frames go to
// every sink added.
func WithSink(sink DisplaySink) Option {
	return func(o *options) {
		if sink != nil {
			o.sinks = append(o.sinks, sink)
		}
	}
}

// WithClock replaces the wall clock driving playback and debouncing.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithEventHandler sets a handler for player events.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}
