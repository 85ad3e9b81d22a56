package playback

import (
	"github.com/art2ascii/artview/pkg/clock"
	"github.com/art2ascii/artview/pkg/log"
)

// Option configures a Session.
type Option func(*options)

type options struct {
	clock  clock.Clock
	logger log.Logger
}

func defaultOptions() options {
	return options{
		clock:  clock.Real(),
		logger: log.NoopLogger{},
	}
}

// WithClock sets the clock used to schedule ticks.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLogger sets the session logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.logger = log.OrNoop(l)
	}
}
