package artview

import (
	"context"
	"fmt"

	"github.com/art2ascii/artview/internal/adapters/fanout"
	"github.com/art2ascii/artview/internal/adapters/fs"
	"github.com/art2ascii/artview/internal/domain"
	"github.com/art2ascii/artview/internal/ports"
	"github.com/art2ascii/artview/pkg/lifecycle"
	"github.com/art2ascii/artview/pkg/watch"
)

// Re-exported so callers need only this package.
type (
	// DisplaySink receives rendered frames.
	DisplaySink = ports.DisplaySink

	// SinkFunc adapts a function to DisplaySink.
	SinkFunc = ports.SinkFunc

	// State is the player state.
	State = lifecycle.State

	// Status is a point-in-time view of the player.
	Status = watch.Status
)

// Player states.
const (
	StateIdle    = lifecycle.StateIdle
	StateLoading = lifecycle.StateLoading
	StatePlaying = lifecycle.StatePlaying
	StateFailed  = lifecycle.StateFailed
)

// Errors returned by the player and expected from sinks.
var (
	ErrSinkClosed     = ports.ErrSinkClosed
	ErrAlreadyRunning = domain.ErrAlreadyRunning
	ErrNotRunning     = domain.ErrNotRunning
	ErrInvalidConfig  = domain.ErrInvalidConfig
)

// Player watches a frame-data file and loops its frames into the
// configured sinks. Use New to create one, then Start.
type Player struct {
	config Config
	coord  *watch.Coordinator
}

// New creates a Player. It returns an error if the configuration is
// invalid or no sink was given.
func New(cfg Config, opts ...Option) (*Player, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var sink ports.DisplaySink
	switch len(o.sinks) {
	case 0:
		return nil, fmt.Errorf("%w: no display sink", domain.ErrInvalidConfig)
	case 1:
		sink = o.sinks[0]
	default:
		sink = fanout.New(o.logger, o.sinks...)
	}

	watchOpts := []watch.Option{
		watch.WithClock(o.clock),
		watch.WithLogger(o.logger),
	}
	if o.eventHandler != nil {
		watchOpts = append(watchOpts, watch.WithEventHandler(eventAdapter{handler: o.eventHandler}))
	}

	coord, err := watch.New(watch.Config{
		Interval:       cfg.Interval,
		DebounceDelay:  cfg.DebounceDelay,
		BlankOnFailure: cfg.BlankOnFailure,
	}, fs.NewFrameFile(cfg.FrameFile), sink, watchOpts...)
	if err != nil {
		return nil, err
	}

	return &Player{config: cfg, coord: coord}, nil
}

// Start watches the frame file in the background and plays it once it
// decodes. It returns immediately.
func (p *Player) Start(ctx context.Context) error {
	return p.coord.Start(ctx)
}

// Stop stops watching and playback. No frame is rendered after Stop
// returns.
func (p *Player) Stop() error {
	return p.coord.Stop()
}

// Reload re-reads the frame file now, as if it had changed.
func (p *Player) Reload(ctx context.Context) error {
	return p.coord.OnFileChange(ctx)
}

// Status returns the current player status.
// Safe to call concurrently from any goroutine.
func (p *Player) Status() Status {
	return p.coord.Status()
}

// Config returns the configuration the player was built with, after
// defaults were applied.
func (p *Player) Config() Config {
	return p.config
}

// State returns the current player state.
func (p *Player) State() State {
	return p.coord.Status().State
}
