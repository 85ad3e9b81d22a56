package watch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/art2ascii/artview/internal/domain"
	"github.com/art2ascii/artview/internal/ports"
	"github.com/art2ascii/artview/pkg/ansihtml"
	"github.com/art2ascii/artview/pkg/clock"
	"github.com/art2ascii/artview/pkg/frames"
	"github.com/art2ascii/artview/pkg/lifecycle"
	"github.com/art2ascii/artview/pkg/log"
	"github.com/art2ascii/artview/pkg/playback"
)

// Failure codes reported in Status.LastError besides the source's own.
const (
	CodeEmpty      = "EMPTY"
	CodeReadError  = "READ_ERROR"
	CodeSinkClosed = "SINK_CLOSED"
)

// Status is a point-in-time view of the coordinator.
type Status struct {
	State      lifecycle.State `json:"state"`
	Path       string          `json:"path"`
	Watching   bool            `json:"watching"`
	Generation uint64          `json:"generation"`
	SessionID  string          `json:"session_id,omitempty"`
	Frames     int             `json:"frames"`
	FrameIndex int             `json:"frame_index"`
	Anomalies  int             `json:"anomalies"`
	LastError  string          `json:"last_error,omitempty"`
}

// Coordinator reloads the frame file on change and keeps exactly one
// playback session writing to the sink.
type Coordinator struct {
	cfg     Config
	source  ports.FrameSource
	sink    ports.DisplaySink
	clock   clock.Clock
	logger  log.Logger
	handler EventHandler
	machine *lifecycle.Machine

	// gen counts change events; a load whose generation is no longer
	// current is discarded.
	gen atomic.Uint64

	// loadMu serialises loads, session replacement, state transitions
	// and teardown.
	loadMu sync.Mutex

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	debounce  clock.Timer
	session   *playback.Session
	animation domain.Animation
	lastErr   string

	wg sync.WaitGroup
}

// New creates a Coordinator. Call Start to subscribe to the file, or
// drive it directly with OnFileChange.
func New(cfg Config, source ports.FrameSource, sink ports.DisplaySink, opts ...Option) (*Coordinator, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: nil frame source", domain.ErrInvalidConfig)
	}
	if sink == nil {
		return nil, fmt.Errorf("%w: nil display sink", domain.ErrInvalidConfig)
	}
	cfg.setDefaults()

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Coordinator{
		cfg:     cfg,
		source:  source,
		sink:    sink,
		clock:   o.clock,
		logger:  o.logger,
		handler: o.handler,
	}
	var emitter lifecycle.EventEmitter
	if o.handler != nil {
		emitter = o.handler
	}
	c.machine = lifecycle.NewMachine(o.logger, emitter)
	return c, nil
}

// Start subscribes to the frame file and performs an initial load once
// the subscription is in place. It returns immediately.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return domain.ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.running = true
	c.cancel = cancel

	c.wg.Add(1)
	go c.watchLoop(runCtx)
	return nil
}

// Stop releases the file subscription, stops playback and returns the
// coordinator to Idle. It returns ErrNotRunning when there was nothing
// to stop.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	wasRunning := c.running
	cancel := c.cancel
	c.running = false
	c.cancel = nil
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()

	// Invalidate any load still in flight.
	c.gen.Add(1)

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	c.mu.Lock()
	session := c.session
	c.session = nil
	c.mu.Unlock()

	session.Stop()
	c.machine.Reset("coordinator stopped")

	if !wasRunning && session == nil {
		return domain.ErrNotRunning
	}
	c.logger.Info("coordinator stopped", log.String("path", c.source.Path()))
	return nil
}

// OnFileChange handles one change notification for the frame file. The
// new animation is fully decoded and rendered before the running session
// is replaced. Load failures are logged, reported to the event handler
// and returned; a load overtaken by a newer change returns nil.
func (c *Coordinator) OnFileChange(ctx context.Context) error {
	gen := c.gen.Add(1)

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if gen != c.gen.Load() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.transition(lifecycle.StateLoading, "frame file changed")

	anim, err := c.load(ctx, gen)
	if err != nil {
		if ctx.Err() != nil {
			c.settle("load canceled")
			return ctx.Err()
		}
		return c.fail(err)
	}
	if gen != c.gen.Load() {
		c.logger.Debug("discarding superseded load", log.Uint64("generation", gen))
		c.settle("superseded by a newer change")
		return nil
	}
	return c.install(anim)
}

// load reads, decodes and renders the frame file.
func (c *Coordinator) load(ctx context.Context, gen uint64) (domain.Animation, error) {
	content, err := c.source.Read(ctx)
	if err != nil {
		return domain.Animation{}, err
	}
	raw, err := frames.Decode(content)
	if err != nil {
		return domain.Animation{}, err
	}

	anim := domain.Animation{
		Frames:     make([]string, len(raw)),
		Generation: gen,
	}
	for i, f := range raw {
		markup, res := ansihtml.Render(f)
		anim.Frames[i] = markup
		anim.Anomalies += len(res.Anomalies)
		for _, a := range res.Anomalies {
			c.logger.Debug("styling sequence rendered as text",
				log.Int("frame", i),
				log.Int("offset", a.Offset),
				log.String("sequence", fmt.Sprintf("%q", a.Sequence)),
				log.String("reason", a.Reason),
			)
		}
	}
	anim.LoadedAt = c.clock.Now()
	return anim, nil
}

// install stops the running session, then starts one over anim.
func (c *Coordinator) install(anim domain.Animation) error {
	c.mu.Lock()
	old := c.session
	c.session = nil
	c.mu.Unlock()

	old.Stop()

	s, err := playback.Start(anim.Frames, c.sink, c.cfg.Interval,
		playback.WithClock(c.clock),
		playback.WithLogger(c.logger),
	)
	if err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	c.session = s
	c.animation = anim
	c.lastErr = ""
	c.mu.Unlock()

	go c.watchSession(s)

	c.transition(lifecycle.StatePlaying, fmt.Sprintf("playing %d frames", anim.Len()))
	if anim.Anomalies > 0 {
		c.logger.Warn("frames rendered with unsupported styling",
			log.Int("anomalies", anim.Anomalies),
		)
	}
	c.logger.Info("animation loaded",
		log.String("session", s.ID()),
		log.Uint64("generation", anim.Generation),
		log.Int("frames", anim.Len()),
	)
	if c.handler != nil {
		c.handler.OnLoaded(LoadedEvent{
			Generation: anim.Generation,
			SessionID:  s.ID(),
			Frames:     anim.Len(),
			Anomalies:  anim.Anomalies,
		})
	}
	return nil
}

// fail records a load failure. The previous session keeps playing unless
// BlankOnFailure is set.
func (c *Coordinator) fail(err error) error {
	code := FailureCode(err)
	c.logger.Warn("frame file load failed",
		log.String("path", c.source.Path()),
		log.String("code", code),
		log.Err(err),
	)

	c.mu.Lock()
	c.lastErr = code
	session := c.session
	if session != nil && c.cfg.BlankOnFailure {
		c.session = nil
	}
	c.mu.Unlock()

	c.transition(lifecycle.StateFailed, code)
	if c.handler != nil {
		c.handler.OnLoadError(err)
	}

	if session != nil && !c.cfg.BlankOnFailure {
		c.transition(lifecycle.StatePlaying, "keeping previous animation")
		return err
	}
	if session != nil {
		session.Stop()
		if rerr := c.sink.Render(ansihtml.Wrap("")); rerr != nil {
			c.logger.Debug("clearing display sink failed", log.Err(rerr))
		}
	}
	c.transition(lifecycle.StateIdle, "no animation")
	return err
}

// settle leaves Loading without installing anything.
func (c *Coordinator) settle(reason string) {
	if c.currentSession() != nil {
		c.transition(lifecycle.StatePlaying, reason)
		return
	}
	c.transition(lifecycle.StateIdle, reason)
}

// watchSession clears a session that ended because its sink closed.
func (c *Coordinator) watchSession(s *playback.Session) {
	<-s.Done()
	err := s.Err()
	if err == nil {
		return
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	c.mu.Lock()
	current := c.session == s
	if current {
		c.session = nil
		c.lastErr = CodeSinkClosed
	}
	c.mu.Unlock()

	if current && c.machine.State() == lifecycle.StatePlaying {
		c.transition(lifecycle.StateIdle, "display sink closed")
	}
}

func (c *Coordinator) transition(to lifecycle.State, reason string) {
	if err := c.machine.TransitionTo(to, reason); err != nil {
		c.logger.Error("unexpected state transition", log.Err(err))
	}
}

func (c *Coordinator) currentSession() *playback.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Status returns the current coordinator status.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		State:      c.machine.State(),
		Path:       c.source.Path(),
		Watching:   c.running,
		Generation: c.gen.Load(),
		LastError:  c.lastErr,
	}
	if c.session != nil {
		st.SessionID = c.session.ID()
		st.Frames = c.session.Len()
		st.FrameIndex = c.session.Index()
		st.Anomalies = c.animation.Anomalies
	}
	return st
}

// FailureCode classifies a load error into the code reported in
// Status.LastError.
func FailureCode(err error) string {
	if errors.Is(err, frames.ErrEmpty) {
		return CodeEmpty
	}
	if code := ports.ErrorCode(err); code != "" {
		return code
	}
	return CodeReadError
}
