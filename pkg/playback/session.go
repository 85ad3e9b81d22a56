package playback

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/art2ascii/artview/internal/ports"
	"github.com/art2ascii/artview/pkg/clock"
	"github.com/art2ascii/artview/pkg/log"
)

// DefaultInterval approximates 12 frames per second.
const DefaultInterval = 83 * time.Millisecond

var (
	// ErrNoFrames is returned by Start when given an empty sequence.
	ErrNoFrames = errors.New("playback: no frames")

	// ErrNilSink is returned by Start when given no sink.
	ErrNilSink = errors.New("playback: nil sink")
)

// Session is one running playback loop.
type Session struct {
	id       string
	frames   []string
	sink     ports.DisplaySink
	interval time.Duration
	ticker   clock.Ticker
	logger   log.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu    sync.Mutex
	index int
	ticks uint64
	err   error
}

// Start begins cycling frames into sink every interval. A zero interval
// means DefaultInterval. The first frame is rendered on the first tick.
func Start(frames []string, sink ports.DisplaySink, interval time.Duration, opts ...Option) (*Session, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if sink == nil {
		return nil, ErrNilSink
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		id:       uuid.NewString(),
		frames:   append([]string(nil), frames...),
		sink:     sink,
		interval: interval,
		logger:   o.logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	s.ticker = o.clock.NewTicker(interval)

	s.logger.Debug("playback started",
		log.String("session", s.id),
		log.Int("frames", len(s.frames)),
		log.Duration("interval", interval),
	)

	go s.run()
	return s, nil
}

func (s *Session) run() {
	defer close(s.done)
	defer s.ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-s.ticker.C():
			// A tick and a stop can be ready together; stop wins.
			select {
			case <-s.stop:
				return
			default:
			}
			if err := s.tick(); err != nil {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
				s.logger.Warn("playback ended: display sink closed",
					log.String("session", s.id),
					log.Err(err),
				)
				return
			}
		}
	}
}

// tick renders the current frame and advances the index. It returns an
// error only when the sink has gone away.
func (s *Session) tick() error {
	s.mu.Lock()
	frame := s.frames[s.index]
	index := s.index
	s.index = (s.index + 1) % len(s.frames)
	s.ticks++
	s.mu.Unlock()

	err := s.sink.Render(frame)
	if err == nil {
		return nil
	}
	if errors.Is(err, ports.ErrSinkClosed) {
		return err
	}
	s.logger.Debug("render failed",
		log.String("session", s.id),
		log.Int("index", index),
		log.Err(err),
	)
	return nil
}

// Stop cancels the ticker and waits for the loop to exit. It is safe to
// call more than once, concurrently, or on a nil Session.
func (s *Session) Stop() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
}

// Done is closed once the loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns why the loop ended on its own, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// Len returns the number of frames in the sequence.
func (s *Session) Len() int {
	return len(s.frames)
}

// Interval returns the tick interval.
func (s *Session) Interval() time.Duration {
	return s.interval
}

// Index returns the index of the next frame to render.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Ticks returns how many ticks have been processed.
func (s *Session) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}
