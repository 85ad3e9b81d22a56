// Package fanout renders frames to several display sinks at once.
package fanout

import (
	"errors"
	"sync"

	"github.com/art2ascii/artview/internal/ports"
	"github.com/art2ascii/artview/pkg/log"
)

// Sink forwards each frame to every live child sink. Children that
// report ErrSinkClosed are dropped; the fan-out itself only reports
// ErrSinkClosed once no child is left.
type Sink struct {
	logger log.Logger

	mu    sync.Mutex
	sinks []ports.DisplaySink
}

// New returns a Sink over sinks. Nil entries are ignored.
func New(logger log.Logger, sinks ...ports.DisplaySink) *Sink {
	s := &Sink{logger: log.OrNoop(logger)}
	for _, sink := range sinks {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
	return s
}

// Len returns the number of live child sinks.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sinks)
}

// Render implements ports.DisplaySink. Errors other than ErrSinkClosed
// are joined and returned after every child has been tried.
func (s *Sink) Render(markup string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sinks) == 0 {
		return ports.ErrSinkClosed
	}

	var errs []error
	kept := s.sinks[:0]
	for _, sink := range s.sinks {
		err := sink.Render(markup)
		switch {
		case err == nil:
		case errors.Is(err, ports.ErrSinkClosed):
			continue
		default:
			errs = append(errs, err)
		}
		kept = append(kept, sink)
	}

	if dropped := len(s.sinks) - len(kept); dropped > 0 {
		for i := len(kept); i < len(s.sinks); i++ {
			s.sinks[i] = nil
		}
		s.logger.Info("display sink removed",
			log.Int("closed", dropped),
			log.Int("remaining", len(kept)),
		)
	}
	s.sinks = kept

	if len(kept) == 0 {
		return ports.ErrSinkClosed
	}
	return errors.Join(errs...)
}
