package lifecycle

import (
	"errors"
	"fmt"
	"sync"

	"github.com/art2ascii/artview/pkg/log"
)

// ErrInvalidTransition is returned for a transition the machine forbids.
var ErrInvalidTransition = errors.New("invalid state transition")

var transitions = map[State][]State{
	StateIdle:    {StateLoading},
	StateLoading: {StatePlaying, StateFailed, StateIdle},
	StatePlaying: {StateLoading, StateIdle},
	StateFailed:  {StateIdle, StatePlaying},
}

// Machine is the playback state machine. It is safe for concurrent use.
type Machine struct {
	mu      sync.RWMutex
	state   State
	logger  log.Logger
	emitter EventEmitter
}

// NewMachine creates a machine in StateIdle.
func NewMachine(logger log.Logger, emitter EventEmitter) *Machine {
	return &Machine{
		state:   StateIdle,
		logger:  log.OrNoop(logger),
		emitter: emitter,
	}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionTo moves to newState, or returns ErrInvalidTransition and
// leaves the state unchanged.
func (m *Machine) TransitionTo(newState State, reason string) error {
	m.mu.Lock()
	oldState := m.state
	if !CanTransition(oldState, newState) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, oldState, newState)
	}
	m.state = newState
	m.mu.Unlock()

	m.notify(oldState, newState, reason)
	return nil
}

// Reset forces StateIdle. It is used on teardown and never fails.
func (m *Machine) Reset(reason string) {
	m.mu.Lock()
	oldState := m.state
	m.state = StateIdle
	m.mu.Unlock()

	if oldState != StateIdle {
		m.notify(oldState, StateIdle, reason)
	}
}

// notify runs outside the lock so emitters may query the machine.
func (m *Machine) notify(oldState, newState State, reason string) {
	if m.emitter != nil {
		m.emitter.OnStateChange(oldState, newState, reason)
	}

	m.logger.Debug("state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)
}
