package lifecycle

// State is the playback state of a coordinator.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StateFailed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StatePlaying:
		return "Playing"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// MarshalText lets State appear by name in JSON status output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EventEmitter is called when the state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}
