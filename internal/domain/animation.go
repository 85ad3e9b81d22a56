package domain

import "time"

// Animation is one decoded frame-data file with every frame rendered to
// markup. It is immutable once built and lives for one playback session.
type Animation struct {
	// Frames holds the rendered markup, in file order. Never empty.
	Frames []string

	// Anomalies counts styling sequences left unapplied across all frames.
	Anomalies int

	// Generation is the change-event number that produced this animation.
	Generation uint64

	// LoadedAt is when decoding finished.
	LoadedAt time.Time
}

// Len returns the number of frames.
func (a Animation) Len() int {
	return len(a.Frames)
}
