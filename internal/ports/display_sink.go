package ports

import "errors"

// ErrSinkClosed is returned (possibly wrapped) by a DisplaySink whose
// surface has been torn down. A playback session that sees it stops.
var ErrSinkClosed = errors.New("display sink closed")

// DisplaySink is the surface the playback loop pushes rendered frames into.
// Each Render call replaces whatever the sink displayed before. Sinks must
// accept being called at roughly 12 Hz indefinitely.
type DisplaySink interface {
	Render(markup string) error
}

// SinkFunc adapts a function to the DisplaySink interface.
type SinkFunc func(markup string) error

// Render calls f(markup).
func (f SinkFunc) Render(markup string) error {
	return f(markup)
}
