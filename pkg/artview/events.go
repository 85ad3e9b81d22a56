package artview

import (
	"github.com/art2ascii/artview/pkg/lifecycle"
	"github.com/art2ascii/artview/pkg/watch"
)

// StateChangeEvent reports a player state transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// LoadedEvent reports a newly installed animation.
type LoadedEvent = watch.LoadedEvent

// LoadErrorEvent reports a reload that failed. Code is one of the
// FILE_NOT_FOUND, PERMISSION_DENIED, READ_ERROR or EMPTY failure codes.
type LoadErrorEvent struct {
	Error error
	Code  string
}

// EventHandler receives player notifications. Calls are synchronous and
// must return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnLoaded(event LoadedEvent)
	OnLoadError(event LoadErrorEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to
// handle only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnLoaded(LoadedEvent)           {}
func (BaseEventHandler) OnLoadError(LoadErrorEvent)     {}

// eventAdapter adapts EventHandler to watch.EventHandler.
type eventAdapter struct {
	handler EventHandler
}

func (e eventAdapter) OnStateChange(previous, current lifecycle.State, reason string) {
	e.handler.OnStateChange(StateChangeEvent{Previous: previous, Current: current, Reason: reason})
}

func (e eventAdapter) OnLoaded(event watch.LoadedEvent) {
	e.handler.OnLoaded(event)
}

func (e eventAdapter) OnLoadError(err error) {
	e.handler.OnLoadError(LoadErrorEvent{Error: err, Code: watch.FailureCode(err)})
}
