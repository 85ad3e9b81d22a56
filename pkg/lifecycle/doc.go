// Package lifecycle provides the playback state machine.
//
// A [Machine] tracks whether an animation is loading, playing or failed,
// validates every transition and reports changes to an [EventEmitter].
//
// # State Machine
//
// Valid transitions:
//   - Idle -> Loading
//   - Loading -> Playing, Failed, Idle
//   - Playing -> Loading, Idle
//   - Failed -> Idle, Playing
//
// Failed -> Playing happens when a reload fails but the previous
// animation is kept on screen. Loading -> Idle and Playing -> Idle cover
// teardown, a superseded load with nothing playing, and a closed sink.
// [Machine.Reset] forces Idle from any state.
package lifecycle
