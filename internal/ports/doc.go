// Package ports defines the boundaries between the artview core and the
// outside world.
//
//   - [DisplaySink]: the surface rendered frames are pushed into
//   - [FrameSource]: where the frame-data file content comes from
//
// The core (pkg/playback, pkg/watch) depends only on these interfaces.
// Adapters under internal/adapters implement them for the filesystem, a
// websocket-backed web page and MQTT.
package ports
