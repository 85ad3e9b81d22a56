// Package log is the logging abstraction shared by artview components.
//
// Components depend on the small [Logger] interface rather than on a
// concrete library. [ZerologAdapter] backs it with zerolog for the CLI and
// [NoopLogger] discards everything, which is the default for library use
// and for tests:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	coord, err := watch.New(cfg, src, sink, watch.WithLogger(logger))
//
// Fields are passed as [Field] values built with the helpers in this
// package (String, Int, Duration, Err, ...).
package log
