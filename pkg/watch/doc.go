// Package watch coordinates the frame-data file with playback.
//
// A [Coordinator] owns the single filesystem subscription on the frame
// file and the single active playback session. Every change notification
// reads, decodes and renders the file in full before the running session
// is replaced, so a failed or partial write leaves the animation already
// on screen playing unless Config.BlankOnFailure is set. The old session
// is stopped, and its ticker released, before the new session schedules
// its first tick.
//
// Basic usage:
//
//	coord, err := watch.New(watch.DefaultConfig(), fs.NewFrameFile(path), sink,
//	    watch.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := coord.Start(ctx); err != nil {
//	    return err
//	}
//	defer coord.Stop()
package watch
