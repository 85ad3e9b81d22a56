// Package playback cycles rendered frames into a display sink at a fixed
// cadence.
//
// A [Session] is one run of the loop over one frame sequence. It owns its
// ticker exclusively; [Session.Stop] cancels the ticker and waits for the
// loop goroutine to exit, so no frame reaches the sink after Stop returns.
//
//	s, err := playback.Start(frames, sink, playback.DefaultInterval)
//	if err != nil {
//	    return err
//	}
//	defer s.Stop()
package playback
