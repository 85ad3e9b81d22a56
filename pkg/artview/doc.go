// Package artview plays ANSI-coloured ASCII-art animations.
//
// A converter writes frames to a frame-data file, separated by the
// "@FRAME@" delimiter. A Player watches that file, decodes it, translates
// each frame's SGR styling into HTML and loops the frames into one or
// more display sinks, starting over whenever the file is rewritten.
//
// # Basic Usage
//
//	p, err := artview.New(artview.Config{FrameFile: path},
//	    artview.WithSink(mySink),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := p.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Stop()
//
// # Sinks
//
// A [DisplaySink] receives complete markup for one frame at a time and
// replaces whatever it showed before. A sink that has gone away returns
// an error wrapping [ErrSinkClosed]; playback then stops until the next
// reload. Passing several sinks with [WithSink] sends every frame to all
// of them.
//
// # Reloads
//
// The new file is fully decoded before the running animation is touched.
// If it cannot be read or holds no frames, the previous animation keeps
// playing unless [Config.BlankOnFailure] is set. Bursts of writes are
// collapsed by [Config.DebounceDelay], and a reload overtaken by a newer
// change is discarded.
//
// # States
//
// A Player is [StateIdle], [StateLoading], [StatePlaying] or
// [StateFailed]. Use [Player.Status] for the state plus frame and
// error details.
package artview
