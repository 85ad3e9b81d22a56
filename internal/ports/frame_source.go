package ports

import "context"

// FrameSource provides the raw content of the frame-data file.
type FrameSource interface {
	// Read returns the full current content. Failures are returned as
	// errors; callers treat them as "no content".
	Read(ctx context.Context) (string, error)

	// Path identifies the backing file; the watcher subscribes to it.
	Path() string
}
