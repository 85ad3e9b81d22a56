package artview

import (
	"fmt"
	"time"

	"github.com/art2ascii/artview/internal/domain"
	"github.com/art2ascii/artview/pkg/playback"
)

// Config configures a Player.
type Config struct {
	// FrameFile is the frame-data file written by the converter.
	// Required.
	FrameFile string

	// Interval between frames.
	// Default: 83 milliseconds
	Interval time.Duration

	// DebounceDelay collapses bursts of write events into one reload.
	// Zero reloads on every event. The converter writes in bursts, so
	// most callers want DefaultDebounceDelay.
	DebounceDelay time.Duration

	// BlankOnFailure clears the display when a reload fails instead of
	// keeping the previous animation.
	BlankOnFailure bool
}

// DefaultDebounceDelay is the debounce the artview command uses.
const DefaultDebounceDelay = 50 * time.Millisecond

// SetDefaults fills a zero Interval with the default. DebounceDelay is
// left alone since zero is a valid setting.
func (c *Config) SetDefaults() {
	if c.Interval == 0 {
		c.Interval = playback.DefaultInterval
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.FrameFile == "" {
		return fmt.Errorf("%w: frame file is required", domain.ErrInvalidConfig)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: interval must be positive", domain.ErrInvalidConfig)
	}
	if c.DebounceDelay < 0 {
		return fmt.Errorf("%w: debounce delay must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}
