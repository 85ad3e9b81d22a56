package watch

import (
	"context"
	"testing"
	"time"
)

func TestBackoff_Growth(t *testing.T) {
	b := newBackoff(100*time.Millisecond, 400*time.Millisecond)

	bases := []time.Duration{100, 200, 400, 400}
	for i, base := range bases {
		base *= time.Millisecond
		d := b.next()
		lo := time.Duration(float64(base) * 0.8)
		hi := time.Duration(float64(base) * 1.2)
		if d < lo || d > hi {
			t.Errorf("step %d: delay %v outside [%v, %v]", i, d, lo, hi)
		}
	}
}

func TestBackoff_WaitCanceled(t *testing.T) {
	b := newBackoff(time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if b.wait(ctx) {
		t.Error("wait() should return false on a canceled context")
	}
}
