package clock

import (
	"testing"
	"time"
)

func TestFake_TickerDeliversInOrder(t *testing.T) {
	start := time.Unix(0, 0)
	f := NewFake(start)
	tk := f.NewTicker(10 * time.Millisecond)

	got := make(chan time.Time, 8)
	go func() {
		for ts := range tk.C() {
			got <- ts
		}
	}()

	f.Advance(35 * time.Millisecond)

	for i := 1; i <= 3; i++ {
		want := start.Add(time.Duration(i) * 10 * time.Millisecond)
		if ts := <-got; !ts.Equal(want) {
			t.Errorf("tick %d at %v, want %v", i, ts, want)
		}
	}
	if !f.Now().Equal(start.Add(35 * time.Millisecond)) {
		t.Errorf("Now() = %v after Advance", f.Now())
	}
}

func TestFake_StoppedTickerDoesNotBlock(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	tk := f.NewTicker(time.Millisecond)
	if f.Tickers() != 1 {
		t.Fatalf("Tickers() = %d, want 1", f.Tickers())
	}

	tk.Stop()
	tk.Stop()

	done := make(chan struct{})
	go func() {
		f.Advance(10 * time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Advance blocked on a stopped ticker")
	}
	if f.Tickers() != 0 {
		t.Errorf("Tickers() = %d, want 0", f.Tickers())
	}
}

func TestFake_AfterFunc(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	var fired, cancelled bool

	f.AfterFunc(50*time.Millisecond, func() { fired = true })
	timer := f.AfterFunc(20*time.Millisecond, func() { cancelled = true })

	if !timer.Stop() {
		t.Error("Stop() on a pending timer should return true")
	}
	if timer.Stop() {
		t.Error("second Stop() should return false")
	}

	f.Advance(40 * time.Millisecond)
	if fired {
		t.Error("timer fired early")
	}
	f.Advance(10 * time.Millisecond)
	if !fired {
		t.Error("timer did not fire")
	}
	if cancelled {
		t.Error("stopped timer fired")
	}
}

func TestReal(t *testing.T) {
	c := Real()
	tk := c.NewTicker(time.Millisecond)
	defer tk.Stop()

	select {
	case <-tk.C():
	case <-time.After(time.Second):
		t.Fatal("real ticker did not fire")
	}

	fired := make(chan struct{})
	c.AfterFunc(time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
}
