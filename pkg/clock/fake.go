package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced Clock.
//
// Ticks are delivered on unbuffered channels: Advance blocks until each
// due tick has been received or its ticker stopped, so a test observes
// every tick in order. Timer callbacks run synchronously inside Advance.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
	timers  []*fakeTimer
}

// NewFake returns a Fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// NewTicker registers a ticker firing every d of fake time.
func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{
		period: d,
		next:   f.now.Add(d),
		c:      make(chan time.Time),
		done:   make(chan struct{}),
	}
	f.tickers = append(f.tickers, t)
	return t
}

// AfterFunc registers f to run once d of fake time has elapsed.
func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{clock: f, at: f.now.Add(d), fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// Tickers returns the number of tickers that have not been stopped.
func (f *Fake) Tickers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tickers {
		if !t.stopped() {
			n++
		}
	}
	return n
}

// Advance moves time forward by d, firing due tickers and timers in
// time order.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		ticker, timer, at := f.earliest(target)
		if ticker == nil && timer == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		f.now = at
		if ticker != nil {
			ticker.next = ticker.next.Add(ticker.period)
		} else {
			timer.fired = true
		}
		f.mu.Unlock()

		if ticker != nil {
			select {
			case ticker.c <- at:
			case <-ticker.done:
			}
		} else {
			timer.fn()
		}
	}
}

// earliest finds the next due event at or before target. Caller holds mu.
func (f *Fake) earliest(target time.Time) (*fakeTicker, *fakeTimer, time.Time) {
	var (
		bestTicker *fakeTicker
		bestTimer  *fakeTimer
		at         = target
		found      bool
	)
	for _, t := range f.tickers {
		if t.stopped() || t.next.After(target) {
			continue
		}
		if !found || t.next.Before(at) {
			bestTicker, bestTimer, at, found = t, nil, t.next, true
		}
	}
	for _, t := range f.timers {
		if t.fired || t.cancelled || t.at.After(target) {
			continue
		}
		if !found || t.at.Before(at) {
			bestTicker, bestTimer, at, found = nil, t, t.at, true
		}
	}
	return bestTicker, bestTimer, at
}

type fakeTicker struct {
	period time.Duration
	next   time.Time
	c      chan time.Time
	done   chan struct{}
	once   sync.Once
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.once.Do(func() { close(t.done) })
}

func (t *fakeTicker) stopped() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

type fakeTimer struct {
	clock     *Fake
	at        time.Time
	fn        func()
	fired     bool
	cancelled bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}
