package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/art2ascii/artview/internal/adapters/fs"
	"github.com/art2ascii/artview/internal/domain"
	"github.com/art2ascii/artview/internal/ports"
	"github.com/art2ascii/artview/pkg/ansihtml"
	"github.com/art2ascii/artview/pkg/clock"
	"github.com/art2ascii/artview/pkg/frames"
	"github.com/art2ascii/artview/pkg/lifecycle"
)

const interval = 83 * time.Millisecond

// fakeSource serves content from a function, counting reads.
type fakeSource struct {
	read func(ctx context.Context, n int) (string, error)

	mu    sync.Mutex
	calls int
}

func staticSource(content string) *fakeSource {
	return &fakeSource{read: func(context.Context, int) (string, error) { return content, nil }}
}

func (f *fakeSource) Read(ctx context.Context) (string, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	return f.read(ctx, n)
}

func (f *fakeSource) Path() string { return "/fake/output.data" }

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memorySink records every frame without ever blocking the loop.
type memorySink struct {
	mu     sync.Mutex
	frames []string
	err    error
}

func (m *memorySink) Render(markup string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.frames = append(m.frames, markup)
	return nil
}

func (m *memorySink) Frames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.frames...)
}

func (m *memorySink) setErr(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *memorySink) waitFrames(t *testing.T, n int) []string {
	t.Helper()
	require.Eventually(t, func() bool { return len(m.Frames()) >= n },
		time.Second, time.Millisecond, "waiting for %d frames", n)
	return m.Frames()
}

// recordingHandler captures coordinator events.
type recordingHandler struct {
	mu      sync.Mutex
	states  []string
	loaded  []LoadedEvent
	errored []error
}

func (h *recordingHandler) OnStateChange(previous, current lifecycle.State, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, previous.String()+"->"+current.String())
}

func (h *recordingHandler) OnLoaded(e LoadedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loaded = append(h.loaded, e)
}

func (h *recordingHandler) OnLoadError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errored = append(h.errored, err)
}

func (h *recordingHandler) States() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.states...)
}

func newTestCoordinator(t *testing.T, cfg Config, src ports.FrameSource, sink ports.DisplaySink, opts ...Option) *Coordinator {
	t.Helper()
	c, err := New(cfg, src, sink, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Stop() })
	return c
}

func TestNew_RequiresSourceAndSink(t *testing.T) {
	_, err := New(DefaultConfig(), nil, &memorySink{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = New(DefaultConfig(), staticSource(""), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestCoordinator_LoadAndPlay(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	sink := &memorySink{}
	handler := &recordingHandler{}
	src := staticSource("@FRAME@\x1b[31mA\x1b[0m@FRAME@\x1b[32mB\x1b[0m@FRAME@")

	c := newTestCoordinator(t, DefaultConfig(), src, sink, WithClock(clk), WithEventHandler(handler))

	require.NoError(t, c.OnFileChange(context.Background()))

	st := c.Status()
	assert.Equal(t, lifecycle.StatePlaying, st.State)
	assert.Equal(t, 2, st.Frames)
	assert.Equal(t, uint64(1), st.Generation)
	assert.NotEmpty(t, st.SessionID)
	assert.Empty(t, st.LastError)

	clk.Advance(250 * time.Millisecond)
	got := sink.waitFrames(t, 3)

	red := `<span style="color:#bb0000">A</span>`
	green := `<span style="color:#00bb00">B</span>`
	assert.Contains(t, got[0], red)
	assert.Contains(t, got[1], green)
	assert.Contains(t, got[2], red)
	assert.True(t, strings.HasPrefix(got[0], "<pre><style>body { background-color: #333; }</style>"))

	assert.Equal(t, []string{"Idle->Loading", "Loading->Playing"}, handler.States())
	require.Len(t, handler.loaded, 1)
	assert.Equal(t, 2, handler.loaded[0].Frames)
}

func TestCoordinator_EmptyDecodeStaysIdle(t *testing.T) {
	for _, content := range []string{"", "@FRAME@@FRAME@"} {
		t.Run(fmt.Sprintf("%q", content), func(t *testing.T) {
			clk := clock.NewFake(time.Unix(0, 0))
			sink := &memorySink{}
			handler := &recordingHandler{}

			c := newTestCoordinator(t, DefaultConfig(), staticSource(content), sink,
				WithClock(clk), WithEventHandler(handler))

			err := c.OnFileChange(context.Background())
			assert.ErrorIs(t, err, frames.ErrEmpty)

			st := c.Status()
			assert.Equal(t, lifecycle.StateIdle, st.State)
			assert.Equal(t, CodeEmpty, st.LastError)
			assert.Equal(t, 0, clk.Tickers())
			assert.Equal(t, []string{"Idle->Loading", "Loading->Failed", "Failed->Idle"}, handler.States())
			assert.Len(t, handler.errored, 1)

			clk.Advance(time.Second)
			assert.Empty(t, sink.Frames())
		})
	}
}

func TestCoordinator_RetriesOnNextChange(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	sink := &memorySink{}
	src := &fakeSource{read: func(_ context.Context, n int) (string, error) {
		if n == 1 {
			return "", nil
		}
		return "@FRAME@ok@FRAME@", nil
	}}

	c := newTestCoordinator(t, DefaultConfig(), src, sink, WithClock(clk))

	assert.Error(t, c.OnFileChange(context.Background()))
	assert.Equal(t, lifecycle.StateIdle, c.Status().State)

	require.NoError(t, c.OnFileChange(context.Background()))
	assert.Equal(t, lifecycle.StatePlaying, c.Status().State)
	assert.Empty(t, c.Status().LastError)
}

func TestCoordinator_ReadFailureKeepsPreviousAnimation(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	sink := &memorySink{}
	missing := &fs.ReadError{Code: fs.ErrCodeFileNotFound, Path: "/fake/output.data", Err: os.ErrNotExist}
	src := &fakeSource{read: func(_ context.Context, n int) (string, error) {
		if n == 1 {
			return "@FRAME@old@FRAME@", nil
		}
		return "", missing
	}}

	c := newTestCoordinator(t, DefaultConfig(), src, sink, WithClock(clk))
	require.NoError(t, c.OnFileChange(context.Background()))
	before := c.Status().SessionID

	err := c.OnFileChange(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	st := c.Status()
	assert.Equal(t, lifecycle.StatePlaying, st.State)
	assert.Equal(t, before, st.SessionID)
	assert.Equal(t, fs.ErrCodeFileNotFound, st.LastError)

	clk.Advance(interval)
	got := sink.waitFrames(t, 1)
	assert.Contains(t, got[0], "old")
}

func TestCoordinator_BlankOnFailure(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	sink := &memorySink{}
	src := &fakeSource{read: func(_ context.Context, n int) (string, error) {
		if n == 1 {
			return "@FRAME@old@FRAME@", nil
		}
		return "garbage without delimiters", nil
	}}

	cfg := DefaultConfig()
	cfg.BlankOnFailure = true
	c := newTestCoordinator(t, cfg, src, sink, WithClock(clk))

	require.NoError(t, c.OnFileChange(context.Background()))
	assert.ErrorIs(t, c.OnFileChange(context.Background()), frames.ErrEmpty)

	st := c.Status()
	assert.Equal(t, lifecycle.StateIdle, st.State)
	assert.Empty(t, st.SessionID)
	assert.Equal(t, 0, clk.Tickers())
	assert.Equal(t, []string{ansihtml.Wrap("")}, sink.Frames())

	clk.Advance(time.Second)
	assert.Len(t, sink.Frames(), 1)
}

func TestCoordinator_ReplacesSession(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	sink := &memorySink{}
	src := &fakeSource{read: func(_ context.Context, n int) (string, error) {
		return fmt.Sprintf("@FRAME@seq%d-a@FRAME@seq%d-b@FRAME@", n, n), nil
	}}

	c := newTestCoordinator(t, DefaultConfig(), src, sink, WithClock(clk))

	require.NoError(t, c.OnFileChange(context.Background()))
	first := c.Status().SessionID
	clk.Advance(interval)
	sink.waitFrames(t, 1)

	require.NoError(t, c.OnFileChange(context.Background()))
	assert.NotEqual(t, first, c.Status().SessionID)
	assert.Equal(t, 1, clk.Tickers(), "old ticker must be released")

	clk.Advance(3 * interval)
	got := sink.waitFrames(t, 4)
	assert.Contains(t, got[0], "seq1-a")
	for _, f := range got[1:] {
		assert.Contains(t, f, "seq2-")
	}
	assert.Contains(t, got[1], "seq2-a", "new session starts from its first frame")
}

func TestCoordinator_NoOverlapUnderRapidChange(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	sink := &memorySink{}

	started := make(chan struct{})
	release := make(chan struct{})
	src := &fakeSource{read: func(_ context.Context, n int) (string, error) {
		if n == 1 {
			close(started)
			<-release
			return "@FRAME@stale@FRAME@", nil
		}
		return "@FRAME@fresh-1@FRAME@fresh-2@FRAME@", nil
	}}

	c := newTestCoordinator(t, DefaultConfig(), src, sink, WithClock(clk))
	ctx := context.Background()

	errs := make(chan error, 2)
	go func() { errs <- c.OnFileChange(ctx) }()
	<-started

	go func() { errs <- c.OnFileChange(ctx) }()
	require.Eventually(t, func() bool { return c.Status().Generation == 2 },
		time.Second, time.Millisecond)

	close(release)
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	assert.Equal(t, 2, src.Calls())
	assert.Equal(t, lifecycle.StatePlaying, c.Status().State)
	assert.Equal(t, 2, c.Status().Frames)
	assert.Equal(t, 1, clk.Tickers())

	clk.Advance(5 * interval)
	for _, f := range sink.waitFrames(t, 5) {
		assert.NotContains(t, f, "stale")
		assert.Contains(t, f, "fresh-")
	}
}

func TestCoordinator_SinkClosed(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	sink := &memorySink{}
	c := newTestCoordinator(t, DefaultConfig(), staticSource("@FRAME@a@FRAME@"), sink, WithClock(clk))

	require.NoError(t, c.OnFileChange(context.Background()))
	sink.setErr(fmt.Errorf("webview disposed: %w", ports.ErrSinkClosed))

	clk.Advance(interval)
	require.Eventually(t, func() bool { return c.Status().State == lifecycle.StateIdle },
		time.Second, time.Millisecond)

	st := c.Status()
	assert.Equal(t, CodeSinkClosed, st.LastError)
	assert.Empty(t, st.SessionID)
	assert.Equal(t, 0, clk.Tickers())
}

func TestCoordinator_CanceledContext(t *testing.T) {
	handler := &recordingHandler{}
	src := staticSource("@FRAME@a@FRAME@")
	c := newTestCoordinator(t, DefaultConfig(), src, &memorySink{}, WithEventHandler(handler))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.OnFileChange(ctx), context.Canceled)
	assert.Equal(t, 0, src.Calls())
	assert.Empty(t, handler.States())
}

func TestCoordinator_StopWithoutStart(t *testing.T) {
	c, err := New(DefaultConfig(), staticSource(""), &memorySink{})
	require.NoError(t, err)
	assert.ErrorIs(t, c.Stop(), domain.ErrNotRunning)
}

func TestCoordinator_StopEndsPlayback(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	sink := &memorySink{}
	c, err := New(DefaultConfig(), staticSource("@FRAME@a@FRAME@"), sink, WithClock(clk))
	require.NoError(t, err)

	require.NoError(t, c.OnFileChange(context.Background()))
	require.NoError(t, c.Stop())

	assert.Equal(t, lifecycle.StateIdle, c.Status().State)
	assert.Equal(t, 0, clk.Tickers())
	clk.Advance(time.Second)
	assert.Empty(t, sink.Frames())
}

func writeFrames(t *testing.T, path string, ff ...string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(frames.Encode(ff)), 0o644))
	require.NoError(t, os.Rename(tmp, path))
}

func lastFrameContains(sink *memorySink, s string) func() bool {
	return func() bool {
		got := sink.Frames()
		return len(got) > 0 && strings.Contains(got[len(got)-1], s)
	}
}

func TestCoordinator_WatchesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output.data")
	writeFrames(t, path, "first")

	sink := &memorySink{}
	cfg := DefaultConfig()
	cfg.Interval = 5 * time.Millisecond
	cfg.DebounceDelay = 10 * time.Millisecond

	c := newTestCoordinator(t, cfg, fs.NewFrameFile(path), sink)

	require.NoError(t, c.Start(context.Background()))
	assert.ErrorIs(t, c.Start(context.Background()), domain.ErrAlreadyRunning)

	require.Eventually(t, lastFrameContains(sink, "first"), 2*time.Second, 5*time.Millisecond)
	assert.True(t, c.Status().Watching)

	writeFrames(t, path, "second")
	require.Eventually(t, lastFrameContains(sink, "second"), 2*time.Second, 5*time.Millisecond)

	// Unrelated files in the directory are ignored.
	gen := c.Status().Generation
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, gen, c.Status().Generation)

	require.NoError(t, c.Stop())
	assert.Equal(t, lifecycle.StateIdle, c.Status().State)
	assert.False(t, c.Status().Watching)
	assert.ErrorIs(t, c.Stop(), domain.ErrNotRunning)
}

func TestCoordinator_WaitsForDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "later")
	path := filepath.Join(dir, "output.data")

	sink := &memorySink{}
	cfg := DefaultConfig()
	cfg.Interval = 5 * time.Millisecond
	cfg.DebounceDelay = 0
	cfg.RetryInitial = 10 * time.Millisecond
	cfg.RetryMax = 20 * time.Millisecond

	c := newTestCoordinator(t, cfg, fs.NewFrameFile(path), sink)
	require.NoError(t, c.Start(context.Background()))

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, lifecycle.StateIdle, c.Status().State)

	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeFrames(t, path, "hello")

	require.Eventually(t, lastFrameContains(sink, "hello"), 2*time.Second, 5*time.Millisecond)
}

func TestFailureCode(t *testing.T) {
	assert.Equal(t, CodeEmpty, FailureCode(frames.ErrEmpty))
	assert.Equal(t, fs.ErrCodePermissionDenied,
		FailureCode(&fs.ReadError{Code: fs.ErrCodePermissionDenied, Err: os.ErrPermission}))
	assert.Equal(t, CodeReadError, FailureCode(errors.New("disk on fire")))
}
