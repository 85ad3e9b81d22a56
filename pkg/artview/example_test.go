package artview_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/art2ascii/artview/pkg/artview"
	"github.com/art2ascii/artview/pkg/frames"
)

// ExampleNew plays a one-frame animation into a function sink.
func ExampleNew() {
	dir, err := os.MkdirTemp("", "artview-example")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "output.data")
	if err := os.WriteFile(path, []byte(frames.Encode([]string{"hello"})), 0o644); err != nil {
		fmt.Println(err)
		return
	}

	shown := make(chan string, 1)
	sink := artview.SinkFunc(func(markup string) error {
		select {
		case shown <- markup:
		default:
		}
		return nil
	})

	p, err := artview.New(artview.Config{FrameFile: path, Interval: 10 * time.Millisecond},
		artview.WithSink(sink),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := p.Start(context.Background()); err != nil {
		fmt.Println(err)
		return
	}
	defer p.Stop()

	fmt.Println(<-shown)
	// Output: <pre><style>body { background-color: #333; }</style>hello</pre>
}

// loadLogger prints load outcomes.
type loadLogger struct {
	artview.BaseEventHandler
}

func (loadLogger) OnLoadError(e artview.LoadErrorEvent) {
	fmt.Println("load failed:", e.Code)
}

// Example_withEventHandler reports a missing frame file.
func Example_withEventHandler() {
	p, err := artview.New(artview.Config{FrameFile: "/nonexistent/output.data"},
		artview.WithSink(artview.SinkFunc(func(string) error { return nil })),
		artview.WithEventHandler(loadLogger{}),
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	_ = p.Reload(context.Background())
	fmt.Println(p.State())
	// Output:
	// load failed: FILE_NOT_FOUND
	// Idle
}
