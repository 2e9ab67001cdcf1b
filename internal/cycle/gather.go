package cycle

import (
	"context"

	"github.com/i474232898/weather-scroller/internal/weather"
)

// fetchTask is the fetch started by one Gather visit.
type fetchTask struct {
	done chan weather.Snapshot
}

// poll returns the result without blocking.
func (t *fetchTask) poll() (weather.Snapshot, bool) {
	select {
	case s := <-t.done:
		return s, true
	default:
		return weather.Snapshot{}, false
	}
}

// gatherer starts fetches.
type gatherer interface {
	start(ctx context.Context, f WeatherFetcher) *fetchTask
}

// inline runs the fetch on the calling goroutine; the tick blocks for the
// whole request.
type inline struct{}

func (inline) start(ctx context.Context, f WeatherFetcher) *fetchTask {
	t := &fetchTask{done: make(chan weather.Snapshot, 1)}
	t.done <- f.Fetch(ctx)
	return t
}

// worker runs fetches in the background, at most one at a time, so the tick
// loop keeps animating while the request is in flight.
type worker struct {
	sem chan struct{}
}

func newWorker() *worker {
	return &worker{sem: make(chan struct{}, 1)}
}

func (w *worker) start(ctx context.Context, f WeatherFetcher) *fetchTask {
	t := &fetchTask{done: make(chan weather.Snapshot, 1)}
	go func() {
		w.sem <- struct{}{}
		defer func() { <-w.sem }()
		t.done <- f.Fetch(ctx)
	}()
	return t
}
