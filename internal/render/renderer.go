package render

import (
	goimage "image"
	"log"
	"sync"

	"defectpaste/internal/scene"
)

// Worker composites scene snapshots on a background goroutine. Requests
// coalesce: at most one render runs at a time, at most one request waits,
// and a newer request replaces the waiting one. A burst of slider moves
// therefore costs two renders, not one per event.
type Worker struct {
	onFrame func(*goimage.RGBA)
	onError func(error)
	pool    *FramePool

	mu      sync.Mutex
	pending *scene.Scene
	busy    bool
	idle    sync.WaitGroup
}

// NewWorker creates a worker delivering finished frames to onFrame. The
// callback runs on the render goroutine and must not block for long; it may
// return the frame to the worker's pool via Recycle when done with it.
func NewWorker(onFrame func(*goimage.RGBA)) *Worker {
	return &Worker{
		onFrame: onFrame,
		onError: func(err error) { log.Printf("render: %v", err) },
		pool:    NewFramePool(0),
	}
}

// SetErrorHandler replaces the default log-and-drop error handler.
func (w *Worker) SetErrorHandler(fn func(error)) {
	if fn != nil {
		w.onError = fn
	}
}

// Recycle returns a delivered frame to the pool.
func (w *Worker) Recycle(frame *goimage.RGBA) {
	w.pool.Put(frame)
}

// Request schedules a render of the scene's current state. The scene is
// snapshotted on the caller's goroutine, so the caller may keep mutating it
// immediately. If a request is already waiting it is replaced.
func (w *Worker) Request(s *scene.Scene) {
	snap := s.Snapshot()

	w.mu.Lock()
	w.pending = snap
	if w.busy {
		w.mu.Unlock()
		return
	}
	w.busy = true
	w.idle.Add(1)
	w.mu.Unlock()

	go w.run()
}

// run drains pending requests, rendering the newest one each pass.
func (w *Worker) run() {
	defer w.idle.Done()
	for {
		w.mu.Lock()
		snap := w.pending
		w.pending = nil
		if snap == nil {
			w.busy = false
			w.mu.Unlock()
			return
		}
		w.mu.Unlock()

		frame := w.pool.Get(snap.Width(), snap.Height())
		if err := snap.CompositeInto(frame); err != nil {
			w.pool.Put(frame)
			w.onError(err)
			continue
		}
		w.onFrame(frame)
	}
}

// Flush blocks until every requested render has been delivered.
func (w *Worker) Flush() {
	w.idle.Wait()
}
