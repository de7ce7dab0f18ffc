package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/highlight/internal/core/ports/driven"
	"github.com/custodia-labs/highlight/internal/logger"
)

// Ensure Loop implements the interface.
var _ driven.EventLoop = (*Loop)(nil)

// DefaultFrameInterval approximates a 60Hz display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// Loop is a goroutine-backed event loop. Posted tasks and frame callbacks
// never run concurrently with each other.
type Loop struct {
	interval time.Duration

	mu      sync.Mutex
	tasks   []func()
	frames  []func()
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	started bool
	stopped bool
}

// NewLoop creates a loop that fires frames every interval. A non-positive
// interval uses DefaultFrameInterval.
func NewLoop(interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Loop{
		interval: interval,
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the loop goroutine. Calling Start twice is a no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.stopped {
		return
	}
	l.started = true
	go l.run()
}

// Run starts the loop and blocks until ctx is cancelled, then stops it.
func (l *Loop) Run(ctx context.Context) {
	l.Start()
	<-ctx.Done()
	l.Stop()
}

// Stop halts the loop and waits for the running callback to return.
// Queued tasks and frames are discarded.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	started := l.started
	close(l.stop)
	l.mu.Unlock()

	if started {
		<-l.done
	}
}

// Post queues fn to run on the loop goroutine.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// RequestFrame queues fn for the next frame tick.
func (l *Loop) RequestFrame(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.frames = append(l.frames, fn)
}

// Wait blocks until every task posted so far has run, or until timeout
// elapses. It reports whether the loop drained in time.
func (l *Loop) Wait(timeout time.Duration) bool {
	drained := make(chan struct{})
	l.Post(func() { close(drained) })
	select {
	case <-drained:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (l *Loop) run() {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-l.wake:
			l.drainTasks()
		case <-ticker.C:
			l.drainTasks()
			l.runFrame()
		}
	}
}

func (l *Loop) drainTasks() {
	for {
		l.mu.Lock()
		if l.stopped || len(l.tasks) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.tasks[0]
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		invoke(fn)
	}
}

func (l *Loop) runFrame() {
	l.mu.Lock()
	frames := l.frames
	l.frames = nil
	l.mu.Unlock()

	for _, fn := range frames {
		invoke(fn)
	}
}

// invoke runs fn and logs a panic instead of killing the loop.
func invoke(fn func()) {
	defer logger.Recover("event loop callback")
	fn()
}
