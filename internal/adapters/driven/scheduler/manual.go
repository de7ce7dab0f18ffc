package scheduler

import (
	"sync"

	"github.com/custodia-labs/highlight/internal/core/ports/driven"
)

// Ensure Manual implements the interface.
var _ driven.EventLoop = (*Manual)(nil)

// Manual is a caller-driven event loop. Post runs the task immediately
// unless another task is already running, in which case it is queued and
// run once the outer task returns. Frames only fire on Tick.
type Manual struct {
	mu      sync.Mutex
	tasks   []func()
	frames  []func()
	running bool
}

// NewManual creates a manual loop.
func NewManual() *Manual {
	return &Manual{}
}

// Post runs fn on the calling goroutine, after any task already running.
func (m *Manual) Post(fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.tasks = append(m.tasks, fn)
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.mu.Unlock()

	m.drain()
}

// RequestFrame queues fn until the next Tick.
func (m *Manual) RequestFrame(fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, fn)
}

// Tick runs the frame callbacks queued before the call and returns how
// many ran. Callbacks requested during the tick wait for the next one.
func (m *Manual) Tick() int {
	m.mu.Lock()
	frames := m.frames
	m.frames = nil
	m.mu.Unlock()

	for _, fn := range frames {
		m.Post(fn)
	}
	return len(frames)
}

// Flush ticks until no frames remain or limit ticks have run. It returns
// the number of callbacks fired.
func (m *Manual) Flush(limit int) int {
	total := 0
	for i := 0; i < limit; i++ {
		n := m.Tick()
		if n == 0 {
			break
		}
		total += n
	}
	return total
}

// Pending returns the number of frame callbacks waiting for a tick.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

func (m *Manual) drain() {
	for {
		m.mu.Lock()
		if len(m.tasks) == 0 {
			m.running = false
			m.mu.Unlock()
			return
		}
		fn := m.tasks[0]
		m.tasks = m.tasks[1:]
		m.mu.Unlock()

		invoke(fn)
	}
}
