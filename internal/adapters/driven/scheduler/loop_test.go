package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_RunsPostedTasksInOrder(t *testing.T) {
	l := NewLoop(time.Millisecond)
	l.Start()
	defer l.Stop()

	var order []int
	for i := 0; i < 5; i++ {
		l.Post(func() { order = append(order, i) })
	}

	require.True(t, l.Wait(time.Second))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestLoop_FiresFrames(t *testing.T) {
	l := NewLoop(time.Millisecond)
	l.Start()
	defer l.Stop()

	fired := make(chan struct{})
	l.RequestFrame(func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("frame callback did not fire")
	}
}

func TestLoop_SurvivesPanics(t *testing.T) {
	l := NewLoop(time.Millisecond)
	l.Start()
	defer l.Stop()

	var ran atomic.Bool
	l.Post(func() { panic("boom") })
	l.Post(func() { ran.Store(true) })

	require.True(t, l.Wait(time.Second))
	assert.True(t, ran.Load())
}

func TestLoop_PostAfterStopIsDropped(t *testing.T) {
	l := NewLoop(time.Millisecond)
	l.Start()
	l.Stop()

	var ran atomic.Bool
	l.Post(func() { ran.Store(true) })
	l.RequestFrame(func() { ran.Store(true) })

	time.Sleep(10 * time.Millisecond)
	assert.False(t, ran.Load())
}

func TestLoop_StopIsIdempotent(t *testing.T) {
	l := NewLoop(0)
	assert.Equal(t, DefaultFrameInterval, l.interval)
	l.Start()
	l.Stop()
	l.Stop()
}

func TestLoop_RunStopsOnCancel(t *testing.T) {
	l := NewLoop(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	returned := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(returned)
	}()

	cancel()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
