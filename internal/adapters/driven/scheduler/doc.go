// Package scheduler provides driven.EventLoop implementations.
//
// Loop runs tasks on a dedicated goroutine and fires frame callbacks on a
// ticker. Manual runs everything on the caller's goroutine and only fires
// frames when Tick is called, which makes scheduling deterministic in tests
// and in one-shot CLI runs.
package scheduler
