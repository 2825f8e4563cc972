package notifier

import "sync/atomic"

// RunGuard serializes pipeline runs with a single slot. A trigger that
// arrives while a run holds the slot is rejected, not queued.
type RunGuard struct {
	running atomic.Bool
}

// TryAcquire claims the slot. It returns false without blocking when a
// run is already in progress.
func (g *RunGuard) TryAcquire() bool {
	return g.running.CompareAndSwap(false, true)
}

// Release frees the slot for the next trigger.
func (g *RunGuard) Release() {
	g.running.Store(false)
}
