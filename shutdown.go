package stackless

import "github.com/wkhere/stackless/internal/task"

// shutdownSignal is the panic value Switch raises inside a greenlet's
// body when Close has been called on it (spec.md §4.E's "destruction
// delivers a shutdown signal to the suspended greenlet instead of a
// resume value, so its pending finally/defer blocks still run"). Nothing
// outside this package ever sees it: run's recover converts it into a
// normal (nil-result) finish.
type shutdownSignal struct{}

// Close explicitly destroys g: if g is suspended (parked mid-Switch), it
// is switched into exactly like any other Switch caller would, except the
// resumeMsg it delivers carries the shutdown flag instead of a value. The
// target's backing goroutine unwinds through any deferred cleanup in its
// body, and finish()es with a nil result, auto-switching to its parent
// exactly as a normal completion would (spec.md §4.E). Because Close goes
// through the real switch engine (switchMsg), the caller blocks on its
// own rv.in for that auto-switch exactly the way finish()'s delivery
// expects a synchronously-waiting receiver on the other end — the same
// invariant every other Switch call relies on. Calling Close on an
// already-finished greenlet is a no-op; a never-started greenlet has no
// backing goroutine to rendezvous with, so it is marked finished directly.
//
// Close is the reliable counterpart to the best-effort runtime.SetFinalizer
// wired up in New: a goroutine parked reading rv.in keeps every object it
// closed over reachable, so the garbage collector alone cannot be trusted
// to reclaim a suspended greenlet tree in bounded time (DESIGN.md OQ-2).
// Call Close explicitly wherever deterministic teardown matters.
func (g *Greenlet) Close() {
	if g.Finished() {
		return
	}
	if !g.isStarted() {
		g.mu.Lock()
		g.finished = true
		g.mu.Unlock()
		g.task.Stop = task.Finished
		g.exited.Store(1)
		return
	}
	g.switchMsg(resumeMsg{shutdown: true})
}

// runFinalizer is registered via runtime.SetFinalizer on every greenlet
// returned by New, as a best-effort net: if a suspended greenlet becomes
// unreachable without Close ever being called, this attempts the same
// wakeup. It is best-effort because a goroutine parked on rv.in keeps g
// reachable through the closure run captured, so the finalizer only fires
// for greenlets that were never started (nothing keeping them alive) or
// whose chain happens to become collectible some other way.
func runFinalizer(g *Greenlet) {
	g.Close()
}
