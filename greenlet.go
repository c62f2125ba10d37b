// Package stackless implements a cooperative, single-threaded coroutine
// runtime: stackful green threads ("greenlets") that switch control
// explicitly, each carrying its own suspended call chain.
//
// See SPEC_FULL.md for the full specification this module implements and
// DESIGN.md for the grounding ledger and the Open Questions this
// realization resolves — in particular OQ-1, which explains why a
// greenlet's "native stack" here is a real goroutine's stack (parked on a
// channel) rather than a manually switched raw stack pointer.
package stackless

import (
	"runtime"
	"sync"

	"github.com/wkhere/stackless/internal/gid"
	"github.com/wkhere/stackless/internal/task"
)

// Body is the user function a greenlet runs. self is the greenlet running
// it (equivalent to calling Current() from inside the body, but free of
// any goroutine-identity lookup); first is the value delivered by whoever
// first switched into self. The return value is delivered to self's
// nearest non-finished ancestor, per spec.md §4.E step 5.
type Body func(self *Greenlet, first any) any

// resumeMsg is what one greenlet's Switch delivers into another's
// rendezvous channel: either a normal pass-around value, or the shutdown
// signal spec.md §4.E's destruction path raises.
type resumeMsg struct {
	value    any
	shutdown bool
}

// rendezvous is the channel a greenlet's backing goroutine parks on. Once
// ensureStarted has launched that goroutine, it keeps both the rendezvous
// and the Greenlet (run's receiver) reachable, so only a never-started
// Greenlet can be garbage collected while unreferenced (DESIGN.md OQ-2).
type rendezvous struct {
	in chan resumeMsg
}

// Greenlet is a stackful coroutine: a suspended call chain sharing its
// Hub's bookkeeping with every other greenlet in the same rooted tree.
type Greenlet struct {
	hub    *Hub
	task   *task.Task
	body   Body
	rv     *rendezvous
	exited task.Futex // diagnostic exit flag, Store(1)'d just before the backing goroutine's last send

	startOnce sync.Once

	mu         sync.Mutex
	parent     *Greenlet
	finished   bool
	wasStarted bool
	result     any
}

// isStarted reports whether ensureStarted has launched this greenlet's
// backing goroutine.
func (g *Greenlet) isStarted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.wasStarted
}

// Main returns the calling goroutine's root greenlet, creating its Hub on
// first use (spec.md §3: "main: created lazily on first use of the
// runtime on this thread").
func Main() *Greenlet {
	return hubFor(gid.Current(), DefaultConfig()).main
}

// Current returns the running greenlet, as seen from the calling
// goroutine. Prefer receiving self as Body's first parameter when
// possible; Current exists for code that needs to ask "who am I" without
// threading a *Greenlet through every call.
func Current() *Greenlet {
	g := gid.Current()
	hubsMu.Lock()
	h, ok := hubs[g]
	hubsMu.Unlock()
	if !ok {
		h = hubFor(g, DefaultConfig())
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// New creates a greenlet running body, with parent defaulting to the
// calling goroutine's current greenlet (spec.md §4.E step 2). body does
// not run until the first Switch targeting the returned greenlet; the
// backing goroutine is only started at that point (see ensureStarted).
func New(parent *Greenlet, body Body) *Greenlet {
	if parent == nil {
		parent = Current()
	}
	g := &Greenlet{
		hub:    parent.hub,
		task:   &task.Task{Start: task.NoAddr, Stop: task.NoAddr},
		body:   body,
		rv:     &rendezvous{in: make(chan resumeMsg)},
		parent: parent,
	}
	runtime.SetFinalizer(g, runFinalizer)
	return g
}

// Finished reports whether g's body has returned or raised (spec.md §3:
// stack_stop == null). A never-started greenlet reads false, matching
// bool(greenlet) in spec.md §6.
func (g *Greenlet) Finished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.finished
}

// Hub returns the greenlet's Hub (its rooted-tree runtime state).
func (g *Greenlet) Hub() *Hub { return g.hub }

// ensureStarted lazily assigns g's stack-stop boundary and launches its
// backing goroutine exactly once, the first time g is switched into.
// Until then no goroutine refers to g, so a never-started Greenlet the
// caller drops can be collected. The launched goroutine runs g.run and so
// holds g for the rest of its life, which it needs for the finishing
// auto-switch to parent; this is the one place DESIGN.md OQ-2 accepts
// reduced GC-friendliness in exchange for correctness.
func (g *Greenlet) ensureStarted(stop task.Addr) {
	g.startOnce.Do(func() {
		g.task.Stop = stop
		g.hub.live.Push(g.task)
		g.mu.Lock()
		g.wasStarted = true
		g.mu.Unlock()
		rv := g.rv
		go g.run(rv)
	})
}

// run is the "initial stub": it blocks for the first resume value, then
// invokes body, then performs the finishing auto-switch to the nearest
// non-finished ancestor with body's return value (spec.md §4.E step 5).
func (g *Greenlet) run(rv *rendezvous) {
	g.hub.bindHolder()
	first := <-rv.in
	if first.shutdown {
		g.finish(nil)
		return
	}

	result := func() (r any) {
		defer func() {
			if rec := recover(); rec != nil {
				if _, ok := rec.(shutdownSignal); ok {
					r = nil
					return
				}
				panic(rec)
			}
		}()
		return g.body(g, first.value)
	}()

	g.finish(result)
}

// finish marks g finished and performs the mandatory switch to its parent
// with result, per spec.md §4.E step 5. This call never returns to the
// caller in the reference design (it's the tail of a dead goroutine); here
// it simply exits the goroutine once the parent has been woken and
// confirmed delivery isn't needed back (nothing reads this goroutine's rv
// again once finished).
func (g *Greenlet) finish(result any) {
	g.mu.Lock()
	g.finished = true
	g.result = result
	g.mu.Unlock()
	g.task.Stop = task.Finished

	parent := g.resolveParent()
	h := g.hub

	h.mu.Lock()
	here := h.nextAddr()
	parentStop := parent.task.Stop
	firstStart := parentStop == task.NoAddr
	if firstStart {
		parentStop = h.nextAddr()
	}
	newHead, err := task.SaveState(g.task, here, parentStop)
	if err != nil {
		h.mu.Unlock()
		reportFatal(h, &fatalError{msg: "finishing switch: " + err.Error()})
		return
	}
	parent.task = task.RestoreState(newHead, parent.task)
	h.current = parent
	h.mu.Unlock()

	parent.ensureStarted(parentStop)
	g.exited.Store(1)
	parent.rv.in <- resumeMsg{value: result}
}

// resolveParent walks g's parent chain past any already-finished
// ancestors, landing on main if nothing else qualifies (spec.md §4.D
// step 1/§4.E step 5). Main never finishes during normal operation.
func (g *Greenlet) resolveParent() *Greenlet {
	p := g.parent
	for p != nil && p.Finished() {
		p = p.parent
	}
	if p == nil {
		return g.hub.main
	}
	return p
}
