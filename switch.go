package stackless

import (
	"github.com/wkhere/stackless/internal/gid"
	"github.com/wkhere/stackless/internal/task"
	"github.com/wkhere/stackless/internal/trampoline"
)

// Switch transfers control to g with value, blocking the calling greenlet
// until something switches back to it, and returns whatever value that
// later switch carries (spec.md §4.D/§6). If g has already finished,
// Switch resolves to the nearest non-finished ancestor per spec.md §4.D
// step 1 before doing anything else. Switching a greenlet to itself is a
// no-op that returns value unchanged (spec.md §6 edge case).
func (g *Greenlet) Switch(value any) (any, error) {
	return g.switchMsg(resumeMsg{value: value})
}

// switchMsg is the real 6-step switch engine; Switch and Close both go
// through it so every caller that parks waiting for a reply is a genuine,
// synchronously-waiting receiver on its own rv.in — never a hand-rolled
// side channel. Close uses it to deliver a shutdown-flagged resumeMsg
// instead of a plain value (see shutdown.go).
func (g *Greenlet) switchMsg(msg resumeMsg) (any, error) {
	target := g.liveTarget()
	current := Current()
	if current == target {
		return msg.value, nil
	}

	h := target.hub
	if h != current.hub {
		return nil, ErrNotAGreenlet
	}

	h.mu.Lock()
	if h.holderGID != 0 && h.holderGID != gid.Current() {
		h.mu.Unlock()
		return nil, ErrWrongThread
	}
	h.hostFrame++
	here := h.nextAddr()
	h.target = target
	h.passAround = msg.value

	// h.mu stays held across the trampoline: its callbacks call nextAddr
	// and set h.current.
	cb := &switchCallbacks{hub: h, from: current, to: target, here: here}
	if err := trampoline.Switch(cb); err != nil {
		h.hostFrame--
		h.mu.Unlock()
		if _, ok := err.(*fatalError); ok {
			reportFatal(h, err)
		}
		return nil, err
	}
	h.mu.Unlock()

	target.ensureStarted(cb.targetStop)
	target.rv.in <- msg
	yield()

	reply := <-current.rv.in
	if reply.shutdown {
		panic(shutdownSignal{})
	}

	h.mu.Lock()
	h.current = current
	h.hostFrame--
	h.mu.Unlock()
	current.hub.bindHolder()

	return reply.value, nil
}

// liveTarget resolves g to the greenlet a switch targeting it should
// actually land on: itself if still live, otherwise the nearest
// non-finished ancestor (spec.md §4.D step 1).
func (g *Greenlet) liveTarget() *Greenlet {
	t := g
	for t.Finished() {
		p := t.parent
		if p == nil {
			return t.hub.main
		}
		t = p
	}
	return t
}

// switchCallbacks adapts one Switch call to the trampoline.Callbacks
// contract (spec.md §4.A/§4.C), translating between this package's
// Greenlet-level view and internal/task's Task-chain-level view.
type switchCallbacks struct {
	hub  *Hub
	from *Greenlet
	to   *Greenlet

	here       task.Addr
	targetStop task.Addr
	chainHead  *task.Task
}

func (c *switchCallbacks) SaveState() error {
	targetStop := c.to.task.Stop
	firstStart := targetStop == task.NoAddr
	if firstStart {
		targetStop = c.hub.nextAddr()
	}
	c.targetStop = targetStop

	newHead, err := task.SaveState(c.from.task, c.here, targetStop)
	if err != nil {
		return &fatalError{msg: err.Error()}
	}
	c.chainHead = newHead
	return nil
}

func (c *switchCallbacks) RestoreState() {
	c.to.task = task.RestoreState(c.chainHead, c.to.task)
	c.hub.current = c.to
}
