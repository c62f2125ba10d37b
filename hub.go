package stackless

import (
	"sync"

	"github.com/wkhere/stackless/internal/gid"
	"github.com/wkhere/stackless/internal/task"
)

// Hub is the runtime per-thread state spec.md §3 describes: current,
// target, pass_around and main, plus the bookkeeping this realization adds
// (see DESIGN.md OQ-1/OQ-4). One Hub exists per rooted greenlet tree and is
// created lazily the first time some goroutine touches this package
// without already being inside a greenlet body (Main/Current/New called
// from "outer" code).
type Hub struct {
	mu sync.Mutex

	main    *Greenlet
	current *Greenlet

	// target/passAround are the transient fields spec.md §3 calls out:
	// valid only between entering Switch and the trampoline returning.
	target     *Greenlet
	passAround any

	// holderGID is the goroutine id currently holding this Hub's baton —
	// the cross-thread-misuse check from spec.md §5.
	holderGID int64

	// hostFrame models spec.md §4.D step 2's "host recursion depth
	// counter... restored after the trampoline returns."
	hostFrame int

	// addrCursor hands out synthetic stack-stop boundaries, strictly
	// decreasing (OQ-1/OQ-3): each greenlet's Stop is assigned once, the
	// first time it starts, and is always smaller than every Stop handed
	// out before it.
	addrCursor task.Addr

	// live is every greenlet that has ever started under this Hub, used
	// by Stats()/crashdump.go.
	live task.Queue

	cfg Config
}

var (
	hubsMu sync.Mutex
	hubs   = map[int64]*Hub{}
)

// newHub allocates a Hub with its main greenlet. It leaves holderGID
// unset; hubFor, its caller, binds it to the creating goroutine.
func newHub(cfg Config) *Hub {
	cfg.apply()
	h := &Hub{
		addrCursor: task.MainStop - 1,
		cfg:        cfg,
	}
	main := &Greenlet{
		hub:        h,
		task:       &task.Task{Stop: task.MainStop, Started: true},
		rv:         &rendezvous{in: make(chan resumeMsg)},
		wasStarted: true,
	}
	main.startOnce.Do(func() {}) // main is already running on the real goroutine; never launch run() for it
	h.main = main
	h.current = main
	h.live.Push(main.task)
	return h
}

// hubFor returns the Hub bound to the calling goroutine, creating one
// (with its main greenlet) if this goroutine has never used the package
// before. It does not change on every call — a Hub, once created for a
// goroutine id, is reused even after that goroutine has gone on to start
// and switch among many greenlets, because bindHolder rebinds
// holderGID to whichever goroutine currently holds the baton rather than
// relying on this lazy map for anything but first creation.
func hubFor(gidVal int64, cfg Config) *Hub {
	hubsMu.Lock()
	defer hubsMu.Unlock()
	if h, ok := hubs[gidVal]; ok {
		return h
	}
	h := newHub(cfg)
	hubs[gidVal] = h
	h.holderGID = gidVal
	return h
}

// nextAddr hands out the next synthetic stack-stop boundary. Callers must
// hold h.mu.
func (h *Hub) nextAddr() task.Addr {
	a := h.addrCursor
	h.addrCursor -= task.FrameQuota
	return a
}

// bindHolder records that the calling goroutine now holds h's baton. It is
// called by a greenlet's wrapper goroutine immediately after it wakes from
// a resume, so that a later call to package-level Current() from the same
// goroutine (including from helper functions body calls, not just body
// itself) resolves back to this Hub.
func (h *Hub) bindHolder() {
	g := gid.Current()
	hubsMu.Lock()
	hubs[g] = h
	hubsMu.Unlock()
	h.mu.Lock()
	h.holderGID = g
	h.mu.Unlock()
}
