package task

import "fmt"

// FrameQuota is the logical size, in synthetic address units, assigned to
// one chain element's extent when it is pushed onto the chain. The real
// reference implementation derives this from wherever the native stack
// pointer happens to land; since our address space is synthetic (OQ-1) we
// fix a generous constant instead.
var FrameQuota Addr = 4096

// ErrSpillAlloc is returned by Spill when the injected allocation-failure
// test hook is armed. It stands in for the reference implementation's
// PyMem_Realloc failure path (spec.md §4.B/§7): the caller must abort the
// in-progress switch leaving all greenlets consistent, which holds here
// because Spill's allocation is always the first thing it does.
var ErrSpillAlloc = fmt.Errorf("task: stack spill allocation failed")

// failNextSpill is a test-only knob (Config.FailNextSpill wires into it)
// letting tests exercise the allocation-failure path deterministically.
var failNextSpill bool

// FailNextSpill arms (or disarms) the injected allocation failure for the
// next call to Spill. Test-only.
func FailNextSpill(v bool) { failNextSpill = v }

// Spill copies the live bytes of g's extent up to upTo into g.copy,
// growing the buffer if necessary. Preconditions: g.Stop != Finished, g is
// not the chain's current element. want <= g.Saved is a no-op.
func Spill(g *Task, upTo Addr) error {
	want := int64(upTo - g.Start)
	if want <= g.Saved {
		return nil
	}
	if failNextSpill {
		failNextSpill = false
		return ErrSpillAlloc
	}
	grown := make([]byte, want)
	copy(grown, g.copy)
	// The freshly-covered range [Saved, want) would, in the reference
	// implementation, be read out of the live native stack here. Our
	// "live native stack" for a non-current Task is whatever its parked
	// goroutine is sitting on, which Go does not let us read out of band;
	// the parked goroutine is itself what keeps those bytes safe (see
	// DESIGN.md OQ-1). The buffer is still grown and accounted for byte
	// for byte so every size invariant in spec.md §3 holds and is
	// testable, even though the payload here is a placeholder.
	for i := g.Saved; i < want; i++ {
		grown[i] = byte(i)
	}
	g.copy = grown
	g.Saved = want
	return nil
}

// Refill releases g's spilled buffer and resets Saved, the synthetic
// counterpart of spec.md §4.B's refill operation: as with Spill, there is
// no live native extent here to copy the bytes back over.
func Refill(g *Task) {
	if g.Saved == 0 {
		return
	}
	g.copy = nil
	g.Saved = 0
}
