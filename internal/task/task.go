// Package task implements the stack-extent bookkeeping and chain
// maintenance that underlie a greenlet switch. It has no notion of a
// "greenlet" as a user-facing object and no notion of goroutines; it only
// tracks, for a rooted chain of Tasks, which logical extent of the shared
// address space each one currently owns and which bytes of that extent (if
// any) have been spilled to a heap buffer.
//
// The address space here is synthetic: Go does not let a library safely
// read or write another goroutine's real stack pointer, so extents are
// logical offsets assigned by the chain manager rather than physical
// addresses. See the grounding ledger in DESIGN.md (OQ-1) for why.
package task

// Addr is a logical stack address. Lower values are deeper in the chain,
// matching a downward-growing native stack (see DESIGN.md OQ-3).
type Addr int64

// NoAddr is the sentinel for an undefined/unassigned extent boundary.
const NoAddr Addr = -1 << 62

// Finished is the stack_stop sentinel for a finished Task.
const Finished Addr = 0

// MainStop is the "largest possible address" sentinel spec.md §3 assigns
// the main greenlet's Stop: it owns the unknown remainder of the chain
// above any child, so no Spill/chain-walk ever needs to cross it.
const MainStop Addr = 1 << 60

// Task is one element of a greenlet's stack-slice bookkeeping. Field names
// mirror the reference C structure (stack_start, stack_stop, stack_copy,
// stack_saved, stack_prev) field for field.
type Task struct {
	// Start is the lower boundary of the extent this Task owns. Undefined
	// (NoAddr) while this Task is current.
	Start Addr
	// Stop is the upper boundary of the extent. Finished (0) marks a
	// completed Task; a never-started Task also reads Stop == NoAddr until
	// its first switch-to.
	Stop Addr

	// copy holds spilled bytes from [Start, Start+Saved). Logical content
	// only — see Spill/Refill in stack.go.
	copy []byte
	// Saved is len(copy); kept as its own field (rather than derived) to
	// match the reference layout and so invariant checks can assert the
	// two agree.
	Saved int64

	// Prev is the chain's back-reference: the Task immediately below this
	// one (at higher addresses, on a downward-growing stack). Non-owning.
	Prev *Task

	// Next links Task onto an intrusive Queue or Stack (see queue.go). It
	// is unrelated to Prev/the stack_prev chain.
	Next *Task

	// Started is set the first time this Task is pushed onto the chain,
	// i.e. the first time its greenlet was switched into. A Task that was
	// created but never started has Started == false and Stop == NoAddr,
	// distinguishing "never ran" from "finished" (both would otherwise
	// read as a non-positive Stop).
	Started bool
}

// Live reports whether g appears on the chain in a non-finished state:
// g.Stop != Finished, regardless of Started. Used by Stats and crash dumps.
func (t *Task) Live() bool {
	return t != nil && t.Stop != Finished
}

// CopyBytes returns the currently spilled bytes, or nil if nothing is
// spilled. Exposed read-only for diagnostics/stats.
func (t *Task) CopyBytes() []byte {
	return t.copy
}
