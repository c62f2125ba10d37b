// Package trampoline specifies the contract spec.md §4.A/§6 assigns to the
// per-architecture assembly "platform trampoline" component, which the
// spec places out of core scope except as an external collaborator.
//
// A real stackful-coroutine port implements Switch in assembly: capture
// registers, call SaveState, move the stack pointer into the target's
// extent, call RestoreState, return on the target's stack. This module
// cannot safely perform that surgery on a goroutine's stack (see
// DESIGN.md OQ-1), so Switch here only drives the two callbacks in the
// contractually-required order and returns their result; the actual
// control transfer (parking/waking the target's goroutine) is performed
// by the caller — switch.go — immediately after Switch returns, the same
// way the real trampoline's single arithmetic instruction immediately
// follows SaveState in the reference implementation.
package trampoline

// StackMagic is the per-architecture additive fudge spec.md §4.A assigns
// to guarantee the live call frame is included in the saved region. The
// only concrete value recorded in this codebase's ancestry
// (original_source/Stackless/platf/switch_amd64_unix.h) is 0, which is
// what every build of this module uses; it is kept as a named constant
// purely so the contract this package documents matches spec.md §6
// exactly, even though this realization's Switch does not need to add it
// to anything.
const StackMagic = 0

// Callbacks is the save_state/restore_state pair the trampoline contract
// requires. SaveState must free every byte of the synthetic range the
// target is about to occupy (returning a non-nil error, and performing no
// switch, on failure); RestoreState must refill the target's spilled
// bytes and relink the chain.
type Callbacks interface {
	SaveState() error
	RestoreState()
}

// Switch drives cb's two callbacks in the order spec.md §4.A/§6 requires:
// SaveState, then — only if it succeeded — RestoreState. It returns
// SaveState's error unchanged; per spec.md §4.A, a non-nil return means no
// switch occurred.
func Switch(cb Callbacks) error {
	if err := cb.SaveState(); err != nil {
		return err
	}
	cb.RestoreState()
	return nil
}
