package task

import "fmt"

// ErrChainCorrupt is a fatal structural violation: SaveState's walk along
// Prev ran off the end of the chain before reaching targetStop. Per
// spec.md §7 this is not recoverable and the caller should treat it as
// fatal.
var ErrChainCorrupt = fmt.Errorf("task: corrupted chain")

// SaveState implements spec.md §4.C's save_state(here): it is called with
// here, the synthetic address at which the outgoing Task's live extent now
// begins, and current, the chain head before the switch. It frees every
// byte of the synthetic range [here, targetStop) by spilling it, walking
// Prev links, and returns the new chain head (the Task at or straddling
// targetStop) plus any spill error.
//
// On success the returned Task is exactly what the reference
// implementation calls ts_current after the loop: either the target
// itself, or the Task whose extent straddles target_stop (partially
// spilled up to target_stop only).
func SaveState(current *Task, here, targetStop Addr) (*Task, error) {
	current.Start = here

	for current.Stop < targetStop {
		if current.Stop != Finished {
			if err := Spill(current, current.Stop); err != nil {
				return nil, err
			}
		}
		current = current.Prev
		if current == nil {
			return nil, ErrChainCorrupt
		}
	}
	if current.Stop != targetStop && current.Stop != Finished {
		if err := Spill(current, targetStop); err != nil {
			return nil, err
		}
	}
	return current, nil
}

// RestoreState implements spec.md §4.C's restore_state(): refill target's
// spilled bytes (if any), link it behind the outgoing chain head, and
// return the new current. Starting from outgoing, Prev is followed past
// any Task whose Stop is not above target's (target itself, or a finished
// Task), so target is never linked to itself or to a finished Task.
func RestoreState(outgoing *Task, target *Task) *Task {
	if target.Saved > 0 {
		Refill(target)
	}
	owner := outgoing
	for owner != nil && owner.Stop <= target.Stop {
		owner = owner.Prev
	}
	target.Prev = owner
	target.Started = true
	return target
}
