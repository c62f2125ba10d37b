package task

import "sync"

// Futex is an atomically-checked value with a LIFO waiter list. Every
// greenlet stores its exit state in one (see Greenlet's exited field) for
// diagnostics; the actual Close() rendezvous goes through the real switch
// engine rather than this primitive (see switchMsg in switch.go).
//
// Adapted from the teacher's internal/task.Futex (futex-cores.go): that
// version parks the *calling task* by calling task.Pause() and wakes
// waiters by pushing them back onto the scheduler's run queue
// (scheduleTask). There is no scheduler or run queue here — every
// goroutine is its own OS-scheduled unit — so waiting is reimplemented
// over sync.Cond (Wait blocks on it, Store wakes every waiter; there are no
// separate Wake/WakeAll methods) while the value-plus-waiter-Stack shape is
// kept, including Waiters as a diagnostic of who has parked.
type Futex struct {
	mu      sync.Mutex
	cond    sync.Cond
	condSet bool
	value   uint32
	Waiters Stack
}

func (f *Futex) ensureCond() {
	if !f.condSet {
		f.cond.L = &f.mu
		f.condSet = true
	}
}

// Load returns the current value.
func (f *Futex) Load() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Store sets the value and wakes every waiter.
func (f *Futex) Store(v uint32) {
	f.mu.Lock()
	f.ensureCond()
	f.value = v
	f.cond.Broadcast()
	f.mu.Unlock()
}

// Wait blocks the calling goroutine while the futex's value still equals
// cmp. waiter, if non-nil, is pushed onto Waiters when the call parks,
// purely for diagnostics; Wait does not pop it again when it returns.
// Returns false immediately, without blocking, if the value has already
// moved past cmp.
func (f *Futex) Wait(cmp uint32, waiter *Task) (awoken bool) {
	f.mu.Lock()
	f.ensureCond()
	if f.value != cmp {
		f.mu.Unlock()
		return false
	}
	if waiter != nil {
		f.Waiters.Push(waiter)
	}
	for f.value == cmp {
		f.cond.Wait()
	}
	f.mu.Unlock()
	return true
}
