//go:build linux

package stackless

import "golang.org/x/sys/unix"

// yield hints the OS scheduler that this goroutine has nothing useful
// left to do before the greenlet it's carrying gets its next turn. Called
// by switchMsg right after it hands the baton to the target's goroutine
// and before it parks on its own resume channel, matching the teacher's cooperative-
// scheduler builds, which call sched_yield on the cores/threads variants
// rather than busy-spinning.
func yield() {
	unix.Sched_yield()
}
