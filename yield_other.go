//go:build !linux

package stackless

import "runtime"

// yield is the portable fallback for platforms without sched_yield
// wired up (see yield_linux.go).
func yield() {
	runtime.Gosched()
}
