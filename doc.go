// Package stackless is a cooperative, single-threaded coroutine runtime:
// stackful green threads that switch control explicitly rather than being
// preempted, each carrying a suspended call chain the way a real OS
// thread carries a stack.
//
// A greenlet is created with New and does not run until first switched
// into:
//
//	child := stackless.New(nil, func(self *stackless.Greenlet, first any) any {
//		v, _ := self.Parent().Switch(first.(int) + 1)
//		return v
//	})
//	result, err := child.Switch(41)
//
// Switching to a greenlet that has already finished resolves to its
// nearest live ancestor; a finished greenlet's body result is delivered
// to whichever greenlet receives that auto-switch. See SPEC_FULL.md for
// the complete specification and DESIGN.md for how this package's
// goroutine-backed realization maps onto it.
package stackless
