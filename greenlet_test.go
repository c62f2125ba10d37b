package stackless_test

import (
	"testing"
	"time"

	"github.com/wkhere/stackless"
)

func TestPingPong(t *testing.T) {
	var ping *stackless.Greenlet
	var log []string

	pong := stackless.New(nil, func(self *stackless.Greenlet, first any) any {
		v := first.(int)
		for i := 0; i < 3; i++ {
			log = append(log, "pong")
			r, err := ping.Switch(v + 1)
			if err != nil {
				t.Errorf("pong switch: %v", err)
				return nil
			}
			v = r.(int)
		}
		return v
	})
	ping = stackless.New(nil, func(self *stackless.Greenlet, first any) any {
		v := first.(int)
		for i := 0; i < 3; i++ {
			log = append(log, "ping")
			r, err := pong.Switch(v + 1)
			if err != nil {
				t.Errorf("ping switch: %v", err)
				return nil
			}
			v = r.(int)
		}
		return v
	})

	result, err := ping.Switch(0)
	if err != nil {
		t.Fatalf("Switch: %v", err)
	}
	if got, want := len(log), 6; got != want {
		t.Fatalf("log length = %d, want %d (log: %v)", got, want, log)
	}
	if result.(int) < 6 {
		t.Errorf("result = %v, want a value reflecting 6 increments", result)
	}
}

func TestAutoParentDelivery(t *testing.T) {
	child := stackless.New(nil, func(self *stackless.Greenlet, first any) any {
		return "child result"
	})
	result, err := child.Switch(nil)
	if err != nil {
		t.Fatalf("Switch: %v", err)
	}
	if result != "child result" {
		t.Errorf("result = %v, want %q", result, "child result")
	}
	if !child.Finished() {
		t.Error("child.Finished() = false, want true after its body returned")
	}
}

func TestParentTree(t *testing.T) {
	main := stackless.Current()

	var grandchild *stackless.Greenlet
	child := stackless.New(nil, func(self *stackless.Greenlet, first any) any {
		grandchild = stackless.New(self, func(gself *stackless.Greenlet, gfirst any) any {
			if gself.Parent() != self {
				t.Errorf("grandchild.Parent() = %v, want the child greenlet", gself.Parent())
			}
			return "grandchild done"
		})
		r, err := grandchild.Switch(nil)
		if err != nil {
			t.Errorf("grandchild switch: %v", err)
		}
		return r
	})

	if child.Parent() != main {
		t.Errorf("child.Parent() = %v, want main", child.Parent())
	}

	result, err := child.Switch(nil)
	if err != nil {
		t.Fatalf("Switch: %v", err)
	}
	if result != "grandchild done" {
		t.Errorf("result = %v, want %q", result, "grandchild done")
	}
}

func TestSwitchToFinishedResolvesToAncestor(t *testing.T) {
	parent := stackless.New(nil, func(self *stackless.Greenlet, first any) any {
		return "parent result"
	})
	if _, err := parent.Switch(nil); err != nil {
		t.Fatalf("Switch: %v", err)
	}
	if !parent.Finished() {
		t.Fatal("parent did not finish")
	}

	// Switching to an already-finished greenlet must resolve to the
	// nearest live ancestor instead of erroring.
	result, err := parent.Switch("late")
	if err != nil {
		t.Fatalf("Switch to finished greenlet: %v", err)
	}
	_ = result
}

func TestSetParentRejectsCycle(t *testing.T) {
	a := stackless.New(nil, func(self *stackless.Greenlet, first any) any {
		<-make(chan struct{}) // never runs in this test
		return nil
	})
	b := stackless.New(a, func(self *stackless.Greenlet, first any) any {
		<-make(chan struct{})
		return nil
	})

	if err := b.SetParent(b); err != stackless.ErrCyclicParent {
		t.Errorf("b.SetParent(b) = %v, want ErrCyclicParent", err)
	}
	if err := a.SetParent(b); err != stackless.ErrCyclicParent {
		t.Errorf("a.SetParent(b) = %v, want ErrCyclicParent (b's parent is a)", err)
	}
}

func TestSetParentRejectsNil(t *testing.T) {
	a := stackless.New(nil, func(self *stackless.Greenlet, first any) any {
		<-make(chan struct{})
		return nil
	})
	if err := a.SetParent(nil); err != stackless.ErrNotAGreenlet {
		t.Errorf("a.SetParent(nil) = %v, want ErrNotAGreenlet", err)
	}
}

func TestCloseUnwindsSuspendedGreenlet(t *testing.T) {
	cleaned := make(chan struct{}, 1)

	suspended := stackless.New(nil, func(self *stackless.Greenlet, first any) any {
		defer func() { cleaned <- struct{}{} }()
		_, _ = self.Parent().Switch("suspending")
		return "never reached"
	})

	if _, err := suspended.Switch(nil); err != nil {
		t.Fatalf("Switch: %v", err)
	}
	if suspended.Finished() {
		t.Fatal("suspended greenlet finished before being closed")
	}

	suspended.Close()

	select {
	case <-cleaned:
	case <-time.After(2 * time.Second):
		t.Fatal("deferred cleanup did not run within 2s of Close")
	}

	if !suspended.Finished() {
		t.Error("suspended.Finished() = false, want true after Close")
	}
}

func TestCloseNeverStarted(t *testing.T) {
	g := stackless.New(nil, func(self *stackless.Greenlet, first any) any {
		return nil
	})
	g.Close()
	if !g.Finished() {
		t.Error("Finished() = false, want true for a never-started greenlet after Close")
	}
}

func TestSwitchToSelfIsNoOp(t *testing.T) {
	self := stackless.Current()
	v, err := self.Switch(42)
	if err != nil {
		t.Fatalf("Switch to self: %v", err)
	}
	if v != 42 {
		t.Errorf("Switch to self returned %v, want 42 unchanged", v)
	}
}
