package task_test

import (
	"testing"
	"time"

	"github.com/wkhere/stackless/internal/task"
)

func TestFutexWaitWakesOnStore(t *testing.T) {
	var f task.Futex
	woken := make(chan bool, 1)

	go func() {
		woken <- f.Wait(0, nil)
	}()

	time.Sleep(20 * time.Millisecond) // let the waiter actually park
	f.Store(1)

	select {
	case got := <-woken:
		if !got {
			t.Error("Wait returned false, want true after Store unblocked it")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return within 2s of Store")
	}
}

func TestFutexWaitReturnsImmediatelyIfAlreadyMoved(t *testing.T) {
	var f task.Futex
	f.Store(1)

	if f.Wait(0, nil) {
		t.Error("Wait(0, ...) = true, want false: value is already 1")
	}
}

func TestFutexRecordsWaiters(t *testing.T) {
	var f task.Futex
	waiter := &task.Task{}
	done := make(chan struct{})

	go func() {
		f.Wait(0, waiter)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	if got := f.Waiters.Pop(); got != waiter {
		t.Errorf("Waiters.Pop() = %v, want the parked waiter", got)
	}

	f.Store(1)
	<-done
}
