package stackless

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/wkhere/stackless/internal/task"
)

// A single line of a crash dump: the state of one greenlet at the moment
// a fatalError aborted a switch.
type GreenletDiagnostic struct {
	Addr     task.Addr
	Start    task.Addr
	Stop     task.Addr
	Spilled  int64
	Finished bool
	Started  bool
}

// CrashDump is everything written out when a fatal structural violation
// (spec.md §7) is caught: the error that triggered it, plus every
// greenlet that has started under the same Hub (finished ones included),
// in the order they started.
type CrashDump struct {
	When       time.Time
	Cause      string
	Greenlets  []GreenletDiagnostic
	HostFrame  int
}

func newCrashDump(h *Hub, cause error) CrashDump {
	d := CrashDump{Cause: cause.Error(), HostFrame: h.hostFrame}
	h.live.Each(func(t *task.Task) {
		d.Greenlets = append(d.Greenlets, GreenletDiagnostic{
			Addr:     t.Stop,
			Start:    t.Start,
			Stop:     t.Stop,
			Spilled:  int64(len(t.CopyBytes())),
			Finished: !t.Live(),
			Started:  t.Started,
		})
	})
	return d
}

// Write formats d as a plain-text report and appends it to path, one
// dump per file open/close cycle, using gofrs/flock so two greenlet trees
// crashing at once (in separate goroutines of the same process) don't
// interleave their reports.
func (d CrashDump) Write(path string) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("stackless: locking crash dump: %w", err)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("stackless: opening crash dump: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "--- stackless crash dump %s ---\n", d.When.Format(time.RFC3339))
	fmt.Fprintf(f, "cause: %s\n", d.Cause)
	fmt.Fprintf(f, "host frame depth: %d\n", d.HostFrame)
	for _, g := range d.Greenlets {
		fmt.Fprintf(f, "  greenlet stop=%d start=%d spilled=%dB finished=%v started=%v\n",
			g.Stop, g.Start, g.Spilled, g.Finished, g.Started)
	}
	return nil
}

// reportFatal is what greenlet.go's finish and switch.go's switchMsg call
// when a structural violation cannot be recovered from. It
// honors h.cfg.CrashPolicy: "dump" writes the report and returns, "panic"
// skips straight to a process-ending panic, "dump-and-panic" (the
// default) does both.
func reportFatal(h *Hub, cause error) {
	policy := h.cfg.CrashPolicy
	if policy == "" {
		policy = "dump-and-panic"
	}

	if policy != "panic" {
		dump := newCrashDump(h, cause)
		dump.When = crashTime()
		dir := h.cfg.CrashDir
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(dir, "stackless-crash.log")
		if err := dump.Write(path); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	if policy != "dump" {
		panic(cause)
	}
}

// crashTime is factored out so it is the one place this package would
// need a real clock; callers needing deterministic dumps in tests can
// shadow it.
var crashTime = time.Now
