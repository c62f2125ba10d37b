// Command stackless-demo runs a few scripted greenlet scenarios against
// the stackless runtime and prints what each one does, one line per
// switch. Pass -step to pause for Enter between scenarios.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-tty"

	"github.com/wkhere/stackless"
)

var out = colorable.NewColorableStdout()

func main() {
	step := flag.Bool("step", false, "pause for Enter between scenarios")
	flag.Parse()

	scenarios := []struct {
		name string
		run  func()
	}{
		{"ping-pong", pingPong},
		{"parent-tree", parentTree},
		{"shutdown", shutdown},
	}

	for _, s := range scenarios {
		fmt.Fprintf(out, "\x1b[1m== %s ==\x1b[0m\n", s.name)
		s.run()
		if *step {
			waitEnter()
		}
	}
}

func waitEnter() {
	t, err := tty.Open()
	if err != nil {
		return
	}
	defer t.Close()
	fmt.Fprint(out, "(press Enter to continue) ")
	t.ReadRune()
	fmt.Fprintln(out)
}

func pingPong() {
	var ping *stackless.Greenlet
	pong := stackless.New(nil, func(self *stackless.Greenlet, first any) any {
		v := first
		for i := 0; i < 3; i++ {
			fmt.Fprintf(out, "  pong received %v\n", v)
			r, err := ping.Switch(v)
			if err != nil {
				fmt.Fprintln(out, "  pong error:", err)
				return nil
			}
			v = r
		}
		return "pong done"
	})
	ping = stackless.New(nil, func(self *stackless.Greenlet, first any) any {
		v := first
		for i := 0; i < 3; i++ {
			fmt.Fprintf(out, "  ping received %v\n", v)
			r, err := pong.Switch(v)
			if err != nil {
				fmt.Fprintln(out, "  ping error:", err)
				return nil
			}
			v = r
		}
		return "ping done"
	})

	result, err := ping.Switch(0)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Fprintf(out, "  final: %v\n", result)
}

func parentTree() {
	leaf := stackless.New(nil, func(self *stackless.Greenlet, first any) any {
		fmt.Fprintf(out, "  leaf running, parent auto-receives its result\n")
		return "leaf result"
	})
	result, err := leaf.Switch(nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Fprintf(out, "  main received %v from leaf's auto-switch\n", result)
}

func shutdown() {
	suspended := stackless.New(nil, func(self *stackless.Greenlet, first any) any {
		defer fmt.Fprintln(out, "  cleanup ran before shutdown unwind completed")
		_, _ = self.Parent().Switch("suspending")
		return "never reached"
	})
	if _, err := suspended.Switch(nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Fprintf(out, "  closing suspended greenlet\n")
	suspended.Close()
	fmt.Fprintf(out, "  finished=%v\n", suspended.Finished())
}
