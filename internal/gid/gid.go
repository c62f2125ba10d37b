// Package gid extracts a portable, best-effort identifier for the calling
// goroutine. It exists for one purpose: letting a Hub (hub.go) lazily bind
// to the goroutine that first uses it, and reject a Switch attempted from
// any other goroutine, which is the "cross-thread switch" check spec.md §5
// requires (see DESIGN.md OQ-4 for why "goroutine" rather than "OS thread"
// is the unit of identity this module can safely observe).
//
// Some of this module's sibling examples reach into the runtime with
// //go:linkname to read the g struct directly (see alphadose-ZenQ's
// lib_runtime_linkage.go). That trick needs an assembly stub to get the
// calling convention right and cannot be verified without building it, so
// this package takes the slower but fully portable route: every Go
// runtime prints "goroutine N [...]:" as the first line of
// runtime.Stack(buf, false), and N is stable for the lifetime of the
// goroutine.
package gid

import (
	"bytes"
	"runtime"
	"strconv"
)

// Current returns the calling goroutine's runtime-assigned id.
func Current() int64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]

	const prefix = "goroutine "
	if !bytes.HasPrefix(buf, []byte(prefix)) {
		return 0
	}
	buf = buf[len(prefix):]
	end := bytes.IndexByte(buf, ' ')
	if end < 0 {
		return 0
	}
	id, err := strconv.ParseInt(string(buf[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
