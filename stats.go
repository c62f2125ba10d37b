package stackless

import (
	"fmt"

	"github.com/inhies/go-bytesize"

	"github.com/wkhere/stackless/internal/task"
)

// Stats is a point-in-time snapshot of one Hub's greenlet population.
type Stats struct {
	Live       int
	Finished   int
	SpilledMem bytesize.ByteSize
}

// String renders s the way a human-facing report wants it: counts plus a
// human-readable size (e.g. "3.4 KB"), matching go-bytesize's own
// formatting rather than hand-rolled unit math.
func (s Stats) String() string {
	return fmt.Sprintf("greenlets: %d live, %d finished, %s spilled",
		s.Live, s.Finished, s.SpilledMem)
}

// Stats walks every greenlet ever started under h and reports how many
// are live versus finished and how many bytes are currently spilled to
// heap buffers across the whole tree.
func (h *Hub) Stats() Stats {
	var s Stats
	var bytes uint64
	h.live.Each(func(t *task.Task) {
		if t.Live() {
			s.Live++
		} else {
			s.Finished++
		}
		bytes += uint64(len(t.CopyBytes()))
	})
	s.SpilledMem = bytesize.ByteSize(bytes)
	return s
}
