// Package diagnostics supplies optional observability glue for a
// lattice.World: nothing here is required to drive a simulation, and a
// caller who never imports this package gets a silent core.
package diagnostics

import (
	"fmt"
	"io"

	"github.com/zacharyburkett/lattice"
)

// NewLoggingHook returns a lattice.TraceFunc that writes one line per
// event to w, in the style of the core's own internal invariant traces.
func NewLoggingHook(w io.Writer) lattice.TraceFunc {
	return func(evt lattice.Event) {
		fmt.Fprintf(w, "lattice: %-16s status=%-16s entity=%d component=%d op=%q live=%d pending=%d depth=%d\n",
			evt.Kind, evt.Status, evt.Entity, evt.Component, evt.Operation,
			evt.Snapshot.LiveEntities, evt.Snapshot.PendingCommands, evt.Snapshot.DeferDepth)
	}
}
