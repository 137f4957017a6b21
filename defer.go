package lattice

// command is the closed sum type backing the deferred buffer (§4.6):
// exactly three concrete kinds, applied in FIFO order regardless of
// kind, mirroring the single-ordered-slice shape noted in SPEC_FULL.md
// §4.6 rather than per-kind batching.
type command interface {
	apply(w *World) StatusCode
}

type addComponentCmd struct {
	entity  Entity
	id      ComponentID
	payload []byte
}

func (c *addComponentCmd) apply(w *World) StatusCode {
	return w.addComponentNow(c.entity, c.id, c.payload)
}

type removeComponentCmd struct {
	entity Entity
	id     ComponentID
}

func (c *removeComponentCmd) apply(w *World) StatusCode {
	return w.removeComponentNow(c.entity, c.id)
}

type destroyEntityCmd struct {
	entity Entity
}

func (c *destroyEntityCmd) apply(w *World) StatusCode {
	return w.destroyEntityNow(c.entity)
}

func (w *World) enqueue(cmd command) {
	w.pending = append(w.pending, cmd)
}

// BeginDefer increments defer_depth. While depth > 0, AddComponent,
// RemoveComponent, and DestroyEntity enqueue rather than mutate.
func (w *World) BeginDefer() error {
	w.deferDepth++
	w.emit(DeferBegin, Ok, NullEntity, InvalidComponentID, "BeginDefer")
	return nil
}

// EndDefer decrements defer_depth, failing with Conflict if it is
// already 0.
func (w *World) EndDefer() error {
	const op = "EndDefer"
	if w.deferDepth == 0 {
		return newError(Conflict, op, "EndDefer called with defer_depth already 0")
	}
	w.deferDepth--
	w.emit(DeferEnd, Ok, NullEntity, InvalidComponentID, op)
	return nil
}

// Flush applies every pending command in FIFO enqueue order, stopping at
// the first non-Ok status. Earlier commands remain applied; the
// remainder of the queue is discarded either way. Flush fails with
// Conflict without touching the queue if defer_depth > 0.
func (w *World) Flush() error {
	const op = "Flush"
	if w.deferDepth > 0 {
		return newError(Conflict, op, "Flush called while still deferred")
	}
	w.emit(FlushBegin, Ok, NullEntity, InvalidComponentID, op)

	pending := w.pending
	w.pending = nil

	var firstFail StatusCode = Ok
	for _, cmd := range pending {
		status := cmd.apply(w)
		w.emit(FlushApply, status, NullEntity, InvalidComponentID, op)
		if status != Ok && firstFail == Ok {
			firstFail = status
			break
		}
	}

	w.emit(FlushEnd, firstFail, NullEntity, InvalidComponentID, op)
	if firstFail != Ok {
		return newError(firstFail, op, "a deferred command failed")
	}
	return nil
}
