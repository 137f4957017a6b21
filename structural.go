package lattice

import (
	"unsafe"

	"github.com/TheBitDrifter/bark"
)

// CreateEntity allocates a slot and places the new entity in the root
// (empty-component) archetype.
func (w *World) CreateEntity() (Entity, error) {
	const op = "CreateEntity"
	e, slotIdx, err := w.entities.create()
	if err != nil {
		return NullEntity, err
	}
	c, row, err := w.root.allocRow(w)
	if err != nil {
		// roll back the slot allocation; the entity never existed
		w.entities.release(e)
		return NullEntity, err
	}
	c.entities[row] = e
	slot := &w.entities.slots[slotIdx]
	slot.archetype = w.root
	slot.chunk = c
	slot.row = uint32(row)
	w.emit(EntityCreate, Ok, e, InvalidComponentID, op)
	return e, nil
}

// DestroyEntity runs every attached component's destructor, removes the
// row from storage, and returns the slot to the free list. When
// defer_depth > 0 the call is enqueued instead.
func (w *World) DestroyEntity(entity Entity) error {
	const op = "DestroyEntity"
	if w.deferDepth > 0 {
		w.enqueue(&destroyEntityCmd{entity: entity})
		w.emit(DeferEnqueue, Ok, entity, InvalidComponentID, "DestroyEntity")
		return nil
	}
	status := w.destroyEntityNow(entity)
	if status != Ok {
		return newError(status, op, "destroy failed")
	}
	return nil
}

func (w *World) destroyEntityNow(entity Entity) StatusCode {
	slot, err := w.entities.slotFor(entity, "DestroyEntity")
	if err != nil {
		return StatusOf(err)
	}
	a, c, row := slot.archetype, slot.chunk, int(slot.row)
	destroyRow(w, a, c, row)
	moved := swapRemove(w, a, c, row)
	if !moved.IsNull() {
		movedSlot := &w.entities.slots[moved.Index()]
		movedSlot.row = uint32(row)
	}
	w.entities.release(entity)
	w.emit(EntityDestroy, Ok, entity, InvalidComponentID, "DestroyEntity")
	return Ok
}

// IsAlive reports whether entity currently names a live slot.
func (w *World) IsAlive(entity Entity) bool {
	return w.entities.isAlive(entity)
}

// HasComponent reports whether entity's current archetype carries id.
// Returns false (never panics) for a stale entity or an unknown id.
func (w *World) HasComponent(entity Entity, id ComponentID) bool {
	slot, err := w.entities.slotFor(entity, "HasComponent")
	if err != nil {
		return false
	}
	return slot.archetype.hasComponent(id)
}

// GetComponent returns a pointer to entity's storage for id, or nil for a
// tag component. The pointer is invalidated by any subsequent structural
// change to entity.
func (w *World) GetComponent(entity Entity, id ComponentID) (unsafe.Pointer, error) {
	const op = "GetComponent"
	slot, err := w.entities.slotFor(entity, op)
	if err != nil {
		return nil, err
	}
	rec, err := w.components.lookup(id)
	if err != nil {
		return nil, err
	}
	idx := slot.archetype.columnIndex(id)
	if idx < 0 {
		return nil, newError(NotFound, op, "entity does not have this component")
	}
	if rec.size == 0 {
		return nil, nil
	}
	return columnPtr(slot.chunk.columns[idx], int(slot.row), rec.size), nil
}

// AddComponent attaches id to entity, migrating it to the archetype whose
// signature is its current set plus id. initial, if non-nil, is copied
// into the new column; otherwise the constructor hook runs (or the bytes
// stay zeroed). When defer_depth > 0 the call is enqueued instead.
func (w *World) AddComponent(entity Entity, id ComponentID, initial []byte) error {
	const op = "AddComponent"
	if w.deferDepth > 0 {
		payload, err := w.copyPayload(id, initial, op)
		if err != nil {
			return err
		}
		w.enqueue(&addComponentCmd{entity: entity, id: id, payload: payload})
		w.emit(DeferEnqueue, Ok, entity, id, "AddComponent")
		return nil
	}
	status := w.addComponentNow(entity, id, initial)
	if status != Ok {
		return newError(status, op, "add component failed")
	}
	return nil
}

func (w *World) copyPayload(id ComponentID, initial []byte, op string) ([]byte, error) {
	if initial == nil {
		return nil, nil
	}
	rec, err := w.components.lookup(id)
	if err != nil {
		return nil, err
	}
	if uintptr(len(initial)) != rec.size {
		return nil, newError(InvalidArgument, op, "initial payload length does not match component size")
	}
	buf := make([]byte, len(initial))
	copy(buf, initial)
	return buf, nil
}

func (w *World) addComponentNow(entity Entity, id ComponentID, initial []byte) StatusCode {
	slot, err := w.entities.slotFor(entity, "AddComponent")
	if err != nil {
		return StatusOf(err)
	}
	rec, err := w.components.lookup(id)
	if err != nil {
		return StatusOf(err)
	}
	srcArch := slot.archetype
	if srcArch.hasComponent(id) {
		return AlreadyExists
	}
	if initial != nil && uintptr(len(initial)) != rec.size {
		return InvalidArgument
	}

	dstComponents := make([]ComponentID, 0, len(srcArch.components)+1)
	dstComponents = append(dstComponents, srcArch.components...)
	dstComponents = append(dstComponents, id)
	dstComponents = sortedSignature(dstComponents)

	dstArch, err := w.archetypes.getOrCreate(w, dstComponents)
	if err != nil {
		return StatusOf(err)
	}
	dstChunk, dstRow, err := dstArch.allocRow(w)
	if err != nil {
		return StatusOf(err)
	}

	srcChunk, srcRow := slot.chunk, int(slot.row)
	dstChunk.entities[dstRow] = entity

	for i, cid := range dstArch.components {
		dstRec, err := w.components.lookup(cid)
		if err != nil {
			panic(bark.AddTrace(err))
		}
		if dstRec.size == 0 {
			continue
		}
		dst := columnPtr(dstChunk.columns[i], dstRow, dstRec.size)
		if cid == id {
			initComponentColumn(dstRec, dst, initial)
			continue
		}
		srcIdx := srcArch.columnIndex(cid)
		if srcIdx < 0 {
			panic(bark.AddTrace(newError(Conflict, "AddComponent", "destination column missing from source archetype")))
		}
		src := columnPtr(srcChunk.columns[srcIdx], srcRow, dstRec.size)
		moveBytes(dstRec, dst, src)
	}

	slot.archetype = dstArch
	slot.chunk = dstChunk
	slot.row = uint32(dstRow)
	w.structuralMoves++

	moved := swapRemove(w, srcArch, srcChunk, srcRow)
	if !moved.IsNull() {
		movedSlot := &w.entities.slots[moved.Index()]
		movedSlot.row = uint32(srcRow)
	}

	w.emit(ComponentAdd, Ok, entity, id, "AddComponent")
	return Ok
}

func initComponentColumn(rec *componentRecord, dst unsafe.Pointer, initial []byte) {
	switch {
	case initial != nil:
		copy(unsafe.Slice((*byte)(dst), rec.size), initial)
	case rec.ctor != nil:
		rec.ctor(dst, rec.user)
	}
}

// RemoveComponent detaches id from entity, migrating it to the archetype
// whose signature is its current set minus id. The removed column's
// destructor runs first. When defer_depth > 0 the call is enqueued
// instead.
func (w *World) RemoveComponent(entity Entity, id ComponentID) error {
	const op = "RemoveComponent"
	if w.deferDepth > 0 {
		w.enqueue(&removeComponentCmd{entity: entity, id: id})
		w.emit(DeferEnqueue, Ok, entity, id, "RemoveComponent")
		return nil
	}
	status := w.removeComponentNow(entity, id)
	if status != Ok {
		return newError(status, op, "remove component failed")
	}
	return nil
}

func (w *World) removeComponentNow(entity Entity, id ComponentID) StatusCode {
	slot, err := w.entities.slotFor(entity, "RemoveComponent")
	if err != nil {
		return StatusOf(err)
	}
	if _, err := w.components.lookup(id); err != nil {
		return StatusOf(err)
	}
	srcArch := slot.archetype
	srcIdx := srcArch.columnIndex(id)
	if srcIdx < 0 {
		return NotFound
	}
	srcChunk, srcRow := slot.chunk, int(slot.row)

	if rec, err := w.components.lookup(id); err == nil && rec.dtor != nil && rec.size > 0 {
		rec.dtor(columnPtr(srcChunk.columns[srcIdx], srcRow, rec.size), rec.user)
	}

	dstComponents := make([]ComponentID, 0, len(srcArch.components)-1)
	for _, cid := range srcArch.components {
		if cid != id {
			dstComponents = append(dstComponents, cid)
		}
	}

	dstArch, err := w.archetypes.getOrCreate(w, dstComponents)
	if err != nil {
		return StatusOf(err)
	}
	dstChunk, dstRow, err := dstArch.allocRow(w)
	if err != nil {
		return StatusOf(err)
	}
	dstChunk.entities[dstRow] = entity

	for i, cid := range dstArch.components {
		dstRec, err := w.components.lookup(cid)
		if err != nil {
			panic(bark.AddTrace(err))
		}
		if dstRec.size == 0 {
			continue
		}
		srcColIdx := srcArch.columnIndex(cid)
		if srcColIdx < 0 {
			panic(bark.AddTrace(newError(Conflict, "RemoveComponent", "source column missing for retained component")))
		}
		dst := columnPtr(dstChunk.columns[i], dstRow, dstRec.size)
		src := columnPtr(srcChunk.columns[srcColIdx], srcRow, dstRec.size)
		moveBytes(dstRec, dst, src)
	}

	slot.archetype = dstArch
	slot.chunk = dstChunk
	slot.row = uint32(dstRow)
	w.structuralMoves++

	moved := swapRemove(w, srcArch, srcChunk, srcRow)
	if !moved.IsNull() {
		movedSlot := &w.entities.slots[moved.Index()]
		movedSlot.row = uint32(srcRow)
	}

	w.emit(ComponentRemove, Ok, entity, id, "RemoveComponent")
	return Ok
}
