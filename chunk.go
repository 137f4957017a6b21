package lattice

import "unsafe"

const (
	entitySize  uintptr = unsafe.Sizeof(Entity(0))
	entityAlign uintptr = unsafe.Alignof(Entity(0))
)

// chunk is a fixed-capacity SoA block: a contiguous entity-handle array
// plus one byte column per non-empty archetype component, all indexed
// identically by row (§3 "Chunk").
type chunk struct {
	entities []Entity
	columns  [][]byte // parallel to archetype.components; nil entries are empty (tag) components
	count    int
	capacity int
	next     *chunk
}

func newChunk(a *archetype, w *World) (*chunk, error) {
	const op = "allocate chunk"
	entityBuf, err := w.alloc.Alloc(uintptr(a.rowsPerChunk)*entitySize, entityAlign)
	if err != nil {
		return nil, wrapError(AllocationFailed, op, err)
	}
	c := &chunk{
		capacity: a.rowsPerChunk,
		columns:  make([][]byte, len(a.components)),
	}
	c.entities = unsafe.Slice((*Entity)(unsafe.Pointer(&entityBuf[0])), a.rowsPerChunk)

	for i, cid := range a.components {
		rec, err := w.components.lookup(cid)
		if err != nil {
			return nil, err
		}
		if rec.size == 0 {
			continue
		}
		buf, err := w.alloc.Alloc(rec.size*uintptr(a.rowsPerChunk), rec.align)
		if err != nil {
			return nil, wrapError(AllocationFailed, op, err)
		}
		c.columns[i] = buf
	}
	return c, nil
}

func (c *chunk) free(a *archetype, w *World) {
	w.alloc.Free(entityBytesOf(c.entities), uintptr(c.capacity)*entitySize, entityAlign)
	for i, cid := range a.components {
		rec, err := w.components.lookup(cid)
		if err != nil || rec.size == 0 {
			continue
		}
		w.alloc.Free(c.columns[i], rec.size*uintptr(c.capacity), rec.align)
	}
}

func entityBytesOf(entities []Entity) []byte {
	if len(entities) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&entities[0])), len(entities)*int(entitySize))
}

// columnPtr returns a pointer to row's slot in col, or nil for an empty
// (tag) component's nil column.
func columnPtr(col []byte, row int, size uintptr) unsafe.Pointer {
	if col == nil {
		return nil
	}
	return unsafe.Pointer(uintptr(unsafe.Pointer(&col[0])) + uintptr(row)*size)
}

// relocateRow moves component bytes for src (within a, via a's column
// layout) into dst, using each component's move hook unless it is
// trivially relocatable.
func relocateRow(w *World, a *archetype, dstCols [][]byte, dstRow int, srcCols [][]byte, srcRow int) {
	for i, cid := range a.components {
		rec, err := w.components.lookup(cid)
		if err != nil || rec.size == 0 {
			continue
		}
		dst := columnPtr(dstCols[i], dstRow, rec.size)
		src := columnPtr(srcCols[i], srcRow, rec.size)
		moveBytes(rec, dst, src)
	}
}

func moveBytes(rec *componentRecord, dst, src unsafe.Pointer) {
	if rec.move != nil && rec.flags&FlagTriviallyRelocatable == 0 {
		rec.move(dst, src, rec.user)
		return
	}
	copy(unsafe.Slice((*byte)(dst), rec.size), unsafe.Slice((*byte)(src), rec.size))
}

// swapRemove removes row from c (which belongs to archetype a within
// world w) by copying the last live row into its place, running each
// component's move hook. Returns the entity that was moved into row, or
// NullEntity if row was already the last row.
func swapRemove(w *World, a *archetype, c *chunk, row int) Entity {
	last := c.count - 1
	moved := NullEntity
	if row != last {
		moved = c.entities[last]
		c.entities[row] = moved
		relocateRow(w, a, c.columns, row, c.columns, last)
		slot := &w.entities.slots[moved.Index()]
		slot.row = uint32(row)
		w.structuralMoves++
	}
	c.count--
	return moved
}

// destroyRow runs every component's destructor hook over row's storage
// within c (archetype a), without otherwise mutating the chunk.
func destroyRow(w *World, a *archetype, c *chunk, row int) {
	for i, cid := range a.components {
		rec, err := w.components.lookup(cid)
		if err != nil || rec.dtor == nil || rec.size == 0 {
			continue
		}
		rec.dtor(columnPtr(c.columns[i], row, rec.size), rec.user)
	}
}
