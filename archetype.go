package lattice

import (
	"sort"

	"github.com/TheBitDrifter/mask"
)

// ArchetypeID identifies an archetype within one world.
type ArchetypeID uint32

// DefaultChunkByteBudget is the target chunk size (§4.4) used when a
// Config leaves ChunkByteBudget at zero.
const DefaultChunkByteBudget = 16 * 1024

// MaxRowsPerChunk bounds rows_per_chunk regardless of how small the
// components are.
const MaxRowsPerChunk = 4096

// archetype is the equivalence class of entities sharing exactly one
// sorted component-id tuple (§3 "Archetype"). Its chunk list is a
// singly-linked list with a cached tail for O(1) append (§4.4).
type archetype struct {
	id           ArchetypeID
	components   []ComponentID // sorted ascending, canonical signature
	sig          mask.Mask
	rowsPerChunk int
	head, tail   *chunk
	chunkCount   int
}

func sortedSignature(ids []ComponentID) []ComponentID {
	out := make([]ComponentID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func signatureMask(ids []ComponentID) mask.Mask {
	var m mask.Mask
	for _, id := range ids {
		m.Mark(componentBit(id))
	}
	return m
}

func componentBit(id ComponentID) uint32 {
	return uint32(id) - 1
}

// columnIndex finds id's position in the sorted signature via a linear
// scan — archetype signatures are small, per §4.4.
func (a *archetype) columnIndex(id ComponentID) int {
	for i, cid := range a.components {
		if cid == id {
			return i
		}
	}
	return -1
}

func (a *archetype) hasComponent(id ComponentID) bool { return a.columnIndex(id) >= 0 }

func (a *archetype) isRoot() bool { return len(a.components) == 0 }

// allocRow scans the chunk list for the first non-full chunk, filling
// rows densely from index 0 upward; it allocates and appends a new chunk
// to the tail only when every existing chunk is full (§4.4).
func (a *archetype) allocRow(w *World) (*chunk, int, error) {
	for c := a.head; c != nil; c = c.next {
		if c.count < c.capacity {
			row := c.count
			c.count++
			return c, row, nil
		}
	}
	c, err := newChunk(a, w)
	if err != nil {
		return nil, 0, err
	}
	if a.head == nil {
		a.head = c
	} else {
		a.tail.next = c
	}
	a.tail = c
	a.chunkCount++
	c.count = 1
	return c, 0, nil
}

func computeRowsPerChunk(budget uintptr, components []ComponentID, reg *componentRegistry) (int, error) {
	total := entitySize
	for _, id := range components {
		rec, err := reg.lookup(id)
		if err != nil {
			return 0, err
		}
		total += rec.size
	}
	if budget == 0 {
		budget = DefaultChunkByteBudget
	}
	rows := int(budget / total)
	if rows < 1 {
		rows = 1
	}
	if rows > MaxRowsPerChunk {
		rows = MaxRowsPerChunk
	}
	return rows, nil
}

// archetypeGraph owns every archetype in a world, keyed by signature mask
// for O(1) lookup/dedup (the teacher's idsGroupedByMask pattern in
// storage.go, adapted from table.Schema bits to Lattice's own
// ComponentID bits).
type archetypeGraph struct {
	bySignature map[mask.Mask]*archetype
	list        []*archetype
	nextID      ArchetypeID
}

func newArchetypeGraph() *archetypeGraph {
	return &archetypeGraph{
		bySignature: make(map[mask.Mask]*archetype),
		nextID:      1,
	}
}

// getOrCreate returns the archetype for the given (already deduplicated)
// sorted component set, creating it if it does not exist yet.
func (g *archetypeGraph) getOrCreate(w *World, components []ComponentID) (*archetype, error) {
	sig := signatureMask(components)
	if a, ok := g.bySignature[sig]; ok {
		return a, nil
	}
	rowsPerChunk, err := computeRowsPerChunk(w.config.ChunkByteBudget, components, w.components)
	if err != nil {
		return nil, err
	}
	a := &archetype{
		id:           g.nextID,
		components:   components,
		sig:          sig,
		rowsPerChunk: rowsPerChunk,
	}
	g.nextID++
	g.bySignature[sig] = a
	g.list = append(g.list, a)
	return a, nil
}

func (g *archetypeGraph) chunkCount() int {
	total := 0
	for _, a := range g.list {
		total += a.chunkCount
	}
	return total
}
