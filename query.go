package lattice

import (
	"strconv"
	"unsafe"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
)

// AccessMode is a query term's declared intent toward a component's
// column, used by the schedule planner's conflict predicate (§4.9).
type AccessMode int

const (
	Read AccessMode = iota
	Write
)

// QueryTerm names one component id and the access mode a query declares
// against it.
type QueryTerm struct {
	Component ComponentID
	Access    AccessMode
}

// QueryDescriptor is the input to CreateQuery: a with-set (component +
// access) and a without-set, both duplicate-free and mutually disjoint.
type QueryDescriptor struct {
	With    []QueryTerm
	Without []ComponentID
}

// Query is a compiled, cacheable matcher over a world's archetype graph
// (§4.7).
type Query struct {
	world       *World
	with        []QueryTerm
	without     []ComponentID
	withMask    mask.Mask
	withoutMask mask.Mask
	matches     []*archetype
}

// CreateQuery validates descriptor and compiles it into a cached matcher
// against w's current archetype graph.
func (w *World) CreateQuery(descriptor QueryDescriptor) (*Query, error) {
	const op = "CreateQuery"
	seen := make(map[ComponentID]bool, len(descriptor.With))
	for _, t := range descriptor.With {
		if t.Access != Read && t.Access != Write {
			return nil, newError(InvalidArgument, op, "query term access mode must be Read or Write")
		}
		if seen[t.Component] {
			return nil, newError(InvalidArgument, op, "duplicate with-term component id")
		}
		seen[t.Component] = true
		if _, err := w.components.lookup(t.Component); err != nil {
			return nil, err
		}
	}
	withoutSeen := make(map[ComponentID]bool, len(descriptor.Without))
	for _, id := range descriptor.Without {
		if withoutSeen[id] {
			return nil, newError(InvalidArgument, op, "duplicate without component id")
		}
		withoutSeen[id] = true
		if seen[id] {
			return nil, newError(Conflict, op, "with and without sets are not disjoint")
		}
		if _, err := w.components.lookup(id); err != nil {
			return nil, err
		}
	}

	q := &Query{
		world:   w,
		with:    append([]QueryTerm(nil), descriptor.With...),
		without: append([]ComponentID(nil), descriptor.Without...),
	}
	for _, t := range q.with {
		q.withMask.Mark(componentBit(t.Component))
	}
	for _, id := range q.without {
		q.withoutMask.Mark(componentBit(id))
	}
	q.Refresh()
	w.queries = append(w.queries, q)
	return q, nil
}

// Close releases the query's reference to its world. A closed query must
// not be used again.
func (q *Query) Close() {
	for i, other := range q.world.queries {
		if other == q {
			q.world.queries = append(q.world.queries[:i], q.world.queries[i+1:]...)
			break
		}
	}
	q.world = nil
	q.matches = nil
}

// Refresh rescans the archetype graph and rebuilds the cached match
// list. Called automatically on CreateQuery and on every IterBegin.
func (q *Query) Refresh() {
	q.matches = q.matches[:0]
	for _, a := range q.world.archetypes.list {
		if a.sig.ContainsAll(q.withMask) && a.sig.ContainsNone(q.withoutMask) {
			q.matches = append(q.matches, a)
		}
	}
}

// ChunkView is one non-empty chunk's worth of matched columns, handed to
// query and executor callers. Columns[i] corresponds to with_terms[i] of
// the query that produced it.
type ChunkView struct {
	Count     int
	Entities  []Entity
	Columns   []unsafe.Pointer
	WithCount int
	termIDs   []ComponentID
}

// Iterator walks a query's cached match list in deterministic
// archetype-then-chunk order. It is not restartable.
type Iterator struct {
	query   *Query
	archIdx int
	cur     *chunk
	ended   bool
}

// IterBegin refreshes the query and returns a fresh iterator over the
// rebuilt match list.
func (q *Query) IterBegin() *Iterator {
	q.Refresh()
	it := &Iterator{query: q, archIdx: -1}
	q.world.emit(QueryIterBegin, Ok, NullEntity, InvalidComponentID, strconv.Itoa(len(q.matches)))
	it.advanceArchetype()
	return it
}

func (it *Iterator) advanceArchetype() {
	for {
		it.archIdx++
		if it.archIdx >= len(it.query.matches) {
			it.cur = nil
			return
		}
		a := it.query.matches[it.archIdx]
		it.cur = a.head
		for it.cur != nil && it.cur.count == 0 {
			it.cur = it.cur.next
		}
		if it.cur != nil {
			return
		}
	}
}

// Next returns the next non-empty chunk, or (ChunkView{}, false) once the
// sequence is exhausted. Post-termination calls keep returning false.
func (it *Iterator) Next() (ChunkView, bool) {
	if it.ended {
		return ChunkView{}, false
	}
	for it.cur == nil {
		if it.archIdx >= len(it.query.matches)-1 {
			it.ended = true
			it.query.world.emit(QueryIterEnd, Ok, NullEntity, InvalidComponentID, strconv.Itoa(len(it.query.matches)))
			return ChunkView{}, false
		}
		it.advanceArchetype()
	}

	a := it.query.matches[it.archIdx]
	c := it.cur
	view := ChunkView{
		Count:     c.count,
		Entities:  c.entities[:c.count],
		Columns:   make([]unsafe.Pointer, len(it.query.with)),
		WithCount: len(it.query.with),
		termIDs:   termIDsOf(it.query.with),
	}
	for i, t := range it.query.with {
		idx := a.columnIndex(t.Component)
		if idx < 0 {
			panic(bark.AddTrace(newError(Conflict, "IterBegin", "matched archetype missing a with-column")))
		}
		rec, err := it.query.world.components.lookup(t.Component)
		if err != nil || rec.size == 0 {
			view.Columns[i] = nil
			continue
		}
		view.Columns[i] = columnPtr(c.columns[idx], 0, rec.size)
	}

	it.query.world.emit(QueryIterChunk, Ok, NullEntity, InvalidComponentID, strconv.Itoa(c.count))

	for {
		it.cur = it.cur.next
		if it.cur == nil {
			break
		}
		if it.cur.count > 0 {
			break
		}
	}
	return view, true
}

func termIDsOf(terms []QueryTerm) []ComponentID {
	ids := make([]ComponentID, len(terms))
	for i, t := range terms {
		ids[i] = t.Component
	}
	return ids
}
