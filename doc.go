/*
Package lattice is an in-process, single-world Entity-Component-System
engine built around archetype-chunked, structure-of-arrays storage.

Lattice lets simulation code spawn and destroy large numbers of
entities, attach and detach typed components, and sweep them each tick
with tight, column-parallel inner loops, under deterministic,
allocator-aware rules.

Core Concepts:

  - Entity: a generation-safe 64-bit handle identifying a row of storage.
  - Component: a typed, named, fixed-layout data record registered once
    per world.
  - Archetype: the set of entities sharing exactly one sorted tuple of
    component ids, stored as a linked list of fixed-capacity chunks.
  - Query: a compiled with/without matcher over the archetype graph,
    iterated chunk by chunk.
  - Schedule: a conflict-aware topological batching of queries run
    through the parallel executor.

Basic Usage:

	w, _ := lattice.NewWorld(nil)
	defer w.Close()

	position, _ := lattice.RegisterComponent[Position](w)
	velocity, _ := lattice.RegisterComponent[Velocity](w)

	e, _ := w.CreateEntity()
	w.AddComponent(e, position.ID, nil)
	w.AddComponent(e, velocity.ID, nil)

	q, _ := w.CreateQuery(lattice.QueryDescriptor{
		With: []lattice.QueryTerm{
			{Component: position.ID, Access: lattice.Write},
			{Component: velocity.ID, Access: lattice.Read},
		},
	})
	it := q.IterBegin()
	for view, ok := it.Next(); ok; view, ok = it.Next() {
		for row := 0; row < view.Count; row++ {
			pos := position.GetFromChunk(view, row)
			vel := velocity.GetFromChunk(view, row)
			pos.X += vel.X
			pos.Y += vel.Y
		}
	}
*/
package lattice
