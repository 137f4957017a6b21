package lattice

import "testing"

func setupQueryWorld(t *testing.T) (*World, ComponentID, ComponentID) {
	t.Helper()
	w, err := NewWorld(nil)
	if err != nil {
		t.Fatalf("NewWorld() error = %v", err)
	}
	pos := registerVec2(t, w, "Position")
	vel := registerVec2(t, w, "Velocity")
	return w, pos, vel
}

func TestQueryMatchesOnlyQualifyingArchetypes(t *testing.T) {
	w, pos, vel := setupQueryWorld(t)
	defer w.Close()

	withBoth, _ := w.CreateEntity()
	w.AddComponent(withBoth, pos, nil)
	w.AddComponent(withBoth, vel, nil)

	posOnly, _ := w.CreateEntity()
	w.AddComponent(posOnly, pos, nil)

	q, err := w.CreateQuery(QueryDescriptor{
		With: []QueryTerm{{Component: pos, Access: Read}, {Component: vel, Access: Read}},
	})
	if err != nil {
		t.Fatalf("CreateQuery() error = %v", err)
	}

	var seen []Entity
	it := q.IterBegin()
	for view, ok := it.Next(); ok; view, ok = it.Next() {
		seen = append(seen, view.Entities...)
	}
	if len(seen) != 1 || seen[0] != withBoth {
		t.Errorf("query matched %v, want exactly [%v]", seen, withBoth)
	}
}

func TestQueryWithoutExcludesComponent(t *testing.T) {
	w, pos, vel := setupQueryWorld(t)
	defer w.Close()

	posOnly, _ := w.CreateEntity()
	w.AddComponent(posOnly, pos, nil)

	withBoth, _ := w.CreateEntity()
	w.AddComponent(withBoth, pos, nil)
	w.AddComponent(withBoth, vel, nil)

	q, err := w.CreateQuery(QueryDescriptor{
		With:    []QueryTerm{{Component: pos, Access: Read}},
		Without: []ComponentID{vel},
	})
	if err != nil {
		t.Fatalf("CreateQuery() error = %v", err)
	}

	var seen []Entity
	it := q.IterBegin()
	for view, ok := it.Next(); ok; view, ok = it.Next() {
		seen = append(seen, view.Entities...)
	}
	if len(seen) != 1 || seen[0] != posOnly {
		t.Errorf("query matched %v, want exactly [%v]", seen, posOnly)
	}
}

func TestQueryIteratorExhaustsAndStaysExhausted(t *testing.T) {
	w, pos, _ := setupQueryWorld(t)
	defer w.Close()

	e, _ := w.CreateEntity()
	w.AddComponent(e, pos, nil)

	q, err := w.CreateQuery(QueryDescriptor{With: []QueryTerm{{Component: pos, Access: Read}}})
	if err != nil {
		t.Fatalf("CreateQuery() error = %v", err)
	}
	it := q.IterBegin()
	count := 0
	for _, ok := it.Next(); ok; _, ok = it.Next() {
		count++
	}
	if count != 1 {
		t.Fatalf("iterator produced %d chunks, want 1", count)
	}
	if _, ok := it.Next(); ok {
		t.Errorf("Next() after exhaustion returned ok=true")
	}
	if _, ok := it.Next(); ok {
		t.Errorf("second post-exhaustion Next() returned ok=true")
	}
}

func TestCreateQueryRejectsOverlappingTerms(t *testing.T) {
	w, pos, _ := setupQueryWorld(t)
	defer w.Close()

	_, err := w.CreateQuery(QueryDescriptor{
		With:    []QueryTerm{{Component: pos, Access: Read}},
		Without: []ComponentID{pos},
	})
	if StatusOf(err) != Conflict {
		t.Errorf("CreateQuery() with overlapping sets status = %v, want Conflict", StatusOf(err))
	}
}

func TestGenericComponentRoundTrip(t *testing.T) {
	w, err := NewWorld(nil)
	if err != nil {
		t.Fatalf("NewWorld() error = %v", err)
	}
	defer w.Close()

	position, err := RegisterComponent[vec2](w)
	if err != nil {
		t.Fatalf("RegisterComponent() error = %v", err)
	}

	e, _ := w.CreateEntity()
	if err := w.AddComponent(e, position.ID, nil); err != nil {
		t.Fatalf("AddComponent() error = %v", err)
	}
	ptr, err := position.Get(w, e)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	ptr.X, ptr.Y = 3, 4

	q, err := w.CreateQuery(QueryDescriptor{With: []QueryTerm{{Component: position.ID, Access: Write}}})
	if err != nil {
		t.Fatalf("CreateQuery() error = %v", err)
	}
	it := q.IterBegin()
	view, ok := it.Next()
	if !ok {
		t.Fatalf("iterator produced no chunks")
	}
	got := position.GetFromChunk(view, 0)
	if got.X != 3 || got.Y != 4 {
		t.Errorf("GetFromChunk() = %+v, want {3 4}", *got)
	}
}
