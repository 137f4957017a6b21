package lattice

import "testing"

func TestStatsTracksEntitiesComponentsAndMoves(t *testing.T) {
	w, err := NewWorld(nil)
	if err != nil {
		t.Fatalf("NewWorld() error = %v", err)
	}
	defer w.Close()

	pos := registerVec2(t, w, "Position")

	var entities []Entity
	for i := 0; i < 5; i++ {
		e, err := w.CreateEntity()
		if err != nil {
			t.Fatalf("CreateEntity() error = %v", err)
		}
		entities = append(entities, e)
	}

	stats := w.GetStats()
	if stats.LiveEntities != 5 {
		t.Errorf("LiveEntities = %d, want 5", stats.LiveEntities)
	}
	if stats.RegisteredComponents != 1 {
		t.Errorf("RegisteredComponents = %d, want 1", stats.RegisteredComponents)
	}

	before := w.GetStats().StructuralMoves
	if err := w.AddComponent(entities[0], pos, nil); err != nil {
		t.Fatalf("AddComponent() error = %v", err)
	}
	// One move for the cross-archetype migration, plus one for the
	// swap-remove that fills entities[0]'s old root row with entities[4].
	after := w.GetStats().StructuralMoves
	if after != before+2 {
		t.Errorf("StructuralMoves after one AddComponent = %d, want %d", after, before+2)
	}

	if err := w.DestroyEntity(entities[1]); err != nil {
		t.Fatalf("DestroyEntity() error = %v", err)
	}
	if stats := w.GetStats(); stats.LiveEntities != 4 {
		t.Errorf("LiveEntities after destroy = %d, want 4", stats.LiveEntities)
	}
}

func TestTraceHookObservesLifecycleEvents(t *testing.T) {
	w, err := NewWorld(nil)
	if err != nil {
		t.Fatalf("NewWorld() error = %v", err)
	}
	defer w.Close()

	var kinds []EventKind
	w.SetTraceHook(func(evt Event) { kinds = append(kinds, evt.Kind) }, nil)

	e, err := w.CreateEntity()
	if err != nil {
		t.Fatalf("CreateEntity() error = %v", err)
	}
	if err := w.DestroyEntity(e); err != nil {
		t.Fatalf("DestroyEntity() error = %v", err)
	}

	if len(kinds) != 2 || kinds[0] != EntityCreate || kinds[1] != EntityDestroy {
		t.Errorf("observed kinds = %v, want [EntityCreate EntityDestroy]", kinds)
	}

	w.SetTraceHook(nil, nil)
	if _, err := w.CreateEntity(); err != nil {
		t.Fatalf("CreateEntity() error = %v", err)
	}
	if len(kinds) != 2 {
		t.Errorf("hook fired after being cleared: kinds = %v", kinds)
	}
}
