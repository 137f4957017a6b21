package lattice

import "testing"

func TestEntityCreateDestroy(t *testing.T) {
	w, err := NewWorld(nil)
	if err != nil {
		t.Fatalf("NewWorld() error = %v", err)
	}
	defer w.Close()

	tests := []struct {
		name  string
		count int
	}{
		{"single", 1},
		{"small batch", 10},
		{"large batch", 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := make([]Entity, tt.count)
			for i := range entities {
				e, err := w.CreateEntity()
				if err != nil {
					t.Fatalf("CreateEntity() error = %v", err)
				}
				if e.IsNull() {
					t.Fatalf("CreateEntity() returned null handle")
				}
				entities[i] = e
			}
			for _, e := range entities {
				if !w.IsAlive(e) {
					t.Errorf("IsAlive(%v) = false, want true", e)
				}
			}
			for _, e := range entities {
				if err := w.DestroyEntity(e); err != nil {
					t.Errorf("DestroyEntity(%v) error = %v", e, err)
				}
			}
			for _, e := range entities {
				if w.IsAlive(e) {
					t.Errorf("IsAlive(%v) = true after destroy, want false", e)
				}
			}
		})
	}
}

func TestEntityGenerationBumpOnReuse(t *testing.T) {
	w, err := NewWorld(nil)
	if err != nil {
		t.Fatalf("NewWorld() error = %v", err)
	}
	defer w.Close()

	e1, err := w.CreateEntity()
	if err != nil {
		t.Fatalf("CreateEntity() error = %v", err)
	}
	if err := w.DestroyEntity(e1); err != nil {
		t.Fatalf("DestroyEntity() error = %v", err)
	}

	e2, err := w.CreateEntity()
	if err != nil {
		t.Fatalf("CreateEntity() error = %v", err)
	}

	if e1.Index() != e2.Index() {
		t.Fatalf("expected slot reuse: e1.Index()=%d e2.Index()=%d", e1.Index(), e2.Index())
	}
	if e2.Generation() <= e1.Generation() {
		t.Errorf("e2.Generation()=%d, want > e1.Generation()=%d", e2.Generation(), e1.Generation())
	}
	if w.IsAlive(e1) {
		t.Errorf("stale handle e1 reports alive after slot reuse")
	}
	if !w.IsAlive(e2) {
		t.Errorf("fresh handle e2 reports not alive")
	}
}

func TestStaleEntityOperationsFail(t *testing.T) {
	w, err := NewWorld(nil)
	if err != nil {
		t.Fatalf("NewWorld() error = %v", err)
	}
	defer w.Close()

	e, err := w.CreateEntity()
	if err != nil {
		t.Fatalf("CreateEntity() error = %v", err)
	}
	if err := w.DestroyEntity(e); err != nil {
		t.Fatalf("DestroyEntity() error = %v", err)
	}

	if err := w.DestroyEntity(e); StatusOf(err) != StaleEntity {
		t.Errorf("second DestroyEntity() status = %v, want StaleEntity", StatusOf(err))
	}
	if err := w.AddComponent(e, InvalidComponentID, nil); StatusOf(err) != StaleEntity {
		t.Errorf("AddComponent() on stale entity status = %v, want StaleEntity", StatusOf(err))
	}
}
