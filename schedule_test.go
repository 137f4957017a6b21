package lattice

import (
	"sync/atomic"
	"testing"
)

func TestScheduleBatchesReadersTogetherAndSerializesWriters(t *testing.T) {
	w, pos, vel := setupQueryWorld(t)
	defer w.Close()

	e, _ := w.CreateEntity()
	if err := w.AddComponent(e, pos, nil); err != nil {
		t.Fatalf("AddComponent(pos) error = %v", err)
	}
	if err := w.AddComponent(e, vel, nil); err != nil {
		t.Fatalf("AddComponent(vel) error = %v", err)
	}

	readPos, _ := w.CreateQuery(QueryDescriptor{With: []QueryTerm{{Component: pos, Access: Read}}})
	readPos2, _ := w.CreateQuery(QueryDescriptor{With: []QueryTerm{{Component: pos, Access: Read}}})
	writePos, _ := w.CreateQuery(QueryDescriptor{With: []QueryTerm{{Component: pos, Access: Write}}})

	var order []int
	entries := []ScheduleEntry{
		{Query: readPos, Callback: func(ChunkView, int, any) { order = append(order, 1) }},
		{Query: readPos2, Callback: func(ChunkView, int, any) { order = append(order, 2) }},
		{Query: writePos, Callback: func(ChunkView, int, any) { order = append(order, 3) }},
	}

	s, err := CreateSchedule(entries)
	if err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}
	stats, err := s.Execute(1)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if stats.BatchCount != 2 {
		t.Errorf("BatchCount = %d, want 2 (two readers batched, writer after)", stats.BatchCount)
	}
	if stats.MaxBatchSize != 2 {
		t.Errorf("MaxBatchSize = %d, want 2", stats.MaxBatchSize)
	}
	if len(order) != 3 || order[2] != 3 {
		t.Errorf("execution order = %v, want the writer (3) scheduled last", order)
	}
}

func TestScheduleRejectsMixedWorlds(t *testing.T) {
	w1, pos1, _ := setupQueryWorld(t)
	defer w1.Close()
	w2, pos2, _ := setupQueryWorld(t)
	defer w2.Close()

	q1, _ := w1.CreateQuery(QueryDescriptor{With: []QueryTerm{{Component: pos1, Access: Read}}})
	q2, _ := w2.CreateQuery(QueryDescriptor{With: []QueryTerm{{Component: pos2, Access: Read}}})

	_, err := CreateSchedule([]ScheduleEntry{
		{Query: q1, Callback: func(ChunkView, int, any) {}},
		{Query: q2, Callback: func(ChunkView, int, any) {}},
	})
	if StatusOf(err) != InvalidArgument {
		t.Errorf("CreateSchedule() with mixed worlds status = %v, want InvalidArgument", StatusOf(err))
	}
}

func TestScheduleExecuteOneshotRunsAllEntries(t *testing.T) {
	w, pos, _ := setupQueryWorld(t)
	defer w.Close()

	for i := 0; i < 16; i++ {
		e, _ := w.CreateEntity()
		if err := w.AddComponent(e, pos, nil); err != nil {
			t.Fatalf("AddComponent() error = %v", err)
		}
	}
	q, _ := w.CreateQuery(QueryDescriptor{With: []QueryTerm{{Component: pos, Access: Write}}})

	var count int64
	_, err := ScheduleExecuteOneshot([]ScheduleEntry{
		{Query: q, Callback: func(view ChunkView, _ int, _ any) { atomic.AddInt64(&count, int64(view.Count)) }},
	}, 2)
	if err != nil {
		t.Fatalf("ScheduleExecuteOneshot() error = %v", err)
	}
	if count != 16 {
		t.Errorf("processed %d rows, want 16", count)
	}
}
