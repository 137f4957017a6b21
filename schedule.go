package lattice

import "github.com/TheBitDrifter/mask"

// ScheduleEntry binds one query to the callback that should run over its
// matched chunks.
type ScheduleEntry struct {
	Query    *Query
	Callback ChunkFunc
	User     any
}

// PlanStats summarizes one batch-planning pass (§4.9). It is distinct
// from World's Stats snapshot: the two describe unrelated counters and
// overloading one Go type for both would hide that distinction from
// callers.
type PlanStats struct {
	BatchCount   int
	EdgeCount    int
	MaxBatchSize int
}

// Schedule is a compiled batch plan over a fixed list of entries, all
// against the same world.
type Schedule struct {
	world   *World
	entries []ScheduleEntry
	batches [][]int
	stats   PlanStats
}

// CreateSchedule validates that every entry references a query of the
// same world and compiles the conflict-aware batch plan.
func CreateSchedule(entries []ScheduleEntry) (*Schedule, error) {
	const op = "CreateSchedule"
	if len(entries) == 0 {
		return nil, newError(InvalidArgument, op, "entries must not be empty")
	}
	w := entries[0].Query.world
	for _, e := range entries {
		if e.Query.world != w {
			return nil, newError(InvalidArgument, op, "all entries must reference queries of the same world")
		}
		if e.Callback == nil {
			return nil, newError(InvalidArgument, op, "callback must not be nil")
		}
	}
	s := &Schedule{world: w, entries: entries}
	s.plan()
	return s, nil
}

// allAndWriteMasks returns a term set's full component mask alongside
// the mask of just its WRITE terms, for the conflict predicate below.
func allAndWriteMasks(terms []QueryTerm) (all, write mask.Mask) {
	for _, t := range terms {
		bit := componentBit(t.Component)
		all.Mark(bit)
		if t.Access == Write {
			write.Mark(bit)
		}
	}
	return all, write
}

// termSetsConflict implements §4.9's full conflict predicate: two
// entries conflict if either side's write-set intersects the other's
// full term set (read-read on the same component never conflicts), or
// if either side's with-set overlaps the other's without-set. The
// latter cannot arise from well-formed queries against the same world
// (with and without are disjoint per query, per CreateQuery), but §4.9
// calls it out explicitly, so it is checked rather than assumed away.
func termSetsConflict(aEntry, bEntry ScheduleEntry) bool {
	a, b := aEntry.Query, bEntry.Query
	aAll, aWrite := allAndWriteMasks(a.with)
	bAll, bWrite := allAndWriteMasks(b.with)
	if aWrite.ContainsAny(bAll) || bWrite.ContainsAny(aAll) {
		return true
	}
	return aAll.ContainsAny(b.withoutMask) || bAll.ContainsAny(a.withoutMask)
}

// plan partitions entries into ordered batches: entries within one batch
// share no conflict; for conflicting entries u (earlier) and v (later),
// u's batch precedes v's. Greedy batching preserves the input order as a
// topological extension, satisfying §4.9's ordering property.
func (s *Schedule) plan() {
	n := len(s.entries)
	batchOf := make([]int, n)
	var batches [][]int
	edgeCount := 0

	for i := 0; i < n; i++ {
		earliestFree := 0
		for j := 0; j < i; j++ {
			if termSetsConflict(s.entries[i], s.entries[j]) {
				edgeCount++
				if batchOf[j]+1 > earliestFree {
					earliestFree = batchOf[j] + 1
				}
			}
		}
		for earliestFree >= len(batches) {
			batches = append(batches, nil)
		}
		batches[earliestFree] = append(batches[earliestFree], i)
		batchOf[i] = earliestFree
	}

	maxSize := 0
	for _, b := range batches {
		if len(b) > maxSize {
			maxSize = len(b)
		}
	}

	s.batches = batches
	s.stats = PlanStats{
		BatchCount:   len(batches),
		EdgeCount:    edgeCount,
		MaxBatchSize: maxSize,
	}
}

// Close releases the schedule's entries and queries nothing; the
// underlying queries remain owned by the caller.
func (s *Schedule) Close() {
	s.world = nil
	s.entries = nil
	s.batches = nil
}

// Execute runs the compiled plan: for each batch in order, every entry
// in that batch runs through ForEachChunkParallel with workerCount,
// proceeding to the next batch only after the current one completes.
func (s *Schedule) Execute(workerCount int) (PlanStats, error) {
	const op = "ScheduleExecute"
	if s.world.deferDepth > 0 {
		return s.stats, newError(Conflict, op, "cannot execute a schedule while deferred")
	}
	if workerCount < 1 {
		return s.stats, newError(InvalidArgument, op, "workerCount must be >= 1")
	}
	for _, batch := range s.batches {
		for _, idx := range batch {
			e := s.entries[idx]
			if err := ForEachChunkParallel(e.Query, workerCount, e.Callback, e.User); err != nil {
				return s.stats, err
			}
		}
	}
	return s.stats, nil
}

// ScheduleExecuteOneshot compiles a fresh plan for entries and executes
// it once, without retaining the plan for reuse.
func ScheduleExecuteOneshot(entries []ScheduleEntry, workerCount int) (PlanStats, error) {
	s, err := CreateSchedule(entries)
	if err != nil {
		return PlanStats{}, err
	}
	return s.Execute(workerCount)
}
