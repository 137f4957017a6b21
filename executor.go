package lattice

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ChunkFunc processes one matched, non-empty chunk. workerIndex is the
// abstract worker slot the chunk was dispatched to, not a stable
// identity across calls.
type ChunkFunc func(view ChunkView, workerIndex int, user any)

// ForEachChunkParallel refreshes query, enumerates its matching
// non-empty chunks, and invokes callback once per chunk. With
// workerCount==1, execution is serial on the caller goroutine and
// equivalent to the iterator. With workerCount>1, chunks are fanned out
// across an errgroup.Group bounded by a semaphore.Weighted(workerCount);
// the callback body owns synchronization on anything outside its own
// chunk's columns.
func ForEachChunkParallel(query *Query, workerCount int, callback ChunkFunc, user any) error {
	const op = "ForEachChunkParallel"
	if workerCount < 1 || callback == nil {
		return newError(InvalidArgument, op, "workerCount must be >= 1 and callback must not be nil")
	}
	if query.world.deferDepth > 0 {
		return newError(Conflict, op, "cannot run a parallel pass while deferred")
	}

	views := collectChunkViews(query)

	if workerCount == 1 {
		for _, v := range views {
			callback(v, 0, user)
		}
		return nil
	}

	sem := semaphore.NewWeighted(int64(workerCount))
	g, ctx := errgroup.WithContext(context.Background())
	for i, v := range views {
		v := v
		workerIdx := i % workerCount
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			callback(v, workerIdx, user)
			return nil
		})
	}
	return g.Wait()
}

// collectChunkViews refreshes query and materializes every non-empty
// matched chunk's view up front, so fan-out does not race the iterator's
// internal cursor state.
func collectChunkViews(query *Query) []ChunkView {
	it := query.IterBegin()
	var views []ChunkView
	for v, ok := it.Next(); ok; v, ok = it.Next() {
		views = append(views, v)
	}
	return views
}
