package lattice

// Stats is the eagerly-maintained counter snapshot returned by
// GetStats (§4.11). Schedule execution reports PlanStats instead.
type Stats struct {
	LiveEntities         uint32
	EntityCapacity       uint32
	AllocatedEntitySlots uint32
	FreeEntitySlots      uint32
	RegisteredComponents int
	ArchetypeCount       int
	ChunkCount           int
	PendingCommands      int
	DeferDepth           int
	StructuralMoves      uint64
}

// GetStats returns a snapshot of every plain counter the world maintains.
func (w *World) GetStats() Stats {
	return Stats{
		LiveEntities:         w.entities.liveCount,
		EntityCapacity:       uint32(w.entities.capacity()),
		AllocatedEntitySlots: uint32(w.entities.capacity()),
		FreeEntitySlots:      w.entities.freeCount,
		RegisteredComponents: w.components.count(),
		ArchetypeCount:       len(w.archetypes.list),
		ChunkCount:           w.archetypes.chunkCount(),
		PendingCommands:      len(w.pending),
		DeferDepth:           w.deferDepth,
		StructuralMoves:      w.structuralMoves,
	}
}
