package lattice

// AllocFunc and FreeFunc let a caller supply a custom allocation strategy
// for chunk storage (§4.1). Both must be supplied together, or neither.
type AllocFunc func(size, align uintptr) ([]byte, error)
type FreeFunc func(buf []byte, size, align uintptr)

type funcAllocator struct {
	allocFn AllocFunc
	freeFn  FreeFunc
}

func (f funcAllocator) Alloc(size, align uintptr) ([]byte, error) { return f.allocFn(size, align) }
func (f funcAllocator) Free(buf []byte, size, align uintptr)      { f.freeFn(buf, size, align) }

// Config carries every optional world-creation parameter documented in
// §6. The zero value is a valid Config: it selects the default
// allocator, an initial entity capacity of 64, an initial component
// capacity of 64, and the default 16 KiB chunk byte budget.
type Config struct {
	AllocFunc                AllocFunc
	FreeFunc                 FreeFunc
	InitialEntityCapacity    uint32
	InitialComponentCapacity int
	ChunkByteBudget          uintptr
}

// World is a single self-contained ECS simulation. Worlds share no state
// with one another: component ids and entity handles from one world are
// meaningless against another (Design Notes §9, "Global state: none").
type World struct {
	config     Config
	alloc      Allocator
	entities   *entityIndex
	components *componentRegistry
	archetypes *archetypeGraph
	root       *archetype

	deferDepth int
	pending    []command

	structuralMoves uint64

	traceHook TraceFunc
	traceUser any

	queries []*Query
}

// NewWorld creates a world from cfg, or from all-defaults when cfg is
// nil.
func NewWorld(cfg *Config) (*World, error) {
	const op = "NewWorld"
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	if (c.AllocFunc == nil) != (c.FreeFunc == nil) {
		return nil, newError(InvalidArgument, op, "AllocFunc and FreeFunc must be supplied together or not at all")
	}
	var alloc Allocator = defaultAllocator{}
	if c.AllocFunc != nil {
		alloc = funcAllocator{c.AllocFunc, c.FreeFunc}
	}
	compCap := c.InitialComponentCapacity
	if compCap <= 0 {
		compCap = 64
	}

	w := &World{
		config:     c,
		alloc:      alloc,
		entities:   newEntityIndex(c.InitialEntityCapacity, alloc),
		components: newComponentRegistry(compCap),
		archetypes: newArchetypeGraph(),
	}
	root, err := w.archetypes.getOrCreate(w, nil)
	if err != nil {
		return nil, err
	}
	w.root = root
	return w, nil
}

// Close releases every chunk buffer the world owns, running each live
// row's component destructors first. A closed world must not be used
// again.
func (w *World) Close() {
	for _, a := range w.archetypes.list {
		for c := a.head; c != nil; {
			next := c.next
			for row := 0; row < c.count; row++ {
				destroyRow(w, a, c, row)
			}
			c.free(a, w)
			c = next
		}
		a.head, a.tail, a.chunkCount = nil, nil, 0
	}
	w.entities.close()
}

// ReserveEntities pre-grows the entity slot table to hold at least n
// slots.
func (w *World) ReserveEntities(n uint32) error {
	return w.entities.reserve(n)
}

// ReserveComponents pre-grows the component registry's backing storage
// to hold at least n components.
func (w *World) ReserveComponents(n int) {
	if n <= 0 {
		return
	}
	if cap(w.components.records) < n+1 {
		grown := make([]componentRecord, len(w.components.records), n+1)
		copy(grown, w.components.records)
		w.components.records = grown
	}
}

// RegisterComponentRaw validates and registers d, returning its assigned
// id (§4.3, §6).
func (w *World) RegisterComponentRaw(d ComponentDescriptor) (ComponentID, error) {
	return w.components.register(d)
}

// FindComponent resolves a component by its registered name.
func (w *World) FindComponent(name string) (ComponentID, error) {
	return w.components.findByName(name)
}

// ComponentName returns id's registered name.
func (w *World) ComponentName(id ComponentID) (string, error) {
	rec, err := w.components.lookup(id)
	if err != nil {
		return "", err
	}
	return rec.name, nil
}

// ComponentLayout returns id's size, alignment, and flags.
func (w *World) ComponentLayout(id ComponentID) (size, align uintptr, flags ComponentFlags, err error) {
	rec, err := w.components.lookup(id)
	if err != nil {
		return 0, 0, 0, err
	}
	return rec.size, rec.align, rec.flags, nil
}

// ComponentIDs copies up to len(dst) registered component ids (in
// registration order) into dst, returning the count written.
func (w *World) ComponentIDs(dst []ComponentID) int {
	n := 0
	for id := 1; id < len(w.components.records) && n < len(dst); id++ {
		dst[n] = ComponentID(id)
		n++
	}
	return n
}

// LiveEntities copies up to len(dst) live entity handles into dst,
// returning the count written. Order is unspecified.
func (w *World) LiveEntities(dst []Entity) int {
	n := 0
	for i := range w.entities.slots {
		if n >= len(dst) {
			break
		}
		slot := &w.entities.slots[i]
		if slot.alive {
			dst[n] = newEntity(uint32(i), slot.generation)
			n++
		}
	}
	return n
}

// EntityComponents copies up to len(dst) component ids attached to
// entity into dst, returning the count written, or an error if entity is
// stale.
func (w *World) EntityComponents(entity Entity, dst []ComponentID) (int, error) {
	slot, err := w.entities.slotFor(entity, "EntityComponents")
	if err != nil {
		return 0, err
	}
	n := copy(dst, slot.archetype.components)
	return n, nil
}
