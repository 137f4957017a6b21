package lattice

// EventKind enumerates the synchronous diagnostic events a world's trace
// hook observes (§4.10).
type EventKind int

const (
	DeferBegin EventKind = iota
	DeferEnd
	DeferEnqueue
	FlushBegin
	FlushApply
	FlushEnd
	EntityCreate
	EntityDestroy
	ComponentAdd
	ComponentRemove
	QueryIterBegin
	QueryIterChunk
	QueryIterEnd
)

func (k EventKind) String() string {
	switch k {
	case DeferBegin:
		return "DeferBegin"
	case DeferEnd:
		return "DeferEnd"
	case DeferEnqueue:
		return "DeferEnqueue"
	case FlushBegin:
		return "FlushBegin"
	case FlushApply:
		return "FlushApply"
	case FlushEnd:
		return "FlushEnd"
	case EntityCreate:
		return "EntityCreate"
	case EntityDestroy:
		return "EntityDestroy"
	case ComponentAdd:
		return "ComponentAdd"
	case ComponentRemove:
		return "ComponentRemove"
	case QueryIterBegin:
		return "QueryIterBegin"
	case QueryIterChunk:
		return "QueryIterChunk"
	case QueryIterEnd:
		return "QueryIterEnd"
	default:
		return "EventKind(?)"
	}
}

// EventSnapshot is the counter snapshot carried on every Event (§4.10).
type EventSnapshot struct {
	LiveEntities    uint32
	PendingCommands int
	DeferDepth      int
}

// Event is one synchronous trace notification. Operation is a free-form
// field: a deferred-op kind name, a chunk row count for QueryIterChunk,
// or a match count for query begin/end.
type Event struct {
	Kind      EventKind
	Status    StatusCode
	Entity    Entity
	Component ComponentID
	Operation string
	Snapshot  EventSnapshot
	User      any
}

// TraceFunc observes a world's Events. It runs synchronously on the
// triggering goroutine; it must be safe against reentrant read-only
// introspection calls, and must not mutate the world.
type TraceFunc func(Event)

func (w *World) emit(kind EventKind, status StatusCode, entity Entity, component ComponentID, operation string) {
	if w.traceHook == nil {
		return
	}
	w.traceHook(Event{
		Kind:      kind,
		Status:    status,
		Entity:    entity,
		Component: component,
		Operation: operation,
		Snapshot: EventSnapshot{
			LiveEntities:    w.entities.liveCount,
			PendingCommands: len(w.pending),
			DeferDepth:      w.deferDepth,
		},
		User: w.traceUser,
	})
}

// SetTraceHook installs hook as the world's sole observer, or clears it
// when hook is nil.
func (w *World) SetTraceHook(hook TraceFunc, user any) {
	w.traceHook = hook
	w.traceUser = user
}
