package lattice

import (
	"unsafe"
)

// ComponentID is a dense, 1-based identifier assigned in registration
// order. 0 is reserved and never denotes a registered component.
type ComponentID uint32

// InvalidComponentID is the reserved id denoting "no component".
const InvalidComponentID ComponentID = 0

// ComponentFlags is a bit set describing storage behavior for a
// component.
type ComponentFlags uint32

const (
	// FlagNone is the zero value: an ordinary, relocatable-via-move-hook
	// component.
	FlagNone ComponentFlags = 0
	// FlagTag marks a zero-sized marker component. Size must be 0 and
	// alignment must be 0 or 1.
	FlagTag ComponentFlags = 1 << 0
	// FlagTriviallyRelocatable tells the chunk store it may move the
	// component's bytes with a raw copy, ignoring any Move hook.
	FlagTriviallyRelocatable ComponentFlags = 1 << 1
)

// ConstructorFunc initializes a freshly allocated row's storage for one
// component. ptr points at size bytes of zeroed memory.
type ConstructorFunc func(ptr unsafe.Pointer, user any)

// DestructorFunc runs before a row's storage for one component is
// discarded: when the component is removed, when its entity is
// destroyed, or when the world is closed. Swap-remove's relocation of
// the tail row into a vacated row does not invoke it.
type DestructorFunc func(ptr unsafe.Pointer, user any)

// MoveFunc relocates one component's bytes from src to dst and leaves src
// in a state where no further hook will run against it.
type MoveFunc func(dst, src unsafe.Pointer, user any)

// ComponentDescriptor is the input to RegisterComponentRaw.
type ComponentDescriptor struct {
	Name  string
	Size  uintptr
	Align uintptr
	Flags ComponentFlags
	Ctor  ConstructorFunc
	Dtor  DestructorFunc
	Move  MoveFunc
	User  any
}

// componentRecord is the registry's internal, validated form of a
// descriptor, keyed by its assigned id.
type componentRecord struct {
	id    ComponentID
	name  string
	size  uintptr
	align uintptr
	flags ComponentFlags
	ctor  ConstructorFunc
	dtor  DestructorFunc
	move  MoveFunc
	user  any
}

func (r *componentRecord) isTag() bool { return r.flags&FlagTag != 0 }

// componentRegistry assigns and validates component ids within one world.
// Deregistration is not supported: ids are permanent once issued.
type componentRegistry struct {
	records []componentRecord // records[0] is the reserved invalid slot
	byName  map[string]ComponentID
}

func newComponentRegistry(initialCapacity int) *componentRegistry {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	records := make([]componentRecord, 1, initialCapacity+1)
	return &componentRegistry{
		records: records,
		byName:  make(map[string]ComponentID, initialCapacity),
	}
}

func validateDescriptor(d ComponentDescriptor) error {
	const op = "RegisterComponent"
	if d.Name == "" {
		return newError(InvalidArgument, op, "component name must not be empty")
	}
	if d.Flags&FlagTag != 0 {
		if d.Size != 0 {
			return newError(InvalidArgument, op, "tag component must have size 0")
		}
		if d.Align != 0 && d.Align != 1 {
			return newError(InvalidArgument, op, "tag component alignment must be 0 or 1")
		}
		return nil
	}
	if d.Size == 0 {
		return newError(InvalidArgument, op, "non-tag component must have size >= 1")
	}
	if !isPowerOfTwo(d.Align) {
		return newError(InvalidArgument, op, "component alignment must be a power of two")
	}
	return nil
}

// register validates and assigns the next id to d, or returns AlreadyExists
// if d.Name is already registered.
func (reg *componentRegistry) register(d ComponentDescriptor) (ComponentID, error) {
	const op = "RegisterComponent"
	if err := validateDescriptor(d); err != nil {
		return InvalidComponentID, err
	}
	if _, exists := reg.byName[d.Name]; exists {
		return InvalidComponentID, newError(AlreadyExists, op, "component name already registered: "+d.Name)
	}
	if len(reg.records) >= int(^ComponentID(0)) {
		return InvalidComponentID, newError(CapacityReached, op, "component id space exhausted")
	}
	align := d.Align
	if align == 0 {
		align = 1
	}
	id := ComponentID(len(reg.records))
	reg.records = append(reg.records, componentRecord{
		id:    id,
		name:  d.Name,
		size:  d.Size,
		align: align,
		flags: d.Flags,
		ctor:  d.Ctor,
		dtor:  d.Dtor,
		move:  d.Move,
		user:  d.User,
	})
	reg.byName[d.Name] = id
	return id, nil
}

func (reg *componentRegistry) findByName(name string) (ComponentID, error) {
	id, ok := reg.byName[name]
	if !ok {
		return InvalidComponentID, newError(NotFound, "FindComponent", "no component named "+name)
	}
	return id, nil
}

func (reg *componentRegistry) lookup(id ComponentID) (*componentRecord, error) {
	if id == InvalidComponentID || int(id) >= len(reg.records) {
		return nil, newError(NotFound, "component lookup", "component id out of range")
	}
	return &reg.records[id], nil
}

func (reg *componentRegistry) count() int { return len(reg.records) - 1 }
