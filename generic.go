package lattice

import (
	"reflect"
	"unsafe"
)

// TypedComponent is a typed convenience wrapper over a registered
// component's erased id, mirroring the teacher's AccessibleComponent[T]
// over an erased core (Design Notes §9, "type erasure").
type TypedComponent[T any] struct {
	ID ComponentID
}

// ComponentOption configures RegisterComponent beyond the type-derived
// defaults.
type ComponentOption func(*ComponentDescriptor)

// WithName overrides the default (reflect-derived) component name.
func WithName(name string) ComponentOption {
	return func(d *ComponentDescriptor) { d.Name = name }
}

// WithTag marks the component as a zero-sized tag. T must be a
// zero-sized type (e.g. struct{}).
func WithTag() ComponentOption {
	return func(d *ComponentDescriptor) {
		d.Flags |= FlagTag
		d.Size = 0
		d.Align = 1
	}
}

// WithUser attaches an opaque value forwarded to the component's hooks.
func WithUser(user any) ComponentOption {
	return func(d *ComponentDescriptor) { d.User = user }
}

// RegisterComponent registers T's layout (derived via unsafe.Sizeof /
// unsafe.Alignof) with w and returns a typed accessor handle. Move and
// destroy default to a raw byte copy / no-op respectively, which is
// correct for any T holding no external resources; pass explicit hooks
// via a raw ComponentDescriptor through RegisterComponentRaw for types
// that need one.
func RegisterComponent[T any](w *World, opts ...ComponentOption) (TypedComponent[T], error) {
	var zero T
	size := unsafe.Sizeof(zero)
	align := unsafe.Alignof(zero)
	d := ComponentDescriptor{
		Name:  typeName[T](),
		Size:  size,
		Align: align,
	}
	for _, opt := range opts {
		opt(&d)
	}
	id, err := w.RegisterComponentRaw(d)
	if err != nil {
		return TypedComponent[T]{}, err
	}
	return TypedComponent[T]{ID: id}, nil
}

// Get returns a pointer to entity's T value. The pointer is invalidated
// by any subsequent structural change to entity (§5).
func (c TypedComponent[T]) Get(w *World, entity Entity) (*T, error) {
	ptr, err := w.GetComponent(entity, c.ID)
	if err != nil {
		return nil, err
	}
	if ptr == nil {
		return nil, nil
	}
	return (*T)(ptr), nil
}

// GetFromChunk returns a pointer to the row-th value of this component's
// column within view, for use inside query/executor callbacks.
func (c TypedComponent[T]) GetFromChunk(view ChunkView, row int) *T {
	for i := 0; i < view.WithCount; i++ {
		if view.termIDs[i] == c.ID {
			base := view.Columns[i]
			if base == nil {
				return nil
			}
			var zero T
			return (*T)(unsafe.Pointer(uintptr(base) + uintptr(row)*unsafe.Sizeof(zero)))
		}
	}
	return nil
}

func typeName[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return "unknown"
	}
	return t.String()
}
