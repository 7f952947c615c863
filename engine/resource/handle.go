package resource

import "errors"

// Sentinel errors for resource cache misuse. ErrOutOfBounds and ErrStaleHandle
// indicate programming errors and are treated as fatal by the Frame Driver.
var (
	// ErrOutOfBounds indicates a buffer write whose offset+length exceeds the
	// buffer's declared size.
	ErrOutOfBounds = errors.New("resource: write exceeds buffer bounds")

	// ErrStaleHandle indicates use of a handle whose resource was released.
	// Handles are generation-checked: a released slot's index may be reused, but
	// never under the same generation, so stale handles are always detected.
	ErrStaleHandle = errors.New("resource: stale or invalid handle")

	// ErrInvalidDescriptor indicates a resource descriptor with invalid
	// dimensions, layer count, or format.
	ErrInvalidDescriptor = errors.New("resource: invalid descriptor")
)

// handle is the opaque index+generation pair shared by all typed handles.
// The zero handle is never valid (generations start at 1).
type handle struct {
	index      uint32
	generation uint32
}

// BufferHandle identifies a GPU buffer owned by a Cache.
type BufferHandle struct{ h handle }

// TextureHandle identifies a GPU texture (and its views) owned by a Cache.
type TextureHandle struct{ h handle }

// SamplerHandle identifies a GPU sampler owned by a Cache.
type SamplerHandle struct{ h handle }

// slot is one entry of a slotTable. generation is bumped on release so any
// handle minted for the previous occupant stops resolving.
type slot[T any] struct {
	generation uint32
	live       bool
	value      T
}

// slotTable is a generation-checked arena. Released slots go on a free list
// and are reissued under a higher generation, which makes reuse-after-free
// detectable instead of aliasing a different resource.
type slotTable[T any] struct {
	slots []slot[T]
	free  []uint32
}

// alloc stores value in a free (or new) slot and returns its handle.
func (t *slotTable[T]) alloc(value T) handle {
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		s := &t.slots[idx]
		s.live = true
		s.value = value
		return handle{index: idx, generation: s.generation}
	}
	t.slots = append(t.slots, slot[T]{generation: 1, live: true, value: value})
	return handle{index: uint32(len(t.slots) - 1), generation: 1}
}

// get resolves a handle to a pointer at its slot value, or ErrStaleHandle if
// the handle is invalid, released, or from a previous occupant of the slot.
func (t *slotTable[T]) get(h handle) (*T, error) {
	if int(h.index) >= len(t.slots) {
		return nil, ErrStaleHandle
	}
	s := &t.slots[h.index]
	if !s.live || s.generation != h.generation {
		return nil, ErrStaleHandle
	}
	return &s.value, nil
}

// release removes a handle's value from the table and returns it so the
// caller can free the underlying GPU object. The slot's generation is bumped
// before the index is reissued.
func (t *slotTable[T]) release(h handle) (T, error) {
	var zero T
	v, err := t.get(h)
	if err != nil {
		return zero, err
	}
	out := *v
	s := &t.slots[h.index]
	s.live = false
	s.generation++
	s.value = zero
	t.free = append(t.free, h.index)
	return out, nil
}

// each calls fn for every live value in the table.
func (t *slotTable[T]) each(fn func(*T)) {
	for i := range t.slots {
		if t.slots[i].live {
			fn(&t.slots[i].value)
		}
	}
}

// clear releases all live slots, invalidating every outstanding handle.
func (t *slotTable[T]) clear() {
	var zero T
	for i := range t.slots {
		if t.slots[i].live {
			t.slots[i].live = false
			t.slots[i].generation++
			t.slots[i].value = zero
			t.free = append(t.free, uint32(i))
		}
	}
}
