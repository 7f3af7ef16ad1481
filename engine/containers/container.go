package containers

import "github.com/vizcore/dvz/engine/core"

// Handle is a stable external reference into a Container: Index names a
// slot, Generation distinguishes the slot's current occupant from any
// previously-removed one so a handle taken before a Remove can't
// silently resolve to whatever was allocated into the same slot after.
type Handle struct {
	Index      uint32
	Generation uint32
}

// Container is a generation-checked slot arena. It never reuses a slot's
// generation once removed, so a kept-around stale Handle always fails
// Get/Remove with ErrStaleHandle rather than reading another item's data.
type Container[T any] struct {
	items       []T
	generations []uint32
	occupied    []bool
	freeList    []uint32
}

func NewContainer[T any](capacity int) *Container[T] {
	return &Container[T]{
		items:       make([]T, 0, capacity),
		generations: make([]uint32, 0, capacity),
		occupied:    make([]bool, 0, capacity),
	}
}

// Add inserts value, reusing a freed slot if one is available, and
// returns the Handle to reach it again.
func (c *Container[T]) Add(value T) Handle {
	if n := len(c.freeList); n > 0 {
		idx := c.freeList[n-1]
		c.freeList = c.freeList[:n-1]
		c.items[idx] = value
		c.occupied[idx] = true
		return Handle{Index: idx, Generation: c.generations[idx]}
	}

	idx := uint32(len(c.items))
	c.items = append(c.items, value)
	c.generations = append(c.generations, 0)
	c.occupied = append(c.occupied, true)
	return Handle{Index: idx, Generation: 0}
}

func (c *Container[T]) Get(h Handle) (T, error) {
	var zero T
	if int(h.Index) >= len(c.items) {
		return zero, core.ErrInvalidIndex
	}
	if !c.occupied[h.Index] || c.generations[h.Index] != h.Generation {
		return zero, core.ErrStaleHandle
	}
	return c.items[h.Index], nil
}

// Set overwrites the value at h in place, leaving its generation intact.
func (c *Container[T]) Set(h Handle, value T) error {
	if int(h.Index) >= len(c.items) {
		return core.ErrInvalidIndex
	}
	if !c.occupied[h.Index] || c.generations[h.Index] != h.Generation {
		return core.ErrStaleHandle
	}
	c.items[h.Index] = value
	return nil
}

// Remove frees h's slot and bumps its generation, invalidating every
// Handle copy still referring to it.
func (c *Container[T]) Remove(h Handle) error {
	if int(h.Index) >= len(c.items) {
		return core.ErrInvalidIndex
	}
	if !c.occupied[h.Index] || c.generations[h.Index] != h.Generation {
		return core.ErrStaleHandle
	}

	var zero T
	c.items[h.Index] = zero
	c.occupied[h.Index] = false
	c.generations[h.Index]++
	c.freeList = append(c.freeList, h.Index)
	return nil
}

func (c *Container[T]) Len() int {
	return len(c.items) - len(c.freeList)
}

// Each calls fn for every live (non-removed) entry in index order.
func (c *Container[T]) Each(fn func(Handle, T)) {
	for i, occ := range c.occupied {
		if occ {
			fn(Handle{Index: uint32(i), Generation: c.generations[i]}, c.items[i])
		}
	}
}
