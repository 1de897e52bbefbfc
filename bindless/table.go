// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package bindless maintains the shader-visible descriptor index for every
// registered resource.
//
// Shaders address resources by integer index into one large descriptor
// array rather than by per-draw bind groups. The Table assigns those
// indices: registered handles are renumbered densely at the start of each
// frame, in registration order, so the descriptor array has no holes and
// its upload is a single contiguous write.
//
// Indices are stable only within a frame. Anything that bakes an index
// into GPU-visible data (material buffers, push constants) must refresh it
// after Prepare.
package bindless

import (
	"errors"
	"fmt"

	"github.com/gogpu/framegraph/slotpool"
)

// DefaultCapacity is the table size when Config.Capacity is zero. It
// matches the descriptor array size declared by shaders.
const DefaultCapacity = 1024

// ErrTableFull is returned by Register when the table holds Capacity
// entries.
var ErrTableFull = errors.New("bindless: descriptor table full")

// ErrNotRegistered is returned by Unregister for handles the table does
// not hold.
var ErrNotRegistered = errors.New("bindless: handle not registered")

// Config configures a Table. The zero value is valid.
type Config struct {
	// Capacity is the maximum number of simultaneously registered
	// handles. Zero means DefaultCapacity.
	Capacity int
}

// Table maps registered resource handles to dense shader-visible indices.
//
// A Table is owned by a single frame driver and accessed by one thread
// per frame; it performs no locking.
type Table struct {
	capacity int
	entries  []slotpool.Handle // registration order, the dense layout
	indices  map[slotpool.Handle]uint32
}

// NewTable creates an empty table.
func NewTable(cfg Config) *Table {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Table{
		capacity: capacity,
		indices:  make(map[slotpool.Handle]uint32),
	}
}

// Register adds a handle to the table and assigns it the next dense
// index. The index is provisional until the frame's Prepare call
// renumbers the table; shaders must only consume indices published by
// Prepare. Registering a handle already present is a no-op and returns
// its current index.
func (t *Table) Register(h slotpool.Handle) (uint32, error) {
	if !h.IsValid() {
		return 0, fmt.Errorf("%w: invalid handle", ErrNotRegistered)
	}
	if idx, ok := t.indices[h]; ok {
		return idx, nil
	}
	if len(t.entries) >= t.capacity {
		return 0, fmt.Errorf("%w: capacity %d", ErrTableFull, t.capacity)
	}
	idx := uint32(len(t.entries))
	t.entries = append(t.entries, h)
	t.indices[h] = idx
	return idx, nil
}

// Unregister removes a handle. Later entries shift down one index at the
// next Prepare; until then their previously returned indices remain
// valid for the current frame's already-uploaded descriptor array.
func (t *Table) Unregister(h slotpool.Handle) error {
	idx, ok := t.indices[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, h)
	}
	t.entries = append(t.entries[:idx], t.entries[idx+1:]...)
	delete(t.indices, h)
	for i := int(idx); i < len(t.entries); i++ {
		t.indices[t.entries[i]] = uint32(i)
	}
	return nil
}

// Prepare renumbers the table densely for a new frame, dropping any
// handle that no longer resolves in the pool. Destroyed resources thus
// leave the table automatically instead of pinning a descriptor slot.
// Returns the number of live entries.
func (t *Table) Prepare(pool *slotpool.Pool) int {
	live := t.entries[:0]
	for _, h := range t.entries {
		if pool != nil && !pool.Contains(h) {
			slogger().Warn("bindless: dropping stale handle", "handle", h.String())
			delete(t.indices, h)
			continue
		}
		live = append(live, h)
	}
	t.entries = live
	for i, h := range t.entries {
		t.indices[h] = uint32(i)
	}
	return len(t.entries)
}

// Index returns the dense index assigned to h, and whether h is
// registered.
func (t *Table) Index(h slotpool.Handle) (uint32, bool) {
	idx, ok := t.indices[h]
	return idx, ok
}

// Entries returns the registered handles in dense index order. The slice
// is the table's backing store; callers must not modify it.
func (t *Table) Entries() []slotpool.Handle { return t.entries }

// Len returns the number of registered handles.
func (t *Table) Len() int { return len(t.entries) }

// Capacity returns the maximum number of registered handles.
func (t *Table) Capacity() int { return t.capacity }
