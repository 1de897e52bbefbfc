// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package slotpool provides a generation-checked arena for physical GPU
// resources with frame-deferred destruction.
//
// Resources are addressed by small integer handles that carry the slot's
// generation. Freeing a slot bumps its generation, so a stale handle
// resolves to "absent" instead of the slot's reused contents: use-after-free
// becomes a detectable, non-crashing condition.
//
// Destruction is deferred because GPU work from several frames ago may
// still reference a resource. DestroyDeferred queues the resource tagged
// with the frame that last used it; Retire frees everything whose tag the
// GPU has confirmed complete.
//
// A Pool is owned by a single driver and accessed by one thread per frame;
// it performs no locking.
package slotpool

import "fmt"

// Resource is a physical GPU resource managed by a Pool. Destroy releases
// the underlying GPU object and is called exactly once, from Retire or
// DestroyAll.
type Resource interface {
	Destroy()
}

// Handle addresses one slot in a Pool. The zero Handle is invalid.
// A Handle whose generation no longer matches its slot resolves to nothing.
type Handle struct {
	index      uint32
	generation uint32
}

// IsValid reports whether the handle could refer to a live slot.
// A valid handle may still be stale; Pool.Get is the authority.
func (h Handle) IsValid() bool { return h.generation != 0 }

// String returns a compact description for diagnostics.
func (h Handle) String() string {
	return fmt.Sprintf("Handle(%d@%d)", h.index, h.generation)
}

// slot is one arena cell. generation is even while free, odd while live;
// it only ever increases, so no freed handle can match again.
type slot struct {
	resource   Resource
	generation uint32
}

func (s *slot) live() bool { return s.generation%2 == 1 }

// pendingDestruction is a resource awaiting GPU-confirmed retirement.
type pendingDestruction struct {
	handle      Handle
	resource    Resource
	retireAfter uint64
}

// Stats describes pool occupancy.
type Stats struct {
	// Live is the number of occupied slots.
	Live int

	// Free is the number of vacant slots available for reuse.
	Free int

	// Pending is the number of resources awaiting retirement.
	Pending int

	// Retired is the total number of resources destroyed so far.
	Retired uint64
}

// String returns a human-readable summary.
func (s Stats) String() string {
	return fmt.Sprintf("Pool[%d live, %d free, %d pending, %d retired]",
		s.Live, s.Free, s.Pending, s.Retired)
}

// Pool is a generation-checked arena of physical resources.
//
// Pool is NOT safe for concurrent use; it is owned by a single frame
// driver (see package doc).
type Pool struct {
	slots   []slot
	free    []uint32
	pending []pendingDestruction
	retired uint64
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{}
}

// Register inserts a resource and returns a handle carrying the slot's
// current generation. Insertion is O(1); freed slots are reused.
func (p *Pool) Register(r Resource) Handle {
	var idx uint32
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		p.slots = append(p.slots, slot{})
		idx = uint32(len(p.slots) - 1)
	}
	s := &p.slots[idx]
	s.generation++ // even -> odd: live
	s.resource = r
	return Handle{index: idx, generation: s.generation}
}

// Get returns the resource for h, or nil and false if the slot was freed
// since h was issued (generation mismatch) or h never referred to a slot.
func (p *Pool) Get(h Handle) (Resource, bool) {
	if int(h.index) >= len(p.slots) {
		return nil, false
	}
	s := &p.slots[h.index]
	if !s.live() || s.generation != h.generation {
		return nil, false
	}
	return s.resource, true
}

// Contains reports whether h currently resolves to a live resource.
func (p *Pool) Contains(h Handle) bool {
	_, ok := p.Get(h)
	return ok
}

// DestroyDeferred queues the resource behind h for destruction once the
// GPU confirms completion of submitFrame, the last frame whose submitted
// work may reference it. The handle keeps resolving until Retire frees the
// entry. Queueing a stale or invalid handle is a no-op.
func (p *Pool) DestroyDeferred(h Handle, submitFrame uint64) {
	r, ok := p.Get(h)
	if !ok {
		return
	}
	for _, pd := range p.pending {
		if pd.handle == h {
			return
		}
	}
	p.pending = append(p.pending, pendingDestruction{
		handle:      h,
		resource:    r,
		retireAfter: submitFrame,
	})
}

// Retire frees every pending resource whose tagged frame is confirmed
// complete, i.e. tag <= completedFrame. Freed slots have their generation
// bumped so stale handles resolve to nothing, and are returned to the free
// list. Retire never frees a resource whose tag is still in the future,
// and repeating a Retire with the same counter is a no-op for already
// freed entries. Returns the number of resources destroyed.
func (p *Pool) Retire(completedFrame uint64) int {
	if len(p.pending) == 0 {
		return 0
	}
	destroyed := 0
	remaining := p.pending[:0]
	for _, pd := range p.pending {
		if pd.retireAfter > completedFrame {
			remaining = append(remaining, pd)
			continue
		}
		p.freeSlot(pd.handle)
		pd.resource.Destroy()
		destroyed++
	}
	p.pending = remaining
	p.retired += uint64(destroyed)
	if destroyed > 0 {
		slogger().Debug("slotpool: retired", "count", destroyed, "completed", completedFrame)
	}
	return destroyed
}

// freeSlot vacates the slot behind h if h is still current.
func (p *Pool) freeSlot(h Handle) {
	if int(h.index) >= len(p.slots) {
		return
	}
	s := &p.slots[h.index]
	if !s.live() || s.generation != h.generation {
		return
	}
	s.generation++ // odd -> even: free
	s.resource = nil
	p.free = append(p.free, h.index)
}

// DestroyAll immediately destroys every live and pending resource. The
// caller must have waited for the GPU to go idle first; this is the full
// teardown path and there is no partial-cancellation variant.
func (p *Pool) DestroyAll() {
	for i := range p.slots {
		s := &p.slots[i]
		if !s.live() {
			continue
		}
		s.generation++
		s.resource.Destroy()
		s.resource = nil
		p.free = append(p.free, uint32(i))
		p.retired++
	}
	// Pending entries point at slots destroyed above; drop the queue.
	p.pending = nil
	slogger().Info("slotpool: destroyed all resources", "retired", p.retired)
}

// Len returns the number of live slots.
func (p *Pool) Len() int {
	n := 0
	for i := range p.slots {
		if p.slots[i].live() {
			n++
		}
	}
	return n
}

// PendingLen returns the number of resources awaiting retirement.
func (p *Pool) PendingLen() int { return len(p.pending) }

// Stats returns current pool occupancy.
func (p *Pool) Stats() Stats {
	return Stats{
		Live:    p.Len(),
		Free:    len(p.free),
		Pending: len(p.pending),
		Retired: p.retired,
	}
}
