// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"

	"github.com/gogpu/framegraph/slotpool"
)

// TransientAllocator provides physical backing for transient resources at
// compile time. backend/native supplies a HAL-backed implementation; tests
// supply trivial ones. Allocations are returned as pool handles so their
// destruction can be deferred past the frames that reference them.
type TransientAllocator interface {
	// AllocateImage returns backing for a transient image.
	AllocateImage(name string, desc ImageDesc) (slotpool.Handle, error)

	// AllocateBuffer returns backing for a transient buffer.
	AllocateBuffer(name string, desc BufferDesc) (slotpool.Handle, error)
}

// ImageBarrier is one image state transition, scheduled immediately before
// the pass that requires the destination state.
type ImageBarrier struct {
	// Image is the virtual handle within the originating build.
	Image ImageHandle

	// Physical is the resolved backing for this frame.
	Physical slotpool.Handle

	// Src is the state the image is in before the barrier.
	Src ImageState

	// Dst is the state the pass requires.
	Dst ImageState
}

// BufferBarrier is one buffer state transition.
type BufferBarrier struct {
	Buffer   BufferHandle
	Physical slotpool.Handle
	Src      BufferState
	Dst      BufferState
}

// BarrierBatch is a single synchronization point: every transition needed
// by one pass, batched so the backend can issue them together.
type BarrierBatch struct {
	Images  []ImageBarrier
	Buffers []BufferBarrier
}

// Empty reports whether the batch contains no transitions.
func (b BarrierBatch) Empty() bool {
	return len(b.Images) == 0 && len(b.Buffers) == 0
}

// compiledPass is one entry in the execution order.
type compiledPass struct {
	index    int // registration index
	name     string
	barriers BarrierBatch
	node     *passNode
}

// Plan is a compiled, immutable execution plan for one frame: the sorted
// pass order with the barrier batch preceding each pass, plus trailing
// barriers for exported resources. Given the same registration sequence
// and declared states, compilation always produces the same Plan.
type Plan struct {
	registry *Registry
	graph    *DependencyGraph
	passes   []compiledPass
	final    BarrierBatch
	pool     *slotpool.Pool
}

// Order returns the pass names in execution order.
func (p *Plan) Order() []string {
	names := make([]string, len(p.passes))
	for i, cp := range p.passes {
		names[i] = cp.name
	}
	return names
}

// PassBarriers returns the barrier batch preceding the i-th pass in
// execution order.
func (p *Plan) PassBarriers(i int) BarrierBatch {
	if i < 0 || i >= len(p.passes) {
		return BarrierBatch{}
	}
	return p.passes[i].barriers
}

// FinalBarriers returns the trailing transitions for exported resources.
func (p *Plan) FinalBarriers() BarrierBatch { return p.final }

// Dependencies returns the analyzed DAG, for diagnostics and
// scenario-driven scheduling decisions by callers.
func (p *Plan) Dependencies() *DependencyGraph { return p.graph }

// exportDecl is a terminal required state for a resource, compiled as a
// trailing barrier after the last pass that touches it.
type exportDecl struct {
	image  ImageHandle
	buffer BufferHandle
	isImg  bool
	imgSt  ImageState
	bufSt  BufferState
}

// compile runs analysis, sorting, transient placement, and barrier
// synthesis. A detected cycle is fatal: no partial schedule is produced.
func compile(g *Graph) (*Plan, error) {
	log := Logger()

	dag := analyze(g.registry, g.passes)
	order, err := dag.TopologicalSort()
	if err != nil {
		if cyc, ok := err.(*CycleError); ok {
			for _, i := range cyc.Passes {
				cyc.Names = append(cyc.Names, g.passes[i].name)
			}
		}
		return nil, err
	}

	// Transient placement. Physical backing for transients is decided
	// here, not at registration, so a pool can alias allocations across
	// frames.
	for i := range g.registry.images {
		e := &g.registry.images[i]
		if !e.transient {
			continue
		}
		if g.alloc == nil {
			return nil, fmt.Errorf("%w: image %q", ErrNoAllocator, e.name)
		}
		h, err := g.alloc.AllocateImage(e.name, e.desc)
		if err != nil {
			return nil, fmt.Errorf("framegraph: allocating transient image %q: %w", e.name, err)
		}
		e.physical = h
	}
	for i := range g.registry.buffers {
		e := &g.registry.buffers[i]
		if !e.transient {
			continue
		}
		if g.alloc == nil {
			return nil, fmt.Errorf("%w: buffer %q", ErrNoAllocator, e.name)
		}
		h, err := g.alloc.AllocateBuffer(e.name, e.desc)
		if err != nil {
			return nil, fmt.Errorf("framegraph: allocating transient buffer %q: %w", e.name, err)
		}
		e.physical = h
	}

	// Barrier synthesis: walk passes in sorted order, comparing each
	// declared required state against the resource's tracked state and
	// emitting exactly one transition per incompatible change. Barriers
	// for distinct resources used by one pass batch into a single
	// synchronization point before that pass.
	plan := &Plan{
		registry: g.registry,
		graph:    dag,
		passes:   make([]compiledPass, 0, len(order)),
		pool:     g.pool,
	}

	for _, idx := range order {
		node := g.passes[idx]
		cp := compiledPass{index: idx, name: node.name, node: node}

		transitionImage := func(acc imageAccess) {
			e := g.registry.image(acc.handle)
			if !e.state.NeedsTransitionTo(acc.state) {
				// Consecutive read-only uses in the same layout are
				// compatible. Widen the tracked state so the next
				// transition's source still covers every earlier use.
				e.state.Stage |= acc.state.Stage
				e.state.Access |= acc.state.Access
				return
			}
			cp.barriers.Images = append(cp.barriers.Images, ImageBarrier{
				Image:    acc.handle,
				Physical: e.physical,
				Src:      e.state,
				Dst:      acc.state,
			})
			log.Debug("framegraph: image barrier",
				"pass", node.name, "image", e.name,
				"src", e.state.Layout.String(), "dst", acc.state.Layout.String())
			e.state = acc.state
		}
		transitionBuffer := func(acc bufferAccess) {
			e := g.registry.buffer(acc.handle)
			if !e.state.NeedsTransitionTo(acc.state) {
				e.state.Stage |= acc.state.Stage
				e.state.Access |= acc.state.Access
				return
			}
			cp.barriers.Buffers = append(cp.barriers.Buffers, BufferBarrier{
				Buffer:   acc.handle,
				Physical: e.physical,
				Src:      e.state,
				Dst:      acc.state,
			})
			log.Debug("framegraph: buffer barrier", "pass", node.name, "buffer", e.name)
			e.state = acc.state
		}

		for _, acc := range node.imageReads {
			transitionImage(acc)
		}
		for _, acc := range node.imageWrites {
			transitionImage(acc)
		}
		for _, acc := range node.bufferReads {
			transitionBuffer(acc)
		}
		for _, acc := range node.bufferWrites {
			transitionBuffer(acc)
		}

		plan.passes = append(plan.passes, cp)
	}

	// Exported resources get a trailing transition into their declared
	// terminal state, after the last pass that touches them.
	for _, ex := range g.exports {
		if ex.isImg {
			e := g.registry.image(ex.image)
			if !e.state.NeedsTransitionTo(ex.imgSt) {
				e.state.Stage |= ex.imgSt.Stage
				e.state.Access |= ex.imgSt.Access
				continue
			}
			plan.final.Images = append(plan.final.Images, ImageBarrier{
				Image:    ex.image,
				Physical: e.physical,
				Src:      e.state,
				Dst:      ex.imgSt,
			})
			e.state = ex.imgSt
		} else {
			e := g.registry.buffer(ex.buffer)
			if !e.state.NeedsTransitionTo(ex.bufSt) {
				e.state.Stage |= ex.bufSt.Stage
				e.state.Access |= ex.bufSt.Access
				continue
			}
			plan.final.Buffers = append(plan.final.Buffers, BufferBarrier{
				Buffer:   ex.buffer,
				Physical: e.physical,
				Src:      e.state,
				Dst:      ex.bufSt,
			})
			e.state = ex.bufSt
		}
	}

	log.Debug("framegraph: compiled",
		"passes", len(plan.passes),
		"edges", len(dag.Edges()))
	return plan, nil
}
