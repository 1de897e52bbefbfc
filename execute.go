// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"

	"github.com/gogpu/framegraph/slotpool"
)

// CommandRecorder receives the compiled schedule in execution order. The
// backend/native package provides a HAL-backed recorder; tests provide
// in-memory ones.
//
// Calls arrive strictly sequenced: a Transition for each non-empty batch,
// then BeginPass, the pass's RecordFunc, EndPass, and after the last pass
// a final Transition for exported resources.
type CommandRecorder interface {
	// Transition issues a batch of barriers.
	Transition(batch BarrierBatch) error

	// BeginPass opens a labeled scope for one pass's commands.
	BeginPass(name string) error

	// EndPass closes the scope opened by BeginPass.
	EndPass() error
}

// PassContext is handed to each pass's RecordFunc. It resolves the pass's
// virtual handles to the physical resources chosen for this frame and
// exposes the recorder for command emission.
type PassContext struct {
	plan *Plan
	pass *compiledPass
	rec  CommandRecorder
}

// Name returns the executing pass's name.
func (c *PassContext) Name() string { return c.pass.name }

// Recorder returns the frame's command recorder.
func (c *PassContext) Recorder() CommandRecorder { return c.rec }

// Image resolves a virtual image handle to its physical backing. Returns
// the zero Handle for handles never registered with the graph.
func (c *PassContext) Image(h ImageHandle) slotpool.Handle {
	e := c.plan.registry.image(h)
	if e == nil {
		return slotpool.Handle{}
	}
	return e.physical
}

// Buffer resolves a virtual buffer handle to its physical backing.
func (c *PassContext) Buffer(h BufferHandle) slotpool.Handle {
	e := c.plan.registry.buffer(h)
	if e == nil {
		return slotpool.Handle{}
	}
	return e.physical
}

// ImageResource looks the resolved backing up in the plan's pool. Returns
// nil when the plan has no pool, or when the backing has since been
// destroyed and its slot reused.
func (c *PassContext) ImageResource(h ImageHandle) slotpool.Resource {
	if c.plan.pool == nil {
		return nil
	}
	r, ok := c.plan.pool.Get(c.Image(h))
	if !ok {
		return nil
	}
	return r
}

// BufferResource looks the resolved buffer backing up in the plan's pool.
func (c *PassContext) BufferResource(h BufferHandle) slotpool.Resource {
	if c.plan.pool == nil {
		return nil
	}
	r, ok := c.plan.pool.Get(c.Buffer(h))
	if !ok {
		return nil
	}
	return r
}

// Execute replays the plan against a recorder: for each pass in sorted
// order, the preceding barrier batch, then the pass's recorded commands,
// then after the last pass the trailing export barriers. The first error
// aborts execution.
func (p *Plan) Execute(rec CommandRecorder) error {
	if rec == nil {
		return ErrNilRecorder
	}
	log := Logger()

	for i := range p.passes {
		cp := &p.passes[i]
		if !cp.barriers.Empty() {
			if err := rec.Transition(cp.barriers); err != nil {
				return fmt.Errorf("framegraph: barriers before pass %q: %w", cp.name, err)
			}
		}
		if err := rec.BeginPass(cp.name); err != nil {
			return fmt.Errorf("framegraph: begin pass %q: %w", cp.name, err)
		}
		if cp.node.record != nil {
			ctx := &PassContext{plan: p, pass: cp, rec: rec}
			if err := cp.node.record(ctx); err != nil {
				return fmt.Errorf("framegraph: pass %q: %w", cp.name, err)
			}
		}
		if err := rec.EndPass(); err != nil {
			return fmt.Errorf("framegraph: end pass %q: %w", cp.name, err)
		}
	}

	if !p.final.Empty() {
		if err := rec.Transition(p.final); err != nil {
			return fmt.Errorf("framegraph: export barriers: %w", err)
		}
	}

	log.Debug("framegraph: executed", "passes", len(p.passes))
	return nil
}
