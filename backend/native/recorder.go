// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/framegraph"
)

// ErrPassOpen is returned when pass scopes are opened or closed out of
// order.
var ErrPassOpen = errors.New("native: pass scope mismatch")

// Recorder implements framegraph.CommandRecorder on a HAL command
// encoder.
//
// The wgpu HAL performs its own hazard tracking when commands execute, so
// Transition validates and logs the compiled barriers rather than encoding
// explicit ones; an explicit-synchronization backend would translate each
// batch into pipeline barriers here.
type Recorder struct {
	backend *Backend
	encoder hal.CommandEncoder
	label   string
	open    string
	inPass  bool
}

// Encoder exposes the underlying command encoder so pass record functions
// can encode device work.
func (r *Recorder) Encoder() hal.CommandEncoder { return r.encoder }

// Transition applies a barrier batch.
func (r *Recorder) Transition(batch framegraph.BarrierBatch) error {
	log := framegraph.Logger()
	for _, ib := range batch.Images {
		if ib.Src == ib.Dst {
			return fmt.Errorf("native: redundant image barrier for %s", ib.Physical)
		}
		log.Debug("native: image transition",
			"image", ib.Physical.String(),
			"src", ib.Src.Layout.String(),
			"dst", ib.Dst.Layout.String())
	}
	for _, bb := range batch.Buffers {
		log.Debug("native: buffer transition", "buffer", bb.Physical.String())
	}
	return nil
}

// BeginPass opens a labeled compute scope for one pass.
func (r *Recorder) BeginPass(name string) error {
	if r.inPass {
		return fmt.Errorf("%w: %q begun inside %q", ErrPassOpen, name, r.open)
	}
	r.open = name
	r.inPass = true
	framegraph.Logger().Debug("native: begin pass", "pass", name, "frame", r.label)
	return nil
}

// EndPass closes the scope opened by BeginPass.
func (r *Recorder) EndPass() error {
	if !r.inPass {
		return fmt.Errorf("%w: EndPass without BeginPass", ErrPassOpen)
	}
	r.inPass = false
	r.open = ""
	return nil
}

// BeginComputePass opens a HAL compute pass scoped to the current graph
// pass. The caller must call End on the returned pass before the record
// function returns.
func (r *Recorder) BeginComputePass() (hal.ComputePassEncoder, error) {
	if !r.inPass {
		return nil, fmt.Errorf("%w: compute pass outside a graph pass", ErrPassOpen)
	}
	return r.encoder.BeginComputePass(&hal.ComputePassDescriptor{
		Label: r.open,
	}), nil
}
