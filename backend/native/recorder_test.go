// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"errors"
	"testing"

	"github.com/gogpu/framegraph"
)

func TestRecorder_PassScopeOrder(t *testing.T) {
	r := &Recorder{label: "frame-1"}

	if err := r.BeginPass("shadow"); err != nil {
		t.Fatalf("BeginPass() error = %v", err)
	}
	if err := r.BeginPass("lighting"); !errors.Is(err, ErrPassOpen) {
		t.Errorf("nested BeginPass() error = %v, want ErrPassOpen", err)
	}
	if err := r.EndPass(); err != nil {
		t.Fatalf("EndPass() error = %v", err)
	}
	if err := r.EndPass(); !errors.Is(err, ErrPassOpen) {
		t.Errorf("unmatched EndPass() error = %v, want ErrPassOpen", err)
	}
}

func TestRecorder_TransitionRejectsRedundantBarrier(t *testing.T) {
	r := &Recorder{label: "frame-1"}
	batch := framegraph.BarrierBatch{
		Images: []framegraph.ImageBarrier{{
			Src: framegraph.ImageStateShaderReadFragment,
			Dst: framegraph.ImageStateShaderReadFragment,
		}},
	}
	if err := r.Transition(batch); err == nil {
		t.Error("Transition() accepted a barrier with identical states")
	}
}

func TestRecorder_TransitionValidBatch(t *testing.T) {
	r := &Recorder{label: "frame-1"}
	batch := framegraph.BarrierBatch{
		Images: []framegraph.ImageBarrier{{
			Src: framegraph.ImageStateColorAttachment,
			Dst: framegraph.ImageStateShaderReadFragment,
		}},
		Buffers: []framegraph.BufferBarrier{{
			Src: framegraph.BufferStateTransferDst,
			Dst: framegraph.BufferStateVertex,
		}},
	}
	if err := r.Transition(batch); err != nil {
		t.Errorf("Transition() error = %v", err)
	}
}

func TestRecorder_ComputePassOutsideGraphPass(t *testing.T) {
	r := &Recorder{label: "frame-1"}
	if _, err := r.BeginComputePass(); !errors.Is(err, ErrPassOpen) {
		t.Errorf("BeginComputePass() error = %v, want ErrPassOpen", err)
	}
}
