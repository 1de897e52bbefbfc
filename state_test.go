// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "testing"

func TestImageState_NeedsTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		src  ImageState
		dst  ImageState
		want bool
	}{
		{
			name: "identical read states",
			src:  ImageStateShaderReadFragment,
			dst:  ImageStateShaderReadFragment,
			want: false,
		},
		{
			name: "identical write states",
			src:  ImageStateColorAttachment,
			dst:  ImageStateColorAttachment,
			want: false,
		},
		{
			name: "read to read same layout different stage",
			src:  ImageStateShaderReadFragment,
			dst:  ImageStateShaderReadCompute,
			want: false,
		},
		{
			name: "write to read",
			src:  ImageStateColorAttachment,
			dst:  ImageStateShaderReadFragment,
			want: true,
		},
		{
			name: "read to write",
			src:  ImageStateShaderReadCompute,
			dst:  ImageStateStorageWriteCompute,
			want: true,
		},
		{
			name: "undefined to write",
			src:  ImageStateUndefined,
			dst:  ImageStateColorAttachment,
			want: true,
		},
		{
			name: "storage read to storage write same layout",
			src:  ImageState{StageComputeShader, AccessShaderStorageRead, LayoutGeneral},
			dst:  ImageStateStorageWriteCompute,
			want: true,
		},
		{
			name: "layout change between reads",
			src:  ImageStateShaderReadFragment,
			dst:  ImageStateTransferSrc,
			want: true,
		},
		{
			name: "write to present",
			src:  ImageStateColorAttachment,
			dst:  ImageStatePresent,
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.src.NeedsTransitionTo(tt.dst); got != tt.want {
				t.Errorf("NeedsTransitionTo(%s -> %s) = %v, want %v",
					tt.src, tt.dst, got, tt.want)
			}
		})
	}
}

func TestBufferState_NeedsTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		src  BufferState
		dst  BufferState
		want bool
	}{
		{
			name: "identical read states",
			src:  BufferStateUniformCompute,
			dst:  BufferStateUniformCompute,
			want: false,
		},
		{
			name: "read to read different stage",
			src:  BufferStateUniformVertex,
			dst:  BufferStateUniformFragment,
			want: false,
		},
		{
			name: "write to read",
			src:  BufferStateStorageReadWriteCompute,
			dst:  BufferStateVertex,
			want: true,
		},
		{
			name: "read to write",
			src:  BufferStateStorageReadCompute,
			dst:  BufferStateTransferDst,
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.src.NeedsTransitionTo(tt.dst); got != tt.want {
				t.Errorf("NeedsTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImageState_WriteClassification(t *testing.T) {
	writes := []ImageState{
		ImageStateGeneral,
		ImageStateColorAttachment,
		ImageStateColorAttachmentBlend,
		ImageStateDepthAttachment,
		ImageStateStorageWriteCompute,
		ImageStateStorageReadWriteCompute,
		ImageStateStorageWriteRayTracing,
		ImageStateTransferDst,
	}
	for _, s := range writes {
		if !s.IsWrite() {
			t.Errorf("%s.IsWrite() = false, want true", s)
		}
	}

	reads := []ImageState{
		ImageStateUndefined,
		ImageStateDepthAttachmentRead,
		ImageStateShaderReadFragment,
		ImageStateShaderReadCompute,
		ImageStateShaderReadRayTracing,
		ImageStateTransferSrc,
		ImageStatePresent,
	}
	for _, s := range reads {
		if !s.ReadOnly() {
			t.Errorf("%s.ReadOnly() = false, want true", s)
		}
	}
}

func TestImageState_SrcAccess(t *testing.T) {
	// Only write accesses need making available; reads contribute nothing
	// to the source side of a barrier.
	if got := ImageStateColorAttachmentBlend.SrcAccess(); got != AccessColorAttachmentWrite {
		t.Errorf("SrcAccess() = %v, want AccessColorAttachmentWrite", got)
	}
	if got := ImageStateShaderReadFragment.SrcAccess(); got != AccessNone {
		t.Errorf("SrcAccess() of read-only state = %v, want AccessNone", got)
	}
}

func TestValidBufferState(t *testing.T) {
	if !validBufferState(BufferStateStorageReadWriteCompute) {
		t.Error("storage state rejected")
	}
	bad := BufferState{StageColorAttachmentOutput, AccessColorAttachmentWrite}
	if validBufferState(bad) {
		t.Error("attachment access on a buffer accepted")
	}
}

func TestImageLayout_String(t *testing.T) {
	tests := []struct {
		layout ImageLayout
		want   string
	}{
		{LayoutUndefined, "Undefined"},
		{LayoutColorAttachment, "ColorAttachment"},
		{LayoutPresent, "Present"},
	}
	for _, tt := range tests {
		if got := tt.layout.String(); got != tt.want {
			t.Errorf("ImageLayout(%d).String() = %q, want %q", tt.layout, got, tt.want)
		}
	}
}
