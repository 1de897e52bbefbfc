// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "fmt"

// PipelineStage identifies where in the GPU pipeline a resource is used.
// Stages can be combined with bitwise OR.
type PipelineStage uint32

// StageNone means no pipeline stage.
const StageNone PipelineStage = 0

const (
	// StageTopOfPipe is the earliest synchronization point.
	StageTopOfPipe PipelineStage = 1 << iota

	// StageDrawIndirect covers indirect command consumption.
	StageDrawIndirect

	// StageVertexInput covers vertex and index buffer reads.
	StageVertexInput

	// StageVertexShader covers vertex shader execution.
	StageVertexShader

	// StageFragmentShader covers fragment shader execution.
	StageFragmentShader

	// StageEarlyFragmentTests covers depth/stencil tests before shading.
	StageEarlyFragmentTests

	// StageLateFragmentTests covers depth/stencil tests after shading.
	StageLateFragmentTests

	// StageColorAttachmentOutput covers color attachment writes and blending.
	StageColorAttachmentOutput

	// StageComputeShader covers compute shader execution.
	StageComputeShader

	// StageRayTracingShader covers ray tracing shader execution.
	StageRayTracingShader

	// StageTransfer covers copy, blit, and clear operations.
	StageTransfer

	// StageBottomOfPipe is the latest synchronization point.
	StageBottomOfPipe

	// StageAllCommands covers every stage.
	StageAllCommands
)

// Access describes how a pipeline stage touches a resource's memory.
// Accesses can be combined with bitwise OR.
type Access uint32

// AccessNone means no memory access.
const AccessNone Access = 0

const (
	// AccessIndirectRead is an indirect command read.
	AccessIndirectRead Access = 1 << iota

	// AccessIndexRead is an index buffer read.
	AccessIndexRead

	// AccessVertexAttributeRead is a vertex attribute read.
	AccessVertexAttributeRead

	// AccessUniformRead is a uniform buffer read.
	AccessUniformRead

	// AccessShaderSampledRead is a sampled image read.
	AccessShaderSampledRead

	// AccessShaderStorageRead is a storage buffer/image read.
	AccessShaderStorageRead

	// AccessShaderStorageWrite is a storage buffer/image write.
	AccessShaderStorageWrite

	// AccessColorAttachmentRead is a color attachment read (blending).
	AccessColorAttachmentRead

	// AccessColorAttachmentWrite is a color attachment write.
	AccessColorAttachmentWrite

	// AccessDepthStencilRead is a depth/stencil attachment read.
	AccessDepthStencilRead

	// AccessDepthStencilWrite is a depth/stencil attachment write.
	AccessDepthStencilWrite

	// AccessTransferRead is a copy source read.
	AccessTransferRead

	// AccessTransferWrite is a copy destination write.
	AccessTransferWrite

	// AccessMemoryRead is a generic memory read.
	AccessMemoryRead

	// AccessMemoryWrite is a generic memory write.
	AccessMemoryWrite
)

// writeAccessMask is the set of accesses that modify memory.
const writeAccessMask = AccessShaderStorageWrite |
	AccessColorAttachmentWrite |
	AccessDepthStencilWrite |
	AccessTransferWrite |
	AccessMemoryWrite

// attachmentAccessMask is the set of accesses only valid on images.
const attachmentAccessMask = AccessColorAttachmentRead |
	AccessColorAttachmentWrite |
	AccessDepthStencilRead |
	AccessDepthStencilWrite

// IsWrite reports whether the access modifies memory.
func (a Access) IsWrite() bool { return a&writeAccessMask != 0 }

// ImageLayout is the memory layout an image must be in for a given use.
type ImageLayout uint8

const (
	// LayoutUndefined means the image contents are unknown or irrelevant.
	LayoutUndefined ImageLayout = iota

	// LayoutGeneral is usable by any operation, at a performance cost.
	LayoutGeneral

	// LayoutColorAttachment is optimal for color attachment use.
	LayoutColorAttachment

	// LayoutDepthStencilAttachment is optimal for depth/stencil use.
	LayoutDepthStencilAttachment

	// LayoutShaderReadOnly is optimal for sampled reads.
	LayoutShaderReadOnly

	// LayoutTransferSrc is optimal as a copy source.
	LayoutTransferSrc

	// LayoutTransferDst is optimal as a copy destination.
	LayoutTransferDst

	// LayoutPresent is required for presentation to a surface.
	LayoutPresent
)

// String returns a human-readable layout name.
func (l ImageLayout) String() string {
	switch l {
	case LayoutUndefined:
		return "Undefined"
	case LayoutGeneral:
		return "General"
	case LayoutColorAttachment:
		return "ColorAttachment"
	case LayoutDepthStencilAttachment:
		return "DepthStencilAttachment"
	case LayoutShaderReadOnly:
		return "ShaderReadOnly"
	case LayoutTransferSrc:
		return "TransferSrc"
	case LayoutTransferDst:
		return "TransferDst"
	case LayoutPresent:
		return "Present"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(l))
	}
}

// ImageState describes how a pass uses an image: the pipeline stage, the
// access mode, and the layout the image must be in. The compiler emits a
// barrier whenever consecutive uses of an image need a transition.
type ImageState struct {
	Stage  PipelineStage
	Access Access
	Layout ImageLayout
}

// Predefined image states covering the common pass usages.
var (
	// ImageStateUndefined is the initial state of a transient image.
	ImageStateUndefined = ImageState{StageTopOfPipe, AccessNone, LayoutUndefined}

	// ImageStateGeneral permits any access, at a performance cost.
	ImageStateGeneral = ImageState{StageAllCommands, AccessMemoryRead | AccessMemoryWrite, LayoutGeneral}

	// ImageStateColorAttachment is a color attachment write.
	ImageStateColorAttachment = ImageState{StageColorAttachmentOutput, AccessColorAttachmentWrite, LayoutColorAttachment}

	// ImageStateColorAttachmentBlend is a color attachment read-write (blending).
	ImageStateColorAttachmentBlend = ImageState{StageColorAttachmentOutput, AccessColorAttachmentRead | AccessColorAttachmentWrite, LayoutColorAttachment}

	// ImageStateDepthAttachment is a depth/stencil attachment write.
	ImageStateDepthAttachment = ImageState{StageEarlyFragmentTests | StageLateFragmentTests, AccessDepthStencilWrite, LayoutDepthStencilAttachment}

	// ImageStateDepthAttachmentRead is a read-only depth/stencil test.
	ImageStateDepthAttachmentRead = ImageState{StageEarlyFragmentTests | StageLateFragmentTests, AccessDepthStencilRead, LayoutDepthStencilAttachment}

	// ImageStateShaderReadFragment is a sampled read in a fragment shader.
	ImageStateShaderReadFragment = ImageState{StageFragmentShader, AccessShaderSampledRead, LayoutShaderReadOnly}

	// ImageStateShaderReadCompute is a sampled read in a compute shader.
	ImageStateShaderReadCompute = ImageState{StageComputeShader, AccessShaderSampledRead, LayoutShaderReadOnly}

	// ImageStateShaderReadRayTracing is a sampled read in a ray tracing shader.
	ImageStateShaderReadRayTracing = ImageState{StageRayTracingShader, AccessShaderSampledRead, LayoutShaderReadOnly}

	// ImageStateStorageWriteCompute is a storage image write in a compute shader.
	ImageStateStorageWriteCompute = ImageState{StageComputeShader, AccessShaderStorageWrite, LayoutGeneral}

	// ImageStateStorageReadWriteCompute is a storage image read-write in a compute shader.
	ImageStateStorageReadWriteCompute = ImageState{StageComputeShader, AccessShaderStorageRead | AccessShaderStorageWrite, LayoutGeneral}

	// ImageStateStorageWriteRayTracing is a storage image write in a ray tracing shader.
	ImageStateStorageWriteRayTracing = ImageState{StageRayTracingShader, AccessShaderStorageWrite, LayoutGeneral}

	// ImageStateTransferSrc is a copy source.
	ImageStateTransferSrc = ImageState{StageTransfer, AccessTransferRead, LayoutTransferSrc}

	// ImageStateTransferDst is a copy destination.
	ImageStateTransferDst = ImageState{StageTransfer, AccessTransferWrite, LayoutTransferDst}

	// ImageStatePresent is ready for presentation.
	ImageStatePresent = ImageState{StageBottomOfPipe, AccessNone, LayoutPresent}
)

// IsWrite reports whether the state modifies the image.
func (s ImageState) IsWrite() bool { return s.Access.IsWrite() }

// ReadOnly reports whether the state only reads the image.
func (s ImageState) ReadOnly() bool { return !s.IsWrite() }

// NeedsTransitionTo reports whether moving an image from s to dst requires
// a barrier. A layout change always does, and so does any change of use
// that involves a write on either side. Two read-only uses in the same
// layout are compatible, and a use identical to the current state needs
// nothing.
func (s ImageState) NeedsTransitionTo(dst ImageState) bool {
	if s == dst {
		return false
	}
	if s.Layout != dst.Layout {
		return true
	}
	return s.IsWrite() || dst.IsWrite()
}

// SrcAccess returns the access mask suitable for the source side of a
// barrier: read accesses are dropped, since only writes need to be made
// available to the destination.
func (s ImageState) SrcAccess() Access {
	return s.Access & writeAccessMask
}

// String returns a compact description for diagnostics.
func (s ImageState) String() string {
	return fmt.Sprintf("ImageState(stage=0x%x access=0x%x layout=%s)",
		uint32(s.Stage), uint32(s.Access), s.Layout)
}

// BufferState describes how a pass uses a buffer: the pipeline stage and
// the access mode. Buffers have no layout.
type BufferState struct {
	Stage  PipelineStage
	Access Access
}

// Predefined buffer states covering the common pass usages.
var (
	// BufferStateUndefined is the initial state of a transient buffer.
	BufferStateUndefined = BufferState{StageTopOfPipe, AccessNone}

	// BufferStateVertex is a vertex buffer read.
	BufferStateVertex = BufferState{StageVertexInput, AccessVertexAttributeRead}

	// BufferStateIndex is an index buffer read.
	BufferStateIndex = BufferState{StageVertexInput, AccessIndexRead}

	// BufferStateUniformVertex is a uniform read in a vertex shader.
	BufferStateUniformVertex = BufferState{StageVertexShader, AccessUniformRead}

	// BufferStateUniformFragment is a uniform read in a fragment shader.
	BufferStateUniformFragment = BufferState{StageFragmentShader, AccessUniformRead}

	// BufferStateUniformCompute is a uniform read in a compute shader.
	BufferStateUniformCompute = BufferState{StageComputeShader, AccessUniformRead}

	// BufferStateStorageReadCompute is a storage read in a compute shader.
	BufferStateStorageReadCompute = BufferState{StageComputeShader, AccessShaderStorageRead}

	// BufferStateStorageReadWriteCompute is a storage read-write in a compute shader.
	BufferStateStorageReadWriteCompute = BufferState{StageComputeShader, AccessShaderStorageRead | AccessShaderStorageWrite}

	// BufferStateIndirect is an indirect command read.
	BufferStateIndirect = BufferState{StageDrawIndirect, AccessIndirectRead}

	// BufferStateTransferSrc is a copy source.
	BufferStateTransferSrc = BufferState{StageTransfer, AccessTransferRead}

	// BufferStateTransferDst is a copy destination.
	BufferStateTransferDst = BufferState{StageTransfer, AccessTransferWrite}
)

// IsWrite reports whether the state modifies the buffer.
func (s BufferState) IsWrite() bool { return s.Access.IsWrite() }

// ReadOnly reports whether the state only reads the buffer.
func (s BufferState) ReadOnly() bool { return !s.IsWrite() }

// NeedsTransitionTo reports whether moving a buffer from s to dst requires
// a barrier. Two read-only uses are compatible; anything involving a write
// is not.
func (s BufferState) NeedsTransitionTo(dst BufferState) bool {
	if s == dst {
		return false
	}
	return s.IsWrite() || dst.IsWrite()
}

// SrcAccess returns the access mask for the source side of a barrier.
func (s BufferState) SrcAccess() Access {
	return s.Access & writeAccessMask
}

// validBufferState reports whether a state makes sense for a buffer.
// Attachment accesses and image layouts have no buffer equivalent.
func validBufferState(s BufferState) bool {
	return s.Access&attachmentAccessMask == 0
}
