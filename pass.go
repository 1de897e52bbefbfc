// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "fmt"

// SetupFunc declares a pass's resource accesses through the builder.
// It runs once, during AddPass; declaration errors surface as the AddPass
// return value.
type SetupFunc func(*PassBuilder)

// RecordFunc records a pass's GPU commands. It runs during Execute with a
// context that resolves the pass's virtual handles to the physical
// resources chosen for this frame.
type RecordFunc func(*PassContext) error

// imageAccess is one declared (image, required state) pair.
type imageAccess struct {
	handle ImageHandle
	state  ImageState
}

// bufferAccess is one declared (buffer, required state) pair.
type bufferAccess struct {
	handle BufferHandle
	state  BufferState
}

// passNode is a registered pass. Immutable after AddPass returns.
type passNode struct {
	name         string
	imageReads   []imageAccess
	imageWrites  []imageAccess
	bufferReads  []bufferAccess
	bufferWrites []bufferAccess
	record       RecordFunc
}

// PassBuilder collects a pass's resource declarations during setup.
//
// Builder methods validate as they go; the first failure is kept and
// reported by AddPass, and subsequent declarations on the same builder are
// ignored. The builder must not be retained after the setup function
// returns.
type PassBuilder struct {
	graph  *Graph
	node   *passNode
	err    error
	closed bool
}

// fail records the first declaration error.
func (b *PassBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// ReadImage declares that the pass reads an image in the given state.
// Returns the handle unchanged, for chaining into later declarations.
func (b *PassBuilder) ReadImage(h ImageHandle, state ImageState) ImageHandle {
	if !b.check() {
		return h
	}
	if b.graph.registry.image(h) == nil {
		b.fail(fmt.Errorf("%w: image %d in pass %q", ErrUnknownHandle, h, b.node.name))
		return h
	}
	b.node.imageReads = append(b.node.imageReads, imageAccess{handle: h, state: state})
	return h
}

// WriteImage declares that the pass writes an image in the given state.
func (b *PassBuilder) WriteImage(h ImageHandle, state ImageState) ImageHandle {
	if !b.check() {
		return h
	}
	if b.graph.registry.image(h) == nil {
		b.fail(fmt.Errorf("%w: image %d in pass %q", ErrUnknownHandle, h, b.node.name))
		return h
	}
	if state.ReadOnly() {
		b.fail(fmt.Errorf("%w: write declaration with read-only state %s in pass %q",
			ErrInvalidState, state, b.node.name))
		return h
	}
	b.node.imageWrites = append(b.node.imageWrites, imageAccess{handle: h, state: state})
	return h
}

// ReadWriteImage declares that the pass both reads and writes an image in
// the same state, the common shape for accumulation passes.
func (b *PassBuilder) ReadWriteImage(h ImageHandle, state ImageState) ImageHandle {
	b.ReadImage(h, state)
	return b.WriteImage(h, state)
}

// ReadBuffer declares that the pass reads a buffer in the given state.
func (b *PassBuilder) ReadBuffer(h BufferHandle, state BufferState) BufferHandle {
	if !b.check() {
		return h
	}
	if b.graph.registry.buffer(h) == nil {
		b.fail(fmt.Errorf("%w: buffer %d in pass %q", ErrUnknownHandle, h, b.node.name))
		return h
	}
	if !validBufferState(state) {
		b.fail(fmt.Errorf("%w: attachment access on buffer in pass %q",
			ErrInvalidState, b.node.name))
		return h
	}
	b.node.bufferReads = append(b.node.bufferReads, bufferAccess{handle: h, state: state})
	return h
}

// WriteBuffer declares that the pass writes a buffer in the given state.
func (b *PassBuilder) WriteBuffer(h BufferHandle, state BufferState) BufferHandle {
	if !b.check() {
		return h
	}
	if b.graph.registry.buffer(h) == nil {
		b.fail(fmt.Errorf("%w: buffer %d in pass %q", ErrUnknownHandle, h, b.node.name))
		return h
	}
	if !validBufferState(state) {
		b.fail(fmt.Errorf("%w: attachment access on buffer in pass %q",
			ErrInvalidState, b.node.name))
		return h
	}
	if state.ReadOnly() {
		b.fail(fmt.Errorf("%w: write declaration with read-only state in pass %q",
			ErrInvalidState, b.node.name))
		return h
	}
	b.node.bufferWrites = append(b.node.bufferWrites, bufferAccess{handle: h, state: state})
	return h
}

// CreateImage declares a transient image scoped to this frame and returns
// its handle. The image is allocated at compile time.
func (b *PassBuilder) CreateImage(name string, desc ImageDesc) ImageHandle {
	if !b.check() {
		return InvalidImage
	}
	return b.graph.registry.CreateImage(name, desc)
}

// CreateBuffer declares a transient buffer scoped to this frame.
func (b *PassBuilder) CreateBuffer(name string, desc BufferDesc) BufferHandle {
	if !b.check() {
		return InvalidBuffer
	}
	return b.graph.registry.CreateBuffer(name, desc)
}

// check reports whether the builder still accepts declarations.
func (b *PassBuilder) check() bool {
	if b.closed {
		b.fail(fmt.Errorf("%w: pass %q", ErrPassClosed, b.node.name))
		return false
	}
	return b.err == nil
}
