// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph/slotpool"
)

// ImageDesc describes a transient image to allocate at compile time.
// Zero MipLevelCount, SampleCount, and Depth default to 1.
type ImageDesc struct {
	// Width is the image width in pixels.
	Width uint32

	// Height is the image height in pixels.
	Height uint32

	// Depth is the depth for 3D images, or the array layer count.
	Depth uint32

	// MipLevelCount is the number of mipmap levels.
	MipLevelCount uint32

	// SampleCount is the number of samples for multisampling.
	SampleCount uint32

	// Format is the pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the image will be used.
	Usage gputypes.TextureUsage
}

// BufferDesc describes a transient buffer to allocate at compile time.
type BufferDesc struct {
	// Size is the buffer size in bytes.
	Size uint64

	// Usage specifies how the buffer will be used.
	Usage gputypes.BufferUsage
}

// imageEntry is one image in a build's resource table.
//
// An imported entry wraps an externally owned physical resource whose
// handle is fixed at registration. A transient entry carries only a
// descriptor; its physical backing is decided at compile time, which is
// what permits pooling and aliasing across frames.
type imageEntry struct {
	name      string
	transient bool
	desc      ImageDesc       // transient only
	physical  slotpool.Handle // imported: fixed; transient: set by Compile
	initial   ImageState      // state the image is in when the frame starts
	state     ImageState      // tracked state during compilation
}

// bufferEntry is one buffer in a build's resource table.
type bufferEntry struct {
	name      string
	transient bool
	desc      BufferDesc
	physical  slotpool.Handle
	initial   BufferState
	state     BufferState
}

// Registry is the per-build table of virtual resources. It is created
// fresh for every frame's graph and discarded after compile and execute;
// it performs no GPU calls and has no side effects beyond growing its
// tables.
type Registry struct {
	images  []imageEntry
	buffers []bufferEntry
}

// ImportImage records an externally owned image along with the state it is
// known to be in at the start of the frame. Registration always succeeds.
func (r *Registry) ImportImage(name string, physical slotpool.Handle, initial ImageState) ImageHandle {
	h := ImageHandle(len(r.images))
	r.images = append(r.images, imageEntry{
		name:     name,
		physical: physical,
		initial:  initial,
		state:    initial,
	})
	return h
}

// CreateImage records a transient image. The physical backing is assigned
// at compile time; the image starts each frame with undefined contents.
func (r *Registry) CreateImage(name string, desc ImageDesc) ImageHandle {
	if desc.Depth == 0 {
		desc.Depth = 1
	}
	if desc.MipLevelCount == 0 {
		desc.MipLevelCount = 1
	}
	if desc.SampleCount == 0 {
		desc.SampleCount = 1
	}
	h := ImageHandle(len(r.images))
	r.images = append(r.images, imageEntry{
		name:      name,
		transient: true,
		desc:      desc,
		initial:   ImageStateUndefined,
		state:     ImageStateUndefined,
	})
	return h
}

// ImportBuffer records an externally owned buffer and its known state.
func (r *Registry) ImportBuffer(name string, physical slotpool.Handle, initial BufferState) BufferHandle {
	h := BufferHandle(len(r.buffers))
	r.buffers = append(r.buffers, bufferEntry{
		name:     name,
		physical: physical,
		initial:  initial,
		state:    initial,
	})
	return h
}

// CreateBuffer records a transient buffer allocated at compile time.
func (r *Registry) CreateBuffer(name string, desc BufferDesc) BufferHandle {
	h := BufferHandle(len(r.buffers))
	r.buffers = append(r.buffers, bufferEntry{
		name:      name,
		transient: true,
		desc:      desc,
		initial:   BufferStateUndefined,
		state:     BufferStateUndefined,
	})
	return h
}

// image returns the entry for h, or nil if h is out of range for this
// build. Out-of-range lookups guard against handles leaked from a prior
// frame's graph.
func (r *Registry) image(h ImageHandle) *imageEntry {
	if int(h) >= len(r.images) {
		return nil
	}
	return &r.images[h]
}

// buffer returns the entry for h, or nil if h is out of range.
func (r *Registry) buffer(h BufferHandle) *bufferEntry {
	if int(h) >= len(r.buffers) {
		return nil
	}
	return &r.buffers[h]
}

// ImageName returns the registered name of an image, or "" if the handle
// is not from this build.
func (r *Registry) ImageName(h ImageHandle) (string, bool) {
	e := r.image(h)
	if e == nil {
		return "", false
	}
	return e.name, true
}

// BufferName returns the registered name of a buffer, or "" if the handle
// is not from this build.
func (r *Registry) BufferName(h BufferHandle) (string, bool) {
	e := r.buffer(h)
	if e == nil {
		return "", false
	}
	return e.name, true
}

// ImageCount returns the number of registered images.
func (r *Registry) ImageCount() int { return len(r.images) }

// BufferCount returns the number of registered buffers.
func (r *Registry) BufferCount() int { return len(r.buffers) }
