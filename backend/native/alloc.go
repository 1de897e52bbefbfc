// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/slotpool"
)

// Texture is a pooled HAL texture. Destroy releases it on the owning
// device; the pool calls it once the GPU is done with the frames that
// referenced it.
type Texture struct {
	device hal.Device
	tex    hal.Texture
	desc   framegraph.ImageDesc
}

// HAL returns the underlying texture for descriptor writes and copies.
func (t *Texture) HAL() hal.Texture { return t.tex }

// Desc returns the descriptor the texture was allocated from.
func (t *Texture) Desc() framegraph.ImageDesc { return t.desc }

// Destroy releases the texture.
func (t *Texture) Destroy() { t.device.DestroyTexture(t.tex) }

// Buffer is a pooled HAL buffer.
type Buffer struct {
	device hal.Device
	buf    hal.Buffer
	desc   framegraph.BufferDesc
}

// HAL returns the underlying buffer.
func (b *Buffer) HAL() hal.Buffer { return b.buf }

// Desc returns the descriptor the buffer was allocated from.
func (b *Buffer) Desc() framegraph.BufferDesc { return b.desc }

// Destroy releases the buffer.
func (b *Buffer) Destroy() { b.device.DestroyBuffer(b.buf) }

// Allocator implements framegraph.TransientAllocator on the backend's
// device. Every allocation is registered in the backend pool so graph
// code resolves it like any imported resource and teardown is uniform.
type Allocator struct {
	backend *Backend
}

// Allocator returns the backend's transient allocator.
func (b *Backend) Allocator() *Allocator {
	return &Allocator{backend: b}
}

// AllocateImage creates a texture for a transient image declaration.
func (a *Allocator) AllocateImage(name string, desc framegraph.ImageDesc) (slotpool.Handle, error) {
	b := a.backend
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label: name,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: desc.Depth,
		},
		MipLevelCount: desc.MipLevelCount,
		SampleCount:   desc.SampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return slotpool.Handle{}, fmt.Errorf("native: create transient texture %q: %w", name, err)
	}
	h := b.pool.Register(&Texture{device: b.device, tex: tex, desc: desc})
	framegraph.Logger().Debug("native: transient image",
		"name", name, "handle", h.String(),
		"width", desc.Width, "height", desc.Height)
	return h, nil
}

// AllocateBuffer creates a buffer for a transient buffer declaration.
func (a *Allocator) AllocateBuffer(name string, desc framegraph.BufferDesc) (slotpool.Handle, error) {
	b := a.backend
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: name,
		Size:  desc.Size,
		Usage: desc.Usage,
	})
	if err != nil {
		return slotpool.Handle{}, fmt.Errorf("native: create transient buffer %q: %w", name, err)
	}
	h := b.pool.Register(&Buffer{device: b.device, buf: buf, desc: desc})
	framegraph.Logger().Debug("native: transient buffer",
		"name", name, "handle", h.String(), "size", desc.Size)
	return h, nil
}
