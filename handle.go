// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "math"

// invalidHandle marks a handle that refers to nothing.
const invalidHandle = math.MaxUint32

// ImageHandle is a virtual reference to an image registered in one graph
// build. It is an opaque index: valid only for the Graph that issued it,
// carrying no ownership. The zero value refers to the first registered
// image; use InvalidImage for "no image".
type ImageHandle uint32

// InvalidImage is an ImageHandle that refers to no image.
const InvalidImage ImageHandle = invalidHandle

// IsValid reports whether the handle refers to an image.
func (h ImageHandle) IsValid() bool { return h != InvalidImage }

// BufferHandle is a virtual reference to a buffer registered in one graph
// build, with the same validity rules as ImageHandle.
type BufferHandle uint32

// InvalidBuffer is a BufferHandle that refers to no buffer.
const InvalidBuffer BufferHandle = invalidHandle

// IsValid reports whether the handle refers to a buffer.
func (h BufferHandle) IsValid() bool { return h != InvalidBuffer }
