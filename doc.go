// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package framegraph provides a per-frame render graph for GPU renderers.
//
// # Overview
//
// A frame graph declares, once per frame, which resources each rendering
// pass reads and writes. From those declarations the graph computes an
// execution order, synthesizes the synchronization barriers between
// incompatible resource uses, and resolves virtual resource handles to
// physical GPU resources. Passes never issue barriers themselves and never
// hold references to physical resources across frames.
//
// # Quick Start
//
//	g := framegraph.NewGraph(framegraph.GraphConfig{})
//
//	backbuffer := g.ImportImage("backbuffer", physical, framegraph.ImageStateColorAttachment)
//	hdr := g.CreateImage("hdr", framegraph.ImageDesc{Width: 1920, Height: 1080,
//	    Format: gputypes.TextureFormatRGBA8Unorm})
//
//	err := g.AddPass("tonemap",
//	    func(b *framegraph.PassBuilder) {
//	        b.ReadImage(hdr, framegraph.ImageStateShaderReadFragment)
//	        b.WriteImage(backbuffer, framegraph.ImageStateColorAttachment)
//	    },
//	    func(ctx *framegraph.PassContext) error {
//	        // record draw commands using ctx.Image(hdr), ctx.Image(backbuffer)
//	        return nil
//	    })
//
//	g.ExportImage(backbuffer, framegraph.ImageStatePresent)
//
//	plan, err := g.Compile()
//	err = plan.Execute(recorder)
//
// # Architecture
//
// The module is organized into:
//   - framegraph (this package): per-build registry, dependency analysis,
//     barrier compilation, and plan execution
//   - slotpool: generation-checked arena for physical resources with
//     frame-deferred destruction
//   - bindless: dense per-frame shader-visible descriptor index table
//   - frame: frame counter bounding the number of frames in flight
//   - backend/native: gogpu/wgpu HAL integration (recording, submission,
//     submission-index completion tracking)
//
// # Lifetime Model
//
// A Graph and everything registered in it live for exactly one frame's
// build; construct a fresh Graph each frame. Physical resources live in a
// slotpool.Pool across frames and are destroyed only through the pool's
// deferred-destruction path, gated on GPU-confirmed frame completion.
//
// # Concurrency
//
// Graph construction, compilation, and execution are single-threaded per
// frame. The blocking operations are frame.Counter's BeginFrame, which
// waits until the GPU has confirmed completion of the frame InFlight
// frames ago, and the backend's WaitFrame polling.
package framegraph
