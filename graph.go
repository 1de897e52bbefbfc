// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"fmt"

	"github.com/gogpu/framegraph/slotpool"
)

// GraphConfig configures a per-frame graph build. The zero value is valid
// for graphs that import all of their resources.
type GraphConfig struct {
	// Allocator provides physical backing for transient resources.
	// Required only when the build declares transients.
	Allocator TransientAllocator

	// Pool resolves physical handles back to live resources during
	// recording. Optional; PassContext resource lookups return nil
	// without one.
	Pool *slotpool.Pool
}

// Graph accumulates one frame's passes and resource declarations, then
// compiles them into an immutable Plan. A Graph is built, compiled, and
// discarded every frame; it is not safe for concurrent use.
type Graph struct {
	registry *Registry
	passes   []*passNode
	exports  []exportDecl
	alloc    TransientAllocator
	pool     *slotpool.Pool
	compiled bool
}

// NewGraph returns an empty graph build.
func NewGraph(cfg GraphConfig) *Graph {
	return &Graph{
		registry: &Registry{},
		alloc:    cfg.Allocator,
		pool:     cfg.Pool,
	}
}

// Registry returns the build's resource table.
func (g *Graph) Registry() *Registry { return g.registry }

// ImportImage registers an externally owned image and the state it is in
// when the frame starts.
func (g *Graph) ImportImage(name string, physical slotpool.Handle, initial ImageState) ImageHandle {
	return g.registry.ImportImage(name, physical, initial)
}

// CreateImage registers a transient image allocated at compile time.
func (g *Graph) CreateImage(name string, desc ImageDesc) ImageHandle {
	return g.registry.CreateImage(name, desc)
}

// ImportBuffer registers an externally owned buffer and its known state.
func (g *Graph) ImportBuffer(name string, physical slotpool.Handle, initial BufferState) BufferHandle {
	return g.registry.ImportBuffer(name, physical, initial)
}

// CreateBuffer registers a transient buffer allocated at compile time.
func (g *Graph) CreateBuffer(name string, desc BufferDesc) BufferHandle {
	return g.registry.CreateBuffer(name, desc)
}

// AddPass registers a pass. The setup function runs immediately against a
// builder; its declarations determine the pass's dependencies. The record
// function runs later, during Execute, and may be nil for passes that only
// exist to sequence state transitions.
//
// Passes execute in an order consistent with their declared dependencies;
// among unordered passes, registration order breaks ties.
func (g *Graph) AddPass(name string, setup SetupFunc, record RecordFunc) error {
	if g.compiled {
		return fmt.Errorf("%w: pass %q", ErrGraphCompiled, name)
	}
	node := &passNode{name: name, record: record}
	b := &PassBuilder{graph: g, node: node}
	if setup != nil {
		setup(b)
	}
	b.closed = true
	if b.err != nil {
		return b.err
	}
	g.passes = append(g.passes, node)
	return nil
}

// ExportImage declares the state an image must be left in after the last
// pass that touches it, typically a present or sampled layout consumed
// outside this graph. The transition compiles into the plan's trailing
// barrier batch.
func (g *Graph) ExportImage(h ImageHandle, final ImageState) error {
	if g.compiled {
		return ErrGraphCompiled
	}
	if g.registry.image(h) == nil {
		return fmt.Errorf("%w: export of image %d", ErrUnknownHandle, h)
	}
	g.exports = append(g.exports, exportDecl{image: h, isImg: true, imgSt: final})
	return nil
}

// ExportBuffer declares the state a buffer must be left in after the last
// pass that touches it.
func (g *Graph) ExportBuffer(h BufferHandle, final BufferState) error {
	if g.compiled {
		return ErrGraphCompiled
	}
	if g.registry.buffer(h) == nil {
		return fmt.Errorf("%w: export of buffer %d", ErrUnknownHandle, h)
	}
	if !validBufferState(final) {
		return fmt.Errorf("%w: attachment access on exported buffer", ErrInvalidState)
	}
	g.exports = append(g.exports, exportDecl{buffer: h, bufSt: final})
	return nil
}

// PassCount returns the number of registered passes.
func (g *Graph) PassCount() int { return len(g.passes) }

// Compile analyzes dependencies, sorts the passes, places transient
// resources, and synthesizes barriers. The graph accepts no further
// registration afterward; compiling twice returns ErrGraphCompiled.
func (g *Graph) Compile() (*Plan, error) {
	if g.compiled {
		return nil, ErrGraphCompiled
	}
	plan, err := compile(g)
	if err != nil {
		return nil, err
	}
	g.compiled = true
	return plan, nil
}
