// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import "container/heap"

// DependencyEdge is a derived producer-before-consumer constraint between
// two passes, recording which resources induced it. Edges are never
// authored directly; analyze derives them from declared accesses.
type DependencyEdge struct {
	// Producer is the pass index that must execute first.
	Producer int

	// Consumer is the pass index that must execute after Producer.
	Consumer int

	// Images holds the image handles that induced the edge.
	Images []ImageHandle

	// Buffers holds the buffer handles that induced the edge.
	Buffers []BufferHandle
}

// DependencyGraph is the DAG of pass ordering constraints for one build.
type DependencyGraph struct {
	passCount int
	adjacency [][]int
	inDegrees []int
	edges     []DependencyEdge
}

// newDependencyGraph creates an empty graph over passCount passes.
func newDependencyGraph(passCount int) *DependencyGraph {
	return &DependencyGraph{
		passCount: passCount,
		adjacency: make([][]int, passCount),
		inDegrees: make([]int, passCount),
	}
}

// addEdge records producer-before-consumer. Duplicate adjacency is
// suppressed so in-degrees stay correct; the edge list still records every
// inducing resource for diagnostics.
func (g *DependencyGraph) addEdge(producer, consumer int, images []ImageHandle, buffers []BufferHandle) {
	duplicate := false
	for _, n := range g.adjacency[producer] {
		if n == consumer {
			duplicate = true
			break
		}
	}
	if !duplicate {
		g.adjacency[producer] = append(g.adjacency[producer], consumer)
		g.inDegrees[consumer]++
	}
	g.edges = append(g.edges, DependencyEdge{
		Producer: producer,
		Consumer: consumer,
		Images:   images,
		Buffers:  buffers,
	})
}

// PassCount returns the number of passes in the graph.
func (g *DependencyGraph) PassCount() int { return g.passCount }

// Edges returns every derived edge, including duplicates between the same
// pass pair induced by different resources.
func (g *DependencyGraph) Edges() []DependencyEdge { return g.edges }

// Successors returns the passes that directly depend on pass. The
// returned slice is shared; callers must not modify it.
func (g *DependencyGraph) Successors(pass int) []int {
	if pass < 0 || pass >= g.passCount {
		return nil
	}
	return g.adjacency[pass]
}

// Predecessors returns the passes that pass directly depends on.
func (g *DependencyGraph) Predecessors(pass int) []int {
	var preds []int
	for i, adj := range g.adjacency {
		for _, n := range adj {
			if n == pass {
				preds = append(preds, i)
				break
			}
		}
	}
	return preds
}

// intHeap is a min-heap of pass indices, used to break ties among
// simultaneously ready passes by registration order. This keeps the sort
// deterministic: equal-priority work executes in submission order.
type intHeap []int

func (h intHeap) Len() int { return len(h) }

func (h intHeap) Less(i, j int) bool { return h[i] < h[j] }

func (h intHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *intHeap) Push(x any) { *h = append(*h, x.(int)) }
func (h *intHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopologicalSort returns a pass order consistent with every edge, using
// Kahn's algorithm. On a cycle it returns a *CycleError carrying every
// pass with remaining unsatisfied dependencies: the cycle participants and
// everything downstream of them, not a single arbitrary node.
//
// The sort is deterministic for a given registration sequence.
func (g *DependencyGraph) TopologicalSort() ([]int, error) {
	inDegrees := make([]int, g.passCount)
	copy(inDegrees, g.inDegrees)

	ready := &intHeap{}
	for i := 0; i < g.passCount; i++ {
		if inDegrees[i] == 0 {
			heap.Push(ready, i)
		}
	}

	order := make([]int, 0, g.passCount)
	for ready.Len() > 0 {
		node := heap.Pop(ready).(int)
		order = append(order, node)
		for _, n := range g.adjacency[node] {
			inDegrees[n]--
			if inDegrees[n] == 0 {
				heap.Push(ready, n)
			}
		}
	}

	if len(order) != g.passCount {
		cycErr := &CycleError{}
		for i := 0; i < g.passCount; i++ {
			if inDegrees[i] > 0 {
				cycErr.Passes = append(cycErr.Passes, i)
			}
		}
		return nil, cycErr
	}
	return order, nil
}

// analyze derives the dependency DAG from declared accesses, walking the
// passes in registration order.
//
// Per resource it tracks the last writer and the readers seen since that
// write. Edges:
//   - read-after-write: last writer -> reader
//   - write-after-write: previous writer -> next writer
//   - write-after-read: every reader since the last write -> next writer,
//     so a later writer can never be scheduled ahead of an earlier
//     reader's work
//
// Transient resources have no contents before their first in-graph write,
// so a read declared ahead of that write still consumes the writer's
// output: it binds to the first writer regardless of registration order.
// A pre-scan collects each transient's first writer for this. Imported
// resources carry contents from outside the graph, so a read ahead of any
// write consumes the import and only constrains later writers (the
// write-after-read edge). Mutually-dependent declarations therefore derive
// a cyclic graph, which TopologicalSort rejects.
func analyze(reg *Registry, passes []*passNode) *DependencyGraph {
	g := newDependencyGraph(len(passes))

	firstImageWriter := map[ImageHandle]int{}
	firstBufferWriter := map[BufferHandle]int{}
	for idx, pass := range passes {
		for _, acc := range pass.imageWrites {
			if e := reg.image(acc.handle); e == nil || !e.transient {
				continue
			}
			if _, ok := firstImageWriter[acc.handle]; !ok {
				firstImageWriter[acc.handle] = idx
			}
		}
		for _, acc := range pass.bufferWrites {
			if e := reg.buffer(acc.handle); e == nil || !e.transient {
				continue
			}
			if _, ok := firstBufferWriter[acc.handle]; !ok {
				firstBufferWriter[acc.handle] = idx
			}
		}
	}

	type resourceTrack struct {
		lastWriter int
		hasWriter  bool
		readers    []int
		// deferred holds readers bound forward to the first writer;
		// they join readers once that write is processed so the next
		// writer still orders after them.
		deferred []int
	}
	imageTracks := map[ImageHandle]*resourceTrack{}
	bufferTracks := map[BufferHandle]*resourceTrack{}

	track := func(m map[ImageHandle]*resourceTrack, h ImageHandle) *resourceTrack {
		t, ok := m[h]
		if !ok {
			t = &resourceTrack{}
			m[h] = t
		}
		return t
	}
	trackBuf := func(m map[BufferHandle]*resourceTrack, h BufferHandle) *resourceTrack {
		t, ok := m[h]
		if !ok {
			t = &resourceTrack{}
			m[h] = t
		}
		return t
	}

	for idx, pass := range passes {
		for _, acc := range pass.imageReads {
			t := track(imageTracks, acc.handle)
			if t.hasWriter {
				if t.lastWriter != idx {
					g.addEdge(t.lastWriter, idx, []ImageHandle{acc.handle}, nil)
				}
				t.readers = append(t.readers, idx)
			} else if w, ok := firstImageWriter[acc.handle]; ok {
				if w != idx {
					g.addEdge(w, idx, []ImageHandle{acc.handle}, nil)
				}
				t.deferred = append(t.deferred, idx)
			} else {
				t.readers = append(t.readers, idx)
			}
		}
		for _, acc := range pass.imageWrites {
			t := track(imageTracks, acc.handle)
			if t.hasWriter && t.lastWriter != idx {
				g.addEdge(t.lastWriter, idx, []ImageHandle{acc.handle}, nil)
			}
			for _, reader := range t.readers {
				if reader != idx {
					g.addEdge(reader, idx, []ImageHandle{acc.handle}, nil)
				}
			}
			t.lastWriter = idx
			t.hasWriter = true
			t.readers = append(t.readers[:0], t.deferred...)
			t.deferred = nil
		}
		for _, acc := range pass.bufferReads {
			t := trackBuf(bufferTracks, acc.handle)
			if t.hasWriter {
				if t.lastWriter != idx {
					g.addEdge(t.lastWriter, idx, nil, []BufferHandle{acc.handle})
				}
				t.readers = append(t.readers, idx)
			} else if w, ok := firstBufferWriter[acc.handle]; ok {
				if w != idx {
					g.addEdge(w, idx, nil, []BufferHandle{acc.handle})
				}
				t.deferred = append(t.deferred, idx)
			} else {
				t.readers = append(t.readers, idx)
			}
		}
		for _, acc := range pass.bufferWrites {
			t := trackBuf(bufferTracks, acc.handle)
			if t.hasWriter && t.lastWriter != idx {
				g.addEdge(t.lastWriter, idx, nil, []BufferHandle{acc.handle})
			}
			for _, reader := range t.readers {
				if reader != idx {
					g.addEdge(reader, idx, nil, []BufferHandle{acc.handle})
				}
			}
			t.lastWriter = idx
			t.hasWriter = true
			t.readers = append(t.readers[:0], t.deferred...)
			t.deferred = nil
		}
	}
	return g
}
