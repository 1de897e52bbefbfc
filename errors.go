// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"errors"
	"fmt"
	"strings"
)

// Graph construction and compilation errors.
var (
	// ErrUnknownHandle is returned when a pass declares a virtual handle
	// that was not registered in the current build. Handles leaked from a
	// prior frame's graph fall in this category.
	ErrUnknownHandle = errors.New("framegraph: handle not registered in this build")

	// ErrInvalidState is returned when a resource is declared with a state
	// incompatible with its type, e.g. an attachment state on a buffer.
	ErrInvalidState = errors.New("framegraph: state incompatible with resource type")

	// ErrPassClosed is returned when a PassBuilder is used after its
	// setup function has returned.
	ErrPassClosed = errors.New("framegraph: pass builder used after setup")

	// ErrGraphCompiled is returned when passes or resources are added to a
	// graph that has already been compiled.
	ErrGraphCompiled = errors.New("framegraph: graph already compiled")

	// ErrNoAllocator is returned by Compile when the graph declares
	// transient resources but no allocator was configured.
	ErrNoAllocator = errors.New("framegraph: transient resources declared but no allocator configured")

	// ErrNilRecorder is returned by Execute when the recorder is nil.
	ErrNilRecorder = errors.New("framegraph: command recorder is nil")
)

// CycleError reports a cyclic dependency between passes. It carries every
// pass that still had unsatisfied dependencies when the sort stalled: the
// cycle itself plus everything downstream of it.
//
// A cycle is fatal; Compile does not attempt partial scheduling.
type CycleError struct {
	// Passes holds the indices of the participating passes, in
	// registration order.
	Passes []int

	// Names holds the corresponding pass names, aligned with Passes.
	Names []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	if len(e.Names) == 0 {
		return "framegraph: dependency cycle detected"
	}
	return fmt.Sprintf("framegraph: dependency cycle involving passes [%s]",
		strings.Join(e.Names, ", "))
}
