// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package frame tracks CPU frame pacing against GPU completion.
//
// A Counter issues monotonically increasing frame ids and blocks the CPU
// when it gets too far ahead of the GPU: frame N may begin only once the
// GPU has confirmed completion of frame N minus the in-flight window.
// Completion is reported by the backend, typically from the completed
// submission index observed on the submission queue.
package frame

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// DefaultInFlight is the number of frames the CPU may run ahead of the
// GPU when Config.InFlight is zero.
const DefaultInFlight = 3

// ErrFrameOpen is returned by BeginFrame when the previous frame has not
// been ended.
var ErrFrameOpen = errors.New("frame: previous frame still open")

// Config configures a Counter. The zero value is valid.
type Config struct {
	// InFlight is the maximum number of frames the CPU may begin before
	// the GPU confirms completion of the oldest. Zero means
	// DefaultInFlight.
	InFlight uint64
}

// Label identifies which in-flight slot a frame occupies. Resources that
// exist once per in-flight frame (command pools, per-frame descriptor
// tables) are indexed by Label.
type Label uint64

// String returns "frame-N" for diagnostics and GPU debug scopes.
func (l Label) String() string { return fmt.Sprintf("frame-%d", uint64(l)) }

// Counter issues frame ids and enforces the in-flight window.
//
// Frame ids start at 1 so that a completion counter of zero means "no
// frame has finished yet". BeginFrame and EndFrame are called from the
// frame loop; Complete may be called from any goroutine, typically the
// backend's completion poller.
type Counter struct {
	inFlight uint64

	mu        sync.Mutex
	frameID   uint64 // id of the most recently begun frame
	completed uint64 // highest GPU-confirmed frame id
	inFrame   bool
	done      chan struct{} // closed and replaced on every Complete
}

// NewCounter creates a counter with no frames begun or completed.
func NewCounter(cfg Config) *Counter {
	inFlight := cfg.InFlight
	if inFlight == 0 {
		inFlight = DefaultInFlight
	}
	return &Counter{
		inFlight: inFlight,
		done:     make(chan struct{}),
	}
}

// BeginFrame claims the next frame id, blocking while the CPU is a full
// in-flight window ahead of the GPU. It returns early with the context's
// error if ctx is canceled while waiting.
func (c *Counter) BeginFrame(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	if c.inFrame {
		c.mu.Unlock()
		return 0, ErrFrameOpen
	}
	id := c.frameID + 1

	// Frame id N may begin once frame N-inFlight has completed; the
	// first inFlight frames never wait.
	for id > c.inFlight && c.completed < id-c.inFlight {
		ch := c.done
		c.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
		c.mu.Lock()
	}

	c.frameID = id
	c.inFrame = true
	c.mu.Unlock()

	slogger().Debug("frame: begin", "frame", id)
	return id, nil
}

// EndFrame closes the current frame and returns its id. Calling EndFrame
// with no frame open returns the last begun id unchanged.
func (c *Counter) EndFrame() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFrame = false
	return c.frameID
}

// Complete records that the GPU has finished all work submitted for
// frameID. The counter only moves forward: reporting an id at or below
// the current completion point is a no-op, so pollers may report
// duplicates or sweep an observed completion point repeatedly.
func (c *Counter) Complete(frameID uint64) {
	c.mu.Lock()
	if frameID <= c.completed {
		c.mu.Unlock()
		return
	}
	c.completed = frameID
	// Wake every BeginFrame waiter; each rechecks its window.
	close(c.done)
	c.done = make(chan struct{})
	c.mu.Unlock()

	slogger().Debug("frame: complete", "frame", frameID)
}

// FrameID returns the id of the most recently begun frame, or zero before
// the first BeginFrame.
func (c *Counter) FrameID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameID
}

// Completed returns the highest GPU-confirmed frame id.
func (c *Counter) Completed() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// InFlight returns the configured window size.
func (c *Counter) InFlight() uint64 { return c.inFlight }

// CurrentLabel returns the in-flight slot for the most recently begun
// frame: its id modulo the window size.
func (c *Counter) CurrentLabel() Label {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Label(c.frameID % c.inFlight)
}
