// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native executes compiled graph plans directly on the wgpu HAL.
//
// The backend receives its device from the host application through a
// provider exposing HalDevice() and HalQueue(); it never creates one. Each
// frame it hands out a Recorder bound to a fresh command encoder, submits
// the encoded work, and tracks the returned submission index so completed
// frames can be reported back to the frame counter, advancing deferred
// destruction and CPU pacing.
package native

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/frame"
	"github.com/gogpu/framegraph/slotpool"
)

// ErrNoHALDevice is returned by New when the provider does not expose the
// wgpu HAL.
var ErrNoHALDevice = errors.New("native: provider does not expose a HAL device")

// defaultWaitTimeout bounds WaitFrame when the caller passes zero.
const defaultWaitTimeout = 5 * time.Second

// completionPollInterval paces the PollCompleted loop in WaitFrame.
const completionPollInterval = 100 * time.Microsecond

// Config configures a Backend.
type Config struct {
	// Pool receives the backend's transient allocations and drives
	// their deferred destruction. Required.
	Pool *slotpool.Pool

	// Frames receives completion reports after WaitFrame. Optional.
	Frames *frame.Counter
}

// submission is encoded work awaiting GPU confirmation. The command buffer
// is freed once the queue's completed submission index passes ours.
type submission struct {
	frameID uint64
	index   uint64
	cmdBuf  hal.CommandBuffer
}

// Backend drives plan execution on a HAL device shared with the host.
type Backend struct {
	device hal.Device
	queue  hal.Queue
	pool   *slotpool.Pool
	frames *frame.Counter

	pending []submission
}

// New creates a backend on the host's device. The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue;
// gogpu.App's device provider does.
func New(provider any, cfg Config) (*Backend, error) {
	if cfg.Pool == nil {
		return nil, errors.New("native: Config.Pool is required")
	}
	hp, ok := provider.(interface {
		HalDevice() any
		HalQueue() any
	})
	if !ok {
		return nil, ErrNoHALDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALDevice)
	}

	framegraph.Logger().Info("native: backend attached")
	return &Backend{
		device: device,
		queue:  queue,
		pool:   cfg.Pool,
		frames: cfg.Frames,
	}, nil
}

// NewRecorder opens a command encoder for one frame's plan execution.
func (b *Backend) NewRecorder(label string) (*Recorder, error) {
	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("native: begin encoding: %w", err)
	}
	return &Recorder{backend: b, encoder: encoder, label: label}, nil
}

// Submit finishes the recorder's encoding and submits it, tagging the
// returned submission index with frameID. The recorder must not be used
// afterward. Work already confirmed by the queue is collected on the way
// out, so steady-state frame loops release old command buffers without a
// blocking wait.
func (b *Backend) Submit(rec *Recorder, frameID uint64) error {
	cmdBuf, err := rec.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	index, err := b.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		b.device.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("native: submit frame %d: %w", frameID, err)
	}
	b.pending = append(b.pending, submission{frameID: frameID, index: index, cmdBuf: cmdBuf})

	framegraph.Logger().Debug("native: submitted", "frame", frameID, "submission", index)
	b.collect(b.queue.PollCompleted())
	return nil
}

// WaitFrame blocks until the queue's completed submission index covers
// every submission tagged with frameID or earlier, then frees the confirmed
// command buffers, retires the pool's pending destructions, and reports the
// completion to the frame counter. A zero timeout means the default of five
// seconds.
func (b *Backend) WaitFrame(frameID uint64, timeout time.Duration) error {
	if timeout == 0 {
		timeout = defaultWaitTimeout
	}
	var target uint64
	for _, s := range b.pending {
		if s.frameID <= frameID && s.index > target {
			target = s.index
		}
	}
	if target == 0 {
		// Nothing in flight for that frame; it was collected already.
		return nil
	}
	deadline := time.Now().Add(timeout)
	for {
		completed := b.queue.PollCompleted()
		if completed >= target {
			b.collect(completed)
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("native: frame %d not complete after %v", frameID, timeout)
		}
		time.Sleep(completionPollInterval)
	}
}

// collect releases every submission whose index the GPU has confirmed.
func (b *Backend) collect(completedIndex uint64) {
	var confirmed uint64
	remaining := b.pending[:0]
	for _, s := range b.pending {
		if s.index > completedIndex {
			remaining = append(remaining, s)
			continue
		}
		b.device.FreeCommandBuffer(s.cmdBuf)
		if s.frameID > confirmed {
			confirmed = s.frameID
		}
	}
	b.pending = remaining
	if confirmed == 0 {
		return
	}

	b.pool.Retire(confirmed)
	if b.frames != nil {
		b.frames.Complete(confirmed)
	}
}

// Close waits for the device to go idle, releases all submitted work, and
// destroys every pooled resource. The backend must not be used afterward.
func (b *Backend) Close() error {
	var lastErr error
	if err := b.device.WaitIdle(); err != nil {
		lastErr = fmt.Errorf("native: wait idle: %w", err)
	}
	b.collect(b.queue.PollCompleted())
	for _, s := range b.pending {
		// WaitIdle confirmed the GPU is done even if polling lagged.
		b.device.FreeCommandBuffer(s.cmdBuf)
	}
	b.pending = nil
	b.pool.DestroyAll()
	framegraph.Logger().Info("native: backend closed")
	return lastErr
}
