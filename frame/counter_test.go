// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCounter_FirstFrameIsOne(t *testing.T) {
	c := NewCounter(Config{})
	id, err := c.BeginFrame(context.Background())
	if err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
	if id != 1 {
		t.Errorf("first frame id = %d, want 1", id)
	}
	if c.Completed() != 0 {
		t.Errorf("Completed() = %d before any completion, want 0", c.Completed())
	}
}

func TestCounter_DoubleBegin(t *testing.T) {
	c := NewCounter(Config{})
	if _, err := c.BeginFrame(context.Background()); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
	if _, err := c.BeginFrame(context.Background()); !errors.Is(err, ErrFrameOpen) {
		t.Errorf("second BeginFrame() error = %v, want ErrFrameOpen", err)
	}
}

func TestCounter_WindowDoesNotBlockEarly(t *testing.T) {
	c := NewCounter(Config{InFlight: 3})
	ctx := context.Background()

	// The first three frames begin without any completion.
	for want := uint64(1); want <= 3; want++ {
		id, err := c.BeginFrame(ctx)
		if err != nil {
			t.Fatalf("BeginFrame() error = %v at frame %d", err, want)
		}
		if id != want {
			t.Errorf("frame id = %d, want %d", id, want)
		}
		c.EndFrame()
	}
}

func TestCounter_Backpressure(t *testing.T) {
	c := NewCounter(Config{InFlight: 3})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.BeginFrame(ctx); err != nil {
			t.Fatalf("BeginFrame() error = %v", err)
		}
		c.EndFrame()
	}

	// Frame 4 needs frame 1 complete.
	begun := make(chan uint64)
	go func() {
		id, err := c.BeginFrame(ctx)
		if err != nil {
			t.Errorf("BeginFrame() error = %v", err)
		}
		begun <- id
	}()

	select {
	case id := <-begun:
		t.Fatalf("frame %d began before its window opened", id)
	case <-time.After(20 * time.Millisecond):
	}

	c.Complete(1)

	select {
	case id := <-begun:
		if id != 4 {
			t.Errorf("frame id = %d, want 4", id)
		}
	case <-time.After(time.Second):
		t.Fatal("frame 4 still blocked after frame 1 completed")
	}
}

func TestCounter_BackpressureDeepFrame(t *testing.T) {
	c := NewCounter(Config{InFlight: 3})
	ctx := context.Background()

	// Run ahead to frame 9 with completions through 6. Completion must be
	// reported before each begin, or frame i would wait on frame i-3
	// forever.
	for i := uint64(1); i <= 9; i++ {
		if i > 3 {
			c.Complete(i - 3)
		}
		if _, err := c.BeginFrame(ctx); err != nil {
			t.Fatalf("BeginFrame() error = %v at frame %d", err, i)
		}
		c.EndFrame()
	}
	if c.Completed() != 6 {
		t.Fatalf("Completed() = %d, want 6", c.Completed())
	}

	// Frame 10 must not begin while completion is below 7.
	begun := make(chan uint64)
	go func() {
		id, err := c.BeginFrame(ctx)
		if err != nil {
			t.Errorf("BeginFrame() error = %v", err)
		}
		begun <- id
	}()

	select {
	case id := <-begun:
		t.Fatalf("frame %d began with completion at 6", id)
	case <-time.After(20 * time.Millisecond):
	}

	c.Complete(7)
	select {
	case id := <-begun:
		if id != 10 {
			t.Errorf("frame id = %d, want 10", id)
		}
	case <-time.After(time.Second):
		t.Fatal("frame 10 still blocked after completion reached 7")
	}
}

func TestCounter_BeginFrameContextCancel(t *testing.T) {
	c := NewCounter(Config{InFlight: 1})
	if _, err := c.BeginFrame(context.Background()); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
	c.EndFrame()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error)
	go func() {
		_, err := c.BeginFrame(ctx)
		errCh <- err
	}()

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("BeginFrame() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("BeginFrame did not observe cancellation")
	}
}

func TestCounter_CompleteMonotonic(t *testing.T) {
	c := NewCounter(Config{})
	c.Complete(5)
	c.Complete(3) // out-of-order report must not regress
	if got := c.Completed(); got != 5 {
		t.Errorf("Completed() = %d, want 5", got)
	}
	c.Complete(5) // duplicate is a no-op
	if got := c.Completed(); got != 5 {
		t.Errorf("Completed() = %d after duplicate, want 5", got)
	}
}

func TestCounter_Label(t *testing.T) {
	c := NewCounter(Config{InFlight: 3})
	ctx := context.Background()

	wantLabels := []Label{1, 2, 0, 1}
	for _, want := range wantLabels {
		id, err := c.BeginFrame(ctx)
		if err != nil {
			t.Fatalf("BeginFrame() error = %v", err)
		}
		if got := c.CurrentLabel(); got != want {
			t.Errorf("frame %d: CurrentLabel() = %v, want %v", id, got, want)
		}
		c.EndFrame()
		c.Complete(id)
	}
}

func TestLabel_String(t *testing.T) {
	if got := Label(2).String(); got != "frame-2" {
		t.Errorf("Label(2).String() = %q, want %q", got, "frame-2")
	}
}

func TestCounter_DefaultInFlight(t *testing.T) {
	c := NewCounter(Config{})
	if c.InFlight() != DefaultInFlight {
		t.Errorf("InFlight() = %d, want %d", c.InFlight(), DefaultInFlight)
	}
}
