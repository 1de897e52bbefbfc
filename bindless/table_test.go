// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package bindless

import (
	"errors"
	"testing"

	"github.com/gogpu/framegraph/slotpool"
)

type fakeResource struct{}

func (fakeResource) Destroy() {}

// registerN fills a pool with n resources and returns their handles.
func registerN(p *slotpool.Pool, n int) []slotpool.Handle {
	handles := make([]slotpool.Handle, n)
	for i := range handles {
		handles[i] = p.Register(fakeResource{})
	}
	return handles
}

func TestTable_DenseIndices(t *testing.T) {
	pool := slotpool.New()
	handles := registerN(pool, 5)
	table := NewTable(Config{})

	for i, h := range handles {
		idx, err := table.Register(h)
		if err != nil {
			t.Fatalf("Register(%s) error = %v", h, err)
		}
		if idx != uint32(i) {
			t.Errorf("Register(%s) index = %d, want %d", h, idx, i)
		}
	}
	if table.Len() != 5 {
		t.Errorf("Len() = %d, want 5", table.Len())
	}
}

func TestTable_RegisterIdempotent(t *testing.T) {
	pool := slotpool.New()
	h := pool.Register(fakeResource{})
	table := NewTable(Config{})

	first, err := table.Register(h)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	second, err := table.Register(h)
	if err != nil {
		t.Fatalf("second Register() error = %v", err)
	}
	if first != second {
		t.Errorf("re-registration changed index: %d != %d", first, second)
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
}

func TestTable_UnregisterShiftsDown(t *testing.T) {
	pool := slotpool.New()
	handles := registerN(pool, 5)
	table := NewTable(Config{})
	for _, h := range handles {
		if _, err := table.Register(h); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	if err := table.Unregister(handles[1]); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}

	// Remaining handles pack densely in registration order.
	want := []slotpool.Handle{handles[0], handles[2], handles[3], handles[4]}
	for i, h := range want {
		idx, ok := table.Index(h)
		if !ok {
			t.Fatalf("Index(%s) missing after unregister", h)
		}
		if idx != uint32(i) {
			t.Errorf("Index(%s) = %d, want %d", h, idx, i)
		}
	}
	if _, ok := table.Index(handles[1]); ok {
		t.Error("unregistered handle still has an index")
	}
}

func TestTable_UnregisterUnknown(t *testing.T) {
	pool := slotpool.New()
	h := pool.Register(fakeResource{})
	table := NewTable(Config{})

	if err := table.Unregister(h); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Unregister() error = %v, want ErrNotRegistered", err)
	}
}

func TestTable_Full(t *testing.T) {
	pool := slotpool.New()
	handles := registerN(pool, 3)
	table := NewTable(Config{Capacity: 2})

	if _, err := table.Register(handles[0]); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := table.Register(handles[1]); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := table.Register(handles[2]); !errors.Is(err, ErrTableFull) {
		t.Errorf("Register() at capacity error = %v, want ErrTableFull", err)
	}

	// Unregistering frees a slot.
	if err := table.Unregister(handles[0]); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if _, err := table.Register(handles[2]); err != nil {
		t.Errorf("Register() after unregister error = %v", err)
	}
}

func TestTable_PrepareDropsStale(t *testing.T) {
	pool := slotpool.New()
	handles := registerN(pool, 4)
	table := NewTable(Config{})
	for _, h := range handles {
		if _, err := table.Register(h); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	// Destroy the second resource; its descriptor slot must vanish at
	// the next Prepare and later entries shift down.
	pool.DestroyDeferred(handles[1], 1)
	pool.Retire(1)

	if got := table.Prepare(pool); got != 3 {
		t.Fatalf("Prepare() = %d live entries, want 3", got)
	}

	want := []slotpool.Handle{handles[0], handles[2], handles[3]}
	for i, h := range want {
		idx, ok := table.Index(h)
		if !ok || idx != uint32(i) {
			t.Errorf("Index(%s) = %d, %v, want %d, true", h, idx, ok, i)
		}
	}
	if _, ok := table.Index(handles[1]); ok {
		t.Error("destroyed handle still indexed after Prepare")
	}
}

func TestTable_PrepareWithoutPool(t *testing.T) {
	pool := slotpool.New()
	handles := registerN(pool, 2)
	table := NewTable(Config{})
	for _, h := range handles {
		if _, err := table.Register(h); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}
	if got := table.Prepare(nil); got != 2 {
		t.Errorf("Prepare(nil) = %d, want 2", got)
	}
}

func TestTable_Entries(t *testing.T) {
	pool := slotpool.New()
	handles := registerN(pool, 3)
	table := NewTable(Config{})
	for _, h := range handles {
		if _, err := table.Register(h); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}
	entries := table.Entries()
	if len(entries) != 3 {
		t.Fatalf("Entries() len = %d, want 3", len(entries))
	}
	for i, h := range handles {
		if entries[i] != h {
			t.Errorf("Entries()[%d] = %s, want %s", i, entries[i], h)
		}
	}
}
