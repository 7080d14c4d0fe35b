package aml

import (
	"fmt"
	"sync"

	"github.com/bobuhiro11/dyntables/acpi"
)

// Allocator is consulted each time a node is created and told each time
// one is deleted. It lets callers account for node ownership.
type Allocator interface {
	// Alloc is called before n is handed out. An error aborts the
	// creation of n.
	Alloc(n Node) error

	// Free is called once for every node released by DeleteTree.
	Free(n Node)
}

type heap struct{}

func (heap) Alloc(Node) error { return nil }

func (heap) Free(Node) {}

// Heap is the default allocator. It never fails and keeps no state.
var Heap Allocator = heap{}

// Tracker is an Allocator that keeps the set of live nodes and fails the
// FailAt-th allocation (1-based) when FailAt is not zero. It is meant for
// tests that check that no node outlives a failed operation.
type Tracker struct {
	FailAt int

	mu          sync.Mutex
	allocs      int
	doubleFrees int
	live        map[Node]struct{}
}

func (t *Tracker) Alloc(n Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.allocs++

	if t.FailAt != 0 && t.allocs == t.FailAt {
		return fmt.Errorf("allocation %d: %w", t.allocs, acpi.ErrOutOfResources)
	}

	if t.live == nil {
		t.live = make(map[Node]struct{})
	}

	t.live[n] = struct{}{}

	return nil
}

func (t *Tracker) Free(n Node) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.live[n]; !ok {
		t.doubleFrees++

		return
	}

	delete(t.live, n)
}

// Live returns the number of allocated and not yet freed nodes.
func (t *Tracker) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.live)
}

// Allocs returns the number of allocation attempts so far.
func (t *Tracker) Allocs() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.allocs
}

// DoubleFrees returns how many times a node that was not live got freed.
func (t *Tracker) DoubleFrees() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.doubleFrees
}
