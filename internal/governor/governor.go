// Package governor bounds how many workers run at once across the whole
// process, and counts in-flight searches.
package governor

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Governor is an admission gate with a fixed number of slots.
type Governor struct {
	sem      *semaphore.Weighted
	capacity int
	active   atomic.Int64
}

// DefaultCapacity is the number of available CPUs minus one, at least 1.
func DefaultCapacity() int {
	return max(1, runtime.NumCPU()-1)
}

// New returns a governor with the given capacity (minimum 1).
func New(capacity int) *Governor {
	if capacity < 1 {
		capacity = 1
	}
	return &Governor{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
	}
}

var (
	defaultOnce sync.Once
	defaultGov  *Governor
)

// Default returns the process-wide governor shared by fetch workers and
// bulk UI operations.
func Default() *Governor {
	defaultOnce.Do(func() {
		defaultGov = New(DefaultCapacity())
	})
	return defaultGov
}

// Acquire blocks until a slot is free or ctx is done.
func (g *Governor) Acquire(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	g.active.Add(1)
	return nil
}

// Release frees a slot taken by Acquire.
func (g *Governor) Release() {
	g.active.Add(-1)
	g.sem.Release(1)
}

// Do runs fn while holding a slot. The slot is released on every exit
// path, including a panic in fn.
func (g *Governor) Do(ctx context.Context, fn func() error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn()
}

// Active is the number of slots currently held.
func (g *Governor) Active() int { return int(g.active.Load()) }

// Capacity is the total number of slots.
func (g *Governor) Capacity() int { return g.capacity }

// RunCounter counts in-flight searches.
type RunCounter struct {
	mu    sync.Mutex
	count int
}

// TryStart increments the counter unless it already reached limit.
func (c *RunCounter) TryStart(limit int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if limit < 1 {
		limit = 1
	}
	if c.count >= limit {
		return false
	}
	c.count++
	return true
}

// Done decrements the counter. Extra calls are ignored.
func (c *RunCounter) Done() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count > 0 {
		c.count--
	}
}

// Count returns the number of searches in flight.
func (c *RunCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
