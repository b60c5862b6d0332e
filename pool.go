package typeset

import (
	"context"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one render slot is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent browsers to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// Pool bounds how many renders run at once. It hands out slots, not
// browsers: every render still launches and releases its own engine.
type Pool struct {
	size  int
	slots chan struct{}

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewPool creates a pool with n slots (minimum 1).
func NewPool(n int) *Pool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &Pool{
		size:  n,
		slots: make(chan struct{}, n),
		done:  make(chan struct{}),
	}
}

// Acquire blocks until a slot is free, ctx ends or the pool is closed.
// Every successful Acquire must be paired with Release.
func (p *Pool) Acquire(ctx context.Context) error {
	// Fail fast on a closed pool even when a slot is free.
	select {
	case <-p.done:
		return ErrPoolClosed
	default:
	}

	select {
	case p.slots <- struct{}{}:
		return nil
	case <-p.done:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (p *Pool) Release() {
	select {
	case <-p.slots:
	default:
		// Unpaired Release; nothing to free.
	}
}

// InUse returns the number of slots currently held.
func (p *Pool) InUse() int {
	return len(p.slots)
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return p.size
}

// Close wakes every waiter with ErrPoolClosed. Held slots stay valid until
// released. Safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.done)
}

// ResolvePoolSize determines the optimal pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
