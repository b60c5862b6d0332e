package typeset

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire(context.Context) error
	Release()
	Size() int
	InUse() int
	Close()
} = (*Pool)(nil)

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit takes priority",
			workers: 4,
			want:    4,
		},
		{
			name:    "explicit=1 for sequential",
			workers: 1,
			want:    1,
		},
		{
			name:    "explicit can exceed max",
			workers: 16,
			want:    16,
		},
		{
			name:    "zero uses auto calculation",
			workers: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolvePoolSize(tt.workers)
			if got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestNewPool_MinimumSize(t *testing.T) {
	t.Parallel()

	for _, n := range []int{-1, 0} {
		if got := NewPool(n).Size(); got != MinPoolSize {
			t.Errorf("NewPool(%d).Size() = %d, want %d", n, got, MinPoolSize)
		}
	}
}

func TestPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	p := NewPool(2)
	ctx := context.Background()

	if err := p.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	if err := p.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	if got := p.InUse(); got != 2 {
		t.Errorf("InUse() = %d, want 2", got)
	}

	// Third acquire blocks until its context ends.
	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := p.Acquire(waitCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() on full pool error = %v, want DeadlineExceeded", err)
	}

	p.Release()
	if got := p.InUse(); got != 1 {
		t.Errorf("InUse() after Release = %d, want 1", got)
	}
	if err := p.Acquire(ctx); err != nil {
		t.Errorf("Acquire() after Release unexpected error: %v", err)
	}
}

func TestPool_UnpairedReleaseIsNoop(t *testing.T) {
	t.Parallel()

	p := NewPool(1)
	p.Release()
	if got := p.InUse(); got != 0 {
		t.Errorf("InUse() = %d, want 0", got)
	}
}

func TestPool_CloseWakesWaiters(t *testing.T) {
	t.Parallel()

	p := NewPool(1)
	if err := p.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}

	errc := make(chan error, 1)
	go func() { errc <- p.Acquire(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	p.Close()
	p.Close() // idempotent

	select {
	case err := <-errc:
		if !errors.Is(err, ErrPoolClosed) {
			t.Errorf("Acquire() error = %v, want ErrPoolClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close() did not wake the waiter")
	}

	p.Release()
	if err := p.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrPoolClosed", err)
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	const size = 3
	p := NewPool(size)

	var (
		wg      sync.WaitGroup
		current atomic.Int32
		peak    atomic.Int32
	)
	for range 12 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire() unexpected error: %v", err)
				return
			}
			defer p.Release()

			n := current.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > size {
		t.Errorf("peak concurrency = %d, want <= %d", got, size)
	}
}
