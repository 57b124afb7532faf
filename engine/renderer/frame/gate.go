package frame

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate is the counting admission gate that bounds how many frames may be
// submitted and not yet completed by the GPU. The producer acquires before
// writing a slot; the completion callback of the frame's last stream releases.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int64
	inFlight atomic.Int64
}

// NewGate returns a gate admitting capacity frames at once.
func NewGate(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{sem: semaphore.NewWeighted(int64(capacity)), capacity: int64(capacity)}
}

// Acquire blocks until a frame may start or ctx is done.
// A cancelled context is the only way out of a stalled GPU.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	g.inFlight.Add(1)
	return nil
}

// TryAcquire admits a frame only if one can start immediately.
func (g *Gate) TryAcquire() bool {
	if !g.sem.TryAcquire(1) {
		return false
	}
	g.inFlight.Add(1)
	return true
}

// Release marks one in-flight frame as completed. It is safe to call from
// any goroutine. Releasing with nothing in flight is a no-op.
func (g *Gate) Release() {
	for {
		n := g.inFlight.Load()
		if n <= 0 {
			return
		}
		if g.inFlight.CompareAndSwap(n, n-1) {
			g.sem.Release(1)
			return
		}
	}
}

// InFlight is the number of frames admitted and not yet released.
func (g *Gate) InFlight() int { return int(g.inFlight.Load()) }

// Capacity is the maximum number of frames in flight.
func (g *Gate) Capacity() int { return int(g.capacity) }

// Drain waits until every in-flight frame has been released, or ctx is done.
// On success the gate is left empty and ready for reuse.
func (g *Gate) Drain(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, g.capacity); err != nil {
		return err
	}
	g.sem.Release(g.capacity)
	return nil
}
