// Package frame holds the per-frame resources the CPU writes ahead of the GPU:
// a fixed ring of slots, the admission gate that bounds frames in flight, and
// the uniform blocks rewritten into the current slot every frame.
package frame

// MaxFramesInFlight is the number of slots in the ring and the capacity of the gate.
const MaxFramesInFlight = 3

// Ring is a fixed-size rotation of owned values indexed by a cycling slot.
// It is not safe for concurrent use; the frame producer owns it.
type Ring[T any] struct {
	slots []T
	index int
}

// NewRing builds a ring of n slots, calling build once per slot in index order.
// If build fails, the slots already built are handed to cleanup (when non-nil)
// in reverse order before the error is returned.
//
// Parameters:
//   - n: number of slots, at least 1
//   - build: constructor for slot i
//   - cleanup: optional destructor for partially built rings
//
// Returns:
//   - *Ring[T]: the ring, positioned at slot 0
//   - error: the first error returned by build
func NewRing[T any](n int, build func(i int) (T, error), cleanup func(T)) (*Ring[T], error) {
	if n < 1 {
		n = 1
	}
	r := &Ring[T]{slots: make([]T, n)}
	for i := 0; i < n; i++ {
		s, err := build(i)
		if err != nil {
			if cleanup != nil {
				for j := i - 1; j >= 0; j-- {
					cleanup(r.slots[j])
				}
			}
			return nil, err
		}
		r.slots[i] = s
	}
	return r, nil
}

// Len is the number of slots.
func (r *Ring[T]) Len() int { return len(r.slots) }

// Index is the current slot index, always in [0, Len()).
func (r *Ring[T]) Index() int { return r.index }

// Current returns the value of the current slot.
func (r *Ring[T]) Current() T { return r.slots[r.index] }

// Advance moves to the next slot modulo Len and returns its index.
// Call it exactly once per frame, before writing any per-frame data.
func (r *Ring[T]) Advance() int {
	r.index = (r.index + 1) % len(r.slots)
	return r.index
}

// At returns slot i.
func (r *Ring[T]) At(i int) T { return r.slots[i] }

// Each calls fn for every slot in index order.
func (r *Ring[T]) Each(fn func(i int, v T)) {
	for i, v := range r.slots {
		fn(i, v)
	}
}
