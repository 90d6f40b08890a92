package atomix

import "sync/atomic"

// Stack is a bounded lock-free LIFO backed by a fixed array. A single
// atomic occupancy index both claims slots and tracks size: Push
// increments first and rolls back when the claimed slot lies beyond
// capacity, Pop decrements first and rolls back when it lands below
// zero. The index may transiently leave the [0, cap] range while
// racing operations are mid-flight; that is how failed claims are
// detected, not an error state.
//
// Any number of goroutines may push and pop concurrently. Each
// successful operation claims a distinct slot, but the slot write
// itself is not ordered against a racing claimant of the same slot,
// so Stack suits pools of interchangeable items rather than strict
// LIFO hand-off under contention.
type Stack[T any] struct {
	slots []T
	_     [CacheLineSize]byte
	top   atomic.Int64
	_     [CacheLineSize - 8]byte
}

// NewStack returns an empty stack. capacity must be greater than 2.
func NewStack[T any](capacity int) *Stack[T] {
	if capacity <= 2 {
		panic("atomix: stack capacity must be greater than 2")
	}
	return &Stack[T]{slots: make([]T, capacity)}
}

// Push stores item on top of the stack, reporting false when the
// stack is full.
func (s *Stack[T]) Push(item T) bool {
	i := s.top.Add(1) - 1
	if i >= int64(len(s.slots)) {
		s.top.Add(-1)
		return false
	}
	s.slots[i] = item
	return true
}

// Pop removes and returns the top item, reporting false when the
// stack is empty.
func (s *Stack[T]) Pop() (item T, ok bool) {
	i := s.top.Add(-1)
	if i < 0 {
		s.top.Add(1)
		return item, false
	}
	return s.slots[i], true
}

// Len is a best-effort snapshot of the occupancy; it is inherently
// racy against concurrent Push/Pop.
func (s *Stack[T]) Len() int {
	n := s.top.Load()
	if n < 0 {
		return 0
	}
	if n > int64(len(s.slots)) {
		return len(s.slots)
	}
	return int(n)
}

// Cap returns the fixed capacity.
func (s *Stack[T]) Cap() int {
	return len(s.slots)
}

// Empty reports whether the stack held no items at the moment of the
// snapshot.
func (s *Stack[T]) Empty() bool {
	return s.top.Load() < 1
}

// Full reports whether the stack was at capacity at the moment of the
// snapshot.
func (s *Stack[T]) Full() bool {
	return s.top.Load() >= int64(len(s.slots))
}
