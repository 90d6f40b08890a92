package atomix

import "sync/atomic"

// Ring is a bounded FIFO for one producer and one consumer. Two
// atomic indices chase each other around a fixed array: head is the
// next slot to pop, tail the next slot to fill, and one slot always
// stays empty so that head == tail can only mean "empty". The
// producer publishes tail only after writing the slot and the
// consumer publishes head only after reading it, which is the whole
// happens-before story. Nothing serializes two producers or two
// consumers against each other, so the single-producer/
// single-consumer contract is on the caller.
//
// Producer- and consumer-owned indices live on separate cache lines
// to avoid false sharing.
type Ring[T any] struct {
	slots []T
	_     [CacheLineSize]byte
	head  atomic.Uint64 // consumer side: next slot to pop
	_     [CacheLineSize - 8]byte
	tail  atomic.Uint64 // producer side: next slot to fill
	_     [CacheLineSize - 8]byte
}

// NewRing returns an empty ring over size slots, of which size-1 are
// usable. size must be greater than 2.
func NewRing[T any](size int) *Ring[T] {
	if size <= 2 {
		panic("atomix: ring size must be greater than 2")
	}
	return &Ring[T]{slots: make([]T, size)}
}

// Push appends item, reporting false when the ring is full. Producer
// side only.
func (r *Ring[T]) Push(item T) bool {
	tail := r.tail.Load()
	next := tail + 1
	if next >= uint64(len(r.slots)) {
		next = 0
	}
	if next == r.head.Load() {
		return false
	}
	r.slots[tail] = item
	r.tail.Store(next)
	return true
}

// Pop removes and returns the oldest item, reporting false when the
// ring is empty. Consumer side only.
func (r *Ring[T]) Pop() (item T, ok bool) {
	head := r.head.Load()
	if head == r.tail.Load() {
		return item, false
	}
	item = r.slots[head]
	next := head + 1
	if next >= uint64(len(r.slots)) {
		next = 0
	}
	r.head.Store(next)
	return item, true
}

// Len is a best-effort snapshot of the number of queued items.
func (r *Ring[T]) Len() int {
	size := uint64(len(r.slots))
	head := r.head.Load()
	tail := r.tail.Load()
	return int((tail + size - head) % size)
}

// Cap returns the usable capacity, one less than the slot count.
func (r *Ring[T]) Cap() int {
	return len(r.slots) - 1
}

// Empty reports whether the ring held no items at the moment of the
// snapshot.
func (r *Ring[T]) Empty() bool {
	return r.head.Load() == r.tail.Load()
}

// Full reports whether the ring was at capacity at the moment of the
// snapshot.
func (r *Ring[T]) Full() bool {
	tail := r.tail.Load()
	next := tail + 1
	if next >= uint64(len(r.slots)) {
		next = 0
	}
	return next == r.head.Load()
}
