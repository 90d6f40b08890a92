package atomix

import (
	"sync/atomic"
	"unsafe"
)

// Integer enumerates the integral kinds Ref can operate on. Go's
// sync/atomic package has no 1- or 2-byte operations, so the set is
// limited to 4- and 8-byte widths; anything else fails to compile.
type Integer interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~uintptr
}

// Unsigned is the subset of Integer accepted by Sequence.
type Unsigned interface {
	~uint | ~uint32 | ~uint64 | ~uintptr
}

// Ref is a non-owning atomic view over a caller-owned integer. It
// carries no storage of its own: all operations act directly on the
// referenced location, and the Ref must not outlive it. Every
// operation is sequentially consistent; no relaxed fast path is
// offered.
//
// On 32-bit platforms the referenced location must be 8-byte aligned
// when T is a 64-bit kind, the same requirement sync/atomic imposes.
type Ref[T Integer] struct {
	p *T
}

// AsRef wraps an existing integer location. The pointer must not be nil.
func AsRef[T Integer](p *T) Ref[T] {
	return Ref[T]{p: p}
}

//go:nosplit
func (r Ref[T]) Load() T {
	if unsafe.Sizeof(*r.p) == 4 {
		return T(atomic.LoadUint32((*uint32)(unsafe.Pointer(r.p))))
	}
	return T(atomic.LoadUint64((*uint64)(unsafe.Pointer(r.p))))
}

//go:nosplit
func (r Ref[T]) Store(v T) {
	if unsafe.Sizeof(*r.p) == 4 {
		atomic.StoreUint32((*uint32)(unsafe.Pointer(r.p)), uint32(v))
		return
	}
	atomic.StoreUint64((*uint64)(unsafe.Pointer(r.p)), uint64(v))
}

// Swap stores v and returns the previous value.
//
//go:nosplit
func (r Ref[T]) Swap(v T) T {
	if unsafe.Sizeof(*r.p) == 4 {
		return T(atomic.SwapUint32((*uint32)(unsafe.Pointer(r.p)), uint32(v)))
	}
	return T(atomic.SwapUint64((*uint64)(unsafe.Pointer(r.p)), uint64(v)))
}

// CompareAndSwap replaces the value with new only if it still equals
// old, reporting whether the swap happened.
//
//go:nosplit
func (r Ref[T]) CompareAndSwap(old, new T) bool {
	if unsafe.Sizeof(*r.p) == 4 {
		return atomic.CompareAndSwapUint32((*uint32)(unsafe.Pointer(r.p)), uint32(old), uint32(new))
	}
	return atomic.CompareAndSwapUint64((*uint64)(unsafe.Pointer(r.p)), uint64(old), uint64(new))
}

// Add atomically adds delta and returns the new value. Deltas of
// signed kinds wrap the usual two's-complement way, so negative
// deltas subtract.
//
//go:nosplit
func (r Ref[T]) Add(delta T) T {
	if unsafe.Sizeof(*r.p) == 4 {
		return T(atomic.AddUint32((*uint32)(unsafe.Pointer(r.p)), uint32(delta)))
	}
	return T(atomic.AddUint64((*uint64)(unsafe.Pointer(r.p)), uint64(delta)))
}

// Sub atomically subtracts delta and returns the new value.
//
//go:nosplit
func (r Ref[T]) Sub(delta T) T {
	if unsafe.Sizeof(*r.p) == 4 {
		return T(atomic.AddUint32((*uint32)(unsafe.Pointer(r.p)), -uint32(delta)))
	}
	return T(atomic.AddUint64((*uint64)(unsafe.Pointer(r.p)), -uint64(delta)))
}

// Inc is Add(1).
func (r Ref[T]) Inc() T {
	return r.Add(1)
}

// Dec is Sub(1).
func (r Ref[T]) Dec() T {
	return r.Sub(1)
}
