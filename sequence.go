package atomix

// Sequence is a monotonic unsigned counter. Next atomically
// post-increments, so no two calls ever observe the same value (until
// the counter wraps at the width of T). The zero value counts from
// zero.
//
// On 32-bit platforms a Sequence over a 64-bit kind must be allocated
// 8-byte aligned; placing it first in a struct or allocating it with
// new is sufficient.
type Sequence[T Unsigned] struct {
	n T
}

// NewSequence returns a counter seeded with initial.
func NewSequence[T Unsigned](initial T) *Sequence[T] {
	return &Sequence[T]{n: initial}
}

// Next returns the current value and advances the counter by one in a
// single atomic step.
func (s *Sequence[T]) Next() T {
	return AsRef(&s.n).Add(1) - 1
}

// Set stores v without incrementing, for reseeding or resetting.
func (s *Sequence[T]) Set(v T) {
	AsRef(&s.n).Store(v)
}

// Clone snapshots the current value into a fresh counter. The
// snapshot is best-effort with respect to concurrent Next calls on
// the source; it is not a synchronization point.
func (s *Sequence[T]) Clone() *Sequence[T] {
	return &Sequence[T]{n: AsRef(&s.n).Load()}
}
