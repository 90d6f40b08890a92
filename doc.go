// Package atomix provides small lock-free concurrency primitives:
// an atomic view over caller-owned integers (Ref), a consumable
// boolean gate (Once), a monotonic counter (Sequence), bounded
// array-backed collections (Stack, Ring) and a fixed-bucket
// concurrent hash dictionary (Dict).
//
// None of the types start goroutines, block, or take locks on their
// hot paths; they are building blocks for caller-managed concurrency.
// Every operation completes in a bounded number of steps, reporting
// capacity exhaustion or absence through ordinary return values.
package atomix
