package atomix

import "sync/atomic"

// Once is a single-use boolean gate. The zero value is armed: the
// first Take since arming returns true and disarms the gate in the
// same atomic step, so among any number of racing callers exactly one
// observes true. Every later Take returns false until Reset re-arms
// it.
//
// A Once must not be copied after first use.
type Once struct {
	spent atomic.Bool
}

// Take consumes the gate, reporting whether this caller won it.
func (o *Once) Take() bool {
	return !o.spent.Swap(true)
}

// Reset re-arms the gate for another Take.
func (o *Once) Reset() {
	o.spent.Store(false)
}
