package atomix

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"
)

// defaultDictBuckets is the bucket count used when WithBuckets is not
// given.
const defaultDictBuckets = 16

// Dict is a lock-free hash dictionary with a fixed bucket count. Each
// bucket holds a singly-linked chain of entries; insertion prepends
// to the chain head with a CAS loop, so head swaps on one bucket form
// a total order while operations on different buckets are unordered
// against each other. The table never resizes; the load factor grows
// without bound, which is fine for the small, bounded key sets it is
// meant for.
//
// The zero Dict is empty and ready to use with 16 buckets and the
// built-in hasher for K; NewDict and NewDictWithHasher configure
// both. A Dict must not be copied after first use.
//
// Any number of goroutines may insert, remove, and read concurrently
// without external locking. Values live behind their own atomic cell
// inside each entry, so InsertOrAssign replaces them with a pointer
// swap that is safe against concurrent readers. Removal marks the
// entry dead with one CAS before unlinking it, so racing removers
// agree on a single winner per entry. Reclamation is left to the
// garbage collector: a reader mid-traversal through a removed entry
// keeps it alive and simply finishes its walk.
//
// Insert never checks for an existing equal key, so repeated Insert
// calls for one key stack duplicates in its chain; Find then returns
// the most recently inserted match. Use InsertOrAssign or TryInsert
// when deduplication matters. Compound check-then-act sequences
// across two calls are not atomic; each call linearizes on its own.
type Dict[K comparable, V any] struct {
	initMu  sync.Mutex
	table   atomic.Pointer[dictTable[K, V]]
	keyHash hashFunc
	seed    uintptr
	count   atomic.Int64
}

type dictTable[K comparable, V any] struct {
	buckets []dictBucket[K, V]
}

// dictBucket pads each chain head out to a cache line so that CAS
// traffic on neighboring buckets does not false-share.
type dictBucket[K comparable, V any] struct {
	head atomic.Pointer[dictNode[K, V]]
	_    [CacheLineSize - unsafe.Sizeof(atomic.Pointer[struct{}]{})]byte
}

// dictNode is owned by the table once linked into a chain. Only its
// value cell, its next link, and its dead flag ever change
// afterwards, all atomically. Removal is logical first: exactly one
// remover claims the dead flag, and the physical unlink that follows
// is best-effort, because a racing unlink of the predecessor can
// swing a stale link back over this node. A dead node that reappears
// in the chain is skipped by every traversal and unlinked again by
// the next removal scan that walks past it.
type dictNode[K comparable, V any] struct {
	key  K
	dead atomic.Bool
	val  atomic.Pointer[V]
	next atomic.Pointer[dictNode[K, V]]
}

// NewDict creates an empty dictionary.
//
// Options: WithBuckets fixes the bucket count (default 16).
func NewDict[K comparable, V any](options ...func(*DictConfig)) *Dict[K, V] {
	return NewDictWithHasher[K, V](nil, options...)
}

// NewDictWithHasher creates an empty dictionary with a custom key
// hash function. A nil keyHash selects the built-in hasher for K.
func NewDictWithHasher[K comparable, V any](
	keyHash func(key K, seed uintptr) uintptr,
	options ...func(*DictConfig),
) *Dict[K, V] {
	d := &Dict[K, V]{}
	var hs hashFunc
	if keyHash != nil {
		hs = func(pointer unsafe.Pointer, seed uintptr) uintptr {
			return keyHash(*(*K)(pointer), seed)
		}
	}
	d.init(hs, options...)
	return d
}

// DictConfig defines configurable Dict options.
type DictConfig struct {
	buckets int
}

// WithBuckets fixes the number of buckets. The table never resizes,
// so this also fixes the contention spread for the dictionary's
// lifetime. Values below 1 are ignored.
func WithBuckets(n int) func(*DictConfig) {
	return func(c *DictConfig) {
		c.buckets = n
	}
}

func (d *Dict[K, V]) init(hs hashFunc, options ...func(*DictConfig)) *dictTable[K, V] {
	c := &DictConfig{buckets: defaultDictBuckets}
	for _, o := range options {
		o(c)
	}
	if c.buckets < 1 {
		c.buckets = defaultDictBuckets
	}

	d.seed = uintptr(rand.Uint64())
	if hs != nil {
		d.keyHash = hs
	} else {
		d.keyHash = defaultHasher[K]()
	}

	t := &dictTable[K, V]{buckets: make([]dictBucket[K, V], c.buckets)}
	d.table.Store(t)
	return t
}

func (d *Dict[K, V]) loadTable() *dictTable[K, V] {
	if t := d.table.Load(); t != nil {
		return t
	}
	return d.initSlow()
}

// initSlow may be raced by multiple goroutines on a zero-value Dict;
// the mutex makes exactly one of them build the table.
//
//go:noinline
func (d *Dict[K, V]) initSlow() *dictTable[K, V] {
	d.initMu.Lock()
	t := d.table.Load()
	if t != nil {
		d.initMu.Unlock()
		return t
	}
	t = d.init(nil)
	d.initMu.Unlock()
	return t
}

func (d *Dict[K, V]) bucketFor(t *dictTable[K, V], key *K) *dictBucket[K, V] {
	h := d.keyHash(noescape(unsafe.Pointer(key)), d.seed)
	return &t.buckets[h%uintptr(len(t.buckets))]
}

// prepend links a fresh entry at the chain head. The CAS loop retries
// until the head it read is still the head it swaps.
func (d *Dict[K, V]) prepend(b *dictBucket[K, V], key K, value V) {
	n := &dictNode[K, V]{key: key}
	n.val.Store(&value)
	for {
		head := b.head.Load()
		n.next.Store(head)
		if b.head.CompareAndSwap(head, n) {
			break
		}
	}
	d.count.Add(1)
}

// Insert prepends a new entry for key without looking for an existing
// one. Calling it twice with the same key leaves two live entries in
// the chain, of which Find returns the newer; use it only when the
// key is known absent, or go through InsertOrAssign / TryInsert.
func (d *Dict[K, V]) Insert(key K, value V) {
	t := d.loadTable()
	d.prepend(d.bucketFor(t, &key), key, value)
}

// InsertOrAssign replaces the value of an existing entry for key, or
// inserts a new one. The replacement is an atomic swap of the entry's
// value cell, safe against concurrent readers. Two InsertOrAssign
// calls racing on a key that neither sees yet can still both insert;
// the newer entry wins all later lookups.
func (d *Dict[K, V]) InsertOrAssign(key K, value V) {
	t := d.loadTable()
	b := d.bucketFor(t, &key)
	for cur := b.head.Load(); cur != nil; cur = cur.next.Load() {
		if cur.key == key && !cur.dead.Load() {
			cur.val.Store(&value)
			return
		}
	}
	d.prepend(b, key, value)
}

// TryInsert inserts only when no entry for key exists yet, reporting
// whether it inserted. An existing entry keeps its value.
func (d *Dict[K, V]) TryInsert(key K, value V) bool {
	t := d.loadTable()
	b := d.bucketFor(t, &key)
	for cur := b.head.Load(); cur != nil; cur = cur.next.Load() {
		if cur.key == key && !cur.dead.Load() {
			return false
		}
	}
	d.prepend(b, key, value)
	return true
}

// Find returns a copy of the value stored for key. The chain walk is
// a point-in-time snapshot: entries prepended after the walk passed
// the head are not seen.
func (d *Dict[K, V]) Find(key K) (value V, ok bool) {
	t := d.table.Load()
	if t == nil {
		return
	}
	for cur := d.bucketFor(t, &key).head.Load(); cur != nil; cur = cur.next.Load() {
		if cur.key == key && !cur.dead.Load() {
			return *cur.val.Load(), true
		}
	}
	return
}

// Contains reports whether an entry for key exists.
func (d *Dict[K, V]) Contains(key K) bool {
	t := d.table.Load()
	if t == nil {
		return false
	}
	for cur := d.bucketFor(t, &key).head.Load(); cur != nil; cur = cur.next.Load() {
		if cur.key == key && !cur.dead.Load() {
			return true
		}
	}
	return false
}

// At is Find for call sites where absence is a programming error: it
// returns ErrKeyNotFound instead of an ok flag.
func (d *Dict[K, V]) At(key K) (V, error) {
	if v, ok := d.Find(key); ok {
		return v, nil
	}
	var zero V
	return zero, ErrKeyNotFound
}

// Remove discards the first live entry for key, reporting whether
// one was found. The removal itself is a single CAS claiming the
// entry's dead flag, so exactly one of any number of racing removers
// wins; the physical unlink afterwards is best-effort, and the scan
// also unlinks any dead entries it walks past.
func (d *Dict[K, V]) Remove(key K) bool {
	t := d.table.Load()
	if t == nil {
		return false
	}
	b := d.bucketFor(t, &key)

	var prev *dictNode[K, V]
	cur := b.head.Load()
	for cur != nil {
		next := cur.next.Load()
		if cur.dead.Load() {
			unlink(b, prev, cur, next)
			cur = next
			continue
		}
		if cur.key == key {
			if cur.dead.CompareAndSwap(false, true) {
				unlink(b, prev, cur, next)
				d.count.Add(-1)
				return true
			}
			// Another remover claimed it first; keep scanning, a
			// duplicate entry may still be live further down.
			cur = next
			continue
		}
		prev = cur
		cur = next
	}
	return false
}

// unlink swings the predecessor's link (or the bucket head) past n.
// Best-effort: a lost CAS means the chain changed underneath, and
// whoever changed it sees the dead flag and finishes the job.
func unlink[K comparable, V any](b *dictBucket[K, V], prev, n, next *dictNode[K, V]) {
	if prev == nil {
		b.head.CompareAndSwap(n, next)
	} else {
		prev.next.CompareAndSwap(n, next)
	}
}

// Clear detaches every bucket's chain with one atomic swap per bucket
// and leaves the entries to the garbage collector. Buckets are
// cleared independently, not as one atomic step, and the entry count
// drops by the number of entries actually detached so it stays
// convergent under concurrent inserts.
func (d *Dict[K, V]) Clear() {
	t := d.table.Load()
	if t == nil {
		return
	}
	for i := range t.buckets {
		var n int64
		for cur := t.buckets[i].head.Swap(nil); cur != nil; cur = cur.next.Load() {
			// Claim each detached entry the same way Remove does, so
			// a remover racing with Clear cannot be counted twice.
			if cur.dead.CompareAndSwap(false, true) {
				n++
			}
		}
		if n != 0 {
			d.count.Add(-n)
		}
	}
}

// Size returns the number of live entries. It may be transiently
// stale while mutations are in flight but converges at quiescence.
func (d *Dict[K, V]) Size() int {
	n := d.count.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// IsEmpty reports whether the dictionary held no entries at the
// moment of the snapshot.
func (d *Dict[K, V]) IsEmpty() bool {
	return d.count.Load() <= 0
}

// Keys collects every reachable key in bucket order. Duplicate keys
// stacked by plain Insert appear once per live entry.
func (d *Dict[K, V]) Keys() []K {
	keys := make([]K, 0, d.Size())
	d.Each(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Each calls yield for every entry reachable at call time, in bucket
// order and then chain order (most recently inserted first), stopping
// early when yield returns false. It is not a consistent snapshot
// under concurrent mutation. The signature matches range-over-func,
// so `for k, v := range d.Each` works.
func (d *Dict[K, V]) Each(yield func(key K, value V) bool) {
	t := d.table.Load()
	if t == nil {
		return
	}
	for i := range t.buckets {
		for cur := t.buckets[i].head.Load(); cur != nil; cur = cur.next.Load() {
			if cur.dead.Load() {
				continue
			}
			if !yield(cur.key, *cur.val.Load()) {
				return
			}
		}
	}
}

// ToMap copies the dictionary into a plain map. When plain Insert has
// stacked duplicates, the newest entry for each key wins, matching
// what Find would return.
func (d *Dict[K, V]) ToMap() map[K]V {
	m := make(map[K]V, d.Size())
	d.Each(func(k K, v V) bool {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
		return true
	})
	return m
}

// FromMap upserts every pair of m into the dictionary.
func (d *Dict[K, V]) FromMap(m map[K]V) {
	for k, v := range m {
		d.InsertOrAssign(k, v)
	}
}

// String implements fmt.Stringer.
func (d *Dict[K, V]) String() string {
	return strings.Replace(fmt.Sprint(d.ToMap()), "map[", "Dict[", 1)
}

// MarshalJSON serializes the dictionary as a JSON object.
func (d *Dict[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ToMap())
}

// UnmarshalJSON upserts the pairs of a JSON object into the
// dictionary.
func (d *Dict[K, V]) UnmarshalJSON(data []byte) error {
	var m map[K]V
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	d.FromMap(m)
	return nil
}
