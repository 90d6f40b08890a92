package atomix

import (
	"math/bits"
	"unsafe"
)

type hashFunc func(unsafe.Pointer, uintptr) uintptr

// defaultHasher returns the hash function used for key type K when
// the caller supplies none. Integer kinds hash as themselves (their
// natural distribution is enough for a mod-S bucket spread); every
// other comparable type falls back to Go's built-in hasher for K.
func defaultHasher[K comparable]() hashFunc {
	builtIn := builtInHasher[K]()

	switch any(*new(K)).(type) {
	case uint, int, uintptr:
		return func(value unsafe.Pointer, seed uintptr) uintptr {
			return *(*uintptr)(value)
		}

	case uint64, int64:
		if bits.UintSize == 32 {
			return func(value unsafe.Pointer, seed uintptr) uintptr {
				v := *(*uint64)(value)
				return uintptr(v) ^ uintptr(v>>32)
			}
		}
		return func(value unsafe.Pointer, seed uintptr) uintptr {
			return uintptr(*(*uint64)(value))
		}

	case uint32, int32:
		return func(value unsafe.Pointer, seed uintptr) uintptr {
			return uintptr(*(*uint32)(value))
		}

	case uint16, int16:
		return func(value unsafe.Pointer, seed uintptr) uintptr {
			return uintptr(*(*uint16)(value))
		}

	case uint8, int8:
		return func(value unsafe.Pointer, seed uintptr) uintptr {
			return uintptr(*(*uint8)(value))
		}

	default:
		return builtIn
	}
}

// builtInHasher extracts Go's built-in hash function for K from the
// runtime's map type descriptor. This mirrors the runtime's internal
// type representation and must be re-checked against each Go version
// upgrade.
func builtInHasher[K comparable]() hashFunc {
	var m map[K]struct{}
	return iTypeOf(m).MapType().Hasher
}

type iTFlag uint8
type iKind uint8
type iNameOff int32
type iTypeOff int32

// iType mirrors the layout of the runtime type descriptor
// (abi.Type). Only the layout matters here; the fields themselves are
// never interpreted beyond MapType.
type iType struct {
	Size_       uintptr
	PtrBytes    uintptr
	Hash        uint32
	TFlag       iTFlag
	Align_      uint8
	FieldAlign_ uint8
	Kind_       iKind
	Equal       func(unsafe.Pointer, unsafe.Pointer) bool
	GCData      *byte
	Str         iNameOff
	PtrToThis   iTypeOff
}

func (t *iType) MapType() *iMapType {
	return (*iMapType)(unsafe.Pointer(t))
}

// iMapType mirrors the runtime map type descriptor (abi.SwissMapType)
// far enough to reach the key hasher.
type iMapType struct {
	iType
	Key   *iType
	Elem  *iType
	Group *iType
	// function for hashing keys (ptr to key, seed) -> hash
	Hasher func(unsafe.Pointer, uintptr) uintptr
}

func iTypeOf(a any) *iType {
	eface := *(*iEmptyInterface)(unsafe.Pointer(&a))
	// Type descriptors are either static or permanently reachable, so
	// hiding them from escape analysis is safe and keeps a from
	// escaping.
	return (*iType)(noescape(unsafe.Pointer(eface.Type)))
}

type iEmptyInterface struct {
	Type *iType
	Data unsafe.Pointer
}

// noescape hides a pointer from escape analysis. It is the identity
// function, but escape analysis cannot see through the xor, and it
// compiles down to zero instructions. USE CAREFULLY!
//
//go:nosplit
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
