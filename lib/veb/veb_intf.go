package veb

import (
	"github.com/benz9527/xveb/lib/infra"
)

// KeyKind tags the element type a key was encoded from.
type KeyKind uint8

const (
	KindInt32 KeyKind = iota
	KindFloat32
	KindFloat64
	_kindMax
)

func (kind KeyKind) String() string {
	switch kind {
	case KindInt32:
		return "int32"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	default:
	}
	return "unknown"
}

// VEB is a van Emde Boas ordered set over the raw key universe [0, Universe()).
// Every operation costs O(log log U).
//
// It is not safe for concurrent use. Callers have to
// synchronize a tree shared between goroutines.
type VEB interface {
	Universe() uint64
	Len() int64
	// Insert is idempotent. A key outside the universe is rejected
	// with ErrVEBOutOfUniverse.
	Insert(key uint64) error
	InsertAll(keys ...uint64) error
	Contains(key uint64) bool
	// Successor returns the smallest present key strictly greater than key.
	Successor(key uint64) (uint64, bool)
	// Predecessor returns the largest present key strictly less than key.
	Predecessor(key uint64) (uint64, bool)
	// Remove reports whether the key was present.
	Remove(key uint64) (bool, error)
	RemoveAll(keys ...uint64) (int64, error)
	Min() (uint64, bool)
	Max() (uint64, bool)
	Foreach(action func(idx int64, key uint64) bool)
	Release()
}

// TypedVEB indexes int32, float32 or float64 values through the
// order-preserving key codec. A tree is bound to exactly one element
// type, keys of different types never share a tree.
//
// The universe is a window of consecutive encoded keys which starts
// at the origin value, the zero value of T unless an origin option
// is given.
type TypedVEB[T infra.NumericKey] interface {
	Kind() KeyKind
	Universe() uint64
	Len() int64
	Insert(v T) error
	InsertAll(vs ...T) error
	Contains(v T) bool
	Successor(v T) (T, bool)
	Predecessor(v T) (T, bool)
	Remove(v T) (bool, error)
	RemoveAll(vs ...T) (int64, error)
	Min() (T, bool)
	Max() (T, bool)
	Foreach(action func(idx int64, v T) bool)
	Release()
}
