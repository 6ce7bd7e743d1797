package veb

import (
	"math"

	"github.com/benz9527/xveb/lib/infra"
)

// The codec maps numeric values into uint64 keys whose unsigned order
// matches the numeric order of values of the same type.
// It is the only place where integer and float bit patterns are
// reinterpreted.

const (
	signBit32 uint32 = 1 << 31
	signBit64 uint64 = 1 << 63
)

// Int32ToKey biases the widened value by 2^63.
func Int32ToKey(v int32) uint64 {
	return uint64(int64(v)) + signBit64
}

func KeyToInt32(key uint64) int32 {
	return int32(int64(key - signBit64))
}

// Float32ToKey flips the sign bit of a positive pattern and complements
// all bits of a negative one. The key uses the low 32 bits only.
// -0 and +0 become adjacent keys, NaN order is unspecified.
func Float32ToKey(f float32) uint64 {
	bits := math.Float32bits(f)
	if bits&signBit32 != 0 {
		bits = ^bits
	} else {
		bits ^= signBit32
	}
	return uint64(bits)
}

func KeyToFloat32(key uint64) float32 {
	bits := uint32(key)
	if bits&signBit32 != 0 {
		bits ^= signBit32
	} else {
		bits = ^bits
	}
	return math.Float32frombits(bits)
}

func Float64ToKey(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits&signBit64 != 0 {
		bits = ^bits
	} else {
		bits ^= signBit64
	}
	return bits
}

func KeyToFloat64(key uint64) float64 {
	bits := key
	if bits&signBit64 != 0 {
		bits ^= signBit64
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits)
}

func KindOf[T infra.NumericKey]() KeyKind {
	var zero T
	switch any(zero).(type) {
	case int32:
		return KindInt32
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	default:
	}
	// impossible run to here
	panic( /* debug assertion */ "[veb] unknown numeric key type")
}

func EncodeKey[T infra.NumericKey](v T) uint64 {
	switch x := any(v).(type) {
	case int32:
		return Int32ToKey(x)
	case float32:
		return Float32ToKey(x)
	case float64:
		return Float64ToKey(x)
	default:
	}
	// impossible run to here
	panic( /* debug assertion */ "[veb] unknown numeric key type")
}

func DecodeKey[T infra.NumericKey](key uint64) T {
	var v any
	switch KindOf[T]() {
	case KindInt32:
		v = KeyToInt32(key)
	case KindFloat32:
		v = KeyToFloat32(key)
	case KindFloat64:
		v = KeyToFloat64(key)
	default:
	}
	return v.(T)
}

// lowestKey is the smallest key the kind can encode to.
func lowestKey(kind KeyKind) uint64 {
	if kind == KindInt32 {
		return Int32ToKey(math.MinInt32)
	}
	return 0
}

// FullUniverse is the universe which, anchored by WithVEBFullRange,
// covers every value of T. For float64 the single key MaxUint64,
// a NaN pattern, stays out of reach.
func FullUniverse[T infra.NumericKey]() uint64 {
	switch KindOf[T]() {
	case KindInt32, KindFloat32:
		return 1 << 32
	default:
	}
	return math.MaxUint64
}
