package veb

import (
	"math"
	randv2 "math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xveb/lib/infra"
)

func TestInt32KeyEncoding(t *testing.T) {
	require.Equal(t, uint64(1<<63), Int32ToKey(0))
	require.Equal(t, uint64(1<<63)-1, Int32ToKey(-1))
	require.Equal(t, uint64(1<<63)+5, Int32ToKey(5))
	require.Equal(t, uint64(1<<63)-(1<<31), Int32ToKey(math.MinInt32))
	require.Equal(t, uint64(1<<63)+(1<<31)-1, Int32ToKey(math.MaxInt32))

	for _, v := range []int32{math.MinInt32, -65536, -1, 0, 1, 2, 15, 1 << 20, math.MaxInt32} {
		require.Equal(t, v, KeyToInt32(Int32ToKey(v)))
	}
}

func TestFloat32KeyEncoding(t *testing.T) {
	require.Equal(t, uint64(0x80000000), Float32ToKey(0))
	require.Equal(t, uint64(0x7FFFFFFF), Float32ToKey(float32(math.Copysign(0, -1))))
	require.Equal(t, uint64(0xC0B00000), Float32ToKey(5.5))
	require.Less(t, Float32ToKey(float32(math.Inf(1))), uint64(1<<32))

	for _, v := range []float32{
		float32(math.Inf(-1)), -math.MaxFloat32, -8.7, -1, -math.SmallestNonzeroFloat32,
		float32(math.Copysign(0, -1)), 0, math.SmallestNonzeroFloat32, 2.3, 5.5, 8.7, 15.2,
		math.MaxFloat32, float32(math.Inf(1)),
	} {
		got := KeyToFloat32(Float32ToKey(v))
		require.Equal(t, math.Float32bits(v), math.Float32bits(got))
	}

	nan := float32(math.NaN())
	require.Equal(t, math.Float32bits(nan), math.Float32bits(KeyToFloat32(Float32ToKey(nan))))
}

func TestFloat64KeyEncoding(t *testing.T) {
	require.Equal(t, uint64(1<<63), Float64ToKey(0))
	require.Equal(t, uint64(1<<63)-1, Float64ToKey(math.Copysign(0, -1)))

	for _, v := range []float64{
		math.Inf(-1), -math.MaxFloat64, -15.75, -1, -math.SmallestNonzeroFloat64,
		math.Copysign(0, -1), 0, math.SmallestNonzeroFloat64, 2.3, 5.5, 10.25, math.MaxFloat64,
		math.Inf(1),
	} {
		got := KeyToFloat64(Float64ToKey(v))
		require.Equal(t, math.Float64bits(v), math.Float64bits(got))
	}

	nan := math.NaN()
	require.Equal(t, math.Float64bits(nan), math.Float64bits(KeyToFloat64(Float64ToKey(nan))))
}

func TestKeyRoundTrip_Random(t *testing.T) {
	rand := randv2.New(randv2.NewPCG(7, 11))
	for i := 0; i < 100_000; i++ {
		i32 := int32(rand.Uint32())
		require.Equal(t, i32, DecodeKey[int32](EncodeKey[int32](i32)))

		f32 := math.Float32frombits(rand.Uint32())
		require.Equal(t, math.Float32bits(f32), math.Float32bits(DecodeKey[float32](EncodeKey[float32](f32))))

		f64 := math.Float64frombits(rand.Uint64())
		require.Equal(t, math.Float64bits(f64), math.Float64bits(DecodeKey[float64](EncodeKey[float64](f64))))
	}
}

// numericCompare returns -1, 0 or 1. NaN compares as equal to everything.
func numericCompare[K infra.NumericKey](i, j K) int64 {
	if i < j {
		return -1
	} else if i > j {
		return 1
	}
	return 0
}

func TestNumericCompare(t *testing.T) {
	require.Equal(t, int64(-1), numericCompare[int32](-3, 7))
	require.Equal(t, int64(1), numericCompare[int32](math.MaxInt32, math.MinInt32))
	require.Equal(t, int64(0), numericCompare[int32](5, 5))
	require.Equal(t, int64(-1), numericCompare[float32](2.3, 5.5))
	require.Equal(t, int64(0), numericCompare[float32](float32(math.Copysign(0, -1)), 0))
	require.Equal(t, int64(1), numericCompare[float64](math.Inf(1), math.MaxFloat64))
	require.Equal(t, int64(0), numericCompare[float64](math.NaN(), 1.0))
}

func checkOrderPreserved[T infra.NumericKey](t *testing.T, values []T) {
	t.Helper()
	for _, v1 := range values {
		for _, v2 := range values {
			if v1 == v2 {
				continue
			}
			k1, k2 := EncodeKey[T](v1), EncodeKey[T](v2)
			if numericCompare[T](v1, v2) < 0 {
				require.Lessf(t, k1, k2, "%v < %v", v1, v2)
			} else {
				require.Greaterf(t, k1, k2, "%v > %v", v1, v2)
			}
		}
	}
}

func TestKeyOrderPreservation(t *testing.T) {
	rand := randv2.New(randv2.NewPCG(3, 5))

	ints := []int32{math.MinInt32, -1 << 20, -7, -1, 0, 1, 7, 1 << 20, math.MaxInt32}
	floats32 := []float32{float32(math.Inf(-1)), -math.MaxFloat32, -3.5, -math.SmallestNonzeroFloat32,
		0, math.SmallestNonzeroFloat32, 2.3, 5.5, math.MaxFloat32, float32(math.Inf(1))}
	floats64 := []float64{math.Inf(-1), -math.MaxFloat64, -3.5, -math.SmallestNonzeroFloat64,
		0, math.SmallestNonzeroFloat64, 2.3, 5.5, math.MaxFloat64, math.Inf(1)}
	for i := 0; i < 64; i++ {
		ints = append(ints, int32(rand.Uint32()))
		floats32 = append(floats32, float32(rand.NormFloat64()*1e6))
		floats64 = append(floats64, rand.NormFloat64()*1e12)
	}
	checkOrderPreserved[int32](t, ints)
	checkOrderPreserved[float32](t, floats32)
	checkOrderPreserved[float64](t, floats64)

	// The sorted keys decode back into the sorted values.
	keys := make([]uint64, 0, len(floats64))
	for _, f := range floats64 {
		keys = append(keys, Float64ToKey(f))
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for i := 1; i < len(keys); i++ {
		require.LessOrEqual(t, KeyToFloat64(keys[i-1]), KeyToFloat64(keys[i]))
	}
}

func TestKeyKind(t *testing.T) {
	require.Equal(t, KindInt32, KindOf[int32]())
	require.Equal(t, KindFloat32, KindOf[float32]())
	require.Equal(t, KindFloat64, KindOf[float64]())
	require.Equal(t, "int32", KindInt32.String())
	require.Equal(t, "float32", KindFloat32.String())
	require.Equal(t, "float64", KindFloat64.String())
	require.Equal(t, "unknown", _kindMax.String())
}

func TestFullUniverse(t *testing.T) {
	require.Equal(t, uint64(1<<32), FullUniverse[int32]())
	require.Equal(t, uint64(1<<32), FullUniverse[float32]())
	require.Equal(t, uint64(math.MaxUint64), FullUniverse[float64]())

	require.Equal(t, Int32ToKey(math.MinInt32), lowestKey(KindInt32))
	require.Equal(t, uint64(0), lowestKey(KindFloat32))
	require.Equal(t, uint64(0), lowestKey(KindFloat64))

	// The highest value of each type stays inside its full window.
	require.Less(t, Int32ToKey(math.MaxInt32)-lowestKey(KindInt32), FullUniverse[int32]())
	require.Less(t, Float32ToKey(float32(math.Inf(1))), FullUniverse[float32]())
	require.Less(t, Float64ToKey(math.Inf(1)), FullUniverse[float64]())
}
