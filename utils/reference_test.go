package utils

import (
	"math"
	"sort"
	"testing"

	"github.com/LideDing/rocPRIM/device"
	"github.com/stretchr/testify/require"
)

func TestRawBitsRoundTrip(t *testing.T) {
	require.Equal(t, int32(-12345), FromBits[int32](RawBits(int32(-12345))))
	require.Equal(t, uint64(1<<63), FromBits[uint64](RawBits(uint64(1<<63))))
	require.Equal(t, float32(-1.5), FromBits[float32](RawBits(float32(-1.5))))
	require.Equal(t, -2.75, FromBits[float64](RawBits(-2.75)))
	require.Equal(t, int8(-128), FromBits[int8](RawBits(int8(-128))))

	// NaN payload bits survive the round trip even though the values
	// compare unequal
	nanBits := uint64(0x7FF8000000000F00)
	require.Equal(t, nanBits, RawBits(FromBits[float64](nanBits)))
}

func TestReferenceSortKeysFullWidth(t *testing.T) {
	keys := RandomData[int32](11, 500)
	got := ReferenceSortKeys(device.Int32, keys, 0, 0, false)

	want := append([]int32(nil), keys...)
	sort.SliceStable(want, func(i, j int) bool { return want[i] < want[j] })
	require.Equal(t, want, got)

	gotDesc := ReferenceSortKeys(device.Int32, keys, 0, 0, true)
	wantDesc := append([]int32(nil), keys...)
	sort.SliceStable(wantDesc, func(i, j int) bool { return wantDesc[i] > wantDesc[j] })
	require.Equal(t, wantDesc, gotDesc)
}

func TestReferenceSortKeysFloatMatchesNative(t *testing.T) {
	keys := RandomData[float64](13, 300)
	got := ReferenceSortKeys(device.Float64, keys, 0, 0, false)

	want := append([]float64(nil), keys...)
	sort.SliceStable(want, func(i, j int) bool { return want[i] < want[j] })
	require.Equal(t, want, got)
}

func TestReferenceSortKeysWindow(t *testing.T) {
	// Only bits [4,8) participate; ties keep input order
	keys := []uint32{0x35, 0x31, 0x2F, 0x30, 0x1A}
	got := ReferenceSortKeys(device.Uint32, keys, 4, 8, false)
	require.Equal(t, []uint32{0x1A, 0x2F, 0x35, 0x31, 0x30}, got)
}

func TestReferenceSortKeysLeavesInputAlone(t *testing.T) {
	keys := []uint32{3, 1, 2}
	_ = ReferenceSortKeys(device.Uint32, keys, 0, 0, false)
	require.Equal(t, []uint32{3, 1, 2}, keys)
}

func TestReferenceSortPairsCarriesValues(t *testing.T) {
	keys := []uint16{7, 3, 7, 3, 7}
	values := Iota[int64](len(keys))
	gotKeys, gotVals := ReferenceSortPairs(device.Uint16, keys, values, 0, 0, false)
	require.Equal(t, []uint16{3, 3, 7, 7, 7}, gotKeys)
	require.Equal(t, []int64{1, 3, 0, 2, 4}, gotVals)
}

func TestRandomData(t *testing.T) {
	a := RandomData[uint64](42, 1000)
	b := RandomData[uint64](42, 1000)
	require.Equal(t, a, b, "same seed must reproduce the same data")

	c := RandomData[uint64](43, 1000)
	require.NotEqual(t, a, c)

	f := RandomData[float32](1, 1000)
	for _, v := range f {
		require.False(t, math.IsNaN(float64(v)))
		require.False(t, math.IsInf(float64(v), 0))
	}
}

func TestIota(t *testing.T) {
	require.Equal(t, []int32{0, 1, 2, 3}, Iota[int32](4))
	require.Empty(t, Iota[uint8](0))
}

func TestTestSizes(t *testing.T) {
	sizes := TestSizes(7, 3, 5000)
	require.Contains(t, sizes, 1)
	require.Contains(t, sizes, 1024)
	require.NotContains(t, sizes, 34567)
	for _, n := range sizes {
		require.Greater(t, n, 0)
		require.LessOrEqual(t, n, 5000)
	}
	require.Equal(t, TestSizes(7, 3, 5000), sizes, "seeded sizes must be reproducible")
}
