package utils

import (
	"math"
	"sort"

	"github.com/LideDing/rocPRIM/device"
	"github.com/LideDing/rocPRIM/functional"
	"github.com/LideDing/rocPRIM/radix"
	"golang.org/x/exp/constraints"
)

// Scalar covers the host-side element types the harness generates and checks
type Scalar interface {
	constraints.Integer | constraints.Float
}

// RawBits returns the raw bit pattern of k in the low bits of a uint64
func RawBits[K Scalar](k K) uint64 {
	switch v := any(k).(type) {
	case uint8:
		return uint64(v)
	case uint16:
		return uint64(v)
	case uint32:
		return uint64(v)
	case uint64:
		return v
	case int8:
		return uint64(uint8(v))
	case int16:
		return uint64(uint16(v))
	case int32:
		return uint64(uint32(v))
	case int64:
		return uint64(v)
	case float32:
		return uint64(math.Float32bits(v))
	case float64:
		return math.Float64bits(v)
	}
	return 0
}

// FromBits builds a K out of a raw bit pattern, inverse of RawBits
func FromBits[K Scalar](bits uint64) K {
	var k K
	switch p := any(&k).(type) {
	case *uint8:
		*p = uint8(bits)
	case *uint16:
		*p = uint16(bits)
	case *uint32:
		*p = uint32(bits)
	case *uint64:
		*p = bits
	case *int8:
		*p = int8(bits)
	case *int16:
		*p = int16(bits)
	case *int32:
		*p = int32(bits)
	case *int64:
		*p = int64(bits)
	case *float32:
		*p = math.Float32frombits(uint32(bits))
	case *float64:
		*p = math.Float64frombits(bits)
	}
	return k
}

// ReferenceSortKeys stably sorts a copy of keys by the [startBit, endBit)
// window of their canonical bits, the trusted ordering the device sort is
// checked against. endBit == 0 selects the full key width.
func ReferenceSortKeys[K Scalar](dt device.DataType, keys []K,
	startBit, endBit int, descending bool) []K {

	if endBit == 0 {
		endBit = dt.Bits()
	}
	cmp := functional.Less[uint64]
	if descending {
		cmp = functional.Greater[uint64]
	}
	out := make([]K, len(keys))
	copy(out, keys)
	sort.SliceStable(out, func(i, j int) bool {
		wi := radix.WindowValue(dt, RawBits(out[i]), startBit, endBit)
		wj := radix.WindowValue(dt, RawBits(out[j]), startBit, endBit)
		return cmp(wi, wj)
	})
	return out
}

// ReferenceSortPairs stably sorts copies of a key/value pairing by the key
// bit window, carrying each value with its key instance
func ReferenceSortPairs[K Scalar, V Scalar](dt device.DataType, keys []K,
	values []V, startBit, endBit int, descending bool) ([]K, []V) {

	if endBit == 0 {
		endBit = dt.Bits()
	}
	cmp := functional.Less[uint64]
	if descending {
		cmp = functional.Greater[uint64]
	}
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		wi := radix.WindowValue(dt, RawBits(keys[order[i]]), startBit, endBit)
		wj := radix.WindowValue(dt, RawBits(keys[order[j]]), startBit, endBit)
		return cmp(wi, wj)
	})
	outKeys := make([]K, len(keys))
	outVals := make([]V, len(values))
	for i, idx := range order {
		outKeys[i] = keys[idx]
		outVals[i] = values[idx]
	}
	return outKeys, outVals
}
