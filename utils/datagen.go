package utils

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// RandomData draws count elements of type K: integer types get full-width
// uniform bit patterns, float types get finite uniform values
func RandomData[K Scalar](seed uint64, count int) []K {
	rng := rand.New(rand.NewSource(seed))
	out := make([]K, count)
	switch s := any(out).(type) {
	case []float32:
		u := distuv.Uniform{Min: -1e6, Max: 1e6, Src: rng}
		for i := range s {
			s[i] = float32(u.Rand())
		}
	case []float64:
		u := distuv.Uniform{Min: -1e6, Max: 1e6, Src: rng}
		for i := range s {
			s[i] = u.Rand()
		}
	default:
		for i := range out {
			out[i] = FromBits[K](rng.Uint64())
		}
	}
	return out
}

// Iota returns [0, 1, 2, ...) as type V, the payload used to watch values
// travel with their keys
func Iota[V Scalar](count int) []V {
	out := make([]V, count)
	for i := range out {
		out[i] = V(i)
	}
	return out
}

// TestSizes returns the element-count ladder the correctness sweeps run
// over, capped at max, plus extra randomized sizes drawn in [1, max]
func TestSizes(seed uint64, extra, max int) []int {
	ladder := []int{1, 10, 53, 211, 1024, 2345, 4096, 34567, 1<<16 + 1220}
	var sizes []int
	for _, n := range ladder {
		if n <= max {
			sizes = append(sizes, n)
		}
	}
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < extra; i++ {
		sizes = append(sizes, 1+rng.Intn(max))
	}
	return sizes
}
