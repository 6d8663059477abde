package functional

import "golang.org/x/exp/constraints"

// Number covers the arithmetic types accepted by the arithmetic function
// objects
type Number interface {
	constraints.Integer | constraints.Float
}

// Min returns the smaller of a and b
func Min[T constraints.Ordered](a, b T) T {
	if b < a {
		return b
	}
	return a
}

// Max returns the larger of a and b
func Max[T constraints.Ordered](a, b T) T {
	if a < b {
		return b
	}
	return a
}

// Swap exchanges the values behind a and b
func Swap[T any](a, b *T) {
	*a, *b = *b, *a
}

// CeilDiv returns a/b rounded toward positive infinity for non-negative a
// and positive b
func CeilDiv[T constraints.Integer](a, b T) T {
	return (a + b - 1) / b
}

// Comparison function objects. Each is usable directly as a comparator value,
// e.g. sort predicates take functional.Less[uint64].

func Less[T constraints.Ordered](a, b T) bool         { return a < b }
func LessEqual[T constraints.Ordered](a, b T) bool    { return a <= b }
func Greater[T constraints.Ordered](a, b T) bool      { return a > b }
func GreaterEqual[T constraints.Ordered](a, b T) bool { return a >= b }
func EqualTo[T comparable](a, b T) bool               { return a == b }
func NotEqualTo[T comparable](a, b T) bool            { return a != b }

// Arithmetic function objects

func Plus[T Number](a, b T) T       { return a + b }
func Minus[T Number](a, b T) T      { return a - b }
func Multiplies[T Number](a, b T) T { return a * b }
