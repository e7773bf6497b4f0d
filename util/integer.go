package util

import "golang.org/x/exp/constraints"

// Abs returns the absolute value of x.
func Abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// ScaleRange maps x linearly from [srcMin, srcMax] onto [dstMin, dstMax]
// using truncating integer division. x is not clamped.
func ScaleRange[T constraints.Signed](x, srcMin, srcMax, dstMin, dstMax T) T {
	a := (dstMax - dstMin) * (x - srcMin)
	b := srcMax - srcMin
	return a/b + dstMin
}

// Mod returns x modulo m in the range [0, m).
func Mod[T constraints.Integer](x, m T) T {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}
