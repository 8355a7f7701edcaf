package sim

import (
	"gonum.org/v1/gonum/mat"
)

// Controlled builds the permutation matrix that flips target on every basis
// state whose control bits are all 1 and leaves the rest fixed. CNOT passes
// one control, CCNOT two.
func Controlled(controls []int, target, n int) (*mat.CDense, error) {
	if err := checkIndex(target, n); err != nil {
		return nil, err
	}
	var mask int
	for _, c := range controls {
		if err := checkIndex(c, n); err != nil {
			return nil, err
		}
		mask |= bitOf(c, n)
	}

	size := 1 << n
	tBit := bitOf(target, n)
	m := mat.NewCDense(size, size, nil)
	for i := range size {
		if i&mask == mask {
			m.Set(i^tBit, i, 1)
		} else {
			m.Set(i, i, 1)
		}
	}
	return m, nil
}

// Swap builds the permutation matrix exchanging qubits a and b.
func Swap(a, b, n int) (*mat.CDense, error) {
	if err := checkIndex(a, n); err != nil {
		return nil, err
	}
	if err := checkIndex(b, n); err != nil {
		return nil, err
	}

	size := 1 << n
	aBit, bBit := bitOf(a, n), bitOf(b, n)
	m := mat.NewCDense(size, size, nil)
	for i := range size {
		if (i&aBit == 0) != (i&bBit == 0) {
			m.Set(i^aBit^bBit, i, 1)
		} else {
			m.Set(i, i, 1)
		}
	}
	return m, nil
}
