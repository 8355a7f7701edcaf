package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// bitOf returns the basis-index mask of qubit q in an n-qubit register.
// Qubit 0 is the most significant bit.
func bitOf(q, n int) int {
	return 1 << (n - 1 - q)
}

func checkIndex(q, n int) error {
	if q < 0 || q >= n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, q, n)
	}
	return nil
}

// Expand embeds a single-qubit operator into the full 2^n-dimensional space as
// I⊗…⊗op⊗…⊗I, with op at tensor position target and qubit 0 leftmost.
func Expand(op Matrix2, target, n int) (*mat.CDense, error) {
	if err := checkIndex(target, n); err != nil {
		return nil, err
	}

	full := mat.NewCDense(1, 1, []complex128{1})
	for q := range n {
		factor := Identity2
		if q == target {
			factor = op
		}
		full = kron(full, factor)
	}
	return full, nil
}

// kron returns a⊗b.
func kron(a *mat.CDense, b Matrix2) *mat.CDense {
	r, c := a.Dims()
	out := mat.NewCDense(2*r, 2*c, nil)
	for i := range r {
		for j := range c {
			v := a.At(i, j)
			if v == 0 {
				continue
			}
			for k := range 2 {
				for l := range 2 {
					out.Set(2*i+k, 2*j+l, v*b[k][l])
				}
			}
		}
	}
	return out
}
