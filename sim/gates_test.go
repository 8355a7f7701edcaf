package sim

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func assertUnitary(t *testing.T, m Matrix2) {
	t.Helper()
	p := m.Dagger().Mul(m)
	for i := range 2 {
		for j := range 2 {
			want := complex(0, 0)
			if i == j {
				want = 1
			}
			assert.InDelta(t, 0, cmplx.Abs(p[i][j]-want), 1e-12, "entry (%d,%d)", i, j)
		}
	}
}

func TestFixedGatesAreUnitary(t *testing.T) {
	for _, k := range []GateKind{GateH, GateX, GateY, GateZ, GateS, GateT} {
		t.Run(k.String(), func(t *testing.T) {
			m, ok := FixedMatrix(k)
			require.True(t, ok)
			assertUnitary(t, m)
		})
	}
	_, ok := FixedMatrix(GateCNOT)
	assert.False(t, ok)
}

func TestRotation(t *testing.T) {
	for _, axis := range []string{"X", "y", "Z"} {
		for _, theta := range []float64{0, 0.4, math.Pi / 2, math.Pi, -3} {
			m, err := Rotation(axis, theta)
			require.NoError(t, err)
			assertUnitary(t, m)
		}
	}

	rx, err := Rotation("X", math.Pi)
	require.NoError(t, err)
	assert.InDelta(t, 0, cmplx.Abs(rx[0][1]-complex(0, -1)), 1e-12)

	rz, err := Rotation("Z", math.Pi)
	require.NoError(t, err)
	assert.InDelta(t, 0, cmplx.Abs(rz[0][0]-complex(0, -1)), 1e-12)
	assert.InDelta(t, 0, cmplx.Abs(rz[1][1]-complex(0, 1)), 1e-12)

	_, err = Rotation("W", 1)
	assert.ErrorIs(t, err, ErrInvalidAxis)
}

func TestParseGateKind(t *testing.T) {
	tests := []struct {
		name string
		want GateKind
		err  error
	}{
		{"h", GateH, nil},
		{" cnot ", GateCNOT, nil},
		{"Ccnot", GateCCNOT, nil},
		{"Measure", GateMeasure, nil},
		{"rz", GateRZ, nil},
		{"RW", 0, ErrInvalidAxis},
		{"r1", 0, ErrInvalidAxis},
		{"CZ", 0, ErrUnknownGate},
		{"", 0, ErrUnknownGate},
	}
	for _, tt := range tests {
		got, err := ParseGateKind(tt.name)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	for _, k := range GateKinds() {
		got, err := ParseGateKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
}

func TestExpandMatchesKernel(t *testing.T) {
	ry, err := Rotation("Y", 0.9)
	require.NoError(t, err)

	for n := 1; n <= 4; n++ {
		for target := range n {
			full, err := Expand(ry, target, n)
			require.NoError(t, err)
			r, c := full.Dims()
			require.Equal(t, 1<<n, r)
			require.Equal(t, 1<<n, c)

			seed := randomState(n)
			viaMatrix := seed.Clone()
			require.NoError(t, viaMatrix.ApplyMatrix(full))
			viaKernel := seed.Clone()
			viaKernel.ApplySingle(ry, target)

			assertStatesEqual(t, viaMatrix, viaKernel)
		}
	}
}

func TestExpandTargetsMostSignificantBit(t *testing.T) {
	full, err := Expand(PauliX, 0, 2)
	require.NoError(t, err)
	// X on qubit 0 maps |00⟩ (index 0) to |10⟩ (index 2).
	assert.Equal(t, complex(1, 0), full.At(2, 0))
	assert.Equal(t, complex(0, 0), full.At(1, 0))

	_, err = Expand(PauliX, 2, 2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestPermutationMatrices(t *testing.T) {
	cnot, err := Controlled([]int{0}, 1, 2)
	require.NoError(t, err)
	assertPermutation(t, cnot)
	assert.Equal(t, complex(1, 0), cnot.At(3, 2)) // |10⟩ -> |11⟩
	assert.Equal(t, complex(1, 0), cnot.At(1, 1)) // |01⟩ fixed

	toffoli, err := Controlled([]int{0, 1}, 2, 3)
	require.NoError(t, err)
	assertPermutation(t, toffoli)
	assert.Equal(t, complex(1, 0), toffoli.At(7, 6))
	assert.Equal(t, complex(1, 0), toffoli.At(5, 5))

	swap, err := Swap(0, 2, 3)
	require.NoError(t, err)
	assertPermutation(t, swap)
	assert.Equal(t, complex(1, 0), swap.At(1, 4)) // |100⟩ -> |001⟩
	assert.Equal(t, complex(1, 0), swap.At(2, 2))

	_, err = Swap(0, 3, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = Controlled([]int{5}, 0, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestPermutationsMatchKernels(t *testing.T) {
	n := 4
	seed := randomState(n)

	toffoli, err := Controlled([]int{3, 1}, 0, n)
	require.NoError(t, err)
	viaMatrix := seed.Clone()
	require.NoError(t, viaMatrix.ApplyMatrix(toffoli))
	viaKernel := seed.Clone()
	viaKernel.ApplyControlledX([]int{3, 1}, 0)
	assertStatesEqual(t, viaMatrix, viaKernel)

	swap, err := Swap(2, 0, n)
	require.NoError(t, err)
	viaMatrix = seed.Clone()
	require.NoError(t, viaMatrix.ApplyMatrix(swap))
	viaKernel = seed.Clone()
	viaKernel.ApplySwap(2, 0)
	assertStatesEqual(t, viaMatrix, viaKernel)
}

func TestApplyMatrixDimensionMismatch(t *testing.T) {
	s := NewStateVector(2)
	full, err := Expand(Hadamard, 0, 3)
	require.NoError(t, err)
	assert.Error(t, s.ApplyMatrix(full))
}

// randomState builds a deterministic normalised state with distinct amplitudes.
func randomState(n int) *StateVector {
	s := NewStateVector(n)
	var norm float64
	for i := range s.Amplitudes {
		a := complex(math.Sin(float64(i)+1), math.Cos(3*float64(i)))
		s.Amplitudes[i] = a
		norm += real(a)*real(a) + imag(a)*imag(a)
	}
	for i := range s.Amplitudes {
		s.Amplitudes[i] /= complex(math.Sqrt(norm), 0)
	}
	return s
}

func assertStatesEqual(t *testing.T, want, got *StateVector) {
	t.Helper()
	require.Len(t, got.Amplitudes, len(want.Amplitudes))
	for i := range want.Amplitudes {
		assert.InDelta(t, 0, cmplx.Abs(want.Amplitudes[i]-got.Amplitudes[i]), 1e-12, "amplitude %d", i)
	}
}

func assertPermutation(t *testing.T, m *mat.CDense) {
	t.Helper()
	r, c := m.Dims()
	for i := range r {
		var rowSum, colSum complex128
		for j := range c {
			rowSum += m.At(i, j)
			colSum += m.At(j, i)
		}
		assert.Equal(t, complex(1, 0), rowSum, "row %d", i)
		assert.Equal(t, complex(1, 0), colSum, "column %d", i)
	}
}
