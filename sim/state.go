package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// StateVector holds the 2^NumQubits amplitudes of a register. Index bit
// 1<<(NumQubits-1-q) carries the value of qubit q.
type StateVector struct {
	Amplitudes []complex128
	NumQubits  int
}

// NewStateVector returns |0…0⟩ on numQubits qubits.
func NewStateVector(numQubits int) *StateVector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// Probabilities returns |a|² for every amplitude, unfiltered.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, a := range s.Amplitudes {
		probs[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return probs
}

// Norm returns the L2 norm of the state.
func (s *StateVector) Norm() float64 {
	return math.Sqrt(floats.Sum(s.Probabilities()))
}

// ApplyMatrix replaces the state with op·state.
func (s *StateVector) ApplyMatrix(op *mat.CDense) error {
	r, c := op.Dims()
	if r != len(s.Amplitudes) || c != len(s.Amplitudes) {
		return fmt.Errorf("operator is %dx%d, state has %d amplitudes", r, c, len(s.Amplitudes))
	}

	out := make([]complex128, r)
	for j, a := range s.Amplitudes {
		if a == 0 {
			continue
		}
		for i := range r {
			if v := op.At(i, j); v != 0 {
				out[i] += v * a
			}
		}
	}
	s.Amplitudes = out
	return nil
}

// ApplySingle applies a 2x2 operator to qubit q by pairing each index that
// has q cleared with its partner that has q set.
func (s *StateVector) ApplySingle(op Matrix2, q int) {
	bit := bitOf(q, s.NumQubits)
	for i := range s.Amplitudes {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
		s.Amplitudes[i] = op[0][0]*a0 + op[0][1]*a1
		s.Amplitudes[j] = op[1][0]*a0 + op[1][1]*a1
	}
}

// ApplyControlledX flips target on every basis state whose controls are all 1.
func (s *StateVector) ApplyControlledX(controls []int, target int) {
	var mask int
	for _, c := range controls {
		mask |= bitOf(c, s.NumQubits)
	}
	tBit := bitOf(target, s.NumQubits)
	for i := range s.Amplitudes {
		if i&mask == mask && i&tBit == 0 {
			j := i | tBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// ApplySwap exchanges qubits a and b.
func (s *StateVector) ApplySwap(a, b int) {
	aBit := bitOf(a, s.NumQubits)
	bBit := bitOf(b, s.NumQubits)
	for i := range s.Amplitudes {
		if i&aBit != 0 && i&bBit == 0 {
			j := (i &^ aBit) | bBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// QubitProbability is the marginal distribution of one qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// QubitMarginals returns P(0) and P(1) for every qubit.
func (s *StateVector) QubitMarginals() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	for i, p := range s.Probabilities() {
		for q := range s.NumQubits {
			if i&bitOf(q, s.NumQubits) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}
