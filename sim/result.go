package sim

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// ProbabilityThreshold is the cut-off at or below which outcomes are dropped.
const ProbabilityThreshold = 1e-9

// ProbabilityMap maps a basis string (qubit 0 first) to its probability.
type ProbabilityMap map[string]float64

// Result is the wire form returned to callers: {"states": {...}}.
type Result struct {
	States ProbabilityMap `json:"states" yaml:"states"`
}

// Outcome is one entry of a ProbabilityMap.
type Outcome struct {
	State       string
	Probability float64
}

// BasisString renders index i as an n-character binary string.
func BasisString(i, n int) string {
	return fmt.Sprintf("%0*b", n, i)
}

// Probabilities converts the final amplitudes into a ProbabilityMap. Entries
// at or below ProbabilityThreshold are omitted and the remainder is not
// renormalised.
func Probabilities(s *StateVector) ProbabilityMap {
	out := make(ProbabilityMap)
	for i, p := range s.Probabilities() {
		if retained(p) {
			out[BasisString(i, s.NumQubits)] = p
		}
	}
	return out
}

// retained reports whether an outcome of probability p is kept.
func retained(p float64) bool {
	return p > ProbabilityThreshold
}

// Outcomes returns the entries ordered by basis string.
func (m ProbabilityMap) Outcomes() []Outcome {
	out := make([]Outcome, 0, len(m))
	for state, p := range m {
		out = append(out, Outcome{State: state, Probability: p})
	}
	slices.SortFunc(out, func(a, b Outcome) int {
		switch {
		case a.State < b.State:
			return -1
		case a.State > b.State:
			return 1
		}
		return 0
	})
	return out
}

// Total sums the retained probabilities.
func (m ProbabilityMap) Total() float64 {
	ps := make([]float64, 0, len(m))
	for _, p := range m {
		ps = append(ps, p)
	}
	return floats.Sum(ps)
}
