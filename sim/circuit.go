package sim

import (
	"fmt"
	"strconv"
	"strings"
)

// GateSpec is one step of a circuit as supplied by the caller.
type GateSpec struct {
	Gate       string             `json:"gate" yaml:"gate"`
	Time       int                `json:"time,omitempty" yaml:"time,omitempty"` // display ordering only
	Targets    []int              `json:"targets" yaml:"targets"`
	Controls   []int              `json:"controls,omitempty" yaml:"controls,omitempty"`
	Parameters map[string]float64 `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Circuit is an ordered gate sequence over a fixed number of qubits.
type Circuit struct {
	Name   string     `json:"name,omitempty" yaml:"name,omitempty"`
	Qubits int        `json:"qubits" yaml:"qubits"`
	Gates  []GateSpec `json:"gates" yaml:"gates"`
}

// Param returns the named parameter, or def when it is absent.
func (g GateSpec) Param(name string, def float64) float64 {
	if v, ok := g.Parameters[name]; ok {
		return v
	}
	return def
}

// Qubits returns every qubit index the gate references, controls first.
func (g GateSpec) Qubits() []int {
	qs := make([]int, 0, len(g.Controls)+len(g.Targets))
	qs = append(qs, g.Controls...)
	return append(qs, g.Targets...)
}

func (g GateSpec) String() string {
	var sb strings.Builder
	sb.WriteString(strings.ToUpper(g.Gate))
	if len(g.Controls) > 0 {
		fmt.Fprintf(&sb, " c%v", g.Controls)
	}
	fmt.Fprintf(&sb, " t%v", g.Targets)
	if theta, ok := g.Parameters["theta"]; ok {
		fmt.Fprintf(&sb, " θ=%g", theta)
	}
	return sb.String()
}

// MaxQubits is the largest register whose amplitude slice fits the heap the
// runtime can address (2^48 bytes on 64-bit platforms). Callers apply their
// own, usually much smaller, resource limits.
const MaxQubits = strconv.IntSize*3/4 - 4

// Validate checks the register size and that every qubit index of every gate
// lies in [0, Qubits) with no qubit used twice by the same gate.
func (c Circuit) Validate() error {
	if c.Qubits < 1 {
		return fmt.Errorf("%w: qubit count %d, need at least 1", ErrInvalidCircuit, c.Qubits)
	}
	if c.Qubits > MaxQubits {
		return fmt.Errorf("%w: qubit count %d exceeds %d", ErrInvalidCircuit, c.Qubits, MaxQubits)
	}
	for i, g := range c.Gates {
		seen := make(map[int]bool, len(g.Targets)+len(g.Controls))
		for _, q := range g.Qubits() {
			if q < 0 || q >= c.Qubits {
				return &GateError{
					Index: i,
					Gate:  g.Gate,
					Err:   fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, q, c.Qubits),
				}
			}
			if seen[q] {
				return &GateError{Index: i, Gate: g.Gate, Err: fmt.Errorf("%w: qubit %d", ErrOverlappingQubits, q)}
			}
			seen[q] = true
		}
	}
	return nil
}
