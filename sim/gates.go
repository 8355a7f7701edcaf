package sim

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// GateKind enumerates the recognised gate names.
type GateKind int

const (
	GateH GateKind = iota
	GateX
	GateY
	GateZ
	GateS
	GateT
	GateRX
	GateRY
	GateRZ
	GateMeasure
	GateCNOT
	GateSwap
	GateCCNOT
)

var gateNames = [...]string{
	GateH:       "H",
	GateX:       "X",
	GateY:       "Y",
	GateZ:       "Z",
	GateS:       "S",
	GateT:       "T",
	GateRX:      "RX",
	GateRY:      "RY",
	GateRZ:      "RZ",
	GateMeasure: "MEASURE",
	GateCNOT:    "CNOT",
	GateSwap:    "SWAP",
	GateCCNOT:   "CCNOT",
}

var gateKinds = func() map[string]GateKind {
	m := make(map[string]GateKind, len(gateNames))
	for k, name := range gateNames {
		m[name] = GateKind(k)
	}
	return m
}()

func (k GateKind) String() string {
	if k < 0 || int(k) >= len(gateNames) {
		return fmt.Sprintf("GateKind(%d)", int(k))
	}
	return gateNames[k]
}

// Rotation reports whether the gate is one of RX, RY, RZ.
func (k GateKind) Rotation() bool {
	return k == GateRX || k == GateRY || k == GateRZ
}

// SingleQubit reports whether the gate is a 2x2 operator on one target.
func (k GateKind) SingleQubit() bool {
	return k <= GateRZ
}

// GateKinds lists every recognised gate in declaration order.
func GateKinds() []GateKind {
	kinds := make([]GateKind, len(gateNames))
	for i := range gateNames {
		kinds[i] = GateKind(i)
	}
	return kinds
}

// ParseGateKind resolves a case-insensitive gate name. Two-letter names
// starting with R that are not RX, RY or RZ are rotations about an unknown
// axis and fail with ErrInvalidAxis; everything else unrecognised fails with
// ErrUnknownGate.
func ParseGateKind(name string) (GateKind, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if k, ok := gateKinds[upper]; ok {
		return k, nil
	}
	if len(upper) == 2 && upper[0] == 'R' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAxis, upper[1:])
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGate, name)
}

// Matrix2 is a 2x2 complex operator acting on a single qubit.
type Matrix2 [2][2]complex128

var (
	Identity2 = Matrix2{{1, 0}, {0, 1}}
	Hadamard  = Matrix2{
		{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)},
		{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)},
	}
	PauliX = Matrix2{{0, 1}, {1, 0}}
	PauliY = Matrix2{{0, -1i}, {1i, 0}}
	PauliZ = Matrix2{{1, 0}, {0, -1}}
	PhaseS = Matrix2{{1, 0}, {0, 1i}}
	PhaseT = Matrix2{{1, 0}, {0, cmplx.Exp(complex(0, math.Pi/4))}}
)

// FixedMatrix returns the operator of a non-parameterised single-qubit gate.
func FixedMatrix(k GateKind) (Matrix2, bool) {
	switch k {
	case GateH:
		return Hadamard, true
	case GateX:
		return PauliX, true
	case GateY:
		return PauliY, true
	case GateZ:
		return PauliZ, true
	case GateS:
		return PhaseS, true
	case GateT:
		return PhaseT, true
	}
	return Matrix2{}, false
}

// Rotation returns the rotation by theta radians about axis X, Y or Z.
func Rotation(axis string, theta float64) (Matrix2, error) {
	c := math.Cos(theta / 2)
	s := math.Sin(theta / 2)

	switch strings.ToUpper(axis) {
	case "X":
		return Matrix2{
			{complex(c, 0), complex(0, -s)},
			{complex(0, -s), complex(c, 0)},
		}, nil
	case "Y":
		return Matrix2{
			{complex(c, 0), complex(-s, 0)},
			{complex(s, 0), complex(c, 0)},
		}, nil
	case "Z":
		return Matrix2{
			{cmplx.Exp(complex(0, -theta/2)), 0},
			{0, cmplx.Exp(complex(0, theta/2))},
		}, nil
	}
	return Matrix2{}, fmt.Errorf("%w: %q", ErrInvalidAxis, axis)
}

// Mul returns m·o.
func (m Matrix2) Mul(o Matrix2) Matrix2 {
	var out Matrix2
	for i := range 2 {
		for j := range 2 {
			out[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j]
		}
	}
	return out
}

// Dagger returns the conjugate transpose.
func (m Matrix2) Dagger() Matrix2 {
	return Matrix2{
		{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
		{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
	}
}
