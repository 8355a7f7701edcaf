package sim

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"
)

// Strategy selects how operators reach the state vector.
type Strategy int

const (
	// Kernel applies each gate by bit-mask index arithmetic on the amplitudes.
	Kernel Strategy = iota
	// Dense materialises the full 2^n x 2^n operator and multiplies.
	Dense
)

func (s Strategy) String() string {
	switch s {
	case Kernel:
		return "kernel"
	case Dense:
		return "dense"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy accepts "kernel" or "dense".
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "kernel":
		return Kernel, nil
	case "dense":
		return Dense, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}

// Observer is called after each gate has been applied.
type Observer func(step int, gate GateSpec, state *StateVector)

// Option configures a Simulator.
type Option func(*Simulator)

func WithStrategy(s Strategy) Option {
	return func(sim *Simulator) { sim.strategy = s }
}

func WithLogger(l *log.Logger) Option {
	return func(sim *Simulator) {
		if l != nil {
			sim.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(sim *Simulator) { sim.observer = o }
}

// Simulator evolves circuits. It holds no per-run state and is safe for
// concurrent use.
type Simulator struct {
	strategy Strategy
	logger   *log.Logger
	observer Observer
}

func New(opts ...Option) *Simulator {
	s := &Simulator{
		strategy: Kernel,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Strategy() Strategy {
	return s.strategy
}

// Simulate runs c with the default simulator and extracts the result.
func Simulate(c Circuit) (Result, error) {
	return New().Simulate(c)
}

func (s *Simulator) Simulate(c Circuit) (Result, error) {
	state, err := s.Run(c)
	if err != nil {
		return Result{}, err
	}
	return Result{States: Probabilities(state)}, nil
}

// Run evolves |0…0⟩ through every gate of c in order.
func (s *Simulator) Run(c Circuit) (*StateVector, error) {
	return s.Evolve(c, len(c.Gates))
}

// Evolve applies only the first upTo gates of c.
func (s *Simulator) Evolve(c Circuit, upTo int) (*StateVector, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	upTo = min(max(upTo, 0), len(c.Gates))

	state := NewStateVector(c.Qubits)
	for i, g := range c.Gates[:upTo] {
		op, err := resolve(g)
		if err != nil {
			return nil, &GateError{Index: i, Gate: g.Gate, Err: err}
		}
		if err := s.apply(state, op); err != nil {
			return nil, &GateError{Index: i, Gate: g.Gate, Err: err}
		}
		s.logger.Debug("applied gate", "step", i, "gate", op.kind, "qubits", g.Qubits())
		if s.observer != nil {
			s.observer(i, g, state)
		}
	}
	return state, nil
}

// operation is a gate resolved to its kind, operands and, for single-qubit
// gates, its 2x2 matrix.
type operation struct {
	kind     GateKind
	matrix   Matrix2
	targets  []int
	controls []int
}

func resolve(g GateSpec) (operation, error) {
	kind, err := ParseGateKind(g.Gate)
	if err != nil {
		return operation{}, err
	}
	op := operation{kind: kind, targets: g.Targets, controls: g.Controls}

	switch kind {
	case GateMeasure:
		return op, nil
	case GateH, GateX, GateY, GateZ, GateS, GateT:
		if len(g.Targets) == 0 {
			return op, ErrMissingTarget
		}
		op.matrix, _ = FixedMatrix(kind)
	case GateRX, GateRY, GateRZ:
		if len(g.Targets) == 0 {
			return op, ErrMissingTarget
		}
		op.matrix, err = Rotation(kind.String()[1:], g.Param("theta", 0))
		if err != nil {
			return op, err
		}
	case GateCNOT:
		if len(g.Targets) == 0 {
			return op, ErrMissingTarget
		}
		if len(g.Controls) == 0 {
			return op, fmt.Errorf("%w: CNOT needs a control qubit", ErrArity)
		}
		op.controls = g.Controls[:1]
	case GateCCNOT:
		if len(g.Targets) == 0 {
			return op, ErrMissingTarget
		}
		if len(g.Controls) != 2 {
			return op, fmt.Errorf("%w: CCNOT takes exactly two control qubits, got %d", ErrArity, len(g.Controls))
		}
	case GateSwap:
		if len(g.Targets) == 0 {
			return op, ErrMissingTarget
		}
		if len(g.Targets) < 2 {
			return op, fmt.Errorf("%w: SWAP needs two target qubits, got %d", ErrArity, len(g.Targets))
		}
	default:
		return op, fmt.Errorf("%w: %s", ErrUnknownGate, kind)
	}
	return op, nil
}

func (s *Simulator) apply(state *StateVector, op operation) error {
	if op.kind == GateMeasure {
		return nil
	}
	if s.strategy == Dense {
		return applyDense(state, op)
	}

	switch {
	case op.kind.SingleQubit():
		state.ApplySingle(op.matrix, op.targets[0])
	case op.kind == GateSwap:
		state.ApplySwap(op.targets[0], op.targets[1])
	default:
		state.ApplyControlledX(op.controls, op.targets[0])
	}
	return nil
}

func applyDense(state *StateVector, op operation) error {
	n := state.NumQubits

	var (
		full *mat.CDense
		err  error
	)
	switch {
	case op.kind.SingleQubit():
		full, err = Expand(op.matrix, op.targets[0], n)
	case op.kind == GateSwap:
		full, err = Swap(op.targets[0], op.targets[1], n)
	default:
		full, err = Controlled(op.controls, op.targets[0], n)
	}
	if err != nil {
		return err
	}
	return state.ApplyMatrix(full)
}
