package sim

import (
	"errors"
	"fmt"
)

// Errors returned by the simulator. A failing gate aborts the whole run; the
// caller receives a *GateError wrapping one of these.
var (
	ErrInvalidAxis       = errors.New("invalid rotation axis")
	ErrMissingTarget     = errors.New("gate requires at least one target qubit")
	ErrUnknownGate       = errors.New("unknown gate")
	ErrIndexOutOfRange   = errors.New("qubit index out of range")
	ErrInvalidCircuit    = errors.New("invalid circuit")
	ErrArity             = errors.New("wrong number of qubit operands")
	ErrOverlappingQubits = errors.New("control and target qubits overlap")
)

// GateError locates a failure at a position in the gate sequence.
type GateError struct {
	Index int
	Gate  string
	Err   error
}

func (e *GateError) Error() string {
	return fmt.Sprintf("gate %d (%s): %v", e.Index, e.Gate, e.Err)
}

func (e *GateError) Unwrap() error {
	return e.Err
}
