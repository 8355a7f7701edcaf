// Package qasm reads and writes the OpenQASM 2.0 subset the simulator
// understands: one quantum register, the fixed gates h x y z s t, the
// rotations rx ry rz, cx, swap, ccx, measure, and the ignorable creg/barrier
// declarations.
package qasm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"qtermsim/sim"
)

// Pre-compiled regexps for statement parsing. Statements arrive without the
// trailing semicolon.
var (
	qregRegex    = regexp.MustCompile(`^qreg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	measureRegex = regexp.MustCompile(`^measure\s+(\w+\s*\[\s*\d+\s*\])\s*->\s*\w+\s*\[\s*\d+\s*\]$`)
	gateRegex    = regexp.MustCompile(`^(\w+)\s*(?:\(([^)]*)\))?\s+(.+)$`)
	operandRegex = regexp.MustCompile(`^(\w+)\s*\[\s*(\d+)\s*\]$`)
)

// gateNames maps QASM mnemonics to gate kinds.
var gateNames = map[string]sim.GateKind{
	"h":       sim.GateH,
	"x":       sim.GateX,
	"y":       sim.GateY,
	"z":       sim.GateZ,
	"s":       sim.GateS,
	"t":       sim.GateT,
	"rx":      sim.GateRX,
	"ry":      sim.GateRY,
	"rz":      sim.GateRZ,
	"cx":      sim.GateCNOT,
	"cnot":    sim.GateCNOT,
	"swap":    sim.GateSwap,
	"ccx":     sim.GateCCNOT,
	"toffoli": sim.GateCCNOT,
}

// operandCount is the number of qubit operands each kind takes in QASM.
func operandCount(k sim.GateKind) int {
	switch k {
	case sim.GateCNOT, sim.GateSwap:
		return 2
	case sim.GateCCNOT:
		return 3
	}
	return 1
}

// ParseError reports the source line a statement failed on.
type ParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type parser struct {
	c    sim.Circuit
	reg  string
	line int
}

func (p *parser) errorf(err error, format string, args ...any) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Parse builds a circuit from OpenQASM source. Gates keep their source order
// and Time is set to the statement index.
func Parse(src string) (sim.Circuit, error) {
	p := &parser{}

	for i, line := range strings.Split(src, "\n") {
		p.line = i + 1
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		for _, stmt := range strings.Split(line, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if err := p.statement(stmt); err != nil {
				return sim.Circuit{}, err
			}
		}
	}

	if p.reg == "" {
		return sim.Circuit{}, fmt.Errorf("missing qreg declaration")
	}
	return p.c, nil
}

func (p *parser) statement(stmt string) error {
	lower := strings.ToLower(stmt)
	switch {
	case strings.HasPrefix(lower, "openqasm"), strings.HasPrefix(lower, "include"):
		return nil
	case strings.HasPrefix(lower, "creg"), strings.HasPrefix(lower, "barrier"):
		return nil
	case strings.HasPrefix(lower, "qreg"):
		matches := qregRegex.FindStringSubmatch(stmt)
		if matches == nil {
			return p.errorf(nil, "malformed register declaration %q", stmt)
		}
		if p.reg != "" {
			return p.errorf(nil, "only one quantum register is supported")
		}
		n, _ := strconv.Atoi(matches[2])
		p.reg = matches[1]
		p.c.Qubits = n
		return nil
	}

	if p.reg == "" {
		return p.errorf(nil, "%q before qreg declaration", stmt)
	}

	if matches := measureRegex.FindStringSubmatch(stmt); matches != nil {
		q, err := p.operand(matches[1])
		if err != nil {
			return err
		}
		p.add(sim.GateSpec{Gate: sim.GateMeasure.String(), Targets: []int{q}})
		return nil
	}

	matches := gateRegex.FindStringSubmatch(stmt)
	if matches == nil {
		return p.errorf(nil, "unsupported statement %q", stmt)
	}
	name, params, operands := strings.ToLower(matches[1]), matches[2], matches[3]

	kind, ok := gateNames[name]
	if !ok {
		return p.errorf(sim.ErrUnknownGate, "gate %q", name)
	}

	parts := strings.Split(operands, ",")
	if want := operandCount(kind); len(parts) != want {
		return p.errorf(sim.ErrArity, "%s takes %d qubits, got %d", name, want, len(parts))
	}
	qubits := make([]int, len(parts))
	for i, part := range parts {
		q, err := p.operand(part)
		if err != nil {
			return err
		}
		qubits[i] = q
	}

	g := sim.GateSpec{Gate: kind.String()}
	switch kind {
	case sim.GateCNOT:
		g.Controls, g.Targets = qubits[:1], qubits[1:]
	case sim.GateCCNOT:
		g.Controls, g.Targets = qubits[:2], qubits[2:]
	default:
		g.Targets = qubits
	}

	if kind.Rotation() {
		if strings.Contains(params, ",") || strings.TrimSpace(params) == "" {
			return p.errorf(nil, "%s takes exactly one parameter", name)
		}
		theta, err := ParseParam(params)
		if err != nil {
			return p.errorf(err, "%s parameter", name)
		}
		g.Parameters = map[string]float64{"theta": theta}
	} else if params != "" {
		return p.errorf(nil, "%s takes no parameters", name)
	}

	p.add(g)
	return nil
}

func (p *parser) operand(s string) (int, error) {
	matches := operandRegex.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return 0, p.errorf(nil, "malformed qubit operand %q", s)
	}
	if matches[1] != p.reg {
		return 0, p.errorf(nil, "unknown register %q", matches[1])
	}
	q, _ := strconv.Atoi(matches[2])
	if q >= p.c.Qubits {
		return 0, p.errorf(sim.ErrIndexOutOfRange, "%s[%d] with %d qubits", p.reg, q, p.c.Qubits)
	}
	return q, nil
}

func (p *parser) add(g sim.GateSpec) {
	g.Time = len(p.c.Gates)
	p.c.Gates = append(p.c.Gates, g)
}

// Format renders c as OpenQASM 2.0.
func Format(c sim.Circuit) (string, error) {
	var body strings.Builder
	measured := false

	for i, g := range c.Gates {
		kind, err := sim.ParseGateKind(g.Gate)
		if err != nil {
			return "", &sim.GateError{Index: i, Gate: g.Gate, Err: err}
		}
		if err := formatGate(&body, kind, g); err != nil {
			return "", &sim.GateError{Index: i, Gate: g.Gate, Err: err}
		}
		measured = measured || kind == sim.GateMeasure
	}

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", c.Qubits)
	if measured {
		fmt.Fprintf(&sb, "creg c[%d];\n", c.Qubits)
	}
	sb.WriteString("\n")
	sb.WriteString(body.String())
	return sb.String(), nil
}

func formatGate(sb *strings.Builder, kind sim.GateKind, g sim.GateSpec) error {
	if len(g.Targets) == 0 {
		return sim.ErrMissingTarget
	}
	t := g.Targets[0]

	switch kind {
	case sim.GateMeasure:
		fmt.Fprintf(sb, "measure q[%d] -> c[%d];\n", t, t)
	case sim.GateRX, sim.GateRY, sim.GateRZ:
		fmt.Fprintf(sb, "%s(%s) q[%d];\n", strings.ToLower(kind.String()), FormatParam(g.Param("theta", 0)), t)
	case sim.GateCNOT:
		if len(g.Controls) == 0 {
			return fmt.Errorf("%w: CNOT needs a control qubit", sim.ErrArity)
		}
		fmt.Fprintf(sb, "cx q[%d], q[%d];\n", g.Controls[0], t)
	case sim.GateCCNOT:
		if len(g.Controls) != 2 {
			return fmt.Errorf("%w: ccx takes exactly two controls, got %d", sim.ErrArity, len(g.Controls))
		}
		fmt.Fprintf(sb, "ccx q[%d], q[%d], q[%d];\n", g.Controls[0], g.Controls[1], t)
	case sim.GateSwap:
		if len(g.Targets) < 2 {
			return fmt.Errorf("%w: SWAP needs two target qubits", sim.ErrArity)
		}
		fmt.Fprintf(sb, "swap q[%d], q[%d];\n", g.Targets[0], g.Targets[1])
	default:
		fmt.Fprintf(sb, "%s q[%d];\n", strings.ToLower(kind.String()), t)
	}
	return nil
}
