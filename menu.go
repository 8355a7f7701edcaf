package main

import (
	"fmt"
	"strings"

	"qtermsim/sim"
)

// referenceEntry describes one gate in the help overlay.
type referenceEntry struct {
	kind    sim.GateKind
	qasm    string
	symbol  string
	summary string
}

// gateReference lists every gate the simulator accepts, in GateKinds order.
var gateReference = []referenceEntry{
	{sim.GateH, "h q[i]", "H", "Hadamard"},
	{sim.GateX, "x q[i]", "X", "Pauli-X (NOT)"},
	{sim.GateY, "y q[i]", "Y", "Pauli-Y"},
	{sim.GateZ, "z q[i]", "Z", "Pauli-Z"},
	{sim.GateS, "s q[i]", "S", "Phase, diag(1, i)"},
	{sim.GateT, "t q[i]", "T", "π/8, diag(1, e^iπ/4)"},
	{sim.GateRX, "rx(θ) q[i]", "RX", "Rotate about X"},
	{sim.GateRY, "ry(θ) q[i]", "RY", "Rotate about Y"},
	{sim.GateRZ, "rz(θ) q[i]", "RZ", "Rotate about Z"},
	{sim.GateMeasure, "measure q[i] -> c[i]", "M", "No effect on the state"},
	{sim.GateCNOT, "cx q[c], q[t]", "●─⊕", "Controlled NOT"},
	{sim.GateSwap, "swap q[a], q[b]", "×─×", "Exchange two qubits"},
	{sim.GateCCNOT, "ccx q[c], q[c], q[t]", "●─●─⊕", "Toffoli"},
}

// renderReference renders the gate reference panel.
func renderReference() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Gate Reference"))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 52)))
	sb.WriteString("\n")

	for _, e := range gateReference {
		sb.WriteString(gateStyle.Render(fmt.Sprintf(" %-7s", e.kind)))
		sb.WriteString(fmt.Sprintf("%-22s", e.qasm))
		sb.WriteString(dimStyle.Render(fmt.Sprintf("%-6s", e.symbol)))
		sb.WriteString(e.summary)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(" Angles accept numbers and pi forms: pi/2, 3*pi/4, -pi"))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(" ? Close"))
	return sb.String()
}
