package main

import (
	"fmt"
	"math"
	"strings"

	"qtermsim/circuit"
	"qtermsim/sim"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", total-left)
}

// gateLabel is the text drawn inside a gate box.
func gateLabel(k sim.GateKind) string {
	if k == sim.GateMeasure {
		return "M"
	}
	return k.String()
}

// ──────────────────────────── Diagram grid ────────────────────────────

type cellRole int

const (
	roleWire cellRole = iota
	roleBox
	roleControl
	roleTarget
	roleSwap
	rolePass
)

// cellInfo describes what occupies one qubit wire in one diagram column.
type cellInfo struct {
	role      cellRole
	label     string
	vertAbove bool
	vertBelow bool
	pending   bool // gate lies beyond the current step
}

// diagramGrid places the gates of c on a [column][qubit] grid. Gates at index
// applied or later are marked pending.
func diagramGrid(c sim.Circuit, layout circuit.Layout, applied int) [][]cellInfo {
	grid := make([][]cellInfo, layout.Depth)
	for col := range grid {
		grid[col] = make([]cellInfo, c.Qubits)
	}

	for i, g := range c.Gates {
		lo, hi, ok := circuit.Span(g)
		if !ok {
			continue
		}
		col := grid[layout.Columns[i]]
		set := func(q int, role cellRole, label string) {
			if q < 0 || q >= len(col) {
				return
			}
			col[q] = cellInfo{
				role:      role,
				label:     label,
				vertAbove: q > lo,
				vertBelow: q < hi,
				pending:   i >= applied,
			}
		}

		for q := lo + 1; q < hi; q++ {
			set(q, rolePass, "")
		}
		kind, err := sim.ParseGateKind(g.Gate)
		switch {
		case err != nil:
			for _, q := range g.Qubits() {
				set(q, roleBox, "?")
			}
		case kind.SingleQubit() || kind == sim.GateMeasure:
			if len(g.Targets) > 0 {
				set(g.Targets[0], roleBox, gateLabel(kind))
			}
		case kind == sim.GateSwap:
			for _, q := range g.Targets {
				set(q, roleSwap, "")
			}
		default:
			for _, q := range g.Controls {
				set(q, roleControl, "")
			}
			if len(g.Targets) > 0 {
				set(g.Targets[0], roleTarget, "")
			}
		}
	}
	return grid
}

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW visual characters wide.
func renderCell(info cellInfo) (top, mid, bot string) {
	style := gateStyle
	if info.pending {
		style = dimStyle
	}
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + style.Render("│") + strings.Repeat(" ", cellW-halfW-1)
	dashL := strings.Repeat("─", halfW)
	dashR := strings.Repeat("─", cellW-halfW-1)

	top, bot = emptyRow, emptyRow
	if info.vertAbove {
		top = vertRow
	}
	if info.vertBelow {
		bot = vertRow
	}

	switch info.role {
	case roleBox:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		top = strings.Repeat(" ", margin) + style.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + style.Render("┤"+padCenter(info.label, gateNameW)+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + style.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
	case roleControl:
		mid = dashL + style.Render("●") + dashR
	case roleTarget:
		mid = dashL + style.Render("⊕") + dashR
	case roleSwap:
		mid = dashL + style.Render("×") + dashR
	case rolePass:
		mid = dashL + style.Render("┼") + dashR
	default:
		mid = strings.Repeat("─", cellW)
	}
	return
}

// renderDiagram draws the circuit, scrolled so the last applied gate is in
// view.
func renderDiagram(c sim.Circuit, layout circuit.Layout, applied, width int) string {
	grid := diagramGrid(c, layout, applied)
	maxCols := max((width-labelVisualW)/cellW, 1)

	focusCol := 0
	if applied > 0 && applied <= len(layout.Columns) {
		focusCol = layout.Columns[applied-1]
	}
	start := max(focusCol-maxCols+1, 0)
	end := min(start+maxCols, len(grid))

	var sb strings.Builder
	if start > 0 {
		fmt.Fprintf(&sb, "  ◀ showing layers %d–%d\n", start, end-1)
	}

	header := strings.Repeat(" ", labelVisualW)
	for col := start; col < end; col++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", col), cellW))
	}
	sb.WriteString(header + "\n")

	for q := range c.Qubits {
		topLine := strings.Repeat(" ", labelVisualW)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", q))) + "──"
		botLine := strings.Repeat(" ", labelVisualW)
		for col := start; col < end; col++ {
			top, mid, bot := renderCell(grid[col][q])
			topLine += top
			midLine += mid
			botLine += bot
		}
		if end == start {
			midLine += strings.Repeat("─", cellW)
		}
		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}
	return sb.String()
}

// ──────────────────────────── Results ────────────────────────────

// bar renders a horizontal bar of p * width cells.
func bar(p float64, width int) string {
	n := min(max(int(math.Round(p*float64(width))), 0), width)
	return barStyle.Render(strings.Repeat("█", n)) + dimStyle.Render(strings.Repeat("░", width-n))
}

// renderHistogram lists the retained basis states, at most rows of them.
func renderHistogram(probs sim.ProbabilityMap, rows int) string {
	var sb strings.Builder
	outcomes := probs.Outcomes()
	for i, o := range outcomes {
		if i == rows {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more states", len(outcomes)-rows)))
			sb.WriteString("\n")
			break
		}
		fmt.Fprintf(&sb, "|%s⟩ %s %.4f\n", o.State, bar(o.Probability, barW), o.Probability)
	}
	return sb.String()
}

// renderMarginals shows P(1) for every qubit.
func renderMarginals(ms []sim.QubitProbability) string {
	var sb strings.Builder
	for q, m := range ms {
		label := qubitLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", q)))
		fmt.Fprintf(&sb, "%s %s P(1)=%.3f\n", label, bar(m.Prob1, barW/2), m.Prob1)
	}
	return sb.String()
}

// ──────────────────────────── Panel rendering ────────────────────────────

// renderEditorPanel renders the QASM editor panel.
func (m Model) renderEditorPanel(width, height int) string {
	var sb strings.Builder

	title := "QASM Editor"
	if m.focus == focusEditor {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.editor.View())

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderDiagramPanel renders the circuit diagram panel.
func (m Model) renderDiagramPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Quantum Circuit"))
	fmt.Fprintf(&sb, "  %s\n\n", dimStyle.Render(fmt.Sprintf("%d qubits, %d gates, depth %d",
		m.circuit.Qubits, len(m.circuit.Gates), m.layout.Depth)))
	sb.WriteString(renderDiagram(m.circuit, m.layout, m.applied, width-4))

	return diagramStyle.Width(width).Height(height).Render(sb.String())
}

// renderResultsPanel renders the probability histogram and marginals, or the
// gate reference when help is open.
func (m Model) renderResultsPanel(width, height int) string {
	if m.showHelp {
		return resultsStyle.Width(width).Height(height).Render(renderReference())
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Probabilities"))
	fmt.Fprintf(&sb, "  %s\n", activeStyle.Render(fmt.Sprintf("after %d/%d gates", m.applied, len(m.circuit.Gates))))

	if m.err != nil {
		sb.WriteString(errorStyle.Render("✗ " + m.err.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if m.state != nil {
		marginals := m.state.QubitMarginals()
		rows := max(height-len(marginals)-6, 1)
		sb.WriteString(renderHistogram(sim.Probabilities(m.state), rows))
		sb.WriteString("\n")
		sb.WriteString(renderMarginals(marginals))
	}

	return resultsStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeStyle.Render("Step:    "))
	sb.WriteString("[ ] Back/forward  { } First/last    ")
	sb.WriteString(activeStyle.Render("?"))
	sb.WriteString(" Gate reference\n")

	sb.WriteString(activeStyle.Render("Actions: "))
	sb.WriteString("Tab Switch focus  ^S Save  q/^C Quit")
	if m.statusMsg != "" {
		fmt.Fprintf(&sb, "  │  %s", activeStyle.Render(m.statusMsg))
	}

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}
