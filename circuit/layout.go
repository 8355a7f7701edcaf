package circuit

import (
	"slices"

	"qtermsim/sim"
)

// Layout places every gate of a circuit in a display column. Gates keep
// their input order; a gate lands in the first column after the last gate
// that touched any wire in its span, so independent gates share a column.
type Layout struct {
	Columns []int // column of each gate, indexed like Circuit.Gates
	Depth   int   // number of columns
}

// Span returns the lowest and highest qubit a gate touches. A gate with no
// qubits spans nothing and reports ok=false.
func Span(g sim.GateSpec) (lo, hi int, ok bool) {
	qs := g.Qubits()
	if len(qs) == 0 {
		return 0, 0, false
	}
	return slices.Min(qs), slices.Max(qs), true
}

// Arrange computes the layout of c. Vertical connectors of multi-qubit gates
// occupy every wire between their outermost qubits.
func Arrange(c sim.Circuit) Layout {
	next := make([]int, max(c.Qubits, 0)) // first free column per wire
	layout := Layout{Columns: make([]int, len(c.Gates))}

	for i, g := range c.Gates {
		lo, hi, ok := Span(g)
		if !ok {
			layout.Columns[i] = layout.Depth
			continue
		}
		lo, hi = max(lo, 0), min(hi, len(next)-1)

		col := 0
		for q := lo; q <= hi; q++ {
			col = max(col, next[q])
		}
		for q := lo; q <= hi; q++ {
			next[q] = col + 1
		}
		layout.Columns[i] = col
		layout.Depth = max(layout.Depth, col+1)
	}
	return layout
}

// At returns the gate indices placed in column col, in input order.
func (l Layout) At(col int) []int {
	var idx []int
	for i, c := range l.Columns {
		if c == col {
			idx = append(idx, i)
		}
	}
	return idx
}
