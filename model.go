package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qtermsim/circuit"
	"qtermsim/jobs"
	"qtermsim/qasm"
	"qtermsim/sim"
)

const sampleQASM = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[2];
h q[0];
cx q[0], q[1];
measure q[0] -> c[0];
measure q[1] -> c[1];
`

// focus represents which panel has keyboard input.
type focus int

const (
	focusResults focus = iota
	focusEditor
)

// Model represents the TUI application state.
type Model struct {
	sim       *sim.Simulator
	maxQubits int
	path      string // file the circuit was opened from, if any

	editor   textarea.Model
	lastQASM string

	// Last circuit that parsed; kept while the editor holds text that does not
	// parse or exceeds the qubit limit.
	circuit sim.Circuit
	layout  circuit.Layout
	applied int // gates evolved for the step-through view
	state   *sim.StateVector
	err     error

	width     int
	height    int
	focus     focus
	showHelp  bool
	statusMsg string // transient status message (e.g. save confirmation)
}

func newModel(s *sim.Simulator, maxQubits int, path, src string) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.SetValue(src)

	m := Model{
		sim:       s,
		maxQubits: maxQubits,
		path:      path,
		editor:    ta,
		focus:     focusResults,
	}
	m.parseQASMInput()
	return m
}

// runView opens the interactive view on src.
func runView(e *env, path, src string) error {
	// The terminal owns stderr while the program runs, so the view simulates
	// without the process logger.
	s := sim.New(sim.WithStrategy(e.sim.Strategy()))
	_, err := tea.NewProgram(newModel(s, e.maxQubits, path, src), tea.WithAltScreen()).Run()
	return err
}

// parseQASMInput re-parses the editor contents when they change and evolves
// the new circuit to its end.
func (m *Model) parseQASMInput() {
	src := m.editor.Value()
	if src == m.lastQASM {
		return
	}
	m.lastQASM = src

	c, err := qasm.Parse(src)
	if err == nil && m.maxQubits > 0 && c.Qubits > m.maxQubits {
		err = fmt.Errorf("%w: %d > %d", jobs.ErrTooManyQubits, c.Qubits, m.maxQubits)
	}
	if err != nil {
		m.err = err
		return
	}

	m.circuit = c
	m.layout = circuit.Arrange(c)
	m.applied = len(c.Gates)
	m.evolve()
}

// evolve recomputes the state after the first m.applied gates. A failed
// evolution clears the state so the view never pairs a circuit with another
// circuit's amplitudes.
func (m *Model) evolve() {
	state, err := m.sim.Evolve(m.circuit, m.applied)
	m.state, m.err = state, err
}

// stepTo moves the step-through cursor, clamped to the circuit.
func (m *Model) stepTo(n int) {
	n = min(max(n, 0), len(m.circuit.Gates))
	if n == m.applied {
		return
	}
	m.applied = n
	m.evolve()
}

// savePath is where ctrl+s writes the editor contents.
func (m Model) savePath() string {
	if m.path == "" {
		return "circuit.qasm"
	}
	return strings.TrimSuffix(m.path, filepath.Ext(m.path)) + ".qasm"
}

func (m *Model) save() {
	path := m.savePath()
	if err := os.WriteFile(path, []byte(m.editor.Value()), 0o644); err != nil {
		m.statusMsg = fmt.Sprintf("Save error: %v", err)
		return
	}
	m.statusMsg = "Saved " + path
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(max(msg.Width/3-6, 20))
		m.editor.SetHeight(max(msg.Height-12, 4))

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		switch key {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+s":
			m.save()
			return m, nil
		}

		switch m.focus {
		case focusResults:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab", "e":
				m.focus = focusEditor
				m.showHelp = false
				cmds = append(cmds, m.editor.Focus())
			case "?":
				m.showHelp = !m.showHelp
			case "esc":
				m.showHelp = false
			case "[", "left", "h":
				m.stepTo(m.applied - 1)
			case "]", "right", "l":
				m.stepTo(m.applied + 1)
			case "{", "home":
				m.stepTo(0)
			case "}", "end":
				m.stepTo(len(m.circuit.Gates))
			}

		case focusEditor:
			switch key {
			case "tab", "esc":
				m.focus = focusResults
				m.editor.Blur()
			default:
				var cmd tea.Cmd
				m.editor, cmd = m.editor.Update(msg)
				cmds = append(cmds, cmd)
				m.parseQASMInput()
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	editorWidth := m.width / 3
	rightWidth := m.width - editorWidth - 4
	controlsHeight := 4
	mainHeight := max(m.height-controlsHeight-4, 12)
	diagramHeight := max(mainHeight/2-2, 6)
	resultsHeight := max(mainHeight-diagramHeight-2, 6)

	editorPanel := m.renderEditorPanel(editorWidth, mainHeight)
	rightColumn := lipgloss.JoinVertical(lipgloss.Left,
		m.renderDiagramPanel(rightWidth, diagramHeight),
		m.renderResultsPanel(rightWidth, resultsHeight),
	)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, editorPanel, rightColumn)
	return lipgloss.JoinVertical(lipgloss.Left, topRow, m.renderControlsPanel(m.width-4, controlsHeight-2))
}
