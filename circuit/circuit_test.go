package circuit

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermsim/sim"
)

var cmpApprox = cmpopts.EquateApprox(0, 1e-9)

const bellJSON = `{
  "name": "bell",
  "qubits": 2,
  "gates": [
    {"gate": "h", "time": 0, "targets": [0]},
    {"gate": "CNOT", "time": 1, "targets": [1], "controls": [0]}
  ]
}`

const bellYAML = `qubits: 2
gates:
  - gate: H
    targets: [0]
  - gate: CNOT
    targets: [1]
    controls: [0]
  - gate: RY
    targets: [1]
    parameters:
      theta: 0
`

const bellQASM = `OPENQASM 2.0;
qreg q[2];
h q[0];
cx q[0], q[1];
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFormats(t *testing.T) {
	want := sim.ProbabilityMap{"00": 0.5, "11": 0.5}

	for _, tt := range []struct {
		file, content, name string
	}{
		{"bell.json", bellJSON, "bell"},
		{"pair.yaml", bellYAML, "pair"},
		{"pair.yml", bellYAML, "pair"},
		{"entangle.qasm", bellQASM, "entangle"},
	} {
		t.Run(tt.file, func(t *testing.T) {
			c, err := Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, 2, c.Qubits)
			assert.Equal(t, tt.name, c.Name)

			res, err := sim.Simulate(c)
			require.NoError(t, err)
			if diff := cmp.Diff(want, res.States, cmpApprox); diff != "" {
				t.Errorf("probabilities mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeFile(t, "bell.txt", bellJSON))
	assert.ErrorContains(t, err, "unknown circuit format")

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "typo.json", `{"qubits": 1, "gatez": []}`))
	assert.ErrorContains(t, err, "decode json")

	_, err = Load(writeFile(t, "typo.yaml", "qubits: 1\nbogus: true\n"))
	assert.ErrorContains(t, err, "decode yaml")
}

func TestEncodeRoundTrip(t *testing.T) {
	c, err := Decode(strings.NewReader(bellJSON), JSON)
	require.NoError(t, err)

	for _, format := range []Format{JSON, YAML, QASM} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, c, format))

			back, err := Decode(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, c.Qubits, back.Qubits)
			require.Len(t, back.Gates, len(c.Gates))
			for i := range c.Gates {
				assert.Equal(t, c.Gates[i].Targets, back.Gates[i].Targets)
				assert.Equal(t, c.Gates[i].Controls, back.Gates[i].Controls)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".YML")
	require.NoError(t, err)
	assert.Equal(t, YAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestArrangeParallelGates(t *testing.T) {
	c := sim.Circuit{Qubits: 4, Gates: []sim.GateSpec{
		{Gate: "H", Targets: []int{0}},
		{Gate: "H", Targets: []int{1}},
		{Gate: "CNOT", Controls: []int{0}, Targets: []int{1}},
		{Gate: "X", Targets: []int{2}},
		{Gate: "CNOT", Controls: []int{0}, Targets: []int{3}},
		{Gate: "MEASURE", Targets: []int{2}},
	}}

	l := Arrange(c)
	assert.Equal(t, []int{0, 0, 1, 0, 2, 3}, l.Columns)
	assert.Equal(t, 4, l.Depth)
	assert.Equal(t, []int{0, 1, 3}, l.At(0))
	assert.Empty(t, l.At(7))

	lo, hi, ok := Span(c.Gates[4])
	assert.True(t, ok)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 3, hi)

	_, _, ok = Span(sim.GateSpec{Gate: "MEASURE"})
	assert.False(t, ok)
}
