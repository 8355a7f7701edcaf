package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"qtermsim/sim"
)

const bellJSON = `{"qubits": 2, "gates": [
  {"gate": "H", "targets": [0]},
  {"gate": "CNOT", "targets": [1], "controls": [0]}
]}`

const swapJSON = `{"qubits": 2, "gates": [
  {"gate": "X", "targets": [1]},
  {"gate": "SWAP", "targets": [0, 1]}
]}`

const badAxisJSON = `{"qubits": 1, "gates": [
  {"gate": "RW", "targets": [0], "parameters": {"theta": 1}}
]}`

func writeCircuit(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runApp runs the CLI with args and returns stdout and stderr.
func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"qtermsim"}, args...))
	return stdout.String(), stderr.String(), err
}

func decodeResults(t *testing.T, out string) []sim.Result {
	t.Helper()
	var results []sim.Result
	dec := json.NewDecoder(strings.NewReader(out))
	for dec.More() {
		var r sim.Result
		if err := dec.Decode(&r); err != nil {
			t.Fatalf("decode output %q: %v", out, err)
		}
		results = append(results, r)
	}
	return results
}

func TestRunJSON(t *testing.T) {
	bell := writeCircuit(t, "bell.json", bellJSON)
	swap := writeCircuit(t, "swap.json", swapJSON)

	for _, strategy := range []string{"kernel", "dense"} {
		t.Run(strategy, func(t *testing.T) {
			out, _, err := runApp(t, "--max-qubits", "8", "--strategy", strategy, "run", bell, swap)
			if err != nil {
				t.Fatalf("run error: %v", err)
			}

			results := decodeResults(t, out)
			if len(results) != 2 {
				t.Fatalf("expected 2 results, got %d: %q", len(results), out)
			}
			for _, state := range []string{"00", "11"} {
				if math.Abs(results[0].States[state]-0.5) > 1e-9 {
					t.Errorf("bell %s = %v, want 0.5", state, results[0].States[state])
				}
			}
			if len(results[0].States) != 2 {
				t.Errorf("bell should have 2 outcomes, got %v", results[0].States)
			}
			if len(results[1].States) != 1 || math.Abs(results[1].States["10"]-1) > 1e-9 {
				t.Errorf("swap = %v, want {10: 1}", results[1].States)
			}
		})
	}
}

func TestRunTable(t *testing.T) {
	out, _, err := runApp(t, "--max-qubits", "8", "run", "--format", "table", writeCircuit(t, "bell.json", bellJSON))
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	for _, want := range []string{"00", "11", "0.500000", "1.000000"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestRunReportsFailures(t *testing.T) {
	good := writeCircuit(t, "bell.json", bellJSON)
	bad := writeCircuit(t, "axis.json", badAxisJSON)
	missing := filepath.Join(t.TempDir(), "missing.json")

	out, stderr, err := runApp(t, "--max-qubits", "8", "run", good, bad, missing)

	var exit cli.ExitCoder
	if !errors.As(err, &exit) || exit.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	if !strings.Contains(err.Error(), "2 of 3") {
		t.Errorf("unexpected error %q", err)
	}
	if results := decodeResults(t, out); len(results) != 1 {
		t.Errorf("expected only the good circuit on stdout, got %q", out)
	}
	if !strings.Contains(stderr, sim.ErrInvalidAxis.Error()) {
		t.Errorf("stderr should name the invalid axis:\n%s", stderr)
	}
	if !strings.Contains(stderr, "missing.json") {
		t.Errorf("stderr should name the missing file:\n%s", stderr)
	}
}

func TestRunQubitLimit(t *testing.T) {
	_, stderr, err := runApp(t, "--max-qubits", "1", "run", writeCircuit(t, "bell.json", bellJSON))
	if err == nil {
		t.Fatal("expected failure for a circuit above the qubit limit")
	}
	if !strings.Contains(stderr, "qubit limit") {
		t.Errorf("stderr should mention the qubit limit:\n%s", stderr)
	}
}

func TestRunUsageErrors(t *testing.T) {
	for _, args := range [][]string{
		{"run"},
		{"run", "--format", "xml", "bell.json"},
		{"qasm"},
	} {
		_, _, err := runApp(t, args...)
		var exit cli.ExitCoder
		if !errors.As(err, &exit) || exit.ExitCode() != 2 {
			t.Errorf("%v: expected exit code 2, got %v", args, err)
		}
	}

	if _, _, err := runApp(t, "--strategy", "sparse", "--max-qubits", "8", "run", writeCircuit(t, "bell.json", bellJSON)); err == nil {
		t.Error("expected an unknown strategy to fail")
	}
}

func TestQASMCommand(t *testing.T) {
	out, _, err := runApp(t, "qasm", writeCircuit(t, "bell.json", bellJSON))
	if err != nil {
		t.Fatalf("qasm error: %v", err)
	}
	for _, want := range []string{"OPENQASM 2.0;", "qreg q[2];", "h q[0];", "cx q[0], q[1];"} {
		if !strings.Contains(out, want) {
			t.Errorf("qasm output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigFileAndOverrides(t *testing.T) {
	cfgPath := writeCircuit(t, "qtermsim.toml", `
[Simulation]
Strategy = "dense"
MaxQubits = 12

[Jobs]
Concurrency = 3

[Log]
Level = "error"
`)

	out, _, err := runApp(t, "--config", cfgPath, "--max-qubits", "5", "dumpconfig")
	if err != nil {
		t.Fatalf("dumpconfig error: %v", err)
	}
	for _, want := range []string{`Strategy = "dense"`, "MaxQubits = 5", "Concurrency = 3", `Level = "error"`} {
		if !strings.Contains(out, want) {
			t.Errorf("dumped config missing %q:\n%s", want, out)
		}
	}
}

func TestRunTestdata(t *testing.T) {
	out, _, err := runApp(t,
		"--config", filepath.Join("testdata", "qtermsim.toml"), "--max-qubits", "8",
		"run", filepath.Join("testdata", "bell.json"), filepath.Join("testdata", "ghz.yaml"), filepath.Join("testdata", "toffoli.qasm"))
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	want := []sim.ProbabilityMap{
		{"00": 0.5, "11": 0.5},
		{"000": 0.5, "111": 0.5},
		{"011": 0.5, "111": 0.5},
	}
	results := decodeResults(t, out)
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, w := range want {
		if len(results[i].States) != len(w) {
			t.Errorf("result %d = %v, want %v", i, results[i].States, w)
			continue
		}
		for state, p := range w {
			if math.Abs(results[i].States[state]-p) > 1e-9 {
				t.Errorf("result %d: P(%s) = %v, want %v", i, state, results[i].States[state], p)
			}
		}
	}
}
