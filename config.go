package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"

	"github.com/charmbracelet/log"
	"github.com/naoina/toml"
	"github.com/shirou/gopsutil/v3/mem"

	"qtermsim/sim"
)

// Config is the TOML configuration file layout. Keys use the Go field names.
type Config struct {
	Simulation SimulationConfig
	Jobs       JobsConfig
	Log        LogConfig
}

type SimulationConfig struct {
	Strategy  string // kernel or dense
	MaxQubits int    // 0 derives the limit from available memory
}

type JobsConfig struct {
	Concurrency int64 // 0 uses GOMAXPROCS
}

type LogConfig struct {
	Level string
}

var defaultConfig = Config{
	Simulation: SimulationConfig{Strategy: sim.Kernel.String()},
	Log:        LogConfig{Level: "warn"},
}

// tomlSettings maps config keys to Go field names one to one and rejects
// keys that match no field.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

func loadConfig(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Line errors only carry a position, so name the file too.
	var lerr *toml.LineError
	if errors.As(err, &lerr) {
		err = fmt.Errorf("%s, %w", file, err)
	}
	return err
}

func dumpConfig(w io.Writer, cfg *Config) error {
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// newLogger builds the process logger at the named level.
func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "qtermsim",
		ReportTimestamp: true,
	}), nil
}

const (
	amplitudeBytes = 16 // complex128
	qubitCeiling   = 30
	denseCeiling   = 15 // a 2^15 x 2^15 operator is already 16 GiB
)

// stateBytes is the memory needed to hold the working set for n qubits. The
// dense strategy also materialises a 2^n x 2^n operator per gate.
func stateBytes(n int, strategy sim.Strategy) uint64 {
	dim := uint64(1) << n
	if strategy == sim.Dense {
		if n > denseCeiling {
			return math.MaxUint64
		}
		return amplitudeBytes * (dim*dim + 2*dim)
	}
	return amplitudeBytes * 2 * dim
}

// qubitLimit returns the largest register whose working set fits in half of
// available bytes.
func qubitLimit(available uint64, strategy sim.Strategy) int {
	budget := available / 2
	n := 0
	for n < qubitCeiling && stateBytes(n+1, strategy) <= budget {
		n++
	}
	return max(n, 1)
}

// resolveMaxQubits applies the configured limit, deriving one from host
// memory when none is set.
func resolveMaxQubits(configured int, strategy sim.Strategy, logger *log.Logger) int {
	if configured > 0 {
		return configured
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		logger.Warn("cannot read host memory, using fallback qubit limit", "err", err)
		return 20
	}
	n := qubitLimit(vm.Available, strategy)
	logger.Debug("derived qubit limit", "available", vm.Available, "strategy", strategy, "qubits", n)
	return n
}
