// Command qtermsim simulates quantum circuits on a state vector. It runs
// circuit files from the command line and hosts an interactive terminal view.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"qtermsim/sim"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "TOML configuration file",
		EnvVars: []string{"QTERMSIM_CONFIG"},
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "log level (debug, info, warn, error)",
	}
	maxQubitsFlag = &cli.IntFlag{
		Name:  "max-qubits",
		Usage: "largest accepted register; 0 derives the limit from available memory",
	}
	strategyFlag = &cli.StringFlag{
		Name:  "strategy",
		Usage: "evolution strategy (kernel, dense)",
	}
	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "output format (json, table)",
		Value: "json",
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "qtermsim",
		Usage: "state-vector quantum circuit simulator",
		Flags: []cli.Flag{
			configFileFlag,
			logLevelFlag,
			maxQubitsFlag,
			strategyFlag,
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Simulate circuit files and print outcome probabilities",
				ArgsUsage: "FILE...",
				Flags:     []cli.Flag{formatFlag},
				Action:    runCommand,
			},
			{
				Name:      "qasm",
				Usage:     "Print a circuit file as OpenQASM 2.0",
				ArgsUsage: "FILE",
				Action:    qasmCommand,
			},
			{
				Name:      "view",
				Usage:     "Open a circuit in the interactive terminal view",
				ArgsUsage: "[FILE]",
				Action:    viewCommand,
			},
			{
				Name:   "dumpconfig",
				Usage:  "Show the effective configuration",
				Action: dumpConfigCommand,
			},
		},
	}
}

// env carries what every command needs once flags and config are merged.
type env struct {
	cfg       Config
	logger    *log.Logger
	sim       *sim.Simulator
	maxQubits int
}

// makeConfig loads the config file if given, then applies flag overrides.
func makeConfig(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if ctx.IsSet(logLevelFlag.Name) {
		cfg.Log.Level = ctx.String(logLevelFlag.Name)
	}
	if ctx.IsSet(maxQubitsFlag.Name) {
		cfg.Simulation.MaxQubits = ctx.Int(maxQubitsFlag.Name)
	}
	if ctx.IsSet(strategyFlag.Name) {
		cfg.Simulation.Strategy = ctx.String(strategyFlag.Name)
	}
	return cfg, nil
}

func setup(ctx *cli.Context) (*env, error) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(ctx.App.ErrWriter, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	strategy, err := sim.ParseStrategy(cfg.Simulation.Strategy)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:       cfg,
		logger:    logger,
		sim:       sim.New(sim.WithStrategy(strategy), sim.WithLogger(logger)),
		maxQubits: resolveMaxQubits(cfg.Simulation.MaxQubits, strategy, logger),
	}, nil
}

func dumpConfigCommand(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	return dumpConfig(ctx.App.Writer, &cfg)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
