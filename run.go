package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"qtermsim/circuit"
	"qtermsim/jobs"
	"qtermsim/qasm"
	"qtermsim/sim"
)

// cliOwner owns every job submitted from the command line.
const cliOwner = "cli"

func runCommand(ctx *cli.Context) error {
	paths := ctx.Args().Slice()
	if len(paths) == 0 {
		return cli.Exit("run: no circuit files given", 2)
	}
	format := ctx.String(formatFlag.Name)
	if format != "json" && format != "table" {
		return cli.Exit(fmt.Sprintf("run: unknown output format %q", format), 2)
	}

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	runner := jobs.NewRunner(e.sim, jobs.Config{
		Concurrency: e.cfg.Jobs.Concurrency,
		MaxQubits:   e.maxQubits,
	}, e.logger)
	defer runner.Close()

	// Load and submit concurrently; failures are reported per file.
	ids := make([]string, len(paths))
	errs := make([]error, len(paths))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			c, err := circuit.Load(path)
			if err == nil {
				ids[i], err = runner.Submit(ctx.Context, cliOwner, c)
			}
			errs[i] = err
			return nil
		})
	}
	// Workers store failures in errs and never fail the group.
	_ = g.Wait()

	failed := 0
	for i, path := range paths {
		if errs[i] == nil {
			var job jobs.Job
			job, errs[i] = runner.Wait(ctx.Context, cliOwner, ids[i])
			if errs[i] == nil && job.Status == jobs.StatusFailed {
				errs[i] = errors.New(job.Error)
			}
			if errs[i] == nil {
				if err := writeResult(ctx.App.Writer, path, *job.Results, format, len(paths) > 1); err != nil {
					return err
				}
				continue
			}
		}
		failed++
		fmt.Fprintf(ctx.App.ErrWriter, "%s: %v\n", path, errs[i])
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d circuits failed", failed, len(paths)), 1)
	}
	return nil
}

// writeResult prints one circuit's outcome distribution. JSON output is one
// {"states": ...} object per line.
func writeResult(w io.Writer, path string, res sim.Result, format string, titled bool) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(res)
	}

	if titled {
		fmt.Fprintf(w, "%s\n", path)
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"State", "Probability"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, o := range res.States.Outcomes() {
		table.Append([]string{o.State, strconv.FormatFloat(o.Probability, 'f', 6, 64)})
	}
	table.SetFooter([]string{"Total", strconv.FormatFloat(res.States.Total(), 'f', 6, 64)})
	table.Render()
	return nil
}

func qasmCommand(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit("qasm: expected exactly one circuit file", 2)
	}
	c, err := circuit.Load(ctx.Args().First())
	if err != nil {
		return err
	}
	return circuit.Encode(ctx.App.Writer, c, circuit.QASM)
}

func viewCommand(ctx *cli.Context) error {
	if ctx.NArg() > 1 {
		return cli.Exit("view: expected at most one circuit file", 2)
	}
	e, err := setup(ctx)
	if err != nil {
		return err
	}

	src, path := sampleQASM, ""
	if ctx.NArg() == 1 {
		path = ctx.Args().First()
		c, err := circuit.Load(path)
		if err != nil {
			return err
		}
		if src, err = qasm.Format(c); err != nil {
			return err
		}
	}
	return runView(e, path, src)
}
