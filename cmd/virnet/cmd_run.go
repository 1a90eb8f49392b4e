package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/iti/virnet"
	"github.com/iti/virnet/report"
	"github.com/iti/virnet/viz"
	"github.com/spf13/cobra"
)

// runSummary is the --json output of the run command
type runSummary struct {
	Name         string               `json:"name"`
	Seed         int64                `json:"seed"`
	Steps        int                  `json:"steps"`
	Extinct      bool                 `json:"extinct"`
	PeakInfected int                  `json:"peak_infected"`
	PeakTick     int                  `json:"peak_tick"`
	Final        virnet.Counts        `json:"final"`
	Network      virnet.NetworkReport `json:"network"`
	RunID        int64                `json:"run_id,omitempty"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		Long: `Build a network, infect the initial outbreak and step the model until no
node is infected or the step budget is spent.

Examples:
  virnet run --seed 42                          # Reproducible run with defaults
  virnet run --config params.yaml --steps 300   # Parameters from a file
  virnet run --seed 7 --csv counts.csv --plot-curves curves.png
  virnet run --seed 7 --video run.avi --fps 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := loadParams(cmd)
			if err != nil {
				return err
			}
			return runSimulation(cmd, params)
		},
	}

	addParamFlags(cmd)
	cmd.Flags().Int("steps", 150, "Maximum number of steps")
	cmd.Flags().String("name", "virnet", "Run name recorded in the trace and the database")
	cmd.Flags().String("csv", "", "Write per-tick counts to this CSV file")
	cmd.Flags().String("sqlite", "", "Store the run in this SQLite database")
	cmd.Flags().String("trace", "", "Write the transition trace to this file (.yaml, .yml or .json)")
	cmd.Flags().String("plot-network", "", "Plot the final network to this image file")
	cmd.Flags().String("plot-curves", "", "Chart the counts over time to this PNG file")
	cmd.Flags().String("video", "", "Animate the run into this MJPEG AVI file")
	cmd.Flags().Int("fps", 5, "Ticks per second of the animation")
	cmd.Flags().Bool("allow-saturated", false, "Run even if the network cannot reach the requested degree")

	return cmd
}

func runSimulation(cmd *cobra.Command, params virnet.Params) error {
	flags := cmd.Flags()
	steps, _ := flags.GetInt("steps")
	name, _ := flags.GetString("name")
	csvFile, _ := flags.GetString("csv")
	dbPath, _ := flags.GetString("sqlite")
	traceFile, _ := flags.GetString("trace")
	networkFile, _ := flags.GetString("plot-network")
	curvesFile, _ := flags.GetString("plot-curves")
	videoFile, _ := flags.GetString("video")
	fps, _ := flags.GetInt("fps")
	allowSaturated, _ := flags.GetBool("allow-saturated")
	jsonOut, _ := flags.GetBool("json")

	tm := virnet.CreateTraceManager(name, traceFile != "")
	m, err := setupModel(cmd, params, tm, allowSaturated)
	if err != nil {
		return err
	}

	runner := virnet.CreateRunner(m, steps)
	closers := make([]io.Closer, 0)
	closeAll := func() error {
		errs := make([]error, 0, len(closers))
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
		closers = closers[:0]
		return virnet.ReportErrs(errs)
	}
	defer closeAll()

	if tm.Active() {
		runner.AddObserver(tm)
	}
	if csvFile != "" {
		cw, err := report.CreateCSVFile(csvFile)
		if err != nil {
			return err
		}
		closers = append(closers, cw)
		runner.AddObserver(cw)
	}
	var runID int64
	if dbPath != "" {
		store, err := report.OpenSQLiteStore(cmd.Context(), dbPath)
		if err != nil {
			return err
		}
		closers = append(closers, store)
		if runID, err = store.BeginRun(cmd.Context(), name, m.Params()); err != nil {
			return err
		}
		runner.AddObserver(store)
	}
	if videoFile != "" {
		frame := viz.Frame{Size: 600, SpaceWidth: params.SpaceWidth, SpaceHeight: params.SpaceHeight}
		animator, err := viz.CreateAnimator(videoFile, frame, fps)
		if err != nil {
			return err
		}
		closers = append(closers, animator)
		runner.AddObserver(animator)
	}

	rr, runErr := runner.Run()
	if err := errors.Join(runErr, closeAll()); err != nil {
		return fmt.Errorf("run failed (seed %d): %w", m.Seed(), err)
	}

	if _, err := tm.WriteToFile(traceFile); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}
	if curvesFile != "" {
		if err := viz.PlotCurves(rr.Log, curvesFile); err != nil {
			return err
		}
	}
	if networkFile != "" {
		opts := viz.DefaultNetworkPlotOptions()
		opts.SpaceWidth, opts.SpaceHeight = params.SpaceWidth, params.SpaceHeight
		if err := viz.PlotNetwork(m, networkFile, opts); err != nil {
			return err
		}
	}

	summary := runSummary{
		Name:         name,
		Seed:         rr.Seed,
		Steps:        rr.Steps,
		Extinct:      rr.Extinct,
		PeakInfected: rr.PeakInfected,
		PeakTick:     rr.PeakTick,
		Final:        rr.Final(),
		Network:      m.Network(),
		RunID:        runID,
	}
	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(summary)
	}

	fmt.Fprintf(out, "Run %q (seed %d)\n", summary.Name, summary.Seed)
	fmt.Fprintf(out, "  network:  %d of %d links", summary.Network.Edges, summary.Network.TargetEdges)
	if summary.Network.Saturated {
		fmt.Fprint(out, " (saturated)")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  steps:    %d\n", summary.Steps)
	fmt.Fprintf(out, "  extinct:  %v\n", summary.Extinct)
	fmt.Fprintf(out, "  peak:     %d infected at tick %d\n", summary.PeakInfected, summary.PeakTick)
	fmt.Fprintf(out, "  final:    infected %d, resistant %d, susceptible %d\n",
		summary.Final.Infected, summary.Final.Resistant, summary.Final.Susceptible)
	return nil
}
