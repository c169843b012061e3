package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nvandessel/graphism/internal/config"
	"github.com/nvandessel/graphism/internal/graph"
	"github.com/nvandessel/graphism/internal/logging"
	"github.com/nvandessel/graphism/internal/simulation"
	"github.com/spf13/cobra"
)

// simulateOutput is the --json form of a simulate run.
type simulateOutput struct {
	Graph   string              `json:"graph"`
	Stats   graph.Stats         `json:"stats"`
	Result  *simulation.Result  `json:"result,omitempty"`
	Summary *simulation.Summary `json:"summary,omitempty"`
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run an SIS contagion and print per-tick counts",
		Long: `Run a susceptible-infected-susceptible contagion over a graph.

The graph comes from an edge list file, a stored graph or a generated
topology. Seeds are chosen by name, by highest degree and at random, in
that order. Flags override the config file.

Examples:
  graphism simulate --edges contacts.csv --seed alice --ticks 20
  graphism simulate --graph office --top-degree 2 --recovery 0.3
  graphism simulate --topology ring --size 50 --random-seeds 3 --trials 100 --rng-seed 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			applySimulateFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid simulation settings: %w", err)
			}

			logger := newLogger(cmd, cfg)
			ctx, cancel := signalContext()
			defer cancel()

			records, label, err := loadRecords(ctx, cmd, cfg)
			if err != nil {
				return err
			}

			scenario := simulation.NewScenario(label, cfg.Simulation, cfg.Seeds)
			if scenario.Seeds.IsZero() {
				scenario.Seeds = simulation.DefaultSeeds
			}

			model := simulation.NewModel(cfg.Simulation)
			model.Logger = logger
			model.InfectionHandler = logging.InfectionTracer(logger)
			model.RecoveryHandler = logging.RecoveryTracer(logger)

			g, err := model.Build(records, 0)
			if err != nil {
				return fmt.Errorf("failed to build graph: %w", err)
			}
			out := simulateOutput{Graph: label, Stats: g.Stats()}
			runner := model.SeedRunner(simulation.WithLogger(logger))

			if cfg.Simulation.Trials == 1 {
				res, err := runner.Run(ctx, g, scenario)
				if err != nil {
					return fmt.Errorf("simulation failed: %w", err)
				}
				out.Result = &res
			} else {
				summary, err := runner.RunTrials(ctx, model.Builder(records), scenario, cfg.Simulation.Trials)
				if err != nil {
					return fmt.Errorf("simulation failed: %w", err)
				}
				out.Summary = &summary
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			printSimulation(cmd.OutOrStdout(), out)
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().StringSlice("seed", nil, "Seed node name (repeatable or comma-separated)")
	cmd.Flags().Int("random-seeds", 0, "Number of seed nodes drawn at random")
	cmd.Flags().Int("top-degree", 0, "Number of seed nodes taken by highest degree")
	cmd.Flags().Int("ticks", 0, "Number of propagate and recover rounds (default from config)")
	cmd.Flags().Int("trials", 0, "Independent runs to aggregate (default from config)")
	cmd.Flags().Uint64("rng-seed", 0, "Seed for reproducible runs")
	cmd.Flags().String("transmission", "", "Transmission rule: default, weighted or constant")
	cmd.Flags().Float64("transmission-probability", 0, "Per-edge probability for the constant rule")
	cmd.Flags().Float64("recovery", 0, "Per-tick recovery probability (default from config)")
	cmd.Flags().Bool("keep-going", false, "Keep ticking after every node has recovered")

	return cmd
}

// applySimulateFlags overlays explicitly set flags on cfg.
func applySimulateFlags(cmd *cobra.Command, cfg *config.GraphismConfig) {
	flags := cmd.Flags()
	sim := &cfg.Simulation

	if flags.Changed("directed") {
		sim.Directed, _ = flags.GetBool("directed")
	}
	if flags.Changed("ticks") {
		sim.Ticks, _ = flags.GetInt("ticks")
	}
	if flags.Changed("trials") {
		sim.Trials, _ = flags.GetInt("trials")
	}
	if flags.Changed("rng-seed") {
		seed, _ := flags.GetUint64("rng-seed")
		sim.RNGSeed = &seed
	}
	if flags.Changed("transmission") {
		sim.Transmission, _ = flags.GetString("transmission")
	}
	if flags.Changed("transmission-probability") {
		sim.TransmissionProbability, _ = flags.GetFloat64("transmission-probability")
	}
	if flags.Changed("recovery") {
		sim.RecoveryProbability, _ = flags.GetFloat64("recovery")
	}
	if flags.Changed("keep-going") {
		keepGoing, _ := flags.GetBool("keep-going")
		sim.StopOnExtinction = !keepGoing
	}

	seedNames, _ := flags.GetStringSlice("seed")
	random, _ := flags.GetInt("random-seeds")
	top, _ := flags.GetInt("top-degree")
	if len(seedNames) > 0 || random > 0 || top > 0 {
		cfg.Seeds = config.SeedsConfig{Names: seedNames, Random: random, TopDegree: top}
	}
}

func printSimulation(w io.Writer, out simulateOutput) {
	s := out.Stats
	fmt.Fprintf(w, "Graph: %s (%d nodes, %d relationships, directed=%v)\n", out.Graph, s.Nodes, s.Relationships, s.Directed)

	if res := out.Result; res != nil {
		fmt.Fprintf(w, "Seeds: %s\n\n", strings.Join(res.Seeds, ", "))
		fmt.Fprintf(w, "%5s  %8s  %11s  %4s  %9s  %13s\n", "TICK", "INFECTED", "SUSCEPTIBLE", "NEW", "RECOVERED", "TRANSMISSIONS")
		for _, ts := range res.Ticks {
			fmt.Fprintf(w, "%5d  %8d  %11d  %4d  %9d  %13d\n",
				ts.Tick, ts.Infected, ts.Susceptible, ts.NewInfections, ts.Recoveries, ts.Transmissions)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Peak: %d infected at tick %d\n", res.PeakInfected, res.PeakTick)
		if res.Extinct {
			fmt.Fprintf(w, "Extinct at tick %d\n", res.ExtinctTick)
		} else {
			fmt.Fprintf(w, "Still infected: %s\n", strings.Join(res.FinalInfected, ", "))
		}
		return
	}

	sum := out.Summary
	fmt.Fprintf(w, "Trials: %d\n\n", sum.Trials)
	fmt.Fprintf(w, "%5s  %13s\n", "TICK", "MEAN INFECTED")
	for tick, mean := range sum.MeanInfected {
		fmt.Fprintf(w, "%5d  %13.2f\n", tick, mean)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Mean peak: %.2f (max %d)\n", sum.MeanPeak, sum.MaxPeak)
	fmt.Fprintf(w, "Extinction rate: %.2f\n", sum.ExtinctionRate)
	fmt.Fprintf(w, "Mean final infected: %.2f\n", sum.MeanFinal)
}
