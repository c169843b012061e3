package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/nvandessel/graphism/internal/graph"
)

// Runner executes scenarios against graphs.
type Runner struct {
	logger *slog.Logger
	rng    graph.Rand
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger for run progress.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSeedRand sets the random source used for random seed selection.
func WithSeedRand(rng graph.Rand) RunnerOption {
	return func(r *Runner) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithSelectionSeed makes random seed selection reproducible.
func WithSelectionSeed(seed uint64) RunnerOption {
	return WithSeedRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewRunner creates a runner. By default it logs nothing and draws random
// seeds from the global source.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		logger: slog.New(slog.DiscardHandler),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// counter tallies handler calls during a tick.
type counter struct{ n int }

func (c *counter) Handle(*graph.Node) { c.n++ }

// Run seeds g according to scenario and advances it tick by tick. The
// context is checked between ticks; on cancellation the partial result is
// returned together with the context error.
func (r *Runner) Run(ctx context.Context, g *graph.Graph, scenario Scenario) (Result, error) {
	if err := scenario.Validate(); err != nil {
		return Result{}, err
	}

	seeds, err := SelectSeeds(g, scenario.Seeds, r.rng)
	if err != nil {
		return Result{}, fmt.Errorf("selecting seeds: %w", err)
	}

	transmissions := &counter{}
	prev := g.InfectionHandler()
	g.SetInfection(graph.Chain(prev, transmissions))
	defer g.SetInfection(prev)

	before := g.InfectedCount()
	if err := g.InfectSeedsByName(seeds...); err != nil {
		return Result{}, fmt.Errorf("infecting seeds: %w", err)
	}

	result := Result{
		Scenario: scenario.Name,
		Seeds:    seeds,
		Ticks:    make([]TickStat, 0, scenario.Ticks+1),
	}
	r.record(&result, g, TickStat{Tick: 0, NewInfections: g.InfectedCount() - before})

	r.logger.Info("simulation started",
		"scenario", scenario.Name,
		"nodes", g.NodeCount(),
		"seeds", len(seeds),
		"ticks", scenario.Ticks)

	for tick := 1; tick <= scenario.Ticks; tick++ {
		if result.Extinct && scenario.StopOnExtinction {
			break
		}
		if err := ctx.Err(); err != nil {
			r.finish(&result, g)
			return result, fmt.Errorf("simulation interrupted at tick %d: %w", tick, err)
		}
		if scenario.BeforeTick != nil {
			scenario.BeforeTick(tick, g)
		}

		transmissions.n = 0
		start := g.InfectedCount()
		g.Propagate()
		spread := g.InfectedCount()
		g.Recover()
		end := g.InfectedCount()

		r.record(&result, g, TickStat{
			Tick:          tick,
			NewInfections: spread - start,
			Recoveries:    spread - end,
			Transmissions: transmissions.n,
		})
	}

	r.finish(&result, g)
	r.logger.Info("simulation finished",
		"scenario", scenario.Name,
		"ticks_run", result.LastTick().Tick,
		"peak_infected", result.PeakInfected,
		"peak_tick", result.PeakTick,
		"extinct", result.Extinct)
	return result, nil
}

// record fills in the state counts of stat, appends it and updates the
// peak and extinction fields.
func (r *Runner) record(result *Result, g *graph.Graph, stat TickStat) {
	stat.Infected = g.InfectedCount()
	stat.Susceptible = g.NodeCount() - stat.Infected
	result.Ticks = append(result.Ticks, stat)

	if stat.Infected > result.PeakInfected {
		result.PeakInfected = stat.Infected
		result.PeakTick = stat.Tick
	}
	if stat.Infected == 0 && !result.Extinct {
		result.Extinct = true
		result.ExtinctTick = stat.Tick
	}

	r.logger.Debug("tick",
		"tick", stat.Tick,
		"infected", stat.Infected,
		"new", stat.NewInfections,
		"recovered", stat.Recoveries)
}

func (r *Runner) finish(result *Result, g *graph.Graph) {
	result.FinalInfected = graph.Names(g.Infected())
}

// RunTrials runs scenario n times, each on a fresh graph from build, and
// aggregates the results. Trials run one after another.
func (r *Runner) RunTrials(ctx context.Context, build func(trial int) (*graph.Graph, error), scenario Scenario, n int) (Summary, error) {
	if n < 1 {
		return Summary{}, fmt.Errorf("%w, got %d", ErrBadTrials, n)
	}

	summary := Summary{
		Scenario: scenario.Name,
		Results:  make([]Result, 0, n),
	}
	for trial := 0; trial < n; trial++ {
		g, err := build(trial)
		if err != nil {
			return Summary{}, fmt.Errorf("building graph for trial %d: %w", trial, err)
		}
		res, err := r.Run(ctx, g, scenario)
		if err != nil {
			return Summary{}, fmt.Errorf("trial %d: %w", trial, err)
		}
		summary.Results = append(summary.Results, res)
	}

	summarize(&summary, scenario.Ticks)
	return summary, nil
}

// summarize fills the aggregate fields from summary.Results. A run that
// stopped early holds its last infected count for the remaining ticks.
func summarize(summary *Summary, ticks int) {
	trials := len(summary.Results)
	summary.Trials = trials
	summary.MeanInfected = make([]float64, ticks+1)

	var extinct, peaks, finals int
	for _, res := range summary.Results {
		last := 0
		for t := 0; t <= ticks; t++ {
			if t < len(res.Ticks) {
				last = res.Ticks[t].Infected
			}
			summary.MeanInfected[t] += float64(last)
		}
		if res.Extinct {
			extinct++
		}
		peaks += res.PeakInfected
		if res.PeakInfected > summary.MaxPeak {
			summary.MaxPeak = res.PeakInfected
		}
		finals += len(res.FinalInfected)
	}

	for t := range summary.MeanInfected {
		summary.MeanInfected[t] /= float64(trials)
	}
	summary.ExtinctionRate = float64(extinct) / float64(trials)
	summary.MeanPeak = float64(peaks) / float64(trials)
	summary.MeanFinal = float64(finals) / float64(trials)
}
