package simulation

import (
	"fmt"
	"log/slog"

	"github.com/nvandessel/graphism/internal/config"
	"github.com/nvandessel/graphism/internal/graph"
)

// Model holds the rule choices that turn edge records into a graph.
type Model struct {
	Directed                bool
	Transmission            string
	TransmissionProbability float64
	RecoveryProbability     float64

	// RNGSeed, when set, makes every draw reproducible. Trial t of a
	// multi-trial run uses RNGSeed+t.
	RNGSeed *uint64

	Logger           *slog.Logger
	InfectionHandler graph.Handler
	RecoveryHandler  graph.Handler
}

// NewModel copies the model settings out of a simulation config.
func NewModel(c config.SimulationConfig) Model {
	return Model{
		Directed:                c.Directed,
		Transmission:            c.Transmission,
		TransmissionProbability: c.TransmissionProbability,
		RecoveryProbability:     c.RecoveryProbability,
		RNGSeed:                 c.RNGSeed,
	}
}

// NewScenario builds a scenario from config sections.
func NewScenario(name string, c config.SimulationConfig, seeds config.SeedsConfig) Scenario {
	return Scenario{
		Name: name,
		Seeds: SeedSpec{
			Names:     seeds.Names,
			Random:    seeds.Random,
			TopDegree: seeds.TopDegree,
		},
		Ticks:            c.Ticks,
		StopOnExtinction: c.StopOnExtinction,
	}
}

// Options returns the graph options for trial.
func (m Model) Options(trial int) ([]graph.Option, error) {
	rule, err := graph.TransmissionByName(m.Transmission, m.TransmissionProbability)
	if err != nil {
		return nil, err
	}
	policy, err := graph.RecoveryFromProbability(m.RecoveryProbability)
	if err != nil {
		return nil, fmt.Errorf("recovery: %w", err)
	}

	opts := []graph.Option{
		graph.WithDirected(m.Directed),
		graph.WithTransmission(rule),
		graph.WithRecoveryPolicy(policy),
		graph.WithLogger(m.Logger),
		graph.WithInfectionHandler(m.InfectionHandler),
		graph.WithRecoveryHandler(m.RecoveryHandler),
	}
	if m.RNGSeed != nil {
		opts = append(opts, graph.WithSeed(*m.RNGSeed+uint64(trial)))
	}
	return opts, nil
}

// Build constructs the graph for trial from records.
func (m Model) Build(records []graph.Record, trial int) (*graph.Graph, error) {
	opts, err := m.Options(trial)
	if err != nil {
		return nil, err
	}
	return graph.FromRecords(records, opts...)
}

// Builder adapts Build to the RunTrials signature.
func (m Model) Builder(records []graph.Record) func(trial int) (*graph.Graph, error) {
	return func(trial int) (*graph.Graph, error) {
		return m.Build(records, trial)
	}
}

// SeedRunner returns a runner whose random seed selection follows the
// model's RNG seed, so a seeded model is reproducible end to end.
func (m Model) SeedRunner(opts ...RunnerOption) *Runner {
	if m.RNGSeed != nil {
		opts = append([]RunnerOption{WithSelectionSeed(*m.RNGSeed)}, opts...)
	}
	return NewRunner(opts...)
}
