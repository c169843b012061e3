// Package simulation drives a graph.Graph through a fixed number of ticks
// and reports what happened on each one.
//
// The runner chains a counting handler after whatever infection handler
// the caller already set, and restores the original when the run ends.
// Results live in memory only; nothing about a run is persisted.
//
// Usage:
//
//	g, _ := graph.FromRecords(records, graph.WithSeed(7))
//	r := simulation.NewRunner(simulation.WithSelectionSeed(7))
//	result, err := r.Run(ctx, g, simulation.Scenario{
//	    Name:             "household",
//	    Seeds:            simulation.SeedSpec{TopDegree: 1},
//	    Ticks:            20,
//	    StopOnExtinction: true,
//	})
package simulation
