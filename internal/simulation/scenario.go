package simulation

import (
	"errors"
	"fmt"

	"github.com/nvandessel/graphism/internal/graph"
)

var (
	// ErrBadTicks is returned for a negative tick count.
	ErrBadTicks = errors.New("ticks must be >= 0")

	// ErrBadTrials is returned when RunTrials is asked for fewer than one trial.
	ErrBadTrials = errors.New("trials must be >= 1")
)

// Scenario defines a single simulation run.
type Scenario struct {
	Name  string
	Seeds SeedSpec
	Ticks int

	// StopOnExtinction ends the run at the first tick with no infected nodes.
	StopOnExtinction bool

	// BeforeTick, when non-nil, is called before each tick executes.
	BeforeTick func(tick int, g *graph.Graph)
}

// Validate checks the tick count and seed spec.
func (s Scenario) Validate() error {
	if s.Ticks < 0 {
		return fmt.Errorf("%w, got %d", ErrBadTicks, s.Ticks)
	}
	return s.Seeds.Validate()
}

// TickStat is the state of the graph after one tick. Tick 0 is the state
// right after seeding.
type TickStat struct {
	Tick          int `json:"tick"`
	Infected      int `json:"infected"`
	Susceptible   int `json:"susceptible"`
	NewInfections int `json:"new_infections"`
	Recoveries    int `json:"recoveries"`

	// Transmissions counts successful draws, including draws that landed
	// on an already infected node.
	Transmissions int `json:"transmissions"`
}

// Result captures one run.
type Result struct {
	Scenario      string     `json:"scenario,omitempty"`
	Seeds         []string   `json:"seeds"`
	Ticks         []TickStat `json:"ticks"`
	PeakInfected  int        `json:"peak_infected"`
	PeakTick      int        `json:"peak_tick"`
	Extinct       bool       `json:"extinct"`
	ExtinctTick   int        `json:"extinct_tick,omitempty"`
	FinalInfected []string   `json:"final_infected"`
}

// LastTick returns the final recorded tick.
func (r Result) LastTick() TickStat {
	if len(r.Ticks) == 0 {
		return TickStat{}
	}
	return r.Ticks[len(r.Ticks)-1]
}

// Summary aggregates independent runs of one scenario.
type Summary struct {
	Scenario       string    `json:"scenario,omitempty"`
	Trials         int       `json:"trials"`
	MeanInfected   []float64 `json:"mean_infected"`
	ExtinctionRate float64   `json:"extinction_rate"`
	MeanPeak       float64   `json:"mean_peak"`
	MaxPeak        int       `json:"max_peak"`
	MeanFinal      float64   `json:"mean_final"`
	Results        []Result  `json:"-"`
}
