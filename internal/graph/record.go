package graph

import "fmt"

// Pair is the positional edge form: a parent name followed by a child name.
type Pair struct {
	From string
	To   string
}

// Record is the keyword edge form. From and To are required; Type and
// Weight are optional. A nil Weight means DefaultWeight.
type Record struct {
	From   string   `json:"from_" yaml:"from_" toml:"from_"`
	To     string   `json:"to_" yaml:"to_" toml:"to_"`
	Type   string   `json:"type_,omitempty" yaml:"type_,omitempty" toml:"type_,omitempty"`
	Weight *float64 `json:"weight_,omitempty" yaml:"weight_,omitempty" toml:"weight_,omitempty"`
}

// Validate reports ErrMissingEndpoint when either endpoint is empty.
func (r Record) Validate() error {
	if r.From == "" || r.To == "" {
		return fmt.Errorf("%w (from_=%q, to_=%q)", ErrMissingEndpoint, r.From, r.To)
	}
	return nil
}

// EdgeWeight returns the record's weight, or DefaultWeight when unset.
func (r Record) EdgeWeight() float64 {
	if r.Weight == nil {
		return DefaultWeight
	}
	return *r.Weight
}

// Options converts the optional record fields into edge options.
func (r Record) Options() []EdgeOption {
	opts := []EdgeOption{EdgeWeight(r.EdgeWeight())}
	if r.Type != "" {
		opts = append(opts, EdgeType(r.Type))
	}
	return opts
}

// PairsToRecords converts positional pairs into records with default type and weight.
func PairsToRecords(pairs []Pair) []Record {
	records := make([]Record, len(pairs))
	for i, p := range pairs {
		records[i] = Record{From: p.From, To: p.To}
	}
	return records
}
