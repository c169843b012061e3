package simulation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nvandessel/graphism/internal/graph"
)

// ErrUnknownTopology is returned by Generate for an unrecognised kind.
var ErrUnknownTopology = errors.New("unknown topology")

// Topologies lists the kinds Generate understands.
var Topologies = []string{"path", "ring", "star", "complete"}

// nodeName names generated nodes "1".."n".
func nodeName(i int) string { return strconv.Itoa(i + 1) }

// Path links 1-2, 2-3, ..., (n-1)-n.
func Path(n int) []graph.Record {
	records := make([]graph.Record, 0, max(n-1, 0))
	for i := 0; i+1 < n; i++ {
		records = append(records, graph.Record{From: nodeName(i), To: nodeName(i + 1)})
	}
	return records
}

// Ring is Path(n) closed with an n-1 edge. It needs n >= 3.
func Ring(n int) []graph.Record {
	records := Path(n)
	if n >= 3 {
		records = append(records, graph.Record{From: nodeName(n - 1), To: nodeName(0)})
	}
	return records
}

// Star links hub "1" to every other node.
func Star(n int) []graph.Record {
	records := make([]graph.Record, 0, max(n-1, 0))
	for i := 1; i < n; i++ {
		records = append(records, graph.Record{From: nodeName(0), To: nodeName(i)})
	}
	return records
}

// Complete links every unordered pair once.
func Complete(n int) []graph.Record {
	records := make([]graph.Record, 0, max(n*(n-1)/2, 0))
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			records = append(records, graph.Record{From: nodeName(i), To: nodeName(j)})
		}
	}
	return records
}

// Generate builds the named topology over n nodes.
func Generate(kind string, n int) ([]graph.Record, error) {
	if n < 2 {
		return nil, fmt.Errorf("topology %q needs at least 2 nodes, got %d", kind, n)
	}
	switch strings.ToLower(kind) {
	case "path":
		return Path(n), nil
	case "ring":
		if n < 3 {
			return nil, fmt.Errorf("topology ring needs at least 3 nodes, got %d", n)
		}
		return Ring(n), nil
	case "star":
		return Star(n), nil
	case "complete":
		return Complete(n), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownTopology, kind, strings.Join(Topologies, ", "))
	}
}
