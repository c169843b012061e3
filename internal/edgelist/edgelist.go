// Package edgelist reads edge lists from files into graph records.
//
// Supported formats, chosen by file extension:
//   - .csv / .tsv: a header row naming from_, to_ and optionally type_,
//     weight_; or headerless two-column rows read as (parent, child) pairs
//   - .json: an array of records, or an object with an "edges" array
//   - .jsonl: one record per line
//   - .yaml / .yml: a list of records, or a mapping with an "edges" list
//   - .toml: an [[edges]] array of tables
//
// Every record is validated; the first malformed record aborts the read.
package edgelist

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nvandessel/graphism/internal/graph"
	"gopkg.in/yaml.v3"
)

// Format identifies an edge-list encoding.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatTSV   Format = "tsv"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

var (
	// ErrUnknownFormat is returned for an unrecognised extension or format name.
	ErrUnknownFormat = errors.New("edgelist: unknown format")

	// ErrBadWeight is returned for a negative, NaN or infinite weight.
	ErrBadWeight = errors.New("edgelist: weight must be a finite non-negative number")

	// ErrBadHeader is returned when a CSV header lacks from_ or to_.
	ErrBadHeader = errors.New("edgelist: header must name from_ and to_ columns")
)

// document is the wrapped form accepted by JSON, YAML and TOML.
type document struct {
	Edges []graph.Record `json:"edges" yaml:"edges" toml:"edges"`
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	return ParseFormat(ext)
}

// ParseFormat maps a format name (or "yml") to a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatCSV, FormatTSV, FormatJSON, FormatJSONL, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Read loads and validates the edge list at path.
func Read(path string) ([]graph.Record, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	return ReadFormat(path, format)
}

// ReadFormat is Read with an explicit format, ignoring the extension.
func ReadFormat(path string, format Format) ([]graph.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening edge list: %w", err)
	}
	defer f.Close()

	records, err := Parse(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Parse decodes r as the given format and validates the result.
func Parse(r io.Reader, format Format) ([]graph.Record, error) {
	var (
		records []graph.Record
		err     error
	)
	switch format {
	case FormatCSV:
		records, err = parseDelimited(r, ',')
	case FormatTSV:
		records, err = parseDelimited(r, '\t')
	case FormatJSON:
		records, err = parseJSON(r)
	case FormatJSONL:
		records, err = parseJSONL(r)
	case FormatYAML:
		records, err = parseYAML(r)
	case FormatTOML:
		records, err = parseTOML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if err := Validate(records); err != nil {
		return nil, err
	}
	return records, nil
}

// Validate checks every record, reporting the index of the first bad one.
func Validate(records []graph.Record) error {
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("edge record %d: %w", i, err)
		}
		if rec.Weight != nil {
			w := *rec.Weight
			if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
				return fmt.Errorf("edge record %d: %w, got %v", i, ErrBadWeight, w)
			}
		}
	}
	return nil
}

func parseDelimited(r io.Reader, comma rune) ([]graph.Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing delimited edge list: %w", err)
	}
	if len(rows) == 0 {
		return []graph.Record{}, nil
	}

	cols, hasHeader, err := headerColumns(rows[0])
	if err != nil {
		return nil, err
	}
	if hasHeader {
		rows = rows[1:]
	}

	records := make([]graph.Record, 0, len(rows))
	for i, row := range rows {
		rec := graph.Record{
			From: field(row, cols["from_"]),
			To:   field(row, cols["to_"]),
			Type: field(row, cols["type_"]),
		}
		if ws := field(row, cols["weight_"]); ws != "" {
			w, err := strconv.ParseFloat(ws, 64)
			if err != nil {
				return nil, fmt.Errorf("edge record %d: parsing weight_ %q: %w", i, ws, err)
			}
			rec.Weight = &w
		}
		records = append(records, rec)
	}
	return records, nil
}

// headerColumns returns the column index of each known field. A first row
// that names none of the known fields is treated as data, with parent and
// child in the first two columns.
func headerColumns(first []string) (map[string]int, bool, error) {
	cols := map[string]int{"from_": -1, "to_": -1, "type_": -1, "weight_": -1}
	named := false
	for i, name := range first {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := cols[key]; ok {
			cols[key] = i
			named = true
		}
	}
	if !named {
		cols["from_"], cols["to_"] = 0, 1
		return cols, false, nil
	}
	if cols["from_"] < 0 || cols["to_"] < 0 {
		return nil, false, ErrBadHeader
	}
	return cols, true, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseJSON(r io.Reader) ([]graph.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading JSON edge list: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("parsing JSON edge list: %w", err)
		}
		return doc.Edges, nil
	}
	var records []graph.Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("parsing JSON edge list: %w", err)
	}
	return records, nil
}

func parseJSONL(r io.Reader) ([]graph.Record, error) {
	scanner := bufio.NewScanner(r)
	records := make([]graph.Record, 0)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var rec graph.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: parsing JSONL record: %w", lineNum, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading JSONL edge list: %w", err)
	}
	return records, nil
}

func parseYAML(r io.Reader) ([]graph.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading YAML edge list: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing YAML edge list: %w", err)
	}
	if len(node.Content) == 0 {
		return []graph.Record{}, nil
	}
	root := node.Content[0]
	if root.Kind == yaml.MappingNode {
		var doc document
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing YAML edge list: %w", err)
		}
		return doc.Edges, nil
	}
	var records []graph.Record
	if err := root.Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing YAML edge list: %w", err)
	}
	return records, nil
}

func parseTOML(r io.Reader) ([]graph.Record, error) {
	var doc document
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing TOML edge list: %w", err)
	}
	return doc.Edges, nil
}
