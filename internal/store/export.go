package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ExportJSONL writes the named graph to w as one edge record per line, the
// format edgelist reads back from .jsonl files.
func ExportJSONL(ctx context.Context, s EdgeStore, name string, w io.Writer) error {
	records, err := s.LoadGraph(ctx, name)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for i, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode edge record %d: %w", i, err)
		}
	}
	return nil
}
