package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/matzehuels/graphmorph/pkg/table"
)

var (
	nodeHeader = []string{"x", "y", "name", "layout", "module"}
	edgeHeader = []string{"edge_id", "x", "y", "xend", "yend", "layout"}
)

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// WriteNodesCSV writes the unified node table to w.
func WriteNodesCSV(u *table.Unified, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(nodeHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range u.Nodes {
		rec := []string{formatFloat(r.X), formatFloat(r.Y), r.Name, string(r.Layout), r.Module}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write node %s: %w", r.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEdgesCSV writes the unified edge table to w.
func WriteEdgesCSV(u *table.Unified, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(edgeHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range u.Edges {
		rec := []string{
			r.EdgeID,
			formatFloat(r.X), formatFloat(r.Y),
			formatFloat(r.XEnd), formatFloat(r.YEnd),
			string(r.Layout),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write edge %s: %w", r.EdgeID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON encodes the unified tables as one indented JSON document.
func WriteJSON(u *table.Unified, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(u); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
