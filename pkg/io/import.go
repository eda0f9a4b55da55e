package io

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
	"github.com/matzehuels/graphmorph/pkg/network"
)

// Input is a loaded edge table and optional node table. Nodes is nil when no
// node table was supplied.
type Input struct {
	Edges []network.EdgeRecord `json:"edges"`
	Nodes []network.NodeRecord `json:"nodes,omitempty"`
}

// =============================================================================
// JSON
// =============================================================================

// ident accepts a JSON string or number.
type ident string

func (id *ident) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ident(NormalizeID(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number, got %s", b)
	}
	*id = ident(NormalizeID(n.String()))
	return nil
}

type jsonInput struct {
	Edges []struct {
		From ident `json:"from"`
		To   ident `json:"to"`
	} `json:"edges"`
	Nodes []struct {
		ID     ident            `json:"id"`
		Name   ident            `json:"name"`
		Module string           `json:"module"`
		Meta   network.Metadata `json:"meta"`
	} `json:"nodes"`
}

// ReadJSON decodes an input document. A missing or empty "nodes" array means
// no node table.
func ReadJSON(r io.Reader) (*Input, error) {
	var data jsonInput
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, gmerrors.Wrap(gmerrors.ErrCodeInvalidFormat, err, "decode JSON input")
	}

	in := &Input{Edges: make([]network.EdgeRecord, 0, len(data.Edges))}
	for _, e := range data.Edges {
		in.Edges = append(in.Edges, network.EdgeRecord{From: string(e.From), To: string(e.To)})
	}
	for _, n := range data.Nodes {
		id := n.ID
		if id == "" {
			id = n.Name
		}
		in.Nodes = append(in.Nodes, network.NodeRecord{ID: string(id), Module: n.Module, Meta: n.Meta})
	}
	return in, nil
}

// =============================================================================
// CSV and XLSX
// =============================================================================

// ReadEdgesCSV reads an edge table with a header row.
func ReadEdgesCSV(r io.Reader) ([]network.EdgeRecord, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return EdgesFromRows(rows)
}

// ReadNodesCSV reads a node table with a header row.
func ReadNodesCSV(r io.Reader) ([]network.NodeRecord, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return NodesFromRows(rows)
}

// ReadEdgesXLSX reads an edge table from the first sheet of a workbook.
func ReadEdgesXLSX(r io.Reader) ([]network.EdgeRecord, error) {
	rows, err := readXLSX(r)
	if err != nil {
		return nil, err
	}
	return EdgesFromRows(rows)
}

// ReadNodesXLSX reads a node table from the first sheet of a workbook.
func ReadNodesXLSX(r io.Reader) ([]network.NodeRecord, error) {
	rows, err := readXLSX(r)
	if err != nil {
		return nil, err
	}
	return NodesFromRows(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, gmerrors.Wrap(gmerrors.ErrCodeInvalidFormat, err, "read CSV")
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, gmerrors.Wrap(gmerrors.ErrCodeInvalidFormat, err, "open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, gmerrors.New(gmerrors.ErrCodeInvalidFormat, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, gmerrors.Wrap(gmerrors.ErrCodeInvalidFormat, err, "read sheet %s", sheets[0])
	}
	return rows, nil
}

// EdgesFromRows converts a header row plus data rows into edge records.
func EdgesFromRows(rows [][]string) ([]network.EdgeRecord, error) {
	h, err := header(rows)
	if err != nil {
		return nil, err
	}
	from, to := h.index("from"), h.index("to")
	if from < 0 || to < 0 {
		return nil, gmerrors.New(gmerrors.ErrCodeInvalidFormat, "edge table needs From and To columns, got %v", rows[0])
	}

	var out []network.EdgeRecord
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		f, t := cell(row, from), cell(row, to)
		if f == "" || t == "" {
			return nil, gmerrors.Invalid("edge", fmt.Sprintf("row %d", i+2), "From and To must both be set")
		}
		out = append(out, network.EdgeRecord{From: f, To: t})
	}
	return out, nil
}

// NodesFromRows converts a header row plus data rows into node records.
// Columns other than the identifier and Module become metadata.
func NodesFromRows(rows [][]string) ([]network.NodeRecord, error) {
	h, err := header(rows)
	if err != nil {
		return nil, err
	}
	id := h.index("name")
	if id < 0 {
		id = h.index("id")
	}
	if id < 0 {
		return nil, gmerrors.New(gmerrors.ErrCodeInvalidFormat, "node table needs a Name or ID column, got %v", rows[0])
	}
	module := h.index("module")

	out := make([]network.NodeRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := network.NodeRecord{ID: cell(row, id)}
		if module >= 0 && module < len(row) {
			rec.Module = strings.TrimSpace(row[module])
		}
		for col := range h.names {
			if col == id || col == module || col >= len(row) || row[col] == "" {
				continue
			}
			if rec.Meta == nil {
				rec.Meta = network.Metadata{}
			}
			rec.Meta[strings.TrimSpace(rows[0][col])] = row[col]
		}
		out = append(out, rec)
	}
	return out, nil
}

type headerRow struct{ names []string }

func header(rows [][]string) (headerRow, error) {
	if len(rows) == 0 {
		return headerRow{}, gmerrors.New(gmerrors.ErrCodeInvalidFormat, "table is empty")
	}
	names := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		names[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(c, "\ufeff")))
	}
	return headerRow{names: names}, nil
}

func (h headerRow) index(name string) int {
	for i, n := range h.names {
		if n == name {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return NormalizeID(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// NormalizeID trims an identifier and rewrites integral numbers such as
// "1.0" or "1e1" to their integer form.
func NormalizeID(s string) string {
	s = strings.TrimSpace(s)
	if _, err := strconv.Atoi(s); err == nil || s == "" {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// =============================================================================
// Files
// =============================================================================

// ImportNodes reads a node table from a .csv, .xlsx or .json file.
func ImportNodes(path string) ([]network.NodeRecord, error) {
	in, err := importFile(path, true)
	if err != nil {
		return nil, err
	}
	if in.Nodes == nil {
		in.Nodes = []network.NodeRecord{}
	}
	return in.Nodes, nil
}

// ImportInput reads the edge table at edgesPath and, if nodesPath is not
// empty, the node table at nodesPath. A JSON edges file may carry its own
// node table, which nodesPath overrides.
func ImportInput(edgesPath, nodesPath string) (*Input, error) {
	in, err := importFile(edgesPath, false)
	if err != nil {
		return nil, err
	}
	if nodesPath != "" {
		nodes, err := ImportNodes(nodesPath)
		if err != nil {
			return nil, err
		}
		in.Nodes = nodes
	}
	return in, nil
}

func importFile(path string, nodes bool) (*Input, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, gmerrors.New(gmerrors.ErrCodeFileNotFound, "file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	r := bytes.NewReader(data)
	in := &Input{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		in, err = ReadJSON(r)
	case ".csv":
		if nodes {
			in.Nodes, err = ReadNodesCSV(r)
		} else {
			in.Edges, err = ReadEdgesCSV(r)
		}
	case ".xlsx":
		if nodes {
			in.Nodes, err = ReadNodesXLSX(r)
		} else {
			in.Edges, err = ReadEdgesXLSX(r)
		}
	default:
		return nil, gmerrors.New(gmerrors.ErrCodeInvalidFormat, "unsupported table format %q (want .csv, .xlsx or .json)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}
