// Package io reads edge and node tables and writes unified coordinate tables.
//
// # Input
//
// An edge table has the columns From and To (case-insensitive). A node table
// has a Name or ID column, an optional Module column, and any number of
// extra columns that are kept as node metadata. Tables may be:
//
//   - CSV with a header row ([ReadEdgesCSV], [ReadNodesCSV])
//   - XLSX, first sheet, header in the first row ([ReadEdgesXLSX], [ReadNodesXLSX])
//   - JSON holding both tables ([ReadJSON]):
//
//	{
//	  "edges": [{"from": 1, "to": 2}, {"from": "2", "to": "3"}],
//	  "nodes": [{"id": "1", "module": "ingest"}]
//	}
//
// Identifiers may be numbers or strings. Numbers are normalised to their
// integer form, so 1, "1" and 1.0 name the same node. Blank rows are skipped.
//
// [ImportNodes] and [ImportInput] pick the reader from the file extension.
//
// # Output
//
// The unified node table is written with the columns
// x, y, name, layout, module and the edge table with
// edge_id, x, y, xend, yend, layout ([WriteNodesCSV], [WriteEdgesCSV]).
// [WriteJSON] writes both tables and the layout levels in one document.
package io
