// Package table merges per-layout coordinate tables into long-form node and
// edge tables.
//
// # Node table
//
// One [NodeRow] per (node, layout): {x, y, name, layout, module}. The module
// label is joined from the network, where it was assigned once at build time,
// so it is identical in every row of a node.
//
// # Edge table
//
// One [EdgeRow] per (edge, layout): {edge_id, x, y, xend, yend, layout}. Both
// endpoints are resolved through an index keyed on the composite
// (node, layout) pair. Resolving on node ID alone would mix coordinates of
// different layouts into one segment.
//
// The edge ID is computed from the raw (From, To) pair before resolution and
// is the same in every layout, which lets the frame sequencer track an edge
// across transitions.
//
// # Failure
//
// [Unify] either returns complete tables or fails. An endpoint without a
// coordinate yields a *errors.MissingCoordinateError naming the edge, layout
// and endpoint; no rows are returned.
package table
