// Package network provides the undirected graph model that every layout in
// graphmorph is computed from.
//
// # Overview
//
// A [Network] is a fixed set of nodes plus a list of undirected edges. Each
// node carries a module label (its group), assigned once when the network is
// built. Every later stage reads that label and never derives it again, so it
// is the same in every layout.
//
// # Building
//
// [Build] turns raw edge records (and optionally an explicit node table) into
// a network:
//
//	net, err := network.Build(edges, nil, network.BuildOptions{
//	    Partition: network.Partition{
//	        {Name: "core", From: 1, To: 10},
//	        {Name: "edge", From: 11, To: 20},
//	    },
//	})
//
// Without a node table the node universe is the union of all From and To
// values, in first-seen order. With a node table, an edge that references an
// unknown node fails with a validation error and no network is returned.
//
// # Modules
//
// A [Partition] maps integer identifier ranges to module names. Identifiers
// outside every range, or identifiers that are not integers, get the visible
// [Unassigned] category. Set [BuildOptions.StrictModules] to reject them
// instead.
//
// # Edge Identity
//
// [Edge.ID] returns "{From}-{To}" from the raw pair. The identifier does not
// depend on any layout, so animation can follow the same edge across layouts.
//
// # Concurrency
//
// A built Network is never mutated and is safe for concurrent reads.
package network
