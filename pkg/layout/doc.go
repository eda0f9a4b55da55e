// Package layout computes named 2-D layouts of a network.
//
// # Overview
//
// A layout is a mapping from node ID to an (x, y) position, tagged with the
// [Name] of the algorithm that produced it. Layouts are computed by
// [Algorithm] implementations looked up in a [Registry]; the [Runner] applies
// one parameterised path over an ordered list of names and returns one
// [Table] per name.
//
// # Algorithms
//
// [DefaultRegistry] binds every supported name to an engine:
//
//	circle    Graphviz circo
//	star      Graphviz twopi, rooted at the highest-degree node
//	kk        Graphviz neato, mode=KK (Kamada-Kawai)
//	stress    Graphviz neato, mode=major (stress majorization)
//	mds       native classical MDS (Isomap) over shortest-path distances
//	fr        Graphviz fdp (Fruchterman-Reingold style spring model)
//	gem       Graphviz sfdp (multilevel force-directed)
//	sugiyama  Graphviz dot (layered)
//	tree      native tidy tree over a BFS spanning forest
//
// The native layouts walk the network through its gonum view,
// [network.Network.Graph], using [gonum.org/v1/gonum/graph].
//
// Graphviz runs in-process through [github.com/goccy/go-graphviz]. Each call
// renders the "plain" output format, which is parsed by [ParsePlain]; positions
// are reported in points with y pointing up.
//
// # Determinism
//
// neato, fdp and sfdp are stochastic. The registry passes a fixed start seed
// so results are stable within a process, but coordinates may still differ
// across Graphviz builds. Tests should check structural properties (one
// coordinate per node, finite values) and never exact positions for those
// layouts.
//
// # Completeness
//
// Every table returned by the [Runner] has been checked with [Table.Check]:
// a node without a coordinate fails the run with a
// *errors.MissingCoordinateError instead of reaching the unifier.
package layout
