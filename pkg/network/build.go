package network

import (
	"errors"
	"fmt"

	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
)

// EdgeRecord is one row of the raw edge table.
type EdgeRecord struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NodeRecord is one row of the optional node table. A non-empty Module
// overrides the partition for that node.
type NodeRecord struct {
	ID     string   `json:"id"`
	Module string   `json:"module,omitempty"`
	Meta   Metadata `json:"meta,omitempty"`
}

// BuildOptions controls module assignment.
type BuildOptions struct {
	// Partition maps identifier ranges to module names.
	Partition Partition

	// StrictModules rejects nodes that fall outside every range instead of
	// labelling them [Unassigned].
	StrictModules bool
}

// Build constructs a network from raw edge records and an optional node table.
//
// When nodes is nil the node universe is derived from the edges. When nodes
// is non-nil every edge endpoint must appear in it, otherwise Build fails
// with a *errors.ValidationError and returns no network.
func Build(edges []EdgeRecord, nodes []NodeRecord, opts BuildOptions) (*Network, error) {
	if err := opts.Partition.Validate(); err != nil {
		return nil, gmerrors.Invalid("partition", "", "%v", err)
	}
	if len(edges) == 0 && len(nodes) == 0 {
		return nil, gmerrors.Invalid("network", "", "no nodes or edges")
	}

	if nodes == nil {
		nodes = deriveNodes(edges)
	}

	net := New()
	for _, rec := range nodes {
		node, err := opts.label(rec)
		if err != nil {
			return nil, err
		}
		if err := net.addNode(node); err != nil {
			return nil, gmerrors.Invalid("node", rec.ID, "%v", err)
		}
	}

	for _, rec := range edges {
		e := Edge{From: rec.From, To: rec.To}
		if err := net.addEdge(e); err != nil {
			return nil, edgeError(e, err)
		}
	}
	return net, nil
}

// deriveNodes returns the deduplicated union of edge endpoints in first-seen order.
func deriveNodes(edges []EdgeRecord) []NodeRecord {
	seen := make(map[string]bool, len(edges)*2)
	var out []NodeRecord
	for _, e := range edges {
		for _, id := range [2]string{e.From, e.To} {
			if !seen[id] {
				seen[id] = true
				out = append(out, NodeRecord{ID: id})
			}
		}
	}
	return out
}

func (o BuildOptions) label(rec NodeRecord) (Node, error) {
	node := Node{ID: rec.ID, Module: rec.Module, Meta: rec.Meta}
	if node.Module != "" {
		return node, nil
	}
	module, ok := o.Partition.Assign(rec.ID)
	if !ok && o.StrictModules {
		return Node{}, gmerrors.Invalid("node", rec.ID, "outside every module range")
	}
	node.Module = module
	return node, nil
}

func edgeError(e Edge, err error) error {
	switch {
	case errors.Is(err, ErrUnknownSourceNode):
		return gmerrors.Invalid("edge", e.ID(), "references unknown node %q", e.From)
	case errors.Is(err, ErrUnknownTargetNode):
		return gmerrors.Invalid("edge", e.ID(), "references unknown node %q", e.To)
	case errors.Is(err, ErrDuplicateEdge):
		return gmerrors.Invalid("edge", e.ID(), "appears more than once")
	default:
		return fmt.Errorf("edge %s: %w", e.ID(), err)
	}
}
