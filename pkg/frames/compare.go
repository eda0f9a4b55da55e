package frames

import (
	"github.com/matzehuels/graphmorph/pkg/layout"
	"github.com/matzehuels/graphmorph/pkg/table"
)

// Panel is the static view of one layout.
type Panel struct {
	Layout layout.Name
	Nodes  []table.NodeRow
	Edges  []table.EdgeRow
	Extent table.Extent
}

// Compare returns one panel per layout of u, in the table's display order.
// Extents are computed per panel.
func Compare(u *table.Unified) []Panel {
	if u == nil {
		return nil
	}
	panels := make([]Panel, 0, len(u.Layouts))
	for _, l := range u.Layouts {
		panels = append(panels, Panel{
			Layout: l,
			Nodes:  u.NodesFor(l),
			Edges:  u.EdgesFor(l),
			Extent: u.Extent(l),
		})
	}
	return panels
}
