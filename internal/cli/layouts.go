package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphmorph/pkg/layout"
	"github.com/matzehuels/graphmorph/pkg/pipeline"
)

// layoutsCommand lists the supported layouts in display order.
func (c *CLI) layoutsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List the supported layout algorithms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := c.registry
			if reg == nil {
				reg = layout.DefaultRegistry(pipeline.DefaultSeed)
			}
			rows := make([][]string, 0, len(layout.DisplayOrder))
			for i, name := range layout.DisplayOrder {
				engine := "-"
				if alg, err := reg.Lookup(name); err == nil {
					engine = engineName(alg)
				}
				rows = append(rows, []string{fmt.Sprint(i + 1), string(name), engine})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"#", "Layout", "Engine"}, rows))
			return nil
		},
	}
}

// engineName describes what computes an algorithm's coordinates.
func engineName(alg layout.Algorithm) string {
	switch a := alg.(type) {
	case *layout.Engine:
		return "graphviz " + string(a.Program)
	case layout.TidyTree:
		return "built-in tidy tree"
	case layout.Isomap:
		return "built-in isomap"
	default:
		return "custom"
	}
}
