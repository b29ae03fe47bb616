package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dverbeek/patchwork/pkg/graph"
	"github.com/dverbeek/patchwork/pkg/snapshot"
)

// inspectCommand creates the inspect command: load a snapshot file,
// validate it, and print per-module statistics.
func (c *CLI) inspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <snapshot.json>",
		Short: "Validate a snapshot file and summarize its contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := snapshot.ReadFile(args[0])
			if err != nil {
				return err
			}

			g, err := snapshot.ToGraph(snap, nil, graph.IDSequential)
			if err != nil {
				printError("snapshot is malformed: %v", err)
				return err
			}
			if err := g.Validate(); err != nil {
				printError("snapshot fails validation: %v", err)
				return err
			}

			rows := summarize(snap)
			printSuccess("%s is valid", args[0])

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(StyleDim).
				Headers("MODULE", "NODES", "CONNECTIONS", "REROUTE POINTS")
			for _, r := range rows {
				t.Row(r.Module, fmt.Sprint(r.Nodes), fmt.Sprint(r.Connections), fmt.Sprint(r.Points))
			}
			fmt.Println(t)
			return nil
		},
	}
	return cmd
}

// moduleStats is one summary row.
type moduleStats struct {
	Module      string
	Nodes       int
	Connections int
	Points      int
}

// summarize counts nodes, connections and reroute points per module, in
// sorted module order. Connections are counted once from the output side.
func summarize(s snapshot.Snapshot) []moduleStats {
	out := make([]moduleStats, 0, len(s.Modules))
	for _, name := range slices.Sorted(maps.Keys(s.Modules)) {
		m := s.Modules[name]
		row := moduleStats{Module: name, Nodes: len(m.Nodes)}
		for _, n := range m.Nodes {
			for _, port := range n.Outputs {
				row.Connections += len(port.Connections)
				for _, ep := range port.Connections {
					row.Points += len(ep.Points)
				}
			}
		}
		out = append(out, row)
	}
	return out
}
