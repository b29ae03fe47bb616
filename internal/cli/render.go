package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dverbeek/patchwork/pkg/render/dot"
	"github.com/dverbeek/patchwork/pkg/snapshot"
)

// renderCommand creates the render command: convert a snapshot file to a
// DOT or SVG diagram.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output    string
		format    string
		module    string
		scale     float64
		detailed  bool
		waypoints bool
	)

	cmd := &cobra.Command{
		Use:   "render <snapshot.json>",
		Short: "Render a snapshot as a DOT, SVG, PNG or PDF diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := snapshot.ReadFile(args[0])
			if err != nil {
				return err
			}

			opts := dot.Options{Module: module, Detailed: detailed, Waypoints: waypoints}
			prog := newProgress(c.Logger)

			src, ok := dot.ToDOT(snap, opts)
			if !ok {
				return fmt.Errorf("module %q not found in %s", module, args[0])
			}

			var data []byte
			switch strings.ToLower(format) {
			case "dot":
				data = []byte(src)
			case "svg", "png", "pdf":
				data, err = dot.RenderSVG(src)
				if err != nil {
					return err
				}
				switch strings.ToLower(format) {
				case "png":
					data, err = dot.ToPNG(data, scale)
				case "pdf":
					data, err = dot.ToPDF(data)
				}
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (want dot, svg, png or pdf)", format)
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], ".json") + "." + strings.ToLower(format)
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}

			prog.done(fmt.Sprintf("Rendered %s", args[0]))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input with new extension)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: dot, svg, png or pdf")
	cmd.Flags().Float64Var(&scale, "scale", 2.0, "resolution scale for png output")
	cmd.Flags().StringVarP(&module, "module", "m", "", "module to render (default: the default module)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include class and payload in node labels")
	cmd.Flags().BoolVar(&waypoints, "waypoints", false, "draw reroute points as waypoint dots")

	return cmd
}
