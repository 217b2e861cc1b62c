package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lobstergraph/lobstergraph/internal/config"
	apperrors "github.com/lobstergraph/lobstergraph/pkg/errors"
	"github.com/lobstergraph/lobstergraph/pkg/render"
)

// Export formats.
const (
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatJSON = "json"
)

// exportCommand creates the export command, which writes the invite tree in
// an offline format.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		format   string
		out      string
		maxDepth int
		maxNodes int
		labels   bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the invite tree as DOT, SVG, or JSON",
		Long: `Export builds the graph and writes it in the requested format. DOT and SVG
use Graphviz with positions pinned to the radial layout; JSON carries the
dataset together with the computed positions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if format != formatDOT && format != formatSVG && format != formatJSON {
				return apperrors.New(apperrors.ErrCodeInvalidFormat, "unsupported format %q (dot, svg, json)", format)
			}
			if out == "" {
				out = "invites." + format
			}

			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			opts, err := c.pipelineOptions(cfg, false)
			if err != nil {
				return err
			}
			runner, _, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			sp := newSpinner(ctx, "Building graph")
			sp.Start()
			res, err := runner.Build(ctx, opts)
			if err != nil {
				sp.StopWithError("Build failed")
				return err
			}
			sp.Stop()

			var data []byte
			switch format {
			case formatDOT, formatSVG:
				dot := render.ToDOT(res.Dataset, res.Index, res.Layout, render.Options{
					MaxDepth: maxDepth,
					MaxNodes: maxNodes,
					Labels:   labels,
				})
				data = []byte(dot)
				if format == formatSVG {
					data, err = render.RenderSVG(dot)
					if err != nil {
						return fmt.Errorf("render svg: %w", err)
					}
				}
			case formatJSON:
				data, err = json.MarshalIndent(map[string]any{
					"dataset": res.Dataset,
					"layout":  res.Layout,
				}, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal export: %w", err)
				}
			}

			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			printSuccess("Exported %d users", res.Stats.NodeCount)
			printFile(out)
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: dot, svg, or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default invites.<format>)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "limit export to this invite depth (0 = unlimited)")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "limit export to this many nodes (0 = unlimited)")
	cmd.Flags().BoolVar(&labels, "labels", false, "include username labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache entirely")
	return cmd
}
