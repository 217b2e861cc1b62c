package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lobstergraph/lobstergraph/internal/config"
	"github.com/lobstergraph/lobstergraph/pkg/cache"
	"github.com/lobstergraph/lobstergraph/pkg/layout"
	"github.com/lobstergraph/lobstergraph/pkg/pipeline"
	"github.com/lobstergraph/lobstergraph/pkg/store"
)

// buildCommand creates the build command, which runs the full pipeline and
// reports the resulting graph.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		refresh bool
		noCache bool
		out     string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the invitation graph and compute the radial layout",
		Long: `Build loads the invitation graph from the exported JSON (or the scraper's
SQLite database), indexes the invite tree, computes the radial layout, and
caches the result keyed by dataset content.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			opts, err := c.pipelineOptions(cfg, refresh)
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
			p := newProgress(c.Logger)
			res, err := runner.Build(ctx, opts)
			if err != nil {
				sp.StopWithError("Build failed")
				return err
			}
			sp.StopWithSuccess(fmt.Sprintf("Built invitation tree rooted at %s", res.Index.Root()))
			p.done(fmt.Sprintf("Pipeline finished for %d users", res.Stats.NodeCount))

			printGraphStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.LayoutHit)
			printDetail("depth %d · %d orphans · hash %s",
				res.Index.MaxDepth(), res.Stats.OrphanCount, cache.ShortHash(res.DatasetHash))

			if out != "" {
				data, err := layout.MarshalResult(res.Layout)
				if err != nil {
					return fmt.Errorf("marshal layout: %w", err)
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				printFile(out)
			}

			if cfg.MongoURL != "" {
				stored, err := saveSnapshot(cmd, cfg.MongoURL, res)
				switch {
				case err != nil:
					printWarning("Snapshot not saved: %v", err)
				case stored:
					printDetail("layout snapshot stored for %s", cache.ShortHash(res.DatasetHash))
				default:
					printDetail("layout snapshot already stored for %s", cache.ShortHash(res.DatasetHash))
				}
			}

			printNewline()
			printNextStep("Serve the graph", "lobstergraph serve")
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass caches and rebuild from source")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache entirely")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the computed layout as JSON")
	return cmd
}

// layoutSnapshots is the slice of the snapshot store the build command
// needs.
type layoutSnapshots interface {
	Load(ctx context.Context, datasetHash string) (*store.Snapshot, error)
	Save(ctx context.Context, snap store.Snapshot) error
}

// saveSnapshot persists the computed layout to MongoDB. It reports whether
// a new snapshot was written.
func saveSnapshot(cmd *cobra.Command, uri string, res *pipeline.Result) (bool, error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	st, err := store.Connect(ctx, uri)
	if err != nil {
		return false, err
	}
	defer st.Close(ctx)

	return writeSnapshot(ctx, st, res)
}

// writeSnapshot upserts the layout snapshot unless the same dataset hash is
// already stored, keeping repeated builds of one export write-free.
func writeSnapshot(ctx context.Context, st layoutSnapshots, res *pipeline.Result) (bool, error) {
	if _, err := st.Load(ctx, res.DatasetHash); err == nil {
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	err := st.Save(ctx, store.Snapshot{
		DatasetHash: res.DatasetHash,
		Layout:      res.Layout,
		Stats:       res.Dataset.Stats,
	})
	return err == nil, err
}
