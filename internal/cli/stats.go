package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/lobstergraph/lobstergraph/internal/config"
	"github.com/lobstergraph/lobstergraph/pkg/cache"
	"github.com/lobstergraph/lobstergraph/pkg/graphdata"
	"github.com/lobstergraph/lobstergraph/pkg/store"
	"github.com/lobstergraph/lobstergraph/pkg/tree"
)

// statsCommand creates the stats command, which prints dataset statistics
// without computing a layout.
func (c *CLI) statsCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print statistics about the invitation graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

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

			d, err := runner.Load(ctx, opts)
			if err != nil {
				return err
			}
			idx, err := tree.Build(d, opts.Founder)
			if err != nil {
				return err
			}

			printStatsReport(d, idx)
			if cfg.MongoURL != "" {
				printSnapshotStatus(ctx, cfg.MongoURL)
			}
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache entirely")
	return cmd
}

// printStatsReport renders dataset and tree statistics.
func printStatsReport(d *graphdata.Dataset, idx *tree.Index) {
	fmt.Println(StyleTitle.Render("Invitation Graph"))
	printNewline()

	printKeyValue("users", strconv.Itoa(d.Stats.TotalUsers))
	printKeyValue("invitations", strconv.Itoa(d.Stats.TotalEdges))
	printKeyValue("root", idx.Root())
	printKeyValue("max depth", strconv.Itoa(idx.MaxDepth()))
	printKeyValue("orphans", strconv.Itoa(len(idx.Orphans())))
	printKeyValue("max karma", strconv.Itoa(d.Stats.MaxKarma))
	printKeyValue("avg karma", fmt.Sprintf("%.1f", d.Stats.AvgKarma))

	if len(d.Stats.TopInviters) == 0 {
		return
	}

	printNewline()
	fmt.Println(StyleTitle.Render("Top Inviters"))

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return StyleDim.Padding(0, 1)
			}
			if col == 1 {
				return StyleNumber.Padding(0, 1)
			}
			return StyleValue.Padding(0, 1)
		}).
		Headers("USER", "INVITES", "SUBTREE KARMA")

	for _, rank := range d.Stats.TopInviters {
		t.Row(rank.Username, strconv.Itoa(rank.Count), strconv.Itoa(idx.SubtreeKarma(rank.Username)))
	}
	fmt.Println(t.Render())
}

// printSnapshotStatus reports the most recent layout snapshot in MongoDB.
func printSnapshotStatus(ctx context.Context, uri string) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	st, err := store.Connect(ctx, uri)
	if err != nil {
		printWarning("Snapshot store unreachable: %v", err)
		return
	}
	defer st.Close(ctx)

	snap, err := st.Latest(ctx)
	if errors.Is(err, store.ErrNotFound) {
		printDetail("no layout snapshot stored yet")
		return
	}
	if err != nil {
		printWarning("Snapshot lookup failed: %v", err)
		return
	}

	printNewline()
	printKeyValue("snapshot", cache.ShortHash(snap.DatasetHash))
	printKeyValue("stored at", snap.CreatedAt.Format(time.RFC3339))
}
