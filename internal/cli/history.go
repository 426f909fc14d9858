package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// historyOpts holds the command-line flags for the history command.
type historyOpts struct {
	limit int // max records to show, 0 for all
}

// historyCommand creates the history command with its clear subcommand.
func (c *CLI) historyCommand() *cobra.Command {
	opts := historyOpts{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded profiling runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHistoryList(cmd.Context(), &opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "maximum number of runs to show (0 for all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHistoryClear(cmd.Context())
		},
	})

	return cmd
}

func (c *CLI) runHistoryList(ctx context.Context, opts *historyOpts) error {
	store, err := c.newHistory(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(ctx, opts.limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		printInfo("No runs recorded yet")
		return nil
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("WHEN", "METHOD", "TARGET", "DURATION", "CACHE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return StyleTitle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, rec := range records {
		cache := ""
		if rec.CacheHit {
			cache = "hit"
		}
		t.Row(
			rec.StartedAt.Local().Format("2006-01-02 15:04"),
			rec.Method,
			rec.Target,
			rec.Duration.Round(10*time.Millisecond).String(),
			cache,
		)
	}

	fmt.Println(t.Render())
	printDetail("%d run(s)", len(records))
	return nil
}

func (c *CLI) runHistoryClear(ctx context.Context) error {
	store, err := c.newHistory(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(ctx); err != nil {
		return err
	}
	printSuccess("History cleared")
	return nil
}
