package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mixprof/mixprof/pkg/gprof2dot"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	output        string  // output DOT path (default: stats path with .dot)
	profileFormat string  // force the gprof2dot input format
	nodeThres     float64 // node pruning percentage
	edgeThres     float64 // edge pruning percentage
}

// convertCommand creates the convert command, which turns an existing
// stats file into Graphviz DOT.
func (c *CLI) convertCommand() *cobra.Command {
	opts := convertOpts{}

	cmd := &cobra.Command{
		Use:   "convert [statsfile]",
		Short: "Convert profiler statistics to Graphviz DOT",
		Long: `Convert a profiler statistics file to DOT using gprof2dot. The input
format is inferred from the file name (pstats, json, perf, callgrind,
austin) unless --profile-format forces one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output DOT file (default: input with .dot extension)")
	cmd.Flags().StringVar(&opts.profileFormat, "profile-format", "", "input format: pstats, json, perf, callgrind, austin (default: inferred)")
	cmd.Flags().Float64Var(&opts.nodeThres, "node-thres", gprof2dot.DefaultNodeThreshold, "hide nodes below this percentage of total time (0 shows all)")
	cmd.Flags().Float64Var(&opts.edgeThres, "edge-thres", gprof2dot.DefaultEdgeThreshold, "hide edges below this percentage of total time (0 shows all)")

	return cmd
}

func (c *CLI) runConvert(ctx context.Context, statsPath string, opts *convertOpts) error {
	dotPath := opts.output
	if dotPath == "" {
		dotPath = strings.TrimSuffix(statsPath, filepath.Ext(statsPath)) + ".dot"
	}

	err := gprof2dot.Convert(ctx, statsPath, dotPath, gprof2dot.Options{
		Format:          opts.profileFormat,
		NodeThreshold:   opts.nodeThres,
		EdgeThreshold:   opts.edgeThres,
		ColorBySelfTime: true,
		Logger:          c.Logger,
	})
	if err != nil {
		return err
	}

	printSuccess("Converted %s", statsPath)
	printFile(dotPath)
	return nil
}
