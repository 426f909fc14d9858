package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/mixprof/mixprof/pkg/profiler"
)

// profileOpts holds the command-line flags for the profile command.
type profileOpts struct {
	method     string
	outputDir  string
	targetArgs []string
}

// profileCommand creates the profile command, which runs only the
// profiling stage and prints the stats file path.
func (c *CLI) profileCommand() *cobra.Command {
	opts := profileOpts{}

	cmd := &cobra.Command{
		Use:   "profile [script]",
		Short: "Run a profiler and keep the raw statistics file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runProfile(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.method, "method", "m", "", "profiling method: cprofile, pyinstrument, py-spy, perf, valgrind, austin")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for output files")
	cmd.Flags().StringArrayVar(&opts.targetArgs, "args", nil, "extra arguments passed to the profiled script (repeatable)")

	return cmd
}

func (c *CLI) runProfile(ctx context.Context, target string, opts *profileOpts) error {
	name := opts.method
	if name == "" {
		name = c.Config.Method
	}
	method, err := profiler.ParseMethod(name)
	if err != nil {
		return err
	}

	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = c.Config.OutputDir
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	p, err := profiler.DefaultRegistry().Get(method)
	if err != nil {
		return err
	}

	spec := profiler.Spec{
		Target:    target,
		Args:      opts.targetArgs,
		OutputDir: outputDir,
		Stem:      stemFor(target, method),
		Logger:    c.Logger,
	}

	art, err := p.Run(ctx, spec)
	if err != nil {
		return err
	}

	if art.Final {
		printSuccess("Profiler wrote a rendered flamegraph directly")
	} else {
		printSuccess("Profile complete (format: %s)", art.Format)
	}
	printFile(art.Path)
	return nil
}
