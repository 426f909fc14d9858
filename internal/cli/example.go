package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mixprof/mixprof/pkg/workload"
)

// exampleOpts holds the command-line flags for the example command.
type exampleOpts struct {
	dir   string // where to write the demo files
	build bool   // also build the C extension in place
}

// exampleCommand creates the example command, which scaffolds the demo
// mixed Python/C workload.
func (c *CLI) exampleCommand() *cobra.Command {
	opts := exampleOpts{}

	cmd := &cobra.Command{
		Use:   "example [dir]",
		Short: "Write the demo mixed Python/C workload to disk",
		Long: `Write the demo workload files: a small C extension, its setup.py, and a
test script mixing pure Python, extension calls, and json serialization.
With --build the extension is compiled in place so the script can import
it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.dir = "."
			if len(args) > 0 {
				opts.dir = args[0]
			}
			return c.runExample(cmd.Context(), &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.build, "build", false, "build the C extension in place (requires python3 and a C compiler)")

	return cmd
}

func (c *CLI) runExample(ctx context.Context, opts *exampleOpts) error {
	script, err := workload.Scaffold(opts.dir)
	if err != nil {
		return err
	}

	printSuccess("Wrote demo workload to %s", opts.dir)
	printFile(script)

	if opts.build {
		s := newSpinnerWithContext(ctx, "Building C extension...")
		s.Start()
		err := workload.BuildExtension(ctx, c.Logger, opts.dir)
		if err != nil {
			if s.Cancelled() {
				s.Stop()
				return err
			}
			s.StopWithError("Extension build failed")
			return err
		}
		s.StopWithSuccess("Built C extension")
	} else {
		printDetail("run with --build to compile the C extension, or: python3 %s build_ext --inplace", workload.SetupScript)
	}

	printInfo("Profile it with: %s run %s", appName, script)
	return nil
}
