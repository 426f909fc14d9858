package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mixprof/mixprof/pkg/gprof2dot"
	"github.com/mixprof/mixprof/pkg/pipeline"
	"github.com/mixprof/mixprof/pkg/profiler"
	"github.com/mixprof/mixprof/pkg/render"
	"github.com/mixprof/mixprof/pkg/viewer"
	"github.com/mixprof/mixprof/pkg/workload"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	method       string   // profiling method name
	formats      string   // comma-separated output formats
	outputDir    string   // artifact directory
	open         bool     // open the first artifact on success
	interactive  bool     // also write the standalone HTML viewer
	nodeThres    float64  // gprof2dot node pruning percentage
	edgeThres    float64  // gprof2dot edge pruning percentage
	nodeThresSet bool     // --node-thres given explicitly
	edgeThresSet bool     // --edge-thres given explicitly
	noCache      bool     // disable the artifact cache
	refresh      bool     // bypass cache reads
	pick         bool     // pick the method interactively
	targetArgs   []string // extra args passed to the profiled target
}

// runCommand creates the run command executing the full pipeline.
func (c *CLI) runCommand() *cobra.Command {
	opts := runOpts{}

	cmd := &cobra.Command{
		Use:   "run [script]",
		Short: "Profile a workload and render its call graph",
		Long: `Run the full pipeline: profile the target with the selected method,
convert the statistics to DOT with gprof2dot, and render a call-graph
image. Without a script argument, a demo mixed Python/C workload is
written to the current directory and profiled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) > 0 {
				target = args[0]
			}
			opts.nodeThresSet = cmd.Flags().Changed("node-thres")
			opts.edgeThresSet = cmd.Flags().Changed("edge-thres")
			return c.runRun(cmd.Context(), target, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.method, "method", "m", "", "profiling method: cprofile, pyinstrument, py-spy, perf, valgrind, austin")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for output files")
	cmd.Flags().BoolVar(&opts.open, "open", false, "open the rendered image when done")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "also write an interactive HTML viewer")
	cmd.Flags().Float64Var(&opts.nodeThres, "node-thres", gprof2dot.DefaultNodeThreshold, "hide nodes below this percentage of total time (0 shows all)")
	cmd.Flags().Float64Var(&opts.edgeThres, "edge-thres", gprof2dot.DefaultEdgeThreshold, "hide edges below this percentage of total time (0 shows all)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if cached")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "pick the profiling method interactively")
	cmd.Flags().StringArrayVar(&opts.targetArgs, "args", nil, "extra arguments passed to the profiled script (repeatable)")

	return cmd
}

// runRun executes the full pipeline for the run command.
func (c *CLI) runRun(ctx context.Context, target string, opts *runOpts) error {
	method, err := c.resolveMethod(ctx, opts)
	if err != nil {
		return err
	}

	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = c.Config.OutputDir
	}

	if target == "" {
		target, err = writeDemoScript(c)
		if err != nil {
			return err
		}
	}

	// Valgrind profiles native executables; compile C/C++ sources first.
	if method == profiler.MethodValgrind && isNativeSource(target) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return err
		}
		exe := filepath.Join(outputDir, strings.TrimSuffix(filepath.Base(target), filepath.Ext(target)))
		target, err = workload.CompileNative(ctx, c.Logger, []string{target}, exe)
		if err != nil {
			return err
		}
	}

	formats, err := parseFormats(opts.formats, c.Config.Formats)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	nodeThres := resolveThreshold(opts.nodeThres, opts.nodeThresSet, c.Config.NodeThreshold)
	edgeThres := resolveThreshold(opts.edgeThres, opts.edgeThresSet, c.Config.EdgeThreshold)

	p := newProgress(c.Logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Method:        method,
		Target:        target,
		Args:          opts.targetArgs,
		OutputDir:     outputDir,
		Formats:       formats,
		NodeThreshold: nodeThres,
		EdgeThreshold: edgeThres,
		Interactive:   opts.interactive,
		Refresh:       opts.refresh,
		Logger:        c.Logger,
	})
	if err != nil {
		return err
	}
	p.done("Pipeline complete")

	printSuccess("Profiled %s with %s", target, method)
	if result.CacheHit {
		printDetail("rendered artifacts served from cache")
	}
	for _, a := range result.Artifacts {
		printFile(a)
	}

	if opts.open || c.Config.Open {
		if len(result.Artifacts) > 0 {
			return viewer.Open(openTarget(result.Artifacts))
		}
	}
	return nil
}

// resolveMethod applies flag > picker > config precedence.
func (c *CLI) resolveMethod(ctx context.Context, opts *runOpts) (profiler.Method, error) {
	if opts.pick {
		return pickMethod(ctx, profiler.DefaultRegistry())
	}
	name := opts.method
	if name == "" {
		name = c.Config.Method
	}
	return profiler.ParseMethod(name)
}

// writeDemoScript drops the embedded mixed workload script into the
// current directory, matching the original tool's behavior when invoked
// without a target.
func writeDemoScript(c *CLI) (string, error) {
	path := workload.TestScript
	if err := os.WriteFile(path, workload.TestScriptSource(), 0644); err != nil {
		return "", err
	}
	printInfo("No script provided, created demo workload: %s", path)
	return path, nil
}

// stemFor derives the artifact base name the same way the pipeline does.
func stemFor(target string, method profiler.Method) string {
	base := strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))
	return base + "_" + strings.ReplaceAll(string(method), "-", "")
}

// resolveThreshold picks the pruning threshold for a run: an explicitly
// given flag always wins (including an explicit zero, which disables
// pruning), then a configured value, then the flag's default.
func resolveThreshold(flagVal float64, changed bool, cfgVal float64) float64 {
	if changed || cfgVal == 0 {
		return flagVal
	}
	return cfgVal
}

func isNativeSource(path string) bool {
	switch filepath.Ext(path) {
	case ".c", ".cpp", ".cc", ".cxx":
		return true
	}
	return false
}

// parseFormats parses the --format flag, falling back to configured
// defaults when the flag is empty.
func parseFormats(s string, fallback []string) ([]render.Format, error) {
	names := fallback
	if s != "" {
		names = strings.Split(s, ",")
	}
	if len(names) == 0 {
		names = []string{"svg"}
	}

	formats := make([]render.Format, 0, len(names))
	for _, name := range names {
		f, err := render.ParseFormat(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// openTarget prefers the interactive HTML when present, otherwise the
// first rendered artifact.
func openTarget(artifacts []string) string {
	for _, a := range artifacts {
		if strings.HasSuffix(a, ".html") {
			return a
		}
	}
	return artifacts[0]
}
