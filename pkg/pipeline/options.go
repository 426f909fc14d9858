package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mixprof/mixprof/pkg/cache"
	"github.com/mixprof/mixprof/pkg/errors"
	"github.com/mixprof/mixprof/pkg/gprof2dot"
	"github.com/mixprof/mixprof/pkg/profiler"
	"github.com/mixprof/mixprof/pkg/render"
)

// DefaultOutputDir is where artifacts land when nothing else is configured,
// matching the directory name users of the original scripts know.
const DefaultOutputDir = "profiling_results"

// Options configures a pipeline execution.
type Options struct {
	// Method selects the profiler backend.
	Method profiler.Method

	// Target is the script (or native executable for valgrind) to profile.
	Target string

	// Args are extra arguments passed through to the target.
	Args []string

	// OutputDir receives all artifacts. Created if missing.
	OutputDir string

	// Formats are the image formats to render.
	Formats []render.Format

	// NodeThreshold / EdgeThreshold are gprof2dot pruning percentages,
	// passed through verbatim. Zero disables pruning.
	NodeThreshold float64
	EdgeThreshold float64

	// Interactive additionally writes a standalone HTML viewer around the
	// SVG output.
	Interactive bool

	// Refresh bypasses cache reads (results are still written back).
	Refresh bool

	// Logger receives progress output.
	Logger *log.Logger
}

// ValidateAndSetDefaults fills unset fields and rejects invalid ones.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Target == "" {
		return errors.New(errors.ErrCodeInvalidTarget, "no target to profile")
	}
	if o.Method == "" {
		o.Method = profiler.MethodCProfile
	} else if _, err := profiler.ParseMethod(string(o.Method)); err != nil {
		return err
	}
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	if len(o.Formats) == 0 {
		o.Formats = []render.Format{render.FormatSVG}
	}
	for _, f := range o.Formats {
		if _, err := render.ParseFormat(string(f)); err != nil {
			return errors.New(errors.ErrCodeInvalidFormat, "%v", err)
		}
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return nil
}

// Stem derives the artifact base name from the target and method, e.g.
// profiling busy.py with py-spy yields "busy_pyspy".
func (o *Options) Stem() string {
	base := filepath.Base(o.Target)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	method := strings.ReplaceAll(string(o.Method), "-", "")
	return base + "_" + method
}

// artifactKeyOpts builds the cache key components for one output format.
func (o *Options) artifactKeyOpts(format render.Format) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Method:        string(o.Method),
		Format:        string(format),
		NodeThreshold: o.NodeThreshold,
		EdgeThreshold: o.EdgeThreshold,
		Interactive:   o.Interactive,
	}
}

// convertOptions builds the gprof2dot options for this run.
func (o *Options) convertOptions(format string) gprof2dot.Options {
	return gprof2dot.Options{
		Format:          format,
		NodeThreshold:   o.NodeThreshold,
		EdgeThreshold:   o.EdgeThreshold,
		ColorBySelfTime: true,
		Logger:          o.Logger,
	}
}
