// Package pipeline executes the profile → convert → render sequence.
//
// Execution is strictly sequential: one profiler run, one gprof2dot
// conversion, one render per requested format. The Runner adds the
// conveniences the individual stages don't carry themselves: artifact
// caching for the deterministic tail of the pipeline, run-history
// recording, stage timings, and observability hooks.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mixprof/mixprof/pkg/cache"
	"github.com/mixprof/mixprof/pkg/gprof2dot"
	"github.com/mixprof/mixprof/pkg/history"
	"github.com/mixprof/mixprof/pkg/observability"
	"github.com/mixprof/mixprof/pkg/profiler"
	"github.com/mixprof/mixprof/pkg/render"
)

// pngScale is the raster scale factor for PNG output (2x for high-DPI).
const pngScale = 2.0

// Stats holds per-stage timings for a run.
type Stats struct {
	ProfileTime time.Duration
	ConvertTime time.Duration
	RenderTime  time.Duration
}

// Result is what a pipeline execution produced.
type Result struct {
	// RunID uniquely identifies this execution.
	RunID string

	// Artifacts are the rendered output files, in format order. For
	// py-spy this is the flamegraph SVG the tool wrote itself.
	Artifacts []string

	// StatsPath is the intermediate profiler stats file ("" for py-spy).
	StatsPath string

	// DotPath is the intermediate DOT file ("" for py-spy).
	DotPath string

	// CacheHit is true when every rendered artifact came from cache.
	CacheHit bool

	Stats Stats
}

// Runner executes pipelines with caching and history recording.
// A Runner is safe for sequential reuse; it holds no per-run state.
type Runner struct {
	Cache    cache.Cache
	Registry *profiler.Registry
	History  history.Store
	Logger   *log.Logger
}

// NewRunner creates a runner. Nil cache disables caching, nil registry
// uses the built-in profilers, nil history disables recording.
func NewRunner(c cache.Cache, reg *profiler.Registry, hist history.Store, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if reg == nil {
		reg = profiler.DefaultRegistry()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Registry: reg, History: hist, Logger: logger}
}

// Execute runs the complete profile → convert → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}

	// Resolve the backend before touching the filesystem so a bad method
	// leaves no empty output directory behind.
	p, err := r.Registry.Get(opts.Method)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}
	started := time.Now()

	// Stage 1: Profile
	art, err := r.profile(ctx, p, opts, result)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	if art.Final {
		// py-spy writes the rendered flamegraph itself; nothing to
		// convert or render.
		result.Artifacts = []string{art.Path}
		r.record(ctx, opts, result, started)
		return result, nil
	}
	result.StatsPath = art.Path

	// Stage 2: Convert
	if err := r.convert(ctx, opts, art, result); err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}

	// Stage 3: Render
	if err := r.renderAll(ctx, opts, result); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	r.record(ctx, opts, result, started)
	return result, nil
}

func (r *Runner) profile(ctx context.Context, p profiler.Profiler, opts Options, result *Result) (profiler.Artifact, error) {
	spec := profiler.Spec{
		Target:    opts.Target,
		Args:      opts.Args,
		OutputDir: opts.OutputDir,
		Stem:      opts.Stem(),
		Logger:    opts.Logger,
	}

	start := time.Now()
	observability.Pipeline().OnProfileStart(ctx, string(opts.Method), opts.Target)
	art, err := p.Run(ctx, spec)
	result.Stats.ProfileTime = time.Since(start)
	observability.Pipeline().OnProfileComplete(ctx, string(opts.Method), opts.Target, result.Stats.ProfileTime, err)
	if err != nil {
		return profiler.Artifact{}, err
	}

	opts.Logger.Info("profiled target",
		"method", opts.Method,
		"stats", art.Path,
		"duration", result.Stats.ProfileTime)
	return art, nil
}

func (r *Runner) convert(ctx context.Context, opts Options, art profiler.Artifact, result *Result) error {
	dotPath := filepath.Join(opts.OutputDir, opts.Stem()+".dot")

	start := time.Now()
	observability.Pipeline().OnConvertStart(ctx, art.Path, art.Format)
	err := gprof2dot.Convert(ctx, art.Path, dotPath, opts.convertOptions(art.Format))
	result.Stats.ConvertTime = time.Since(start)
	observability.Pipeline().OnConvertComplete(ctx, art.Path, art.Format, result.Stats.ConvertTime, err)
	if err != nil {
		return err
	}

	result.DotPath = dotPath
	return nil
}

func (r *Runner) renderAll(ctx context.Context, opts Options, result *Result) error {
	formats := make([]string, len(opts.Formats))
	for i, f := range opts.Formats {
		formats[i] = string(f)
	}

	scriptHash, hashErr := cache.HashFile(opts.Target)

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, formats)

	dot, err := os.ReadFile(result.DotPath)
	if err != nil {
		observability.Pipeline().OnRenderComplete(ctx, formats, time.Since(start), err)
		return err
	}

	allHits := true
	for _, format := range opts.Formats {
		key := ""
		if hashErr == nil {
			key = cache.ArtifactKey(scriptHash, opts.artifactKeyOpts(format))
		}

		data, hit := r.cachedArtifact(ctx, key, opts)
		if !hit {
			allHits = false
			data, err = renderFormat(ctx, dot, format)
			if err != nil {
				observability.Pipeline().OnRenderComplete(ctx, formats, time.Since(start), err)
				return err
			}
			if key != "" {
				if cerr := r.Cache.Set(ctx, key, data, cache.TTLArtifact); cerr == nil {
					observability.Cache().OnCacheSet(ctx, "artifact", len(data))
				}
			}
		}

		outPath := filepath.Join(opts.OutputDir, opts.Stem()+"."+string(format))
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			observability.Pipeline().OnRenderComplete(ctx, formats, time.Since(start), err)
			return err
		}
		result.Artifacts = append(result.Artifacts, outPath)
		opts.Logger.Infof("Generated %s", outPath)

		if opts.Interactive && format == render.FormatSVG {
			if err := r.writeHTML(opts, data, result); err != nil {
				observability.Pipeline().OnRenderComplete(ctx, formats, time.Since(start), err)
				return err
			}
		}
	}

	result.CacheHit = allHits
	result.Stats.RenderTime = time.Since(start)
	observability.Pipeline().OnRenderComplete(ctx, formats, result.Stats.RenderTime, nil)
	return nil
}

// cachedArtifact looks up a rendered artifact, honoring --refresh.
func (r *Runner) cachedArtifact(ctx context.Context, key string, opts Options) ([]byte, bool) {
	if key == "" || opts.Refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "artifact")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "artifact")
	opts.Logger.Debug("artifact cache hit")
	return data, true
}

func (r *Runner) writeHTML(opts Options, svg []byte, result *Result) error {
	page, err := render.WrapHTML(opts.Stem(), svg)
	if err != nil {
		return err
	}
	htmlPath := filepath.Join(opts.OutputDir, opts.Stem()+"_interactive.html")
	if err := os.WriteFile(htmlPath, page, 0644); err != nil {
		return err
	}
	result.Artifacts = append(result.Artifacts, htmlPath)
	opts.Logger.Infof("Interactive HTML created: %s", htmlPath)
	return nil
}

func renderFormat(ctx context.Context, dot []byte, format render.Format) ([]byte, error) {
	switch format {
	case render.FormatSVG:
		return render.SVG(ctx, dot)
	case render.FormatPNG:
		return render.PNG(ctx, dot, pngScale)
	case render.FormatPDF:
		return render.PDF(ctx, dot)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// record appends the run to history, best effort. History failures never
// fail a run that already produced its artifacts.
func (r *Runner) record(ctx context.Context, opts Options, result *Result, started time.Time) {
	if r.History == nil {
		return
	}
	rec := history.Record{
		ID:        result.RunID,
		Method:    string(opts.Method),
		Target:    opts.Target,
		StartedAt: started,
		Duration:  time.Since(started),
		Artifacts: result.Artifacts,
		CacheHit:  result.CacheHit,
	}
	if err := r.History.Append(ctx, rec); err != nil {
		opts.Logger.Warn("failed to record run history", "err", err)
	}
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var firstErr error
	if r.Cache != nil {
		firstErr = r.Cache.Close()
	}
	if r.History != nil {
		if err := r.History.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
