// Package gprof2dot converts profiler statistics to Graphviz DOT by
// shelling out to the gprof2dot tool.
//
// The input format is normally inferred from the stats file name (see
// InferFormat); every profiler backend also reports its format explicitly,
// so inference only matters when converting files mixprof did not produce.
package gprof2dot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mixprof/mixprof/pkg/errors"
	"github.com/mixprof/mixprof/pkg/toolchain"
)

// Default pruning thresholds, matching gprof2dot's recommended values for
// call graphs that stay readable: nodes below 0.5% and edges below 0.1%
// of total time are hidden. Applied at the flag layer, not here.
const (
	DefaultNodeThreshold = 0.5
	DefaultEdgeThreshold = 0.1
)

// Options configures a conversion.
type Options struct {
	// Format is the gprof2dot -f value. Empty means infer from the input
	// file name.
	Format string

	// NodeThreshold hides nodes below this percentage of total time.
	// Passed through verbatim; zero keeps every node.
	NodeThreshold float64

	// EdgeThreshold hides edges below this percentage of total time.
	// Passed through verbatim; zero keeps every edge.
	EdgeThreshold float64

	// ColorBySelfTime colors nodes by self time instead of total time.
	ColorBySelfTime bool

	// Logger receives progress output. Nil falls back to log.Default().
	Logger *log.Logger
}

func (o *Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

// formats maps filename markers to gprof2dot -f values. Order matters: the
// profiler backends suffix their artifacts so that the more specific
// markers match before the generic ones.
var formats = []struct {
	marker string
	format string
}{
	{"_austin.txt", "austin"},
	{"_callgrind.txt", "callgrind"},
	{".pstats", "pstats"},
	{".json", "json"},
	{".perf", "perf"},
	{".txt", "perf"},
}

// InferFormat guesses the gprof2dot input format from a stats file name.
// Unrecognized names fall back to pstats, the most common case.
func InferFormat(path string) string {
	for _, f := range formats {
		if strings.Contains(path, f.marker) {
			return f.format
		}
	}
	return "pstats"
}

// ValidFormat reports whether f is a format mixprof knows how to produce.
func ValidFormat(f string) bool {
	switch f {
	case "pstats", "json", "perf", "callgrind", "austin":
		return true
	}
	return false
}

// Convert runs gprof2dot on statsPath and writes the DOT graph to dotPath.
func Convert(ctx context.Context, statsPath, dotPath string, opts Options) error {
	if _, err := os.Stat(statsPath); err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "stats file %s not found", statsPath)
	}
	if _, err := toolchain.Require("gprof2dot"); err != nil {
		return err
	}

	format := opts.Format
	if format == "" {
		format = InferFormat(statsPath)
	}
	if !ValidFormat(format) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"unknown profile format: %s (must be pstats, json, perf, callgrind, or austin)", format)
	}

	logger := opts.logger()
	logger.Infof("Converting %s to DOT (format %s)", statsPath, format)

	args := []string{
		"-f", format,
		"--node-thres", fmt.Sprintf("%g", opts.NodeThreshold),
		"--edge-thres", fmt.Sprintf("%g", opts.EdgeThreshold),
		"-o", dotPath,
	}
	if opts.ColorBySelfTime {
		args = append(args, "--color-nodes-by-selftime")
	}
	args = append(args, statsPath)

	cmd := exec.CommandContext(ctx, "gprof2dot", args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeToolFailed, err, "gprof2dot failed: %s", strings.TrimSpace(stderr.String()))
	}

	if _, err := os.Stat(dotPath); err != nil {
		return errors.New(errors.ErrCodeToolFailed, "gprof2dot wrote no output to %s", dotPath)
	}

	logger.Infof("Dot file created: %s", dotPath)
	return nil
}
