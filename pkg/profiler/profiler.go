// Package profiler invokes external profilers against a target workload.
//
// Each supported profiling method wraps one third-party tool (cProfile,
// pyinstrument, py-spy, perf, valgrind/callgrind, austin). A Profiler builds
// the tool's command line, runs it, checks the exit status, and reports the
// stats artifact it wrote. No sampling or symbolization happens here; the
// value of the package is knowing each tool's flags and output conventions.
//
// Most methods produce an intermediate statistics file that the gprof2dot
// stage converts to DOT. py-spy is the exception: it emits a flamegraph SVG
// directly, so its Artifact is marked Final and the pipeline skips the
// convert and render stages.
package profiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/mixprof/mixprof/pkg/errors"
)

// Method identifies a profiling backend.
type Method string

// Supported profiling methods.
const (
	MethodCProfile     Method = "cprofile"
	MethodPyinstrument Method = "pyinstrument"
	MethodPySpy        Method = "py-spy"
	MethodPerf         Method = "perf"
	MethodValgrind     Method = "valgrind"
	MethodAustin       Method = "austin"
)

// ParseMethod validates a method name from user input.
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	switch m {
	case MethodCProfile, MethodPyinstrument, MethodPySpy, MethodPerf, MethodValgrind, MethodAustin:
		return m, nil
	}
	return "", errors.New(errors.ErrCodeInvalidMethod,
		"unknown profiling method: %s (must be one of %s)", s, methodList())
}

func methodList() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s",
		MethodCProfile, MethodPyinstrument, MethodPySpy, MethodPerf, MethodValgrind, MethodAustin)
}

// Spec describes a single profiling run.
type Spec struct {
	// Target is the workload: a Python script for most methods, a native
	// executable for valgrind.
	Target string

	// Args are extra arguments passed through to the target.
	Args []string

	// OutputDir receives all artifacts. It must already exist.
	OutputDir string

	// Stem is the base name used for artifact files (e.g. "python_profile"
	// produces python_profile.pstats).
	Stem string

	// Logger receives progress output. Nil falls back to log.Default().
	Logger *log.Logger
}

func (s *Spec) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

// path joins the output directory with a file name.
func (s *Spec) path(name string) string {
	return filepath.Join(s.OutputDir, name)
}

// Validate checks that the spec can be executed.
func (s *Spec) Validate() error {
	if s.Target == "" {
		return errors.New(errors.ErrCodeInvalidTarget, "no target to profile")
	}
	if _, err := os.Stat(s.Target); err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "target %s not found", s.Target)
	}
	if s.OutputDir == "" {
		return errors.New(errors.ErrCodeInvalidPath, "output directory not set")
	}
	if s.Stem == "" {
		return errors.New(errors.ErrCodeInvalidPath, "artifact stem not set")
	}
	return nil
}

// Artifact is the output of a profiling run.
type Artifact struct {
	// Path is the stats file (or, for py-spy, the rendered SVG).
	Path string

	// Format is the gprof2dot -f value needed to read Path. Empty when
	// Final is true.
	Format string

	// Final marks artifacts that are already a rendered visualization and
	// need no conversion.
	Final bool
}

// Profiler runs one profiling method.
type Profiler interface {
	// Method returns the method identifier.
	Method() Method

	// Tool returns the primary binary this profiler shells out to.
	Tool() string

	// Run profiles the target described by spec and returns the artifact.
	Run(ctx context.Context, spec Spec) (Artifact, error)
}
