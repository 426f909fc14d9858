package profiler

import (
	"context"

	"github.com/mixprof/mixprof/pkg/toolchain"
)

// Perf profiles a Python workload with Linux perf, recording DWARF call
// graphs so native extension frames unwind correctly. The raw perf.data is
// post-processed with `perf script` into the text form gprof2dot reads.
type Perf struct{}

func (p *Perf) Method() Method { return MethodPerf }
func (p *Perf) Tool() string   { return "perf" }

// Run executes: perf record -g --call-graph dwarf -o <out>.perf python3 <target> [args...]
// followed by: perf script -i <out>.perf > <out>_script.txt
func (p *Perf) Run(ctx context.Context, spec Spec) (Artifact, error) {
	if err := spec.Validate(); err != nil {
		return Artifact{}, err
	}
	perf, err := toolchain.Require("perf")
	if err != nil {
		return Artifact{}, err
	}
	python, err := toolchain.Require("python3")
	if err != nil {
		return Artifact{}, err
	}

	data := spec.path(spec.Stem + ".perf")
	script := spec.path(spec.Stem + "_script.txt")
	logger := spec.logger()
	logger.Infof("Profiling with perf: %s", spec.Target)

	args := []string{"record", "-g", "--call-graph", "dwarf", "-o", data, python, spec.Target}
	args = append(args, spec.Args...)

	if err := run(ctx, logger, perf, args...); err != nil {
		return Artifact{}, err
	}

	if err := runToFile(ctx, logger, script, perf, "script", "-i", data); err != nil {
		return Artifact{}, err
	}

	logger.Infof("Perf data saved to %s", data)
	return Artifact{Path: script, Format: "perf"}, nil
}
