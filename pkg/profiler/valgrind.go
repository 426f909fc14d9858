package profiler

import (
	"context"

	"github.com/mixprof/mixprof/pkg/toolchain"
)

// Valgrind profiles a native executable with callgrind. The raw callgrind
// output is post-processed with callgrind_annotate into a text report
// gprof2dot reads with -f callgrind.
//
// The target must be a compiled executable; use workload.CompileNative to
// build C/C++ sources with debug symbols first.
type Valgrind struct{}

func (p *Valgrind) Method() Method { return MethodValgrind }
func (p *Valgrind) Tool() string   { return "valgrind" }

// Run executes: valgrind --tool=callgrind --callgrind-out-file=<out> <target>
// followed by: callgrind_annotate <out> > <out>_callgrind.txt
func (p *Valgrind) Run(ctx context.Context, spec Spec) (Artifact, error) {
	if err := spec.Validate(); err != nil {
		return Artifact{}, err
	}
	valgrind, err := toolchain.Require("valgrind")
	if err != nil {
		return Artifact{}, err
	}
	annotate, err := toolchain.Require("callgrind_annotate")
	if err != nil {
		return Artifact{}, err
	}

	callgrindOut := spec.path("callgrind.out." + spec.Stem)
	report := spec.path(spec.Stem + "_callgrind.txt")
	logger := spec.logger()
	logger.Infof("Profiling with Valgrind callgrind: %s", spec.Target)

	args := []string{"--tool=callgrind", "--callgrind-out-file=" + callgrindOut, spec.Target}
	args = append(args, spec.Args...)

	if err := run(ctx, logger, valgrind, args...); err != nil {
		return Artifact{}, err
	}

	logger.Info("Converting callgrind output")
	if err := runToFile(ctx, logger, report, annotate, callgrindOut); err != nil {
		return Artifact{}, err
	}

	logger.Infof("Callgrind report saved to %s", report)
	return Artifact{Path: report, Format: "callgrind"}, nil
}
