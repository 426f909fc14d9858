package profiler

import (
	"context"
	"os"
	"runtime"

	"github.com/mixprof/mixprof/pkg/toolchain"
)

// PySpy profiles a Python workload with the py-spy sampling profiler and
// writes a flamegraph SVG directly. This is the method of choice for C/C++
// extensions: with --native (Linux only) py-spy samples native frames too.
//
// py-spy needs to read the target process's memory, which requires root on
// most systems, so the command is prefixed with sudo unless mixprof already
// runs as root.
type PySpy struct{}

func (p *PySpy) Method() Method { return MethodPySpy }
func (p *PySpy) Tool() string   { return "py-spy" }

// Run executes: [sudo] py-spy record --output <out>_flame.svg --format flamegraph
// [--native] -- python3 <target> [args...]
func (p *PySpy) Run(ctx context.Context, spec Spec) (Artifact, error) {
	if err := spec.Validate(); err != nil {
		return Artifact{}, err
	}
	if _, err := toolchain.Require("py-spy"); err != nil {
		return Artifact{}, err
	}
	python, err := toolchain.Require("python3")
	if err != nil {
		return Artifact{}, err
	}

	out := spec.path(spec.Stem + "_flame.svg")
	logger := spec.logger()
	logger.Infof("Profiling C/C++ extensions with py-spy: %s", spec.Target)

	args := []string{"py-spy", "record", "--output", out, "--format", "flamegraph"}
	if runtime.GOOS == "linux" {
		// --native is only supported on Linux.
		args = append(args[:2], append([]string{"--native"}, args[2:]...)...)
		logger.Info("Including native C/C++ frames (--native)")
	} else {
		logger.Warnf("--native not supported on %s, profiling Python frames only", runtime.GOOS)
	}
	args = append(args, "--", python, spec.Target)
	args = append(args, spec.Args...)

	name := args[0]
	rest := args[1:]
	if os.Geteuid() != 0 {
		logger.Debug("not running as root, prefixing sudo")
		name = "sudo"
		rest = args
	}

	if err := run(ctx, logger, name, rest...); err != nil {
		return Artifact{}, err
	}
	if err := requireArtifact(out); err != nil {
		return Artifact{}, err
	}

	logger.Infof("Flame graph saved to %s", out)
	return Artifact{Path: out, Final: true}, nil
}
