package profiler

import (
	"context"

	"github.com/mixprof/mixprof/pkg/toolchain"
)

// Austin profiles a Python workload with the austin frame stack sampler at
// a 1ms interval. Austin's text output is understood by gprof2dot's austin
// reader.
type Austin struct{}

func (p *Austin) Method() Method { return MethodAustin }
func (p *Austin) Tool() string   { return "austin" }

// Run executes: austin -s -i 1ms -o <out>_austin.txt python3 <target> [args...]
func (p *Austin) Run(ctx context.Context, spec Spec) (Artifact, error) {
	if err := spec.Validate(); err != nil {
		return Artifact{}, err
	}
	austin, err := toolchain.Require("austin")
	if err != nil {
		return Artifact{}, err
	}
	python, err := toolchain.Require("python3")
	if err != nil {
		return Artifact{}, err
	}

	out := spec.path(spec.Stem + "_austin.txt")
	logger := spec.logger()
	logger.Infof("Profiling with Austin: %s", spec.Target)

	args := []string{"-s", "-i", "1ms", "-o", out, python, spec.Target}
	args = append(args, spec.Args...)

	if err := run(ctx, logger, austin, args...); err != nil {
		return Artifact{}, err
	}
	if err := requireArtifact(out); err != nil {
		return Artifact{}, err
	}

	logger.Infof("Austin output saved to %s", out)
	return Artifact{Path: out, Format: "austin"}, nil
}
