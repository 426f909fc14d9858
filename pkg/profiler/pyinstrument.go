package profiler

import (
	"context"

	"github.com/mixprof/mixprof/pkg/toolchain"
)

// Pyinstrument profiles Python code with the pyinstrument statistical
// profiler. Its sampling approach gives more honest numbers than cProfile
// for workloads that spend time in C extensions.
type Pyinstrument struct{}

func (p *Pyinstrument) Method() Method { return MethodPyinstrument }
func (p *Pyinstrument) Tool() string   { return "python3" }

// Run executes: python3 -m pyinstrument --renderer json -o <out>.json <target> [args...]
func (p *Pyinstrument) Run(ctx context.Context, spec Spec) (Artifact, error) {
	if err := spec.Validate(); err != nil {
		return Artifact{}, err
	}
	python, err := toolchain.Require("python3")
	if err != nil {
		return Artifact{}, err
	}

	out := spec.path(spec.Stem + "_pyinstrument.json")
	logger := spec.logger()
	logger.Infof("Profiling with pyinstrument: %s", spec.Target)

	args := []string{"-m", "pyinstrument", "--renderer", "json", "-o", out, spec.Target}
	args = append(args, spec.Args...)

	if err := run(ctx, logger, python, args...); err != nil {
		return Artifact{}, err
	}
	if err := requireArtifact(out); err != nil {
		return Artifact{}, err
	}

	logger.Infof("Pyinstrument profile saved to %s", out)
	return Artifact{Path: out, Format: "json"}, nil
}
