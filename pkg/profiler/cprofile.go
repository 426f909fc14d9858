package profiler

import (
	"context"

	"github.com/mixprof/mixprof/pkg/toolchain"
)

// CProfile profiles Python code with the deterministic cProfile module
// shipped with CPython. It sees Python frames only; time spent inside C
// extensions is attributed to the calling Python function.
type CProfile struct{}

func (p *CProfile) Method() Method { return MethodCProfile }
func (p *CProfile) Tool() string   { return "python3" }

// Run executes: python3 -m cProfile -o <out>.pstats <target> [args...]
func (p *CProfile) Run(ctx context.Context, spec Spec) (Artifact, error) {
	if err := spec.Validate(); err != nil {
		return Artifact{}, err
	}
	python, err := toolchain.Require("python3")
	if err != nil {
		return Artifact{}, err
	}

	out := spec.path(spec.Stem + ".pstats")
	logger := spec.logger()
	logger.Infof("Profiling Python code: %s", spec.Target)

	args := []string{"-m", "cProfile", "-o", out, spec.Target}
	args = append(args, spec.Args...)

	if err := run(ctx, logger, python, args...); err != nil {
		return Artifact{}, err
	}
	if err := requireArtifact(out); err != nil {
		return Artifact{}, err
	}

	logger.Infof("Python profile saved to %s", out)
	return Artifact{Path: out, Format: "pstats"}, nil
}
