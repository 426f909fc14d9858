package profiler

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mixprof/mixprof/pkg/errors"
)

// run executes a tool, streaming nothing and capturing stderr for error
// reporting. The target workload's own stdout is inherited so profiled
// scripts behave as they would outside the profiler.
func run(ctx context.Context, logger *log.Logger, name string, args ...string) error {
	logger.Debugf("exec: %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeToolFailed, err, "%s failed: %s", name, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// runToFile executes a tool with stdout redirected to a file. Used for
// tools like perf script and callgrind_annotate that write reports to
// stdout.
func runToFile(ctx context.Context, logger *log.Logger, outPath, name string, args ...string) error {
	logger.Debugf("exec: %s %s > %s", name, strings.Join(args, " "), outPath)

	out, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", outPath)
	}
	defer out.Close()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = out

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeToolFailed, err, "%s failed: %s", name, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// requireArtifact verifies that the tool actually wrote the file it was
// asked to. Some profilers exit zero without output when the workload is
// too short to sample.
func requireArtifact(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.New(errors.ErrCodeToolFailed, "expected output %s was not written", path)
	}
	return nil
}
