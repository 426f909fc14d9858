package workload

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mixprof/mixprof/pkg/errors"
	"github.com/mixprof/mixprof/pkg/toolchain"
)

// CompileNative compiles C/C++ sources into an executable with the flag
// set valgrind and gprof need: debug symbols, gprof instrumentation, and
// frame pointers kept under -O2.
func CompileNative(ctx context.Context, logger *log.Logger, sources []string, output string) (string, error) {
	if len(sources) == 0 {
		return "", errors.New(errors.ErrCodeInvalidTarget, "no sources to compile")
	}

	compiler := "gcc"
	for _, src := range sources {
		switch filepath.Ext(src) {
		case ".cpp", ".cc", ".cxx":
			compiler = "g++"
		}
	}

	path, err := toolchain.Require(compiler)
	if err != nil {
		return "", err
	}

	logger.Infof("Compiling %s with profiling enabled", strings.Join(sources, " "))

	args := []string{
		"-g",  // debug symbols
		"-pg", // gprof profiling
		"-O2",
		"-fno-omit-frame-pointer",
		"-o", output,
	}
	args = append(args, sources...)

	cmd := exec.CommandContext(ctx, path, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errors.Wrap(errors.ErrCodeCompileFailed, err,
			"%s failed: %s", compiler, strings.TrimSpace(stderr.String()))
	}

	logger.Infof("Compiled to %s", output)
	return output, nil
}

// BuildExtension builds the demo C extension in place using setup.py, so
// the test script can import it.
func BuildExtension(ctx context.Context, logger *log.Logger, dir string) error {
	python, err := toolchain.Require("python3")
	if err != nil {
		return err
	}

	logger.Info("Building C extension (python3 setup_extension.py build_ext --inplace)")

	cmd := exec.CommandContext(ctx, python, SetupScript, "build_ext", "--inplace")
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeCompileFailed, err,
			"build_ext failed: %s", strings.TrimSpace(stderr.String()))
	}
	return nil
}
