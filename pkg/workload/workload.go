// Package workload provides the demo workload used to exercise the
// profiling pipeline: a small C extension, its setup.py, and a mixed
// Python script that spends time in pure Python, the extension, and the
// json module.
//
// The files are embedded directly into the binary using go:embed, so
// `mixprof example` works without network access or a source checkout.
package workload

import (
	"embed"
	"os"
	"path/filepath"
)

//go:embed assets/example_extension.c assets/setup_extension.py assets/test_mixed_code.py
var assets embed.FS

// File names written by Scaffold.
const (
	ExtensionSource = "example_extension.c"
	SetupScript     = "setup_extension.py"
	TestScript      = "test_mixed_code.py"
)

// Scaffold writes the demo workload files into dir and returns the path of
// the test script. Existing files are overwritten; the demo files are
// generated content, not user code.
func Scaffold(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	files := map[string]string{
		"assets/example_extension.c": ExtensionSource,
		"assets/setup_extension.py":  SetupScript,
		"assets/test_mixed_code.py":  TestScript,
	}

	for src, name := range files {
		data, err := assets.ReadFile(src)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return "", err
		}
	}

	return filepath.Join(dir, TestScript), nil
}

// TestScriptSource returns the embedded mixed workload script. Used when
// run is invoked without a target.
func TestScriptSource() []byte {
	data, _ := assets.ReadFile("assets/test_mixed_code.py")
	return data
}
