package gprof2dot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mixprof/mixprof/pkg/errors"
)

func TestInferFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"results/busy_cprofile.pstats", "pstats"},
		{"results/busy_pyinstrument.json", "json"},
		{"results/busy_perf.perf", "perf"},
		{"results/busy_perf.txt", "perf"},
		{"results/busy_valgrind_callgrind.txt", "callgrind"},
		{"results/busy_austin.txt", "austin"},
		{"no_extension_at_all", "pstats"},
	}

	for _, tt := range tests {
		if got := InferFormat(tt.path); got != tt.want {
			t.Errorf("InferFormat(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestInferFormatSpecificMarkersWin(t *testing.T) {
	// _callgrind.txt and _austin.txt must match before the generic .txt rule
	if got := InferFormat("x_callgrind.txt"); got != "callgrind" {
		t.Errorf("callgrind marker lost to generic .txt: got %q", got)
	}
	if got := InferFormat("x_austin.txt"); got != "austin" {
		t.Errorf("austin marker lost to generic .txt: got %q", got)
	}
}

func TestValidFormat(t *testing.T) {
	for _, f := range []string{"pstats", "json", "perf", "callgrind", "austin"} {
		if !ValidFormat(f) {
			t.Errorf("ValidFormat(%q) = false", f)
		}
	}
	for _, f := range []string{"", "gprof", "flamegraph", "PSTATS"} {
		if ValidFormat(f) {
			t.Errorf("ValidFormat(%q) = true", f)
		}
	}
}

func TestConvertPassesThresholdsVerbatim(t *testing.T) {
	binDir := t.TempDir()
	argsFile := filepath.Join(binDir, "gprof2dot_args")
	// Fake gprof2dot records its argv and creates the -o file ($8).
	script := "#!/bin/sh\necho \"$@\" > " + argsFile + "\n: > \"$8\"\n"
	if err := os.WriteFile(filepath.Join(binDir, "gprof2dot"), []byte(script), 0755); err != nil {
		t.Fatalf("write fake gprof2dot: %v", err)
	}
	t.Setenv("PATH", binDir)

	dir := t.TempDir()
	statsPath := filepath.Join(dir, "busy_cprofile.pstats")
	if err := os.WriteFile(statsPath, []byte("stats"), 0644); err != nil {
		t.Fatalf("write stats: %v", err)
	}
	dotPath := filepath.Join(dir, "busy_cprofile.dot")

	// Zero thresholds must reach gprof2dot as zero (pruning disabled),
	// not be swapped for the defaults.
	err := Convert(context.Background(), statsPath, dotPath, Options{
		NodeThreshold: 0,
		EdgeThreshold: 0,
	})
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}

	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	argv := strings.TrimSpace(string(recorded))
	if !strings.Contains(argv, "--node-thres 0 ") {
		t.Errorf("node threshold rewritten: %q", argv)
	}
	if !strings.Contains(argv, "--edge-thres 0 ") {
		t.Errorf("edge threshold rewritten: %q", argv)
	}
}

func TestConvertMissingStatsFile(t *testing.T) {
	dir := t.TempDir()
	err := Convert(context.Background(),
		filepath.Join(dir, "missing.pstats"),
		filepath.Join(dir, "out.dot"),
		Options{})

	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Convert() of missing stats = %v, want FILE_NOT_FOUND", err)
	}
}
