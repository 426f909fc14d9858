package pipeline

import (
	"testing"

	"github.com/mixprof/mixprof/pkg/errors"
	"github.com/mixprof/mixprof/pkg/profiler"
	"github.com/mixprof/mixprof/pkg/render"
)

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Target: "busy.py"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}

	if opts.Method != profiler.MethodCProfile {
		t.Errorf("Method = %s, want cprofile default", opts.Method)
	}
	if opts.OutputDir != DefaultOutputDir {
		t.Errorf("OutputDir = %q, want %q", opts.OutputDir, DefaultOutputDir)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != render.FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to the package logger")
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no target", Options{}, errors.ErrCodeInvalidTarget},
		{"bad method", Options{Target: "x.py", Method: "gdb"}, errors.ErrCodeInvalidMethod},
		{"bad format", Options{Target: "x.py", Formats: []render.Format{"webp"}}, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		target string
		method profiler.Method
		want   string
	}{
		{"busy.py", profiler.MethodCProfile, "busy_cprofile"},
		{"/tmp/demo/test_mixed_code.py", profiler.MethodPySpy, "test_mixed_code_pyspy"},
		{"bench", profiler.MethodValgrind, "bench_valgrind"},
		{"a.b.py", profiler.MethodPerf, "a.b_perf"},
	}

	for _, tt := range tests {
		opts := Options{Target: tt.target, Method: tt.method}
		if got := opts.Stem(); got != tt.want {
			t.Errorf("Stem(%q, %s) = %q, want %q", tt.target, tt.method, got, tt.want)
		}
	}
}

func TestConvertOptions(t *testing.T) {
	opts := Options{NodeThreshold: 1.5, EdgeThreshold: 0.3}
	co := opts.convertOptions("pstats")

	if co.Format != "pstats" {
		t.Errorf("Format = %q", co.Format)
	}
	if co.NodeThreshold != 1.5 || co.EdgeThreshold != 0.3 {
		t.Errorf("thresholds = %v/%v", co.NodeThreshold, co.EdgeThreshold)
	}
	if !co.ColorBySelfTime {
		t.Error("ColorBySelfTime should be set")
	}
}
