package cli

import (
	"testing"

	"github.com/mixprof/mixprof/pkg/profiler"
	"github.com/mixprof/mixprof/pkg/render"
)

func TestParseFormats(t *testing.T) {
	formats, err := parseFormats("svg,png", nil)
	if err != nil {
		t.Fatalf("parseFormats() error: %v", err)
	}
	if len(formats) != 2 || formats[0] != render.FormatSVG || formats[1] != render.FormatPNG {
		t.Errorf("parseFormats() = %v", formats)
	}
}

func TestParseFormatsTrimsSpaces(t *testing.T) {
	formats, err := parseFormats("svg, pdf", nil)
	if err != nil {
		t.Fatalf("parseFormats() error: %v", err)
	}
	if len(formats) != 2 || formats[1] != render.FormatPDF {
		t.Errorf("parseFormats() = %v", formats)
	}
}

func TestParseFormatsFallback(t *testing.T) {
	formats, err := parseFormats("", []string{"png"})
	if err != nil {
		t.Fatalf("parseFormats() error: %v", err)
	}
	if len(formats) != 1 || formats[0] != render.FormatPNG {
		t.Errorf("fallback ignored: %v", formats)
	}

	// Flag beats config
	formats, err = parseFormats("svg", []string{"png"})
	if err != nil {
		t.Fatalf("parseFormats() error: %v", err)
	}
	if len(formats) != 1 || formats[0] != render.FormatSVG {
		t.Errorf("flag should override fallback: %v", formats)
	}
}

func TestParseFormatsEmptyEverything(t *testing.T) {
	formats, err := parseFormats("", nil)
	if err != nil {
		t.Fatalf("parseFormats() error: %v", err)
	}
	if len(formats) != 1 || formats[0] != render.FormatSVG {
		t.Errorf("parseFormats() = %v, want [svg]", formats)
	}
}

func TestParseFormatsInvalid(t *testing.T) {
	if _, err := parseFormats("svg,webp", nil); err == nil {
		t.Error("parseFormats() should reject unknown formats")
	}
}

func TestStemFor(t *testing.T) {
	tests := []struct {
		target string
		method profiler.Method
		want   string
	}{
		{"busy.py", profiler.MethodCProfile, "busy_cprofile"},
		{"/x/y/test_mixed_code.py", profiler.MethodPySpy, "test_mixed_code_pyspy"},
		{"bench", profiler.MethodValgrind, "bench_valgrind"},
	}
	for _, tt := range tests {
		if got := stemFor(tt.target, tt.method); got != tt.want {
			t.Errorf("stemFor(%q, %s) = %q, want %q", tt.target, tt.method, got, tt.want)
		}
	}
}

func TestResolveThreshold(t *testing.T) {
	tests := []struct {
		name    string
		flagVal float64
		changed bool
		cfgVal  float64
		want    float64
	}{
		{"flag default, no config", 0.5, false, 0, 0.5},
		{"config overrides default", 0.5, false, 2.0, 2.0},
		{"explicit flag beats config", 1.5, true, 2.0, 1.5},
		{"explicit zero disables pruning", 0, true, 2.0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveThreshold(tt.flagVal, tt.changed, tt.cfgVal); got != tt.want {
				t.Errorf("resolveThreshold(%v, %v, %v) = %v, want %v",
					tt.flagVal, tt.changed, tt.cfgVal, got, tt.want)
			}
		})
	}
}

func TestIsNativeSource(t *testing.T) {
	for _, path := range []string{"bench.c", "bench.cpp", "a/b/bench.cc", "bench.cxx"} {
		if !isNativeSource(path) {
			t.Errorf("isNativeSource(%q) = false", path)
		}
	}
	for _, path := range []string{"bench.py", "bench", "bench.h", "bench.go"} {
		if isNativeSource(path) {
			t.Errorf("isNativeSource(%q) = true", path)
		}
	}
}

func TestOpenTarget(t *testing.T) {
	artifacts := []string{
		"out/busy_cprofile.svg",
		"out/busy_cprofile_interactive.html",
		"out/busy_cprofile.png",
	}
	if got := openTarget(artifacts); got != "out/busy_cprofile_interactive.html" {
		t.Errorf("openTarget() = %q, want the HTML viewer", got)
	}

	noHTML := []string{"out/busy_cprofile.svg", "out/busy_cprofile.png"}
	if got := openTarget(noHTML); got != "out/busy_cprofile.svg" {
		t.Errorf("openTarget() = %q, want the first artifact", got)
	}
}
