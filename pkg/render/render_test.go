package render

import (
	"context"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"svg", "png", "pdf"} {
		f, err := ParseFormat(name)
		if err != nil {
			t.Errorf("ParseFormat(%q) error: %v", name, err)
		}
		if string(f) != name {
			t.Errorf("ParseFormat(%q) = %q", name, f)
		}
	}

	for _, name := range []string{"", "SVG", "webp", "jpeg"} {
		if _, err := ParseFormat(name); err == nil {
			t.Errorf("ParseFormat(%q) should fail", name)
		}
	}
}

func TestSVG(t *testing.T) {
	svg, err := SVG(context.Background(), []byte(`digraph { a -> b; b -> c; }`))
	if err != nil {
		t.Fatalf("SVG() error: %v", err)
	}

	out := string(svg)
	if !strings.Contains(out, "<svg") {
		t.Error("output is not SVG")
	}
	if !strings.Contains(out, "a") || !strings.Contains(out, "b") {
		t.Error("node labels missing from output")
	}
}

func TestSVGInvalidDot(t *testing.T) {
	if _, err := SVG(context.Background(), []byte("this is not dot {{{")); err == nil {
		t.Error("SVG() of invalid DOT should fail")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>
<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.50 50.25" xmlns="http://www.w3.org/2000/svg">
<g></g>
</svg>`)

	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 100.50 50.25"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("width/height not rewritten: %s", out)
	}
	if strings.Contains(out, "100pt") {
		t.Error("original svg tag attributes survived")
	}
	// Content outside the root tag is untouched
	if !strings.Contains(out, "<g></g>") {
		t.Error("svg body was modified")
	}
}

func TestNormalizeViewBoxNoViewBox(t *testing.T) {
	in := []byte(`<svg width="10" height="10"><g/></svg>`)
	if got := normalizeViewBox(in); string(got) != string(in) {
		t.Error("svg without viewBox should pass through unchanged")
	}
}

func TestNormalizeViewBoxZeroDimensions(t *testing.T) {
	in := []byte(`<svg viewBox="0 0 0 0"><g/></svg>`)
	if got := normalizeViewBox(in); string(got) != string(in) {
		t.Error("zero-dimension viewBox should pass through unchanged")
	}
}

func TestWrapHTML(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><g id="graph"/></svg>`)

	page, err := WrapHTML("busy_cprofile", svg)
	if err != nil {
		t.Fatalf("WrapHTML() error: %v", err)
	}

	out := string(page)
	if !strings.Contains(out, "busy_cprofile") {
		t.Error("title missing from page")
	}
	if !strings.Contains(out, `<g id="graph"/>`) {
		t.Error("SVG should be inlined unescaped")
	}
	if !strings.Contains(out, "zoomIn") {
		t.Error("zoom controls missing")
	}
}
