// Package toolchain discovers the external tools mixprof delegates to.
//
// mixprof implements no profiling, conversion, or layout of its own; every
// pipeline stage shells out to an independently-installed binary. This
// package answers two questions about those binaries: is it on PATH, and
// what does it report as its version. The doctor command renders the full
// status table; individual pipeline stages use Require as a preflight guard
// so the user gets an install hint instead of a bare exec error.
package toolchain

import (
	"context"
	"os/exec"
	"strings"

	"github.com/mixprof/mixprof/pkg/errors"
)

// Tool describes one external binary mixprof can invoke.
type Tool struct {
	Name        string   // binary name looked up on PATH
	VersionArgs []string // arguments that make the tool print its version
	Install     string   // one-line install hint shown when missing
	Optional    bool     // true for tools only some methods need
}

// Tools lists every binary any pipeline stage can reach for, in the order
// doctor displays them.
var Tools = []Tool{
	{Name: "python3", VersionArgs: []string{"--version"}, Install: "install Python 3 from your distribution"},
	{Name: "gprof2dot", VersionArgs: []string{"--version"}, Install: "pip install gprof2dot"},
	{Name: "dot", VersionArgs: []string{"-V"}, Install: "apt install graphviz (Linux) / brew install graphviz (macOS)", Optional: true},
	{Name: "rsvg-convert", VersionArgs: []string{"--version"}, Install: "apt install librsvg2-bin (Linux) / brew install librsvg (macOS)", Optional: true},
	{Name: "py-spy", VersionArgs: []string{"--version"}, Install: "pip install py-spy", Optional: true},
	{Name: "perf", VersionArgs: []string{"--version"}, Install: "apt install linux-tools-common linux-tools-generic", Optional: true},
	{Name: "valgrind", VersionArgs: []string{"--version"}, Install: "apt install valgrind", Optional: true},
	{Name: "callgrind_annotate", VersionArgs: []string{"--version"}, Install: "apt install valgrind", Optional: true},
	{Name: "austin", VersionArgs: []string{"--version"}, Install: "pip install austin-python", Optional: true},
	{Name: "gcc", VersionArgs: []string{"--version"}, Install: "apt install build-essential", Optional: true},
	{Name: "g++", VersionArgs: []string{"--version"}, Install: "apt install build-essential", Optional: true},
}

// Status reports the probe result for a single tool.
type Status struct {
	Tool      Tool
	Installed bool
	Path      string // resolved path when installed
	Version   string // first line of version output, best effort
}

// Probe checks a single tool. A tool counts as installed when it resolves
// on PATH; version output is collected best-effort and may be empty for
// tools that print versions to stderr in unusual formats.
func Probe(ctx context.Context, tool Tool) Status {
	st := Status{Tool: tool}

	path, err := exec.LookPath(tool.Name)
	if err != nil {
		return st
	}
	st.Installed = true
	st.Path = path

	out, err := exec.CommandContext(ctx, tool.Name, tool.VersionArgs...).CombinedOutput()
	if err == nil || len(out) > 0 {
		st.Version = firstLine(string(out))
	}
	return st
}

// ProbeAll checks every known tool and returns statuses in display order.
func ProbeAll(ctx context.Context) []Status {
	statuses := make([]Status, 0, len(Tools))
	for _, tool := range Tools {
		statuses = append(statuses, Probe(ctx, tool))
	}
	return statuses
}

// Lookup returns the Tool definition for a binary name.
func Lookup(name string) (Tool, bool) {
	for _, tool := range Tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return Tool{}, false
}

// Require resolves a binary on PATH, returning a TOOL_NOT_FOUND error with
// an install hint when it is missing. Pipeline stages call this before
// building a command line so failures surface before any work happens.
func Require(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err == nil {
		return path, nil
	}
	if tool, ok := Lookup(name); ok {
		return "", errors.New(errors.ErrCodeToolNotFound, "%s not found on PATH (%s)", name, tool.Install)
	}
	return "", errors.New(errors.ErrCodeToolNotFound, "%s not found on PATH", name)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
