package profiler

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/mixprof/mixprof/pkg/errors"
)

// writeFakeTool drops an executable shell script on the fake PATH.
func writeFakeTool(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("write fake %s: %v", name, err)
	}
	return path
}

// writeTargetScript creates a trivial Python target in dir.
func writeTargetScript(t *testing.T, dir string) string {
	t.Helper()
	target := filepath.Join(dir, "busy.py")
	if err := os.WriteFile(target, []byte("pass\n"), 0644); err != nil {
		t.Fatalf("write target: %v", err)
	}
	return target
}

func TestParseMethod(t *testing.T) {
	valid := []string{"cprofile", "pyinstrument", "py-spy", "perf", "valgrind", "austin"}
	for _, name := range valid {
		m, err := ParseMethod(name)
		if err != nil {
			t.Errorf("ParseMethod(%q) error: %v", name, err)
		}
		if string(m) != name {
			t.Errorf("ParseMethod(%q) = %q", name, m)
		}
	}

	for _, name := range []string{"", "gdb", "pyspy", "CPROFILE"} {
		_, err := ParseMethod(name)
		if !errors.Is(err, errors.ErrCodeInvalidMethod) {
			t.Errorf("ParseMethod(%q) = %v, want INVALID_METHOD", name, err)
		}
	}
}

func TestSpecValidate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "busy.py")
	if err := os.WriteFile(target, []byte("pass\n"), 0644); err != nil {
		t.Fatalf("write error: %v", err)
	}

	good := Spec{Target: target, OutputDir: t.TempDir(), Stem: "busy_cprofile"}
	if err := good.Validate(); err != nil {
		t.Errorf("valid spec rejected: %v", err)
	}

	tests := []struct {
		name string
		spec Spec
		code errors.Code
	}{
		{"empty target", Spec{OutputDir: "out", Stem: "s"}, errors.ErrCodeInvalidTarget},
		{"missing target", Spec{Target: "no/such/file.py", OutputDir: "out", Stem: "s"}, errors.ErrCodeFileNotFound},
		{"no output dir", Spec{Target: target, Stem: "s"}, errors.ErrCodeInvalidPath},
		{"no stem", Spec{Target: target, OutputDir: "out"}, errors.ErrCodeInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRegistryOrder(t *testing.T) {
	reg := DefaultRegistry()

	want := []Method{MethodCProfile, MethodPyinstrument, MethodPySpy, MethodPerf, MethodValgrind, MethodAustin}
	got := reg.Methods()
	if len(got) != len(want) {
		t.Fatalf("Methods() returned %d methods, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Methods()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRegistryGet(t *testing.T) {
	reg := DefaultRegistry()

	p, err := reg.Get(MethodPySpy)
	if err != nil {
		t.Fatalf("Get(py-spy) error: %v", err)
	}
	if p.Method() != MethodPySpy {
		t.Errorf("Get(py-spy).Method() = %s", p.Method())
	}
	if p.Tool() != "py-spy" {
		t.Errorf("Get(py-spy).Tool() = %s", p.Tool())
	}

	_, err = reg.Get(Method("gdb"))
	if !errors.Is(err, errors.ErrCodeInvalidMethod) {
		t.Errorf("Get(gdb) = %v, want INVALID_METHOD", err)
	}
}

// fakeProfiler stands in for a backend in registry tests.
type fakeProfiler struct {
	method Method
	tool   string
}

func (f *fakeProfiler) Method() Method { return f.method }
func (f *fakeProfiler) Tool() string   { return f.tool }
func (f *fakeProfiler) Run(ctx context.Context, spec Spec) (Artifact, error) {
	return Artifact{Path: "fake"}, nil
}

func TestRegistryReplaceKeepsPosition(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeProfiler{method: "a"})
	reg.Register(&fakeProfiler{method: "b"})
	reg.Register(&fakeProfiler{method: "a", tool: "replaced"})

	methods := reg.Methods()
	if len(methods) != 2 || methods[0] != "a" || methods[1] != "b" {
		t.Errorf("Methods() = %v after replace", methods)
	}

	p, err := reg.Get("a")
	if err != nil {
		t.Fatalf("Get(a) error: %v", err)
	}
	if p.Tool() != "replaced" {
		t.Error("Register() should replace the earlier implementation")
	}
}

func TestCProfileRun(t *testing.T) {
	binDir := t.TempDir()
	fakePython := filepath.Join(binDir, "python3")
	// Fake python3 that creates the -o output file ($4) like cProfile would
	script := "#!/bin/sh\n: > \"$4\"\n"
	if err := os.WriteFile(fakePython, []byte(script), 0755); err != nil {
		t.Fatalf("write fake python3: %v", err)
	}
	t.Setenv("PATH", binDir)

	outDir := t.TempDir()
	target := filepath.Join(outDir, "busy.py")
	if err := os.WriteFile(target, []byte("pass\n"), 0644); err != nil {
		t.Fatalf("write target: %v", err)
	}

	p := &CProfile{}
	art, err := p.Run(context.Background(), Spec{
		Target:    target,
		OutputDir: outDir,
		Stem:      "busy_cprofile",
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if art.Format != "pstats" {
		t.Errorf("Format = %q, want pstats", art.Format)
	}
	if art.Final {
		t.Error("cProfile artifacts are not final")
	}
	if filepath.Base(art.Path) != "busy_cprofile.pstats" {
		t.Errorf("Path = %q", art.Path)
	}
	if _, err := os.Stat(art.Path); err != nil {
		t.Errorf("artifact not on disk: %v", err)
	}
}

func TestCProfileRunToolMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir()) // nothing on PATH

	outDir := t.TempDir()
	target := filepath.Join(outDir, "busy.py")
	if err := os.WriteFile(target, []byte("pass\n"), 0644); err != nil {
		t.Fatalf("write target: %v", err)
	}

	p := &CProfile{}
	_, err := p.Run(context.Background(), Spec{Target: target, OutputDir: outDir, Stem: "s"})
	if !errors.Is(err, errors.ErrCodeToolNotFound) {
		t.Errorf("Run() without python3 = %v, want TOOL_NOT_FOUND", err)
	}
}

func TestCProfileRunNoOutput(t *testing.T) {
	binDir := t.TempDir()
	// Fake python3 that exits zero but writes nothing
	if err := os.WriteFile(filepath.Join(binDir, "python3"), []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatalf("write fake python3: %v", err)
	}
	t.Setenv("PATH", binDir)

	outDir := t.TempDir()
	target := filepath.Join(outDir, "busy.py")
	if err := os.WriteFile(target, []byte("pass\n"), 0644); err != nil {
		t.Fatalf("write target: %v", err)
	}

	p := &CProfile{}
	_, err := p.Run(context.Background(), Spec{Target: target, OutputDir: outDir, Stem: "s"})
	if !errors.Is(err, errors.ErrCodeToolFailed) {
		t.Errorf("Run() with no output = %v, want TOOL_FAILED", err)
	}
}

func TestPyinstrumentRun(t *testing.T) {
	binDir := t.TempDir()
	argsFile := filepath.Join(binDir, "python_args")
	// -m pyinstrument --renderer json -o <out> <target>: the output is $6
	writeFakeTool(t, binDir, "python3", "#!/bin/sh\necho \"$@\" > "+argsFile+"\n: > \"$6\"\n")
	t.Setenv("PATH", binDir)

	outDir := t.TempDir()
	target := writeTargetScript(t, outDir)

	p := &Pyinstrument{}
	art, err := p.Run(context.Background(), Spec{
		Target:    target,
		OutputDir: outDir,
		Stem:      "busy_pyinstrument",
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if art.Format != "json" {
		t.Errorf("Format = %q, want json", art.Format)
	}
	if filepath.Base(art.Path) != "busy_pyinstrument_pyinstrument.json" {
		t.Errorf("Path = %q", art.Path)
	}
	if _, err := os.Stat(art.Path); err != nil {
		t.Errorf("artifact not on disk: %v", err)
	}

	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	argv := strings.TrimSpace(string(recorded))
	if !strings.HasPrefix(argv, "-m pyinstrument --renderer json -o ") {
		t.Errorf("python3 invoked with %q", argv)
	}
}

func TestPySpyRun(t *testing.T) {
	binDir := t.TempDir()
	argsFile := filepath.Join(binDir, "pyspy_args")
	sudoMarker := filepath.Join(binDir, "sudo_used")

	// Fake py-spy records its argv and creates the --output file.
	writeFakeTool(t, binDir, "py-spy", "#!/bin/sh\n"+
		"echo \"$@\" > "+argsFile+"\n"+
		"prev=\n"+
		"for a in \"$@\"; do\n"+
		"  if [ \"$prev\" = \"--output\" ]; then : > \"$a\"; fi\n"+
		"  prev=$a\n"+
		"done\n"+
		"exit 0\n")
	writeFakeTool(t, binDir, "python3", "#!/bin/sh\n")
	// Fake sudo leaves a marker, then runs the wrapped command so the
	// test behaves the same with or without root.
	writeFakeTool(t, binDir, "sudo", "#!/bin/sh\n: > "+sudoMarker+"\nexec \"$@\"\n")
	t.Setenv("PATH", binDir)

	outDir := t.TempDir()
	target := writeTargetScript(t, outDir)

	p := &PySpy{}
	art, err := p.Run(context.Background(), Spec{
		Target:    target,
		OutputDir: outDir,
		Stem:      "busy_pyspy",
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !art.Final {
		t.Error("py-spy writes the final flamegraph; artifact should be final")
	}
	if art.Format != "" {
		t.Errorf("Format = %q, want empty for a final artifact", art.Format)
	}
	if filepath.Base(art.Path) != "busy_pyspy_flame.svg" {
		t.Errorf("Path = %q", art.Path)
	}
	if _, err := os.Stat(art.Path); err != nil {
		t.Errorf("artifact not on disk: %v", err)
	}

	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	argv := strings.TrimSpace(string(recorded))
	if runtime.GOOS == "linux" {
		if !strings.HasPrefix(argv, "record --native ") {
			t.Errorf("--native should directly follow record on linux: %q", argv)
		}
	} else if !strings.HasPrefix(argv, "record ") {
		t.Errorf("py-spy invoked with %q", argv)
	}
	if !strings.Contains(argv, "--output "+art.Path) {
		t.Errorf("missing --output %s in %q", art.Path, argv)
	}
	if !strings.Contains(argv, "--format flamegraph") {
		t.Errorf("missing --format flamegraph in %q", argv)
	}
	if !strings.Contains(argv, " -- ") {
		t.Errorf("target not separated with -- in %q", argv)
	}

	_, sudoErr := os.Stat(sudoMarker)
	if os.Geteuid() != 0 && sudoErr != nil {
		t.Error("expected a sudo prefix when not running as root")
	}
	if os.Geteuid() == 0 && sudoErr == nil {
		t.Error("unexpected sudo prefix when running as root")
	}
}

func TestPerfRun(t *testing.T) {
	binDir := t.TempDir()
	argsFile := filepath.Join(binDir, "perf_args")
	// Fake perf: record creates its -o file ($6), script prints stacks.
	writeFakeTool(t, binDir, "perf", "#!/bin/sh\n"+
		"echo \"$@\" >> "+argsFile+"\n"+
		"if [ \"$1\" = \"record\" ]; then\n"+
		"  : > \"$6\"\n"+
		"else\n"+
		"  echo \"raw perf stacks\"\n"+
		"fi\n")
	writeFakeTool(t, binDir, "python3", "#!/bin/sh\n")
	t.Setenv("PATH", binDir)

	outDir := t.TempDir()
	target := writeTargetScript(t, outDir)

	p := &Perf{}
	art, err := p.Run(context.Background(), Spec{
		Target:    target,
		OutputDir: outDir,
		Stem:      "busy_perf",
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if art.Format != "perf" {
		t.Errorf("Format = %q, want perf", art.Format)
	}
	if art.Final {
		t.Error("perf artifacts are not final")
	}
	if filepath.Base(art.Path) != "busy_perf_script.txt" {
		t.Errorf("Path = %q", art.Path)
	}
	content, err := os.ReadFile(art.Path)
	if err != nil {
		t.Fatalf("read script output: %v", err)
	}
	if !strings.Contains(string(content), "raw perf stacks") {
		t.Errorf("perf script stdout not captured: %q", content)
	}

	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(recorded)), "\n")
	if len(lines) != 2 {
		t.Fatalf("perf invoked %d times, want 2: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "record -g --call-graph dwarf -o ") {
		t.Errorf("first invocation = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "script -i ") {
		t.Errorf("second invocation = %q", lines[1])
	}
}

func TestValgrindRun(t *testing.T) {
	binDir := t.TempDir()
	argsFile := filepath.Join(binDir, "valgrind_args")
	annotateArgsFile := filepath.Join(binDir, "annotate_args")
	// Fake valgrind creates the file named by --callgrind-out-file.
	writeFakeTool(t, binDir, "valgrind", "#!/bin/sh\n"+
		"echo \"$@\" > "+argsFile+"\n"+
		"for a in \"$@\"; do\n"+
		"  case \"$a\" in\n"+
		"    --callgrind-out-file=*) : > \"${a#--callgrind-out-file=}\" ;;\n"+
		"  esac\n"+
		"done\n")
	writeFakeTool(t, binDir, "callgrind_annotate",
		"#!/bin/sh\necho \"$@\" > "+annotateArgsFile+"\necho \"events: Ir\"\n")
	t.Setenv("PATH", binDir)

	outDir := t.TempDir()
	target := writeTargetScript(t, outDir)

	p := &Valgrind{}
	art, err := p.Run(context.Background(), Spec{
		Target:    target,
		OutputDir: outDir,
		Stem:      "busy_valgrind",
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if art.Format != "callgrind" {
		t.Errorf("Format = %q, want callgrind", art.Format)
	}
	if filepath.Base(art.Path) != "busy_valgrind_callgrind.txt" {
		t.Errorf("Path = %q", art.Path)
	}
	content, err := os.ReadFile(art.Path)
	if err != nil {
		t.Fatalf("read annotate output: %v", err)
	}
	if !strings.Contains(string(content), "events: Ir") {
		t.Errorf("callgrind_annotate stdout not captured: %q", content)
	}

	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	argv := strings.TrimSpace(string(recorded))
	if !strings.HasPrefix(argv, "--tool=callgrind --callgrind-out-file=") {
		t.Errorf("valgrind invoked with %q", argv)
	}
	if !strings.HasSuffix(argv, target) {
		t.Errorf("target missing from %q", argv)
	}

	annotateArgs, err := os.ReadFile(annotateArgsFile)
	if err != nil {
		t.Fatalf("read annotate args: %v", err)
	}
	if !strings.Contains(string(annotateArgs), "callgrind.out.busy_valgrind") {
		t.Errorf("callgrind_annotate invoked with %q", annotateArgs)
	}
}

func TestAustinRun(t *testing.T) {
	binDir := t.TempDir()
	argsFile := filepath.Join(binDir, "austin_args")
	// -s -i 1ms -o <out> <python> <target>: the output is $5
	writeFakeTool(t, binDir, "austin", "#!/bin/sh\necho \"$@\" > "+argsFile+"\n: > \"$5\"\n")
	writeFakeTool(t, binDir, "python3", "#!/bin/sh\n")
	t.Setenv("PATH", binDir)

	outDir := t.TempDir()
	target := writeTargetScript(t, outDir)

	p := &Austin{}
	art, err := p.Run(context.Background(), Spec{
		Target:    target,
		OutputDir: outDir,
		Stem:      "busy_austin",
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if art.Format != "austin" {
		t.Errorf("Format = %q, want austin", art.Format)
	}
	if filepath.Base(art.Path) != "busy_austin_austin.txt" {
		t.Errorf("Path = %q", art.Path)
	}
	if _, err := os.Stat(art.Path); err != nil {
		t.Errorf("artifact not on disk: %v", err)
	}

	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	argv := strings.TrimSpace(string(recorded))
	if !strings.HasPrefix(argv, "-s -i 1ms -o ") {
		t.Errorf("austin invoked with %q", argv)
	}
	if !strings.HasSuffix(argv, target) {
		t.Errorf("target missing from %q", argv)
	}
}

func TestRegistryAvailable(t *testing.T) {
	binDir := t.TempDir()
	// Only python3 resolves, so only the python-module methods are available
	if err := os.WriteFile(filepath.Join(binDir, "python3"), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("write fake python3: %v", err)
	}
	t.Setenv("PATH", binDir)

	available := DefaultRegistry().Available(context.Background())

	want := map[Method]bool{MethodCProfile: true, MethodPyinstrument: true}
	if len(available) != len(want) {
		t.Fatalf("Available() = %v", available)
	}
	for _, m := range available {
		if !want[m] {
			t.Errorf("Available() includes %s with only python3 on PATH", m)
		}
	}
}
