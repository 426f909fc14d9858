package cli

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestIsViewable(t *testing.T) {
	for _, name := range []string{"a.svg", "a.png", "a.pdf", "a.html", "a.dot", "A.SVG"} {
		if !isViewable(name) {
			t.Errorf("isViewable(%q) = false", name)
		}
	}
	for _, name := range []string{"a.pstats", "a.json", "a.txt", "a"} {
		if isViewable(name) {
			t.Errorf("isViewable(%q) = true", name)
		}
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestListArtifacts(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "old.svg")
	if err := os.WriteFile(old, []byte("<svg/>"), 0644); err != nil {
		t.Fatalf("write error: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("chtimes error: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "new.png"), []byte("png"), 0644); err != nil {
		t.Fatalf("write error: %v", err)
	}
	// Non-viewable files and subdirectories are skipped
	if err := os.WriteFile(filepath.Join(dir, "stats.pstats"), []byte("x"), 0644); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}

	entries, err := listArtifacts(dir)
	if err != nil {
		t.Fatalf("listArtifacts() error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("listArtifacts() = %d entries, want 2", len(entries))
	}
	// Newest first
	if entries[0].Name != "new.png" || entries[1].Name != "old.svg" {
		t.Errorf("order = %s, %s", entries[0].Name, entries[1].Name)
	}
}

func TestHandleIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "busy_cprofile.svg"), []byte("<svg/>"), 0644); err != nil {
		t.Fatalf("write error: %v", err)
	}

	c := New(io.Discard, LogInfo)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	c.handleIndex(dir)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "busy_cprofile.svg") {
		t.Error("index should list the artifact")
	}
	if !strings.Contains(body, `href="/files/busy_cprofile.svg"`) {
		t.Error("index should link through the file server")
	}
}

func TestHandleIndexEmpty(t *testing.T) {
	c := New(io.Discard, LogInfo)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	c.handleIndex(t.TempDir())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No artifacts yet") {
		t.Error("empty directory should show the placeholder")
	}
}
