package cli

import (
	"bytes"
	"testing"
	"time"
)

func TestNewLogsAtLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Info("visible")
	if !bytes.Contains(buf.Bytes(), []byte("visible")) {
		t.Error("info message should be logged at info level")
	}

	buf.Reset()
	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Error("debug message should be suppressed at info level")
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("now visible")

	if !bytes.Contains(buf.Bytes(), []byte("now visible")) {
		t.Error("debug message should be logged after SetLogLevel(LogDebug)")
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	prog := newProgress(c.Logger)
	if prog == nil {
		t.Fatal("newProgress() returned nil")
	}

	// Small delay to ensure measurable duration
	time.Sleep(10 * time.Millisecond)

	prog.done("pipeline complete")

	if !bytes.Contains(buf.Bytes(), []byte("pipeline complete")) {
		t.Error("progress.done() output should contain the message")
	}
}
