package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_RunIDAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "warn", Fallback: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("request failed", "fragment", "a.go:1-10")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level:\n%s", out)
	}
	if !strings.Contains(out, "run_id=") || !strings.Contains(out, "fragment=a.go:1-10") {
		t.Errorf("missing attrs:\n%s", out)
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	logger, closer, err := New(Options{File: path, Level: "debug", Fallback: os.Stderr})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("request started")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "request started") {
		t.Errorf("log file = %q", data)
	}
}

func TestNew_DiscardByDefault(t *testing.T) {
	logger, _, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("default level should be info")
	}
}

func TestParseLevel(t *testing.T) {
	if _, err := ParseLevel("trace"); err == nil {
		t.Error("expected error for unknown level")
	}
	if l, _ := ParseLevel("error"); l != slog.LevelError {
		t.Errorf("ParseLevel(error) = %v", l)
	}
}
