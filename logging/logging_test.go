package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFansOut(t *testing.T) {
	var stderr bytes.Buffer
	file := filepath.Join(t.TempDir(), "tenor.log")

	logger, closeFn, err := New(&stderr, "info", file)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("project created", "projectId", "p1")
	logger.Debug("hidden")
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(stderr.String(), "projectId=p1") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if strings.Contains(stderr.String(), "hidden") {
		t.Error("debug line should be filtered at info level")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("file line is not JSON: %v", err)
	}
	if entry["msg"] != "project created" || entry["projectId"] != "p1" {
		t.Errorf("entry = %v", entry)
	}
}

func TestSetLevel(t *testing.T) {
	var stderr bytes.Buffer
	logger, _, err := New(&stderr, "error", "")
	if err != nil {
		t.Fatal(err)
	}
	logger.Warn("first")
	SetLevel(slog.LevelWarn)
	logger.Warn("second")

	out := stderr.String()
	if strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("stderr = %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(verbose) should fail")
	}
	if l, _ := ParseLevel("WARN"); l != slog.LevelWarn {
		t.Errorf("ParseLevel(WARN) = %v", l)
	}
}
