package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInit_Disabled(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	dir := t.TempDir()
	err := Init(false, WithDir(dir))
	if err != nil {
		t.Fatalf("Init(false) failed: %v", err)
	}

	if Enabled() {
		t.Error("Enabled() should return false when initialized with false")
	}

	Log("test message")
	Logf("test %s", "formatted")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("disabled logging should not create files, found %d", len(entries))
	}
}

func TestInit_Enabled(t *testing.T) {
	resetForTest()
	fixClock(t, time.Date(2024, 9, 1, 13, 4, 5, 678_000_000, time.Local))

	dir := filepath.Join(t.TempDir(), "log", "update")
	t.Cleanup(func() {
		Close()
		resetForTest()
	})

	if err := Init(true, WithDir(dir)); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}
	if !Enabled() {
		t.Error("Enabled() should return true when initialized with true")
	}

	Log("test message")
	Logf("test %s %d", "formatted", 42)

	logPath := filepath.Join(dir, "20240901.log")
	if got := GetLogPath(); got != logPath {
		t.Fatalf("GetLogPath() = %q, want %q", got, logPath)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	if lines[0] != "2024-09-01 13:04:05.678 : test message" {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if lines[1] != "2024-09-01 13:04:05.678 : test formatted 42" {
		t.Errorf("unexpected second line %q", lines[1])
	}
}

func TestInit_AppendsToExistingLog(t *testing.T) {
	resetForTest()
	fixClock(t, time.Date(2024, 9, 1, 8, 0, 0, 0, time.Local))

	dir := t.TempDir()
	t.Cleanup(func() {
		Close()
		resetForTest()
	})

	logPath := filepath.Join(dir, "20240901.log")
	if err := os.WriteFile(logPath, []byte("earlier run\n"), 0600); err != nil {
		t.Fatalf("Failed to write pre-existing log: %v", err)
	}

	if err := Init(true, WithDir(dir)); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}
	Log("second run")
	Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.HasPrefix(string(content), "earlier run\n") {
		t.Error("existing log content should be kept")
	}
	if !strings.Contains(string(content), "second run") {
		t.Error("new line should be appended")
	}
}

func TestMirrorOnly(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)
	fixClock(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local))

	var buf bytes.Buffer
	if err := Init(true, WithMirror(&buf)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Logf("fetching %s", "origin")

	if got := buf.String(); got != "2025-01-02 03:04:05.000 : fetching origin\n" {
		t.Fatalf("mirror got %q", got)
	}
	if GetLogPath() != "" {
		t.Fatalf("expected no log path without a directory")
	}
}

func TestMirrorAndFile(t *testing.T) {
	resetForTest()
	fixClock(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local))
	dir := t.TempDir()
	t.Cleanup(func() {
		Close()
		resetForTest()
	})

	var buf bytes.Buffer
	if err := Init(true, WithDir(dir), WithMirror(&buf)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Log("both")

	content, err := os.ReadFile(filepath.Join(dir, "20250102.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(content) != buf.String() {
		t.Fatalf("file %q and mirror %q differ", content, buf.String())
	}
}

func TestClose(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	if err := Init(true, WithDir(t.TempDir())); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}

	// Multiple closes should be safe
	Close()
	Close()
	Close()
}

func TestDirFor(t *testing.T) {
	got := DirFor("/home/u/Documents/HoloMotion_log")
	want := filepath.Join("/home/u/Documents/HoloMotion_log", "log", "update")
	if got != want {
		t.Fatalf("DirFor() = %q, want %q", got, want)
	}
}

func TestLog_WhenUninitialized(t *testing.T) {
	resetForTest()

	// These should be no-ops and not panic
	Log("test")
	Log("test", 123, "more")
	Logf("test %s", "fmt")
	Logf("test %d %s", 123, "fmt")
}

func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
}

// resetForTest resets the package state for testing.
func resetForTest() {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	enabled = false
	logger = nil
	logDir = ""
}
