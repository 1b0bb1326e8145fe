package slogutil

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Info("Test message", "key", "value", "count", 42)

	output := buf.String()

	// Check format: TIMESTAMP [level] Message | key=value
	if !strings.Contains(output, "[info]") {
		t.Errorf("expected [info] in output, got: %s", output)
	}
	if !strings.Contains(output, "Test message") {
		t.Errorf("expected 'Test message' in output, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected 'key=value' in output, got: %s", output)
	}
	if !strings.Contains(output, "count=42") {
		t.Errorf("expected 'count=42' in output, got: %s", output)
	}
	if !strings.Contains(output, " | key=value count=42") {
		t.Errorf("expected ' | ' separator in output, got: %s", output)
	}
}

func TestHandler_Levels(t *testing.T) {
	tests := []struct {
		level    slog.Level
		logFunc  func(*slog.Logger)
		expected string
	}{
		{slog.LevelDebug, func(l *slog.Logger) { l.Debug("debug") }, "[debug]"},
		{slog.LevelInfo, func(l *slog.Logger) { l.Info("info") }, "[info]"},
		{slog.LevelWarn, func(l *slog.Logger) { l.Warn("warn") }, "[warn]"},
		{slog.LevelError, func(l *slog.Logger) { l.Error("error") }, "[error]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, slog.LevelDebug) // Enable all levels
			tt.logFunc(logger)

			output := buf.String()
			if !strings.Contains(output, tt.expected) {
				t.Errorf("expected %s in output, got: %s", tt.expected, output)
			}
		})
	}
}

func TestHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()

	if strings.Contains(output, "debug message") {
		t.Error("debug message should be filtered")
	}
	if strings.Contains(output, "info message") {
		t.Error("info message should be filtered")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("warn message should be included")
	}
	if !strings.Contains(output, "error message") {
		t.Error("error message should be included")
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo}, // default
		{"", slog.LevelInfo},        // default
		{"silent", LevelSilent},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := LevelFromString(tt.input)
			if got != tt.expected {
				t.Errorf("LevelFromString(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		quiet     bool
		expected  slog.Level
		ok        bool
	}{
		{0, false, slog.LevelInfo, false},
		{1, false, slog.LevelInfo, true},
		{2, false, slog.LevelDebug, true},
		{3, false, slog.LevelDebug, true},
		{0, true, LevelSilent, true},
		{5, true, LevelSilent, true}, // quiet overrides verbosity
	}

	for _, tt := range tests {
		got, ok := LevelFromVerbosity(tt.verbosity, tt.quiet)
		if got != tt.expected || ok != tt.ok {
			t.Errorf("LevelFromVerbosity(%d, %v) = (%v, %v), want (%v, %v)",
				tt.verbosity, tt.quiet, got, ok, tt.expected, tt.ok)
		}
	}
}

func TestHandler_QuotesAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelDebug).With("run", "abc").WithGroup("dep")

	logger.Debug("Resolved", "path", "/tmp/my repo/a.jar", slog.Group("coord", "groupId", "junit"))

	output := buf.String()
	if !strings.Contains(output, `run=abc`) {
		t.Errorf("expected run attribute, got: %s", output)
	}
	if !strings.Contains(output, `dep.path="/tmp/my repo/a.jar"`) {
		t.Errorf("expected quoted grouped path, got: %s", output)
	}
	if !strings.Contains(output, "dep.coord.groupId=junit") {
		t.Errorf("expected flattened group key, got: %s", output)
	}
}

func TestSetup(t *testing.T) {
	var out bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "cffcheck.log")

	logger, closer, err := Setup(Options{Level: slog.LevelWarn, Output: &out, File: logFile})
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	logger.Debug("only in file")
	logger.Warn("everywhere")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	if strings.Contains(out.String(), "only in file") {
		t.Error("debug record should not reach the console")
	}
	if !strings.Contains(out.String(), "everywhere") {
		t.Error("warn record should reach the console")
	}
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "only in file") || !strings.Contains(string(data), "everywhere") {
		t.Errorf("log file missing records: %s", data)
	}

	if _, _, err := Setup(Options{Format: "xml"}); err == nil {
		t.Error("Setup() with unknown format should fail")
	}
}

func TestSetup_JSON(t *testing.T) {
	var out bytes.Buffer
	logger, _, err := Setup(Options{Level: slog.LevelInfo, Format: "json", Output: &out})
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	logger.Info("hello", "n", 1)
	if !strings.Contains(out.String(), `"msg":"hello"`) {
		t.Errorf("expected JSON record, got: %s", out.String())
	}
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()

	// Should not panic
	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")
}

func TestTeeHandler(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := NewHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo})
	h2 := NewHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelWarn})

	logger := slog.New(NewTeeHandler(h1, h2))
	logger.Info("info message")
	logger.Warn("warn message")

	// buf1 should have both (info level)
	if !strings.Contains(buf1.String(), "info message") {
		t.Error("buf1 should contain info message")
	}
	if !strings.Contains(buf1.String(), "warn message") {
		t.Error("buf1 should contain warn message")
	}

	// buf2 should only have warn (warn level)
	if strings.Contains(buf2.String(), "info message") {
		t.Error("buf2 should not contain info message")
	}
	if !strings.Contains(buf2.String(), "warn message") {
		t.Error("buf2 should contain warn message")
	}
}
