package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"xrefcanon/internal/config"
	"xrefcanon/internal/logging"
)

func TestNewFromConfigWritesJSONLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg, false)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug message", logging.Namespace("chebi"))

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := strings.TrimSpace(string(content))
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("expected JSON record, got %q: %v", line, err)
	}
	if record["msg"] != "debug message" {
		t.Fatalf("unexpected msg: %v", record["msg"])
	}
	if record["namespace"] != "chebi" {
		t.Fatalf("expected namespace field, got %v", record["namespace"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key in %v", record)
	}
}

func TestConsoleLoggerFormatsComponentAndNamespace(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	component := logging.NewComponentLogger(logger, "alts")
	component.Info("resolved alternates", logging.Namespace("go"), logging.Int("count", 3), logging.String("note", "two words"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(content)
	if !strings.Contains(out, "INFO alts: [go] resolved alternates") {
		t.Fatalf("expected component and namespace prefix, got %q", out)
	}
	if !strings.Contains(out, "count=3") {
		t.Fatalf("expected count attribute, got %q", out)
	}
	if !strings.Contains(out, `note="two words"`) {
		t.Fatalf("expected quoted value, got %q", out)
	}
	if strings.Contains(out, ".go:") {
		t.Fatalf("expected no source information in info logs, got %q", out)
	}
}

func TestConsoleLoggerDropsRunID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithRunID(context.Background(), "run-123")
	logging.WithContext(ctx, logger).Info("hello")

	content, _ := os.ReadFile(logPath)
	if strings.Contains(string(content), "run-123") {
		t.Fatalf("expected run id to be omitted from console output, got %q", content)
	}
}

func TestJSONLoggerIncludesRunID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithRunID(context.Background(), "run-456")
	logging.WithContext(ctx, logger).Info("hello")

	content, _ := os.ReadFile(logPath)
	if !strings.Contains(string(content), `"run_id":"run-456"`) {
		t.Fatalf("expected run id in JSON output, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "cache unreadable", "cache_decode_failed",
		logging.String(logging.FieldErrorHint, "delete the artifact"),
		logging.Error(errors.New("bad header")),
	)

	content, _ := os.ReadFile(logPath)
	var record map[string]any
	if err := json.Unmarshal(content, &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record[logging.FieldEventType] != "cache_decode_failed" {
		t.Fatalf("unexpected event_type %v", record[logging.FieldEventType])
	}
	if record[logging.FieldErrorHint] != "delete the artifact" {
		t.Fatalf("explicit hint should win, got %v", record[logging.FieldErrorHint])
	}
	if record[logging.FieldImpact] == nil {
		t.Fatal("expected impact default to be injected")
	}
	if record["error"] != "bad header" {
		t.Fatalf("unexpected error field %v", record["error"])
	}
}

func TestRunIDFromContext(t *testing.T) {
	if _, ok := logging.RunIDFromContext(context.Background()); ok {
		t.Fatal("expected no run id on empty context")
	}
	id := logging.NewRunID()
	ctx := logging.WithRunID(context.Background(), id)
	got, ok := logging.RunIDFromContext(ctx)
	if !ok || got != id {
		t.Fatalf("RunIDFromContext = %q, %v; want %q", got, ok, id)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should never be enabled")
	}
}
