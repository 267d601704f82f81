package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"refit/internal/config"
	"refit/internal/logging"
	"refit/internal/services"
)

func TestNewConsoleWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "ingest")
	logger.Info("processed product", logging.String(logging.FieldProductID, "4424-510-800"))
	logger.Debug("suppressed at info level")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "ingest: processed product") {
		t.Fatalf("expected component prefix in line, got %q", line)
	}
	if !strings.Contains(line, "product_id=4424-510-800") {
		t.Fatalf("expected product_id attribute, got %q", line)
	}
	if strings.Contains(line, "suppressed at info level") {
		t.Fatalf("expected debug record to be dropped, got %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("expected no color codes when writing to a file, got %q", line)
	}
}

func TestNewJSONShapesRecord(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.json")

	logger, err := logging.New(logging.Options{
		Format:           "json",
		Level:            "debug",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Warn("slow fetch", logging.String(logging.FieldCategory, "jeans"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(content, &record); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if record["msg"] != "slow fetch" {
		t.Fatalf("expected msg field, got %v", record)
	}
	if record["level"] != "warn" {
		t.Fatalf("expected lowercase level, got %v", record["level"])
	}
	if record["category"] != "jeans" {
		t.Fatalf("expected category attribute, got %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts field, got %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigMirrorsToLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "refit.log"))
	if err != nil {
		t.Fatalf("read mirrored log: %v", err)
	}
	if !strings.Contains(string(content), "hello") {
		t.Fatalf("expected mirrored record, got %q", content)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithProductID(context.Background(), "2753-001-712")
	ctx = services.WithCategory(ctx, "sweaters")
	ctx = services.WithStage(ctx, "policy")

	logging.WithContext(ctx, logger).Info("applied tags")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, fragment := range []string{"product_id=2753-001-712", "category=sweaters", "stage=policy"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in line %q", fragment, line)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Error("never rendered", logging.Error(os.ErrClosed))
}
