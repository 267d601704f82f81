package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"refit/internal/pipeline"
	"refit/internal/services"
)

func runCLI(t *testing.T, args []string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, []string{"config", "init", "--path", target})
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, err = runCLI(t, []string{"config", "init", "--path", target})
	if err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}

	if _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestRenderSummary(t *testing.T) {
	summary := pipeline.Summary{
		RunID:           "run-1",
		Processed:       3,
		Skipped:         2,
		ProductsWritten: 7,
		Failed:          map[services.FailureKind]int{services.FailureValidation: 1},
		Elapsed:         1500 * time.Millisecond,
	}

	rendered := renderSummary(summary)
	requireContains(t, rendered, "run-1")
	requireContains(t, rendered, "Products written")
	requireContains(t, rendered, "failed validation")
	requireContains(t, rendered, "1.5s")
}

func TestListTablePadsShortRows(t *testing.T) {
	rendered := listTable(
		[]string{"Product", "Price (cents)"},
		[][]string{{"p-1", "7995"}, {"p-2"}},
		2)
	requireContains(t, rendered, "Product")
	requireContains(t, rendered, "7995")
	requireContains(t, rendered, "p-2")

	if listTable(nil, nil) != "" {
		t.Fatal("expected empty render for empty headers")
	}
}

func TestRootHelpListsCommands(t *testing.T) {
	out, err := runCLI(t, []string{"--help"})
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, name := range []string{"ingest", "stats", "show", "tracking", "config"} {
		requireContains(t, out, name)
	}
}
