package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLintAcceptsMarkedQueries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.go", "package q\n\nconst QOne = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;\n`\n\nconst Label = \"not sql\"\n")

	violations, err := lint([]string{dir})
	if err != nil {
		t.Fatalf("lint returned error: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %#v", violations)
	}
}

func TestLintReportsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package q\n\nconst QA = `--sql 11111111-2222-4333-8444-555555555555\ninsert into t values (1);\n`\n")
	writeFile(t, dir, "b.go", "package q\n\nconst QB = `--sql 11111111-2222-4333-8444-555555555555\ndelete from t;\n`\n\nconst QC = `create table t (id int);`\n")

	violations, err := lint([]string{dir})
	if err != nil {
		t.Fatalf("lint returned error: %v", err)
	}
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %#v", violations)
	}
	var messages []string
	for _, v := range violations {
		messages = append(messages, v.name+": "+v.message)
	}
	joined := strings.Join(messages, "\n")
	if !strings.Contains(joined, "QB: marker reused") || !strings.Contains(joined, "QC: missing or invalid") {
		t.Fatalf("unexpected messages:\n%s", joined)
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("\n  --sql x  \nselect 1"); got != "--sql x" {
		t.Fatalf("firstLine = %q", got)
	}
}
