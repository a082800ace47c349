package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/logsift/internal/domain/predicate"
	"github.com/kailas-cloud/logsift/internal/domain/rule"
	"github.com/kailas-cloud/logsift/internal/rulebundle"
)

func resetSearchFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		searchSubstrings = nil
		searchRegexes = nil
		searchMapping = ""
		searchBundle = ""
		searchPattern = "*"
		searchJSON = false
		searchWorkers = 0
	}
	reset()
	t.Cleanup(reset)
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadRules(t *testing.T) {
	set, err := loadRules("")
	if err != nil {
		t.Fatalf("loadRules(\"\") error: %v", err)
	}
	if !set.IsEmpty() {
		t.Errorf("empty path should yield an empty set, got %d rules", set.Len())
	}

	mapping := writeTempFile(t, "rules.json",
		`{"": [{"type": "substrings", "arguments": ["ERROR"]}]}`)
	set, err = loadRules(mapping)
	if err != nil {
		t.Fatalf("loadRules(mapping) error: %v", err)
	}
	if set.Len() != 1 {
		t.Errorf("rules = %d, want 1", set.Len())
	}

	p, err := predicate.NewSubstrings([]string{"panic"})
	if err != nil {
		t.Fatalf("NewSubstrings: %v", err)
	}
	compiled, err := rule.FromMapping(map[string][]predicate.Predicate{"syslog": {p}})
	if err != nil {
		t.Fatalf("FromMapping: %v", err)
	}
	bundlePath := filepath.Join(t.TempDir(), "rules.bundle")
	if err := rulebundle.WriteFile(bundlePath, compiled); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	set, err = loadRules(bundlePath)
	if err != nil {
		t.Fatalf("loadRules(bundle) error: %v", err)
	}
	if set.Len() != 1 {
		t.Errorf("bundle rules = %d, want 1", set.Len())
	}

	if _, err := loadRules(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing rules file")
	}
}

func TestBuildRuleSet(t *testing.T) {
	resetSearchFlags(t)

	if _, err := buildRuleSet(); err != nil {
		t.Fatalf("buildRuleSet with no flags: %v", err)
	}

	searchSubstrings = []string{"ERROR", "panic"}
	searchRegexes = []string{"oom.*killer"}

	set, err := buildRuleSet()
	if err != nil {
		t.Fatalf("buildRuleSet error: %v", err)
	}
	if set.Len() != 1 {
		t.Fatalf("rules = %d, want 1 merged wildcard rule", set.Len())
	}
	r := set.Rules()[0]
	if !r.IsWildcard() {
		t.Error("flag rule should be a wildcard")
	}
	if got := len(r.Predicates()); got != 2 {
		t.Errorf("predicates = %d, want 2 (one substrings, one regex)", got)
	}
}

func TestBuildRuleSet_MergesMappingFile(t *testing.T) {
	resetSearchFlags(t)

	searchSubstrings = []string{"WARN"}
	searchMapping = writeTempFile(t, "rules.json",
		`{"syslog": [{"type": "regex", "arguments": "disk"}]}`)

	set, err := buildRuleSet()
	if err != nil {
		t.Fatalf("buildRuleSet error: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("rules = %d, want 2", set.Len())
	}
	if !set.Rules()[0].IsWildcard() {
		t.Error("flag rule should come before mapping rules")
	}

	searchMapping = writeTempFile(t, "bad.json", `["not", "a", "mapping"]`)
	if _, err := buildRuleSet(); err == nil {
		t.Error("expected error for malformed mapping")
	}
}

func TestCollectDiagnostics(t *testing.T) {
	resetSearchFlags(t)
	ctx := context.Background()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.log"), []byte("boot ok\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	searchPattern = "*.log"
	diags, err := collectDiagnostics(ctx, []string{dir}, nil)
	if err != nil {
		t.Fatalf("collectDiagnostics(dir) error: %v", err)
	}
	if len(diags) != 1 || diags[0].Name() != "app.log" {
		t.Fatalf("directory listing = %v, want just app.log", diags)
	}

	diags, err = collectDiagnostics(ctx, []string{"-"}, strings.NewReader("piped line\n"))
	if err != nil {
		t.Fatalf("collectDiagnostics(stdin) error: %v", err)
	}
	if len(diags) != 1 || diags[0].Name() != "stdin" {
		t.Fatalf("stdin diagnostics = %v, want one named stdin", diags)
	}
	text, err := diags[0].Text(ctx)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "piped line\n" {
		t.Errorf("stdin text = %q", text)
	}

	file := filepath.Join(dir, "app.log")
	diags, err = collectDiagnostics(ctx, []string{file}, nil)
	if err != nil {
		t.Fatalf("collectDiagnostics(file) error: %v", err)
	}
	if len(diags) != 1 || diags[0].Name() != "app.log" {
		t.Fatalf("file diagnostics = %v", diags)
	}

	if _, err := collectDiagnostics(ctx, []string{filepath.Join(dir, "missing.log")}, nil); err == nil {
		t.Error("expected error for a missing path")
	}
}

func TestRunSearch_JSON(t *testing.T) {
	resetSearchFlags(t)

	searchSubstrings = []string{"ERROR"}
	searchJSON = true

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("boot ok\nERROR disk full\nshutdown\n"))

	if err := runSearch(cmd, []string{"-"}); err != nil {
		t.Fatalf("runSearch error: %v", err)
	}

	var result map[string][]string
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	lines := result["stdin"]
	if len(lines) != 1 || lines[0] != "ERROR disk full" {
		t.Errorf("stdin matches = %v, want [ERROR disk full]", lines)
	}
}

func TestRunSearch_NoRules(t *testing.T) {
	resetSearchFlags(t)

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetIn(strings.NewReader("anything\n"))

	err := runSearch(cmd, []string{"-"})
	if err == nil {
		t.Fatal("expected error without any rule flags")
	}
	if !strings.Contains(err.Error(), "no rules") {
		t.Errorf("error = %q, want a no-rules hint", err)
	}
}

func TestHighlight(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	p, err := predicate.NewSubstrings([]string{"disk"})
	if err != nil {
		t.Fatalf("NewSubstrings: %v", err)
	}
	red := color.New(color.FgRed, color.Bold)

	got := highlight("ERROR disk full", []predicate.Predicate{p}, red)
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("highlight did not colorize: %q", got)
	}
	if !strings.Contains(got, "disk") {
		t.Errorf("highlight lost the fragment: %q", got)
	}

	plain := highlight("no match here", []predicate.Predicate{p}, red)
	if plain != "no match here" {
		t.Errorf("unmatched line changed: %q", plain)
	}
}
