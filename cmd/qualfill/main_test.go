package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	dataDir    string
	configPath string
}

const testAssumptions = `
[filter]
quality = "720p+"

[assume_quality]
"720p" = "webdl"
everything = "720p hdtv"
`

func setupCLITestEnv(t *testing.T, extra string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("QUALFILL_DATA_DIR", "")
	env := &cliTestEnv{
		baseDir:    base,
		dataDir:    filepath.Join(base, "data"),
		configPath: filepath.Join(base, "config.toml"),
	}
	// extra goes first so top-level keys stay at the document root.
	content := fmt.Sprintf("%s\n[paths]\ndata_dir = %q\nlog_dir = %q\n\n[logging]\nlevel = \"error\"\n",
		extra, env.dataDir, filepath.Join(base, "logs"))
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func decodeJSON(t *testing.T, data string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(data), v); err != nil {
		t.Fatalf("decode JSON output %q: %v", data, err)
	}
}

func TestResolveAppliesAssumptionsAndFilter(t *testing.T) {
	env := setupCLITestEnv(t, testAssumptions)

	out, _, err := runCLI(t, []string{"--json", "resolve", "Show.S01E01", "Show.S01E02.720p", "Show.S01E03.480p"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var result struct {
		Summary struct {
			Accepted int `json:"accepted"`
			Rejected int `json:"rejected"`
			Assumed  int `json:"assumed"`
		} `json:"summary"`
		Items []itemView `json:"items"`
	}
	decodeJSON(t, out, &result)

	want := []struct {
		quality string
		status  string
	}{
		{"720p hdtv", "accepted"},
		{"720p webdl", "accepted"},
		{"480p hdtv", "rejected"},
	}
	if len(result.Items) != len(want) {
		t.Fatalf("got %d items, want %d", len(result.Items), len(want))
	}
	for i, w := range want {
		got := result.Items[i]
		if got.Quality != w.quality || got.Status != w.status {
			t.Fatalf("item %d (%s): got %s/%s, want %s/%s", i, got.Title, got.Quality, got.Status, w.quality, w.status)
		}
	}
	if result.Summary.Accepted != 2 || result.Summary.Rejected != 1 || result.Summary.Assumed != 3 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
}

func TestResolveTableOutput(t *testing.T) {
	env := setupCLITestEnv(t, "assume_quality = \"1080p webdl\"\n")

	out, _, err := runCLI(t, []string{"resolve", "--quality", "720p", "Some.Movie"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, "720p webdl")
	requireContains(t, out, "yes")
	requireContains(t, out, "Accepted")
	requireContains(t, out, "1 accepted, 0 rejected, 0 review, 0 failed (1 assumed)")
}

func TestMisplacedAssumeQualityIsReported(t *testing.T) {
	env := setupCLITestEnv(t, "")
	content := fmt.Sprintf("[paths]\ndata_dir = %q\n\n[logging]\nassume_quality = \"1080p webdl\"\n", env.dataDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, err := runCLI(t, []string{"resolve", "Some.Movie"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for assume_quality under [logging]")
	}
	requireContains(t, err.Error(), "top-level")
}

func TestResolveRejectsBadKnownQuality(t *testing.T) {
	env := setupCLITestEnv(t, "")
	if _, _, err := runCLI(t, []string{"resolve", "--quality", "sparkly", "x"}, env.configPath); err == nil {
		t.Fatal("expected --quality parse error")
	}
}

func TestRulesListsRankedOrder(t *testing.T) {
	env := setupCLITestEnv(t, `
[assume_quality]
everything = "aac"
hdtv = "720p"
"720p+ hdtv" = "h264"
`)

	out, _, err := runCLI(t, []string{"--json", "rules"}, env.configPath)
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	var rules []ruleView
	decodeJSON(t, out, &rules)
	targets := make([]string, len(rules))
	for i, rule := range rules {
		targets[i] = rule.Target
	}
	if strings.Join(targets, ",") != "720p+ hdtv,hdtv,everything" {
		t.Fatalf("ranked targets = %v", targets)
	}
	if rules[2].Score != nil {
		t.Fatalf("expected everything rule without a score, got %d", *rules[2].Score)
	}

	out, _, err = runCLI(t, []string{"rules"}, env.configPath)
	if err != nil {
		t.Fatalf("rules table: %v", err)
	}
	requireContains(t, out, "last")
}

func TestInvalidAssumptionFailsConfigLoad(t *testing.T) {
	env := setupCLITestEnv(t, "[assume_quality]\nhdtv = \"not-a-quality\"\n")
	_, _, err := runCLI(t, []string{"rules"}, env.configPath)
	if err == nil {
		t.Fatal("expected configuration error")
	}
	requireContains(t, err.Error(), "not-a-quality")
}

func TestQueueAddRunAndRetry(t *testing.T) {
	env := setupCLITestEnv(t, testAssumptions)

	out, _, err := runCLI(t, []string{"queue", "add", "Show.S01E01", "Show.S01E03.480p"}, env.configPath)
	if err != nil {
		t.Fatalf("queue add: %v", err)
	}
	requireContains(t, out, "Queued item 1: Show.S01E01")

	out, _, err = runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Processed 2 item(s): 1 accepted, 1 rejected")

	out, _, err = runCLI(t, []string{"--json", "queue", "list", "--status", "accepted"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	var accepted []itemView
	decodeJSON(t, out, &accepted)
	if len(accepted) != 1 || accepted[0].Quality != "720p hdtv" || !accepted[0].AssumedQuality {
		t.Fatalf("unexpected accepted items: %+v", accepted)
	}

	out, _, err = runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	requireContains(t, out, "No pending items")

	out, _, err = runCLI(t, []string{"queue", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "Accepted")
	requireContains(t, out, "Rejected")

	out, _, err = runCLI(t, []string{"queue", "retry"}, env.configPath)
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, "Retrying 0 item(s)")

	out, _, err = runCLI(t, []string{"queue", "clear", "--status", "rejected"}, env.configPath)
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 item(s)")

	if _, _, err := runCLI(t, []string{"queue", "clear"}, env.configPath); err == nil {
		t.Fatal("expected clear without --all to fail")
	}

	out, _, err = runCLI(t, []string{"queue", "remove", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("queue remove: %v", err)
	}
	requireContains(t, out, "Removed item 1")

	out, _, err = runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestQueueListRejectsUnknownStatus(t *testing.T) {
	env := setupCLITestEnv(t, "")
	_, _, err := runCLI(t, []string{"queue", "list", "--status", "done"}, env.configPath)
	if err == nil {
		t.Fatal("expected unknown status error")
	}
	requireContains(t, err.Error(), "expected one of")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, testAssumptions)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Assume quality: 2 rule(s)")
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
}

func TestDebugInfoReportsStagesAndDatabase(t *testing.T) {
	env := setupCLITestEnv(t, testAssumptions)

	out, _, err := runCLI(t, []string{"--json", "debug-info"}, env.configPath)
	if err != nil {
		t.Fatalf("debug-info: %v", err)
	}
	var info debugInfo
	decodeJSON(t, out, &info)
	if info.ConfigPath != env.configPath || !info.ConfigFile {
		t.Fatalf("unexpected config info: %+v", info)
	}
	if !info.Database.Exists || info.Database.SchemaVersion == 0 {
		t.Fatalf("unexpected database info: %+v", info.Database)
	}
	if len(info.Stages) != 3 {
		t.Fatalf("expected 3 stages, got %+v", info.Stages)
	}
	for _, h := range info.Stages {
		if !h.Ready {
			t.Fatalf("stage %s not ready: %s", h.Name, h.Detail)
		}
	}

	out, _, err = runCLI(t, []string{"debug-info"}, env.configPath)
	if err != nil {
		t.Fatalf("debug-info text: %v", err)
	}
	requireContains(t, out, "== Stages ==")
	requireContains(t, out, "assume_quality")
}

func TestLogLevelFlagValidated(t *testing.T) {
	env := setupCLITestEnv(t, "")
	if _, _, err := runCLI(t, []string{"--log-level", "loud", "rules"}, env.configPath); err == nil {
		t.Fatal("expected invalid --log-level to fail")
	}
}

func TestLogsShowsItemLines(t *testing.T) {
	env := setupCLITestEnv(t, "")
	logPath := filepath.Join(env.baseDir, "logs", "qualfill.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	content := "ts INFO [pipeline] Item #1 (metainfo_quality) – stage completed\n" +
		"ts INFO [pipeline] Item #2 (metainfo_quality) – stage completed\n"
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "--item", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "Item #2")
	if strings.Contains(out, "Item #1 ") {
		t.Fatalf("expected only item 2 lines, got %q", out)
	}
}
