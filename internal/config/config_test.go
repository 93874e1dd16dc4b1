package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mediajobs/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"MEDIAJOBS_WORKFLOW_ROOT", "MEDIAJOBS_API_TOKEN", "MEDIAJOBS_REDIS_URL", "MEDIAJOBS_NTFY_TOPIC"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	work := t.TempDir()
	t.Chdir(work)
	return home
}

func TestLoadDefaultsExpandPaths(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	wantLogDir := filepath.Join(home, ".local", "share", "mediajobs", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if cfg.Paths.WorkflowRoot != "" {
		t.Fatalf("expected empty workflow root, got %q", cfg.Paths.WorkflowRoot)
	}
	if cfg.Tools.YtDlp != "yt-dlp" || cfg.Tools.FFmpeg != "ffmpeg" || cfg.Tools.ImageMagick != "magick" {
		t.Fatalf("expected bare tool names, got %+v", cfg.Tools)
	}
	if cfg.Jobs.MaxConcurrent != 2 || cfg.Jobs.LogsTail != 50 || cfg.Jobs.HistoryLimit != 50 {
		t.Fatalf("unexpected job defaults: %+v", cfg.Jobs)
	}
	if cfg.History.Backend != config.HistoryBackendJSONL {
		t.Fatalf("unexpected history backend: %q", cfg.History.Backend)
	}
}

func TestLoadReadsFileAndExpandsToolPaths(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
workflow_root = "~/projects"

[tools]
ffmpeg = "~/bin/ffmpeg"

[jobs]
max_concurrent = 4

[history]
backend = "SQLite"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.WorkflowRoot != filepath.Join(home, "projects") {
		t.Fatalf("unexpected workflow root: %q", cfg.Paths.WorkflowRoot)
	}
	if cfg.Tools.FFmpeg != filepath.Join(home, "bin", "ffmpeg") {
		t.Fatalf("unexpected ffmpeg path: %q", cfg.Tools.FFmpeg)
	}
	if cfg.Jobs.MaxConcurrent != 4 {
		t.Fatalf("unexpected max concurrent: %d", cfg.Jobs.MaxConcurrent)
	}
	if cfg.History.Backend != config.HistoryBackendSQLite {
		t.Fatalf("expected backend to be lowercased, got %q", cfg.History.Backend)
	}
}

func TestLoadEnvFallbacks(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	t.Setenv("MEDIAJOBS_WORKFLOW_ROOT", root)
	t.Setenv("MEDIAJOBS_API_TOKEN", "secret")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.WorkflowRoot != root {
		t.Fatalf("expected workflow root from env, got %q", cfg.Paths.WorkflowRoot)
	}
	if cfg.Paths.APIToken != "secret" {
		t.Fatalf("expected api token from env, got %q", cfg.Paths.APIToken)
	}
}

func TestLoadReadsDotEnvNextToConfig(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MEDIAJOBS_NTFY_TOPIC=jobs-topic\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[jobs]\nmax_concurrent = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("MEDIAJOBS_NTFY_TOPIC") })

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "jobs-topic" {
		t.Fatalf("expected ntfy topic from .env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"max concurrent": func(c *config.Config) { c.Jobs.MaxConcurrent = -1 },
		"logs tail":      func(c *config.Config) { c.Jobs.LogsTail = 5000 },
		"backend":        func(c *config.Config) { c.History.Backend = "bolt" },
		"redis scheme":   func(c *config.Config) { c.Events.RedisURL = "http://localhost:6379" },
		"log format":     func(c *config.Config) { c.Logging.Format = "xml" },
	}
	for name, mutate := range cases {
		cfg := config.Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestCreateSampleParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.Jobs.MaxConcurrent != 2 {
		t.Fatalf("unexpected sample max concurrent: %d", cfg.Jobs.MaxConcurrent)
	}
	if !strings.Contains(string(data), "[tools]") {
		t.Fatal("expected tools section in sample")
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WorkflowRoot = "/srv/media"
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !strings.Contains(string(data), "workflow_root") || !strings.Contains(string(data), "/srv/media") {
		t.Fatalf("expected workflow root in encoded config, got %s", data)
	}
}
