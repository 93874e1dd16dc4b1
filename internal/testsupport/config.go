package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mediajobs/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Tool paths point at binaries that do not exist, so jobs fail on spawn
// unless WithStubbedBinaries is applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.WorkflowRoot = filepath.Join(base, "root")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Tools = config.Tools{
		YtDlp:       filepath.Join(base, "missing", "yt-dlp"),
		FFmpeg:      filepath.Join(base, "missing", "ffmpeg"),
		ImageMagick: filepath.Join(base, "missing", "magick"),
	}
	cfgVal.Notifications.NtfyTopic = ""
	cfgVal.Events.RedisURL = ""

	for _, dir := range []string{cfgVal.Paths.LogDir, cfgVal.Paths.WorkflowRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithWorkflowRoot overrides the workflow root. An empty root disables
// persistence.
func WithWorkflowRoot(root string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.WorkflowRoot = root
	}
}

// WithoutAPI disables the HTTP API.
func WithoutAPI() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIBind = ""
	}
}

// WithStubbedBinaries writes stub executables for the provided engine tools
// and points the config at them. Each stub prints its arguments and exits
// with the code in MEDIAJOBS_STUB_EXIT (default 0).
func WithStubbedBinaries() ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\necho \"$@\"\nexit ${MEDIAJOBS_STUB_EXIT:-0}\n")
		write := func(name string) string {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
			return target
		}
		b.cfg.Tools = config.Tools{
			YtDlp:       write("yt-dlp"),
			FFmpeg:      write("ffmpeg"),
			ImageMagick: write("magick"),
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
