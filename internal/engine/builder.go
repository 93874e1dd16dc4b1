package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mediajobs/internal/logging"
	"mediajobs/internal/services"
	"mediajobs/internal/textutil"
)

// OutputSuffix is appended to the input stem for convert outputs.
const OutputSuffix = "_converted"

// Command is a fully resolved subprocess invocation.
type Command struct {
	Path       string
	Args       []string
	OutputPath string
	Preset     string
}

// Redacted returns the argument list safe for logs. Args itself is untouched.
func (c Command) Redacted() []string {
	return Redact(c.Args)
}

// String renders the redacted command line.
func (c Command) String() string {
	return FormatCommandLine(c.Path, c.Redacted())
}

// Builder resolves engine invocations. It is safe for concurrent use.
type Builder struct {
	tools    Tools
	logger   *slog.Logger
	mkdirAll func(string, os.FileMode) error
}

// NewBuilder constructs a builder for the configured tool paths.
func NewBuilder(tools Tools, logger *slog.Logger) *Builder {
	return &Builder{
		tools:    tools,
		logger:   logging.NewComponentLogger(logger, "engine"),
		mkdirAll: os.MkdirAll,
	}
}

type buildRequest struct {
	input     string
	outputDir string
	opts      Options
	preset    Preset
}

// Build maps a job to its executable and argument list. Configuration
// problems (reserved engine, missing tool path) come back wrapped with
// services.ErrConfiguration. Unknown presets never fail; they fall back to the
// engine default.
func (b *Builder) Build(name Name, input, output string, opts Options) (Command, error) {
	s, ok := engines[name]
	if !ok {
		return Command{}, services.Wrap(services.ErrValidation, "engine", "build", fmt.Sprintf("%q", name), ErrUnknownEngine)
	}
	if s.unsupported {
		return Command{}, services.Wrap(services.ErrConfiguration, "engine", "build", fmt.Sprintf("%s is reserved and cannot run", name), ErrUnsupportedEngine)
	}
	tool := strings.TrimSpace(s.tool(b.tools))
	if tool == "" {
		return Command{}, services.Wrap(services.ErrConfiguration, "engine", "build", fmt.Sprintf("no tool path configured for %s", name), nil)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return Command{}, services.Wrap(services.ErrValidation, "engine", "build", "input is required", nil)
	}
	outputDir, err := resolveOutputDir(s.kind, input, output)
	if err != nil {
		return Command{}, err
	}

	preset := b.resolvePreset(name, s, opts.Preset)
	b.ensureDir(outputDir)

	args, outputPath, err := s.build(buildRequest{
		input:     input,
		outputDir: outputDir,
		opts:      opts,
		preset:    preset,
	})
	if err != nil {
		return Command{}, err
	}
	return Command{Path: tool, Args: args, OutputPath: outputPath, Preset: preset.Name}, nil
}

func (b *Builder) resolvePreset(name Name, s spec, requested string) Preset {
	if preset, ok := lookupPreset(s.presets, requested); ok {
		return preset
	}
	fallback, _ := lookupPreset(s.presets, s.defaultPreset)
	if strings.TrimSpace(requested) != "" {
		b.logger.Warn("unknown preset; using default",
			logging.String(logging.FieldEngine, string(name)),
			logging.String("requested", requested),
			logging.String("preset", fallback.Name),
			logging.String(logging.FieldEventType, "preset_fallback"))
	}
	return fallback
}

// ensureDir creates the output directory. Failure is logged only: the tool
// reports its own error if the directory is truly unusable.
func (b *Builder) ensureDir(dir string) {
	if err := b.mkdirAll(dir, 0o755); err != nil {
		b.logger.Warn("create output directory failed",
			logging.String("dir", dir),
			logging.Error(err),
			logging.String(logging.FieldEventType, "output_dir_failed"),
			logging.String(logging.FieldErrorHint, "check permissions on the output directory"))
	}
}

func resolveOutputDir(kind Kind, input, output string) (string, error) {
	output = strings.TrimSpace(output)
	if output != "" {
		return filepath.Clean(output), nil
	}
	if kind == KindDownload {
		return "", services.Wrap(services.ErrValidation, "engine", "build", "download jobs need an output directory", nil)
	}
	return filepath.Dir(input), nil
}

// OutputFileName derives the convert output name from the input base name.
func OutputFileName(input, extension string) string {
	base := filepath.Base(strings.TrimSpace(input))
	stem := textutil.SanitizeFileName(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" || stem == "." {
		stem = "output"
	}
	return stem + OutputSuffix + "." + strings.TrimPrefix(extension, ".")
}

func buildDownload(req buildRequest) ([]string, string, error) {
	opts := req.opts
	args := []string{
		"--newline",
		"--no-playlist",
		"--restrict-filenames",
		"-P", req.outputDir,
		"-o", downloadTemplate,
	}
	args = append(args, req.preset.Args...)
	if v := strings.TrimSpace(opts.CookiesFile); v != "" {
		args = append(args, "--cookies", v)
	}
	if v := strings.TrimSpace(opts.CookiesFromBrowser); v != "" {
		args = append(args, "--cookies-from-browser", v)
	}
	if v := strings.TrimSpace(opts.RateLimit); v != "" {
		args = append(args, "--limit-rate", v)
	}
	if v := strings.TrimSpace(opts.Proxy); v != "" {
		args = append(args, "--proxy", v)
	}
	if opts.Fragments > 1 {
		args = append(args, "-N", strconv.Itoa(opts.Fragments))
	}
	args = append(args, opts.ExtraArgs...)
	args = append(args, "--", req.input)
	return args, req.outputDir, nil
}

func buildTranscode(req buildRequest) ([]string, string, error) {
	outputPath := filepath.Join(req.outputDir, OutputFileName(req.input, req.preset.Extension))
	args := []string{"-hide_banner", "-nostdin", "-y", "-i", req.input}
	if req.preset.Name == advancedPreset {
		args = append(args, advancedArgs(req.opts)...)
	} else {
		args = append(args, req.preset.Args...)
	}
	args = append(args, req.opts.ExtraArgs...)
	args = append(args, outputPath)
	return args, outputPath, nil
}

func buildImage(req buildRequest) ([]string, string, error) {
	outputPath := filepath.Join(req.outputDir, OutputFileName(req.input, req.preset.Extension))
	args := []string{req.input}
	args = append(args, req.preset.Args...)
	args = append(args, req.opts.ExtraArgs...)
	args = append(args, outputPath)
	return args, outputPath, nil
}
