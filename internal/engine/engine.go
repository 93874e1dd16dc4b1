package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"mediajobs/internal/services"
)

// Name identifies the external tool category that executes a job.
type Name string

const (
	YtDlp       Name = "yt-dlp"
	FFmpeg      Name = "ffmpeg"
	ImageMagick Name = "imagemagick"
	// LibreOffice is reserved: it parses but can never be built.
	LibreOffice Name = "libreoffice"
)

// Kind is the capability a job requests.
type Kind string

const (
	KindDownload Kind = "download"
	KindConvert  Kind = "convert"
)

var (
	// ErrUnknownEngine is returned by Parse for tags outside the engine table.
	ErrUnknownEngine = errors.New("unknown engine")
	// ErrUnsupportedEngine marks reserved engines that can never run.
	ErrUnsupportedEngine = errors.New("unsupported engine")
)

type spec struct {
	kind          Kind
	defaultPreset string
	presets       []Preset
	tool          func(Tools) string
	build         func(req buildRequest) ([]string, string, error)
	progress      func(line string) (float64, bool)
	unsupported   bool
}

var engines = map[Name]spec{
	YtDlp: {
		kind:          KindDownload,
		defaultPreset: "best",
		presets:       downloadPresets,
		tool:          func(t Tools) string { return t.YtDlp },
		build:         buildDownload,
		progress:      parseDownloadProgress,
	},
	FFmpeg: {
		kind:          KindConvert,
		defaultPreset: "mp4-h264",
		presets:       transcodePresets,
		tool:          func(t Tools) string { return t.FFmpeg },
		build:         buildTranscode,
		progress:      parseTranscodeProgress,
	},
	ImageMagick: {
		kind:          KindConvert,
		defaultPreset: "png",
		presets:       imagePresets,
		tool:          func(t Tools) string { return t.ImageMagick },
		build:         buildImage,
		progress:      noProgress,
	},
	LibreOffice: {
		kind:        KindConvert,
		tool:        func(Tools) string { return "" },
		progress:    noProgress,
		unsupported: true,
	},
}

var aliases = map[string]Name{
	"ytdlp":  YtDlp,
	"magick": ImageMagick,
}

// Parse resolves a raw engine tag. Matching is case-insensitive and accepts a
// few common aliases.
func Parse(raw string) (Name, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := aliases[key]; ok {
		return alias, nil
	}
	name := Name(key)
	if _, ok := engines[name]; ok {
		return name, nil
	}
	return "", services.Wrap(services.ErrValidation, "engine", "parse", fmt.Sprintf("%q", raw), ErrUnknownEngine)
}

// ParseKind validates a requested kind string.
func ParseKind(raw string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindDownload:
		return KindDownload, true
	case KindConvert:
		return KindConvert, true
	default:
		return "", false
	}
}

// KindOf returns the capability an engine provides.
func KindOf(name Name) Kind {
	return engines[name].kind
}

// Supported reports whether the engine can ever be built.
func Supported(name Name) bool {
	s, ok := engines[name]
	return ok && !s.unsupported
}

// Names lists every known engine, reserved ones included, in sorted order.
func Names() []Name {
	out := make([]Name, 0, len(engines))
	for name := range engines {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Presets returns the preset table for an engine along with its default.
func Presets(name Name) ([]Preset, string) {
	s, ok := engines[name]
	if !ok {
		return nil, ""
	}
	return append([]Preset(nil), s.presets...), s.defaultPreset
}
