package engine

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	downloadPercentPattern = regexp.MustCompile(`^\[download\]\s+(\d+(?:\.\d+)?)%`)
	transcodeStatusPattern = regexp.MustCompile(`\b(?:frame|time)=\s*\S+`)
)

// Reading is the interpretation of a single output line.
type Reading struct {
	// Percent is valid only when Known is set.
	Percent float64
	Known   bool
	// Live marks status lines that prove the tool is working without
	// carrying a usable percentage.
	Live bool
}

// Inspect interprets one output line for the given engine. It never panics.
func Inspect(name Name, line string) (reading Reading) {
	defer func() {
		if r := recover(); r != nil {
			reading = Reading{}
		}
	}()
	s, ok := engines[name]
	if !ok || s.progress == nil {
		return Reading{}
	}
	percent, known := s.progress(line)
	if known {
		return Reading{Percent: percent, Known: true, Live: true}
	}
	if name == FFmpeg && transcodeStatusPattern.MatchString(line) {
		return Reading{Live: true}
	}
	return Reading{}
}

// ParseProgress extracts a percentage in [0,100] from a line, or reports false.
func ParseProgress(name Name, line string) (float64, bool) {
	reading := Inspect(name, line)
	return reading.Percent, reading.Known
}

func parseDownloadProgress(line string) (float64, bool) {
	match := downloadPercentPattern.FindStringSubmatch(strings.TrimSpace(line))
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return clampPercent(value), true
}

// parseTranscodeProgress never yields a percentage: the input duration is
// unknown, so frame/time markers are reported through Reading.Live instead.
func parseTranscodeProgress(string) (float64, bool) {
	return 0, false
}

func noProgress(string) (float64, bool) {
	return 0, false
}

func clampPercent(value float64) float64 {
	switch {
	case value < 0:
		return 0
	case value > 100:
		return 100
	default:
		return value
	}
}
