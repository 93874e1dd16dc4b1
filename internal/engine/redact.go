package engine

import (
	"strconv"
	"strings"
)

// RedactedValue replaces sensitive argument values in logs.
const RedactedValue = "<redacted>"

var sensitiveFlags = map[string]struct{}{
	"--cookies":              {},
	"--cookies-from-browser": {},
	"--proxy":                {},
	"--username":             {},
	"--password":             {},
	"--video-password":       {},
	"--add-header":           {},
	"--ap-username":          {},
	"--ap-password":          {},
	"--twofactor":            {},
	"--netrc-cmd":            {},
	"-u":                     {},
	"-p":                     {},
	"-2":                     {},
}

// Redact returns a copy of args with the values of credential-bearing flags
// masked. Both "--flag value" and "--flag=value" forms are handled.
func Redact(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out); i++ {
		arg := out[i]
		if flag, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(flag, "--") {
			if _, sensitive := sensitiveFlags[flag]; sensitive {
				out[i] = flag + "=" + RedactedValue
			}
			continue
		}
		if _, sensitive := sensitiveFlags[arg]; sensitive && i+1 < len(out) {
			out[i+1] = RedactedValue
			i++
		}
	}
	return out
}

// FormatCommandLine joins a command for display, quoting arguments that
// contain whitespace or quotes.
func FormatCommandLine(path string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quoteArg(path))
	for _, arg := range args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" || strings.ContainsAny(arg, " \t\n\"'") {
		return strconv.Quote(arg)
	}
	return arg
}
