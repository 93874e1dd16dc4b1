package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"  clip: final?.mov ": "clip- final.mov",
		"a/b\\c*d":            "a-b-c-d",
		"<tag>|\"quoted\"":    "tagquoted",
		"   ":                 "",
	}
	for input, want := range cases {
		if got := SanitizeFileName(input); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTruncateLine(t *testing.T) {
	if got := TruncateLine("frame=  10 fps=0.0\r", 100); got != "frame=  10 fps=0.0" {
		t.Fatalf("unexpected trim result %q", got)
	}
	if got := TruncateLine("abcdef", 3); got != "abc…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	// "é" is two bytes; cutting at 2 must not split it.
	if got := TruncateLine("aéb", 2); got != "a…" {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
	if got := TruncateLine("short", 0); got != "short" {
		t.Fatalf("expected no limit to keep line, got %q", got)
	}
}
