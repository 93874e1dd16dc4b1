package engine

import "testing"

func TestParseDownloadProgress(t *testing.T) {
	cases := []struct {
		line string
		want float64
		ok   bool
	}{
		{"[download]  42.5% of 10.00MiB at 1.00MiB/s ETA 00:05", 42.5, true},
		{"[download] 100% of 10.00MiB", 100, true},
		{"[download] 250% of ???", 100, true},
		{"[download] Destination: video.mp4", 0, false},
		{"[info] 42% done", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseProgress(YtDlp, tc.line)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseProgress(%q) = %v,%v want %v,%v", tc.line, got, ok, tc.want, tc.ok)
		}
	}
}

func TestTranscodeLinesAreLiveWithoutPercent(t *testing.T) {
	line := "frame=  240 fps= 60 q=28.0 size=    1024kB time=00:00:08.00 bitrate=1048.6kbits/s"
	if _, ok := ParseProgress(FFmpeg, line); ok {
		t.Fatal("ffmpeg lines must not yield a percentage")
	}
	if r := Inspect(FFmpeg, line); !r.Live || r.Known {
		t.Fatalf("Inspect = %+v", r)
	}
	if r := Inspect(FFmpeg, "Input #0, matroska"); r.Live {
		t.Fatal("non-status line reported live")
	}
}

func TestParseProgressUnknownAndImageEngines(t *testing.T) {
	if _, ok := ParseProgress(ImageMagick, "[download] 50%"); ok {
		t.Fatal("imagemagick never reports progress")
	}
	if _, ok := ParseProgress("nope", "[download] 50%"); ok {
		t.Fatal("unknown engine should not report progress")
	}
}
