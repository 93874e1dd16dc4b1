package engine

import "strings"

// Preset is a named argument set. Extension is only meaningful for convert
// engines and decides the output file suffix.
type Preset struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Extension   string   `json:"extension,omitempty"`
	Args        []string `json:"args"`
}

// advancedPreset composes its arguments from Options.Resolution, Quality and Audio.
const advancedPreset = "advanced"

const downloadTemplate = "%(title).200B [%(id)s].%(ext)s"

var downloadPresets = []Preset{
	{Name: "best", Description: "Best video and audio, merged to mp4", Args: []string{"-f", "bv*+ba/b", "--merge-output-format", "mp4"}},
	{Name: "1080p", Description: "Up to 1080p video", Args: []string{"-f", "bv*[height<=1080]+ba/b[height<=1080]", "--merge-output-format", "mp4"}},
	{Name: "720p", Description: "Up to 720p video", Args: []string{"-f", "bv*[height<=720]+ba/b[height<=720]", "--merge-output-format", "mp4"}},
	{Name: "audio-mp3", Description: "Audio only, mp3", Args: []string{"-f", "ba/b", "-x", "--audio-format", "mp3", "--audio-quality", "0"}},
	{Name: "audio-m4a", Description: "Audio only, m4a", Args: []string{"-f", "ba[ext=m4a]/ba/b", "-x", "--audio-format", "m4a"}},
}

var transcodePresets = []Preset{
	{Name: "mp4-h264", Description: "H.264 + AAC in mp4", Extension: "mp4", Args: []string{"-c:v", "libx264", "-preset", "medium", "-crf", "23", "-pix_fmt", "yuv420p", "-c:a", "aac", "-b:a", "160k", "-movflags", "+faststart"}},
	{Name: "mp4-h265", Description: "H.265 + AAC in mp4", Extension: "mp4", Args: []string{"-c:v", "libx265", "-preset", "medium", "-crf", "28", "-tag:v", "hvc1", "-c:a", "aac", "-b:a", "160k", "-movflags", "+faststart"}},
	{Name: "webm-vp9", Description: "VP9 + Opus in webm", Extension: "webm", Args: []string{"-c:v", "libvpx-vp9", "-crf", "32", "-b:v", "0", "-row-mt", "1", "-c:a", "libopus", "-b:a", "128k"}},
	{Name: "mov-prores", Description: "ProRes 422 HQ in mov", Extension: "mov", Args: []string{"-c:v", "prores_ks", "-profile:v", "3", "-pix_fmt", "yuv422p10le", "-c:a", "pcm_s16le"}},
	{Name: "mp3-320", Description: "Audio only, mp3 320k", Extension: "mp3", Args: []string{"-vn", "-c:a", "libmp3lame", "-b:a", "320k"}},
	{Name: "wav", Description: "Audio only, 16-bit PCM", Extension: "wav", Args: []string{"-vn", "-c:a", "pcm_s16le"}},
	{Name: "gif", Description: "Animated gif, 480px wide", Extension: "gif", Args: []string{"-vf", "fps=12,scale=480:-1:flags=lanczos", "-loop", "0", "-an"}},
	{Name: advancedPreset, Description: "H.264 with resolution, quality and audio options", Extension: "mp4"},
}

var imagePresets = []Preset{
	{Name: "png", Description: "Lossless png", Extension: "png"},
	{Name: "jpg", Description: "High quality jpeg", Extension: "jpg", Args: []string{"-quality", "92"}},
	{Name: "jpg-web", Description: "Web jpeg, max 1920px, stripped", Extension: "jpg", Args: []string{"-resize", "1920x1920>", "-strip", "-quality", "82"}},
	{Name: "webp", Description: "Lossy webp", Extension: "webp", Args: []string{"-quality", "85"}},
	{Name: "thumbnail", Description: "320px thumbnail jpeg", Extension: "jpg", Args: []string{"-thumbnail", "320x320>", "-strip", "-quality", "80"}},
	{Name: "grayscale", Description: "Grayscale png", Extension: "png", Args: []string{"-colorspace", "Gray"}},
}

var advancedHeights = map[string]string{
	"2160p": "2160",
	"1080p": "1080",
	"720p":  "720",
	"480p":  "480",
}

var advancedCRF = map[string]string{
	"high":   "18",
	"medium": "23",
	"low":    "28",
}

var advancedAudio = map[string][]string{
	"copy":    {"-c:a", "copy"},
	"aac-128": {"-c:a", "aac", "-b:a", "128k"},
	"aac-192": {"-c:a", "aac", "-b:a", "192k"},
	"aac-320": {"-c:a", "aac", "-b:a", "320k"},
	"none":    {"-an"},
}

// advancedArgs builds the H.264 argument set for the advanced preset. Unknown
// sub-option values fall back to their defaults.
func advancedArgs(opts Options) []string {
	var args []string
	if height, ok := advancedHeights[strings.ToLower(strings.TrimSpace(opts.Resolution))]; ok {
		args = append(args, "-vf", "scale=-2:"+height)
	}
	crf, ok := advancedCRF[strings.ToLower(strings.TrimSpace(opts.Quality))]
	if !ok {
		crf = advancedCRF["medium"]
	}
	args = append(args, "-c:v", "libx264", "-preset", "medium", "-crf", crf, "-pix_fmt", "yuv420p")
	audio, ok := advancedAudio[strings.ToLower(strings.TrimSpace(opts.Audio))]
	if !ok {
		audio = []string{"-c:a", "aac", "-b:a", "160k"}
	}
	args = append(args, audio...)
	return append(args, "-movflags", "+faststart")
}

func lookupPreset(presets []Preset, name string) (Preset, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, preset := range presets {
		if preset.Name == key {
			return preset, true
		}
	}
	return Preset{}, false
}
