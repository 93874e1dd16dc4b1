package engine

// Options carries engine-specific settings. The scheduler treats it as opaque.
type Options struct {
	Preset             string   `json:"preset,omitempty"`
	CookiesFile        string   `json:"cookies_file,omitempty"`
	CookiesFromBrowser string   `json:"cookies_from_browser,omitempty"`
	RateLimit          string   `json:"rate_limit,omitempty"`
	Proxy              string   `json:"proxy,omitempty"`
	Fragments          int      `json:"fragments,omitempty"`
	Resolution         string   `json:"resolution,omitempty"`
	Quality            string   `json:"quality,omitempty"`
	Audio              string   `json:"audio,omitempty"`
	ExtraArgs          []string `json:"extra_args,omitempty"`
}

// Clone returns a copy that shares no slices with the receiver.
func (o Options) Clone() Options {
	o.ExtraArgs = append([]string(nil), o.ExtraArgs...)
	return o
}

// Tools holds the executable path configured for each engine.
type Tools struct {
	YtDlp       string
	FFmpeg      string
	ImageMagick string
}
