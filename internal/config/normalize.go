package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTools(); err != nil {
		return err
	}
	c.normalizeJobs()
	c.normalizeEvents()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.WorkflowRoot) == "" {
		if value, ok := os.LookupEnv(envWorkflowRoot); ok {
			c.Paths.WorkflowRoot = strings.TrimSpace(value)
		}
	}
	var err error
	if c.Paths.WorkflowRoot, err = expandPath(strings.TrimSpace(c.Paths.WorkflowRoot)); err != nil {
		return fmt.Errorf("paths.workflow_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv(envAPIToken); ok {
			c.Paths.APIToken = value
		}
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

// normalizeTools expands tool values that look like paths and leaves bare
// command names for PATH lookup.
func (c *Config) normalizeTools() error {
	fields := []struct {
		key   string
		value *string
		def   string
	}{
		{"tools.ytdlp", &c.Tools.YtDlp, defaultYtDlp},
		{"tools.ffmpeg", &c.Tools.FFmpeg, defaultFFmpeg},
		{"tools.imagemagick", &c.Tools.ImageMagick, defaultImageMagick},
	}
	for _, field := range fields {
		value := strings.TrimSpace(*field.value)
		if value == "" {
			value = field.def
		}
		if strings.HasPrefix(value, "~") || strings.ContainsAny(value, `/\`) {
			expanded, err := expandPath(value)
			if err != nil {
				return fmt.Errorf("%s: %w", field.key, err)
			}
			value = expanded
		}
		*field.value = value
	}
	return nil
}

func (c *Config) normalizeJobs() {
	if c.Jobs.MaxConcurrent == 0 {
		c.Jobs.MaxConcurrent = defaultMaxConcurrent
	}
	if c.Jobs.LogsTail == 0 {
		c.Jobs.LogsTail = defaultLogsTail
	}
	if c.Jobs.HistoryLimit == 0 {
		c.Jobs.HistoryLimit = defaultHistoryLimit
	}
}

func (c *Config) normalizeEvents() {
	if c.Events.RedisURL == "" {
		if value, ok := os.LookupEnv(envRedisURL); ok {
			c.Events.RedisURL = value
		}
	}
	c.Events.RedisURL = strings.TrimSpace(c.Events.RedisURL)
	c.Events.RedisChannel = strings.TrimSpace(c.Events.RedisChannel)
	if c.Events.RedisChannel == "" {
		c.Events.RedisChannel = defaultRedisChannel
	}
}

func (c *Config) normalizeNotifications() {
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv(envNtfyTopic); ok {
			c.Notifications.NtfyTopic = value
		}
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.History.Backend = strings.ToLower(strings.TrimSpace(c.History.Backend))
	if c.History.Backend == "" {
		c.History.Backend = defaultHistoryBackend
	}
}
