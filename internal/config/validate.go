package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateJobs(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateJobs() error {
	if c.Jobs.MaxConcurrent < 1 || c.Jobs.MaxConcurrent > maxConcurrentUpperBound {
		return fmt.Errorf("jobs.max_concurrent must be between 1 and %d", maxConcurrentUpperBound)
	}
	if c.Jobs.LogsTail < 1 || c.Jobs.LogsTail > maxLogsTailUpperBound {
		return fmt.Errorf("jobs.logs_tail must be between 1 and %d", maxLogsTailUpperBound)
	}
	if c.Jobs.HistoryLimit < 1 || c.Jobs.HistoryLimit > maxHistoryLimitUpperBound {
		return fmt.Errorf("jobs.history_limit must be between 1 and %d", maxHistoryLimitUpperBound)
	}
	return nil
}

func (c *Config) validateHistory() error {
	switch c.History.Backend {
	case HistoryBackendJSONL, HistoryBackendSQLite:
		return nil
	default:
		return fmt.Errorf("history.backend: unsupported value %q (expected %s or %s)", c.History.Backend, HistoryBackendJSONL, HistoryBackendSQLite)
	}
}

func (c *Config) validateEvents() error {
	if c.Events.RedisURL == "" {
		return nil
	}
	parsed, err := url.Parse(c.Events.RedisURL)
	if err != nil {
		return fmt.Errorf("events.redis_url: %w", err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "redis", "rediss", "unix":
		return nil
	default:
		return fmt.Errorf("events.redis_url: unsupported scheme %q", parsed.Scheme)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
