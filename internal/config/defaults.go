package config

const (
	defaultLogDir             = "~/.local/share/mediajobs/logs"
	defaultAPIBind            = "127.0.0.1:7488"
	defaultYtDlp              = "yt-dlp"
	defaultFFmpeg             = "ffmpeg"
	defaultImageMagick        = "magick"
	defaultMaxConcurrent      = 2
	defaultLogsTail           = 50
	defaultHistoryLimit       = 50
	defaultHistoryBackend     = HistoryBackendJSONL
	defaultRedisChannel       = "mediajobs:events"
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultConfigPath         = "~/.config/mediajobs/config.toml"
	projectConfigName         = "mediajobs.toml"
	envWorkflowRoot           = "MEDIAJOBS_WORKFLOW_ROOT"
	envAPIToken               = "MEDIAJOBS_API_TOKEN"
	envRedisURL               = "MEDIAJOBS_REDIS_URL"
	envNtfyTopic              = "MEDIAJOBS_NTFY_TOPIC"
	maxConcurrentUpperBound   = 64
	maxLogsTailUpperBound     = 1000
	maxHistoryLimitUpperBound = 10000
)

// History backends understood by the history store.
const (
	HistoryBackendJSONL  = "jsonl"
	HistoryBackendSQLite = "sqlite"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Tools: Tools{
			YtDlp:       defaultYtDlp,
			FFmpeg:      defaultFFmpeg,
			ImageMagick: defaultImageMagick,
		},
		Jobs: Jobs{
			MaxConcurrent: defaultMaxConcurrent,
			LogsTail:      defaultLogsTail,
			HistoryLimit:  defaultHistoryLimit,
		},
		History: History{
			Backend: defaultHistoryBackend,
		},
		Events: Events{
			RedisChannel: defaultRedisChannel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			OnSuccess:      true,
			OnError:        true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
