// Package config handles configuration for the sender client, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the Vibecast sender client.
//
// Fields:
//   - ServerBaseURL: base URL of the Vibecast HTTP API.
//   - SenderID: account identifier stamped on every batch.
//   - QueueDBPath: SQLite file backing the durable upload queue.
//   - StagingDir: root of the task-scoped staging store.
//   - FFmpegBin: ffmpeg binary used for video compositing.
//   - RequestTimeout: per-request network timeout.
//   - SuccessCleanupDelay / ErrorCleanupDelay: display windows before a
//     terminal task and its staged files are purged.
//   - StaleAfter: interrupted tasks older than this are failed on restart
//     instead of resumed.
type Config struct {
	ServerBaseURL string
	SenderID      string
	QueueDBPath   string
	StagingDir    string
	FFmpegBin     string

	RequestTimeout      time.Duration
	SuccessCleanupDelay time.Duration
	ErrorCleanupDelay   time.Duration
	StaleAfter          time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.SenderID = "local"
	c.QueueDBPath = "vibecast.db"
	c.StagingDir = "staging"
	c.FFmpegBin = "ffmpeg"
	c.RequestTimeout = 30 * time.Second
	c.SuccessCleanupDelay = 3 * time.Second
	c.ErrorCleanupDelay = 30 * time.Second
	c.StaleAfter = 24 * time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
