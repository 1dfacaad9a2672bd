package config

import (
	"encoding/json"
	"os"

	"github.com/vibecast/vibecast/internal/flagx"
	"github.com/vibecast/vibecast/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds. Zero values leave the current Config untouched.
type JsonConfig struct {
	ServerBaseURL string `json:"server_base_url"`
	SenderID      string `json:"sender_id"`
	QueueDBPath   string `json:"queue_db_path"`
	StagingDir    string `json:"staging_dir"`
	FFmpegBin     string `json:"ffmpeg_bin"`

	RequestTimeout      timex.Duration `json:"request_timeout"`
	SuccessCleanupDelay timex.Duration `json:"success_cleanup_delay"`
	ErrorCleanupDelay   timex.Duration `json:"error_cleanup_delay"`
	StaleAfter          timex.Duration `json:"stale_after"`
}

// parseJson overlays Config with values loaded from a JSON file resolved
// via the -c / -config flags. Missing file path means no overlay. Read or
// unmarshal errors panic (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.SenderID != "" {
		cfg.SenderID = jc.SenderID
	}
	if jc.QueueDBPath != "" {
		cfg.QueueDBPath = jc.QueueDBPath
	}
	if jc.StagingDir != "" {
		cfg.StagingDir = jc.StagingDir
	}
	if jc.FFmpegBin != "" {
		cfg.FFmpegBin = jc.FFmpegBin
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SuccessCleanupDelay.Duration != 0 {
		cfg.SuccessCleanupDelay = jc.SuccessCleanupDelay.Duration
	}
	if jc.ErrorCleanupDelay.Duration != 0 {
		cfg.ErrorCleanupDelay = jc.ErrorCleanupDelay.Duration
	}
	if jc.StaleAfter.Duration != 0 {
		cfg.StaleAfter = jc.StaleAfter.Duration
	}
}
