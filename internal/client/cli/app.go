// Package cli wires the sender client: durable queue, staging store,
// compositor and API client, plus the command-line send entrypoint.
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/vibecast/vibecast/internal/client/api"
	"github.com/vibecast/vibecast/internal/client/config"
	"github.com/vibecast/vibecast/internal/client/db"
	"github.com/vibecast/vibecast/internal/client/queue"
	"github.com/vibecast/vibecast/internal/client/repositories/tasks"
	"github.com/vibecast/vibecast/internal/client/staging"
	"github.com/vibecast/vibecast/internal/client/transform"
	"github.com/vibecast/vibecast/internal/flagx"
	"github.com/vibecast/vibecast/internal/logging"
)

// sendFlags is one send described on the command line.
type sendFlags struct {
	to       string
	audio    string
	image    string
	video    string
	overlay  string
	duration float64
	silent   bool
	reply    string
	wait     bool
}

type App struct {
	config *config.Config
	logger logging.Logger
	conn   *sql.DB
	queue  *queue.Queue
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger := logging.NewSlogLogger(sl)

	conn, err := db.Open(ctx, cfg.QueueDBPath)
	if err != nil {
		return nil, fmt.Errorf("queue db init error: %w", err)
	}

	store := staging.New(cfg.StagingDir, logger)
	comp := transform.NewFFmpeg(cfg.FFmpegBin, logger)
	client := api.New(cfg.ServerBaseURL, cfg.RequestTimeout, logger)

	q := queue.New(tasks.NewSQLiteRepository(conn), store, comp, client, queue.Config{
		SenderID:            cfg.SenderID,
		SuccessCleanupDelay: cfg.SuccessCleanupDelay,
		ErrorCleanupDelay:   cfg.ErrorCleanupDelay,
		StaleAfter:          cfg.StaleAfter,
	}, logger)

	return &App{config: cfg, logger: logger, conn: conn, queue: q}, nil
}

// Run resumes interrupted tasks, performs the send described on the command
// line (if any), and blocks until every running task reached a terminal
// state.
func (app *App) Run(ctx context.Context) error {
	defer app.conn.Close()

	if err := app.queue.ResumeInterrupted(ctx); err != nil {
		return fmt.Errorf("resume error: %w", err)
	}

	sf, err := parseSendFlags()
	if err != nil {
		return err
	}

	if sf.to != "" {
		req := queue.SendRequest{
			ReceiverIDs:   splitReceivers(sf.to),
			AudioPath:     sf.audio,
			ImagePath:     sf.image,
			VideoPath:     sf.video,
			OverlayPath:   sf.overlay,
			AudioDuration: sf.duration,
			IsVideo:       sf.video != "",
			IsAudioOnly:   sf.image == "" && sf.video == "",
			ReplyToVibeID: sf.reply,
			IsSilent:      sf.silent,
		}

		if sf.wait {
			id, err := app.queue.SendNow(ctx, req)
			if err != nil {
				return fmt.Errorf("send %s failed: %w", id, err)
			}
			app.logger.Info(ctx, "batch sent", "task", id)
		} else {
			id, err := app.queue.Enqueue(ctx, req)
			if err != nil {
				return err
			}
			app.logger.Info(ctx, "batch enqueued", "task", id)
		}
	}

	app.queue.Wait()
	return nil
}

// parseSendFlags reads the per-invocation send flags. Config flags are
// handled separately by the config package; both sides use flagx.FilterArgs
// so they never trip over each other's flags.
func parseSendFlags() (*sendFlags, error) {
	known := []string{"-to", "-audio", "-image", "-video", "-overlay", "-duration", "-silent", "-reply", "-wait"}
	args := flagx.FilterArgs(os.Args[1:], known)

	sf := &sendFlags{}
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.StringVar(&sf.to, "to", "", "comma-separated receiver account IDs")
	fs.StringVar(&sf.audio, "audio", "", "audio file to send")
	fs.StringVar(&sf.image, "image", "", "photo to attach")
	fs.StringVar(&sf.video, "video", "", "video to attach")
	fs.StringVar(&sf.overlay, "overlay", "", "overlay composited onto the video")
	fs.Float64Var(&sf.duration, "duration", 0, "audio duration in seconds")
	fs.BoolVar(&sf.silent, "silent", false, "suppress the visible push")
	fs.StringVar(&sf.reply, "reply", "", "vibe ID this send replies to")
	fs.BoolVar(&sf.wait, "wait", false, "block until the send finished")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return sf, nil
}

func splitReceivers(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
