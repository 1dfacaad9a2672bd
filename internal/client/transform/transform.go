// Package transform runs client-side media transforms. Today that is one
// operation: compositing a transient visual overlay onto raw video before
// upload. The pipeline awaits the result; there are no fire-and-forget
// callbacks.
package transform

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/vibecast/vibecast/internal/logging"
)

// Compositor produces a single output video from a raw video and an overlay
// image. outPath is where the result must be written; implementations
// return the path actually produced.
type Compositor interface {
	Compose(ctx context.Context, videoPath, overlayPath, outPath string) (string, error)
}

// FFmpeg composites with the ffmpeg binary. Re-running the same inputs is
// idempotent: the output is rewritten in place.
type FFmpeg struct {
	bin string
	log logging.Logger
}

// NewFFmpeg returns a compositor using the given ffmpeg binary ("ffmpeg"
// if empty).
func NewFFmpeg(bin string, log logging.Logger) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{bin: bin, log: log.With("module", "transform")}
}

func (f *FFmpeg) Compose(ctx context.Context, videoPath, overlayPath, outPath string) (string, error) {
	cmd := exec.CommandContext(ctx, f.bin,
		"-y",
		"-i", videoPath,
		"-i", overlayPath,
		"-filter_complex", "[0:v][1:v]overlay=0:0",
		"-c:a", "copy",
		outPath,
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		f.log.Error(ctx, "ffmpeg failed", "video", videoPath, "output", string(out))
		return "", fmt.Errorf("compose video: %w", err)
	}
	return outPath, nil
}
