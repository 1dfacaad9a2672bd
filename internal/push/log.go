package push

import (
	"context"

	"github.com/vibecast/vibecast/internal/logging"
)

// LogGateway logs messages instead of delivering them. Used when no FCM
// credentials are configured (local development).
type LogGateway struct {
	log logging.Logger
}

func NewLogGateway(log logging.Logger) *LogGateway {
	return &LogGateway{log: log.With("module", "push")}
}

func (g *LogGateway) Send(ctx context.Context, msg *Message) error {
	g.log.Info(ctx, "push (not delivered, no gateway configured)",
		"token", msg.Token, "silent", msg.Silent(), "title", msg.Title)
	return nil
}
