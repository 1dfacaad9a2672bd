package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vibecast/vibecast/internal/feed"
	"github.com/vibecast/vibecast/internal/logging"
	"github.com/vibecast/vibecast/internal/server/models"
	"github.com/vibecast/vibecast/internal/server/repositories/repomanager"
	"github.com/vibecast/vibecast/internal/wire"
)

// NudgeService records lightweight signals and publishes their creation to
// the change feed.
type NudgeService struct {
	db  *sql.DB
	rm  repomanager.RepositoryManager
	pub feed.Publisher
	log logging.Logger
	now func() time.Time
}

func NewNudgeService(db *sql.DB, rm repomanager.RepositoryManager, pub feed.Publisher, log logging.Logger) *NudgeService {
	return &NudgeService{
		db:  db,
		rm:  rm,
		pub: pub,
		log: log.With("module", "nudges"),
		now: time.Now,
	}
}

// Create stores the nudge and publishes a nudge_created event.
func (s *NudgeService) Create(ctx context.Context, req *wire.NudgeRequest) (*models.Nudge, error) {
	if req.SenderID == "" || req.ReceiverID == "" {
		return nil, fmt.Errorf("sender and receiver are required")
	}

	sender, err := s.rm.Accounts(s.db).Get(ctx, req.SenderID)
	if err != nil {
		return nil, fmt.Errorf("load sender %s: %w", req.SenderID, err)
	}

	nudge := &models.Nudge{
		ID:         uuid.NewString(),
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		CreatedAt:  s.now(),
	}
	if err := s.rm.Nudges(s.db).Create(ctx, nudge); err != nil {
		return nil, fmt.Errorf("create nudge: %w", err)
	}

	ev, err := feed.NewEvent(feed.EventNudgeCreated, &feed.NudgeCreated{
		NudgeID:    nudge.ID,
		SenderID:   sender.ID,
		SenderName: sender.DisplayName,
		ReceiverID: nudge.ReceiverID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.log.Error(ctx, "event publish failed", "nudge", nudge.ID, "error", err)
	}
	return nudge, nil
}
