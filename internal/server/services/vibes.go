package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vibecast/vibecast/internal/logging"
	"github.com/vibecast/vibecast/internal/server/models"
	"github.com/vibecast/vibecast/internal/server/repositories/repomanager"
)

// defaultVibeListLimit bounds unpaginated receiver history reads.
const defaultVibeListLimit = 50

// VibeService serves the read side of delivered vibes: single-record
// lookup, per-receiver history, and the played flag.
type VibeService struct {
	db  *sql.DB
	rm  repomanager.RepositoryManager
	log logging.Logger
}

func NewVibeService(db *sql.DB, rm repomanager.RepositoryManager, log logging.Logger) *VibeService {
	return &VibeService{
		db:  db,
		rm:  rm,
		log: log.With("module", "vibes"),
	}
}

// Get returns one vibe record, or common.ErrNotFound.
func (s *VibeService) Get(ctx context.Context, id string) (*models.Vibe, error) {
	return s.rm.Vibes(s.db).GetByID(ctx, id)
}

// ListByReceiver returns the receiver's vibes, newest first. A non-positive
// limit falls back to the default page size.
func (s *VibeService) ListByReceiver(ctx context.Context, receiverID string, limit int) ([]*models.Vibe, error) {
	if receiverID == "" {
		return nil, fmt.Errorf("receiver id is required")
	}
	if limit <= 0 {
		limit = defaultVibeListLimit
	}
	return s.rm.Vibes(s.db).ListByReceiver(ctx, receiverID, limit)
}

// MarkPlayed flags the vibe as played, or returns common.ErrNotFound.
func (s *VibeService) MarkPlayed(ctx context.Context, id string) error {
	if err := s.rm.Vibes(s.db).MarkPlayed(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "vibe played", "vibe", id)
	return nil
}
