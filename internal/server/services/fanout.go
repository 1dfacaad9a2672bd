// Package services implements the server-side services: fan-out ingest,
// presigned uploads, and nudges.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vibecast/vibecast/internal/common"
	"github.com/vibecast/vibecast/internal/dbx"
	"github.com/vibecast/vibecast/internal/feed"
	"github.com/vibecast/vibecast/internal/logging"
	"github.com/vibecast/vibecast/internal/server/models"
	"github.com/vibecast/vibecast/internal/server/repositories/repomanager"
	"github.com/vibecast/vibecast/internal/wire"
)

// FanoutService turns one batch request into N independent per-receiver
// vibe records plus widget-state writes, and publishes a change event for
// each committed mutation.
type FanoutService struct {
	db  *sql.DB
	rm  repomanager.RepositoryManager
	pub feed.Publisher
	log logging.Logger
	now func() time.Time
}

// NewFanoutService wires the service.
func NewFanoutService(db *sql.DB, rm repomanager.RepositoryManager, pub feed.Publisher, log logging.Logger) *FanoutService {
	return &FanoutService{
		db:  db,
		rm:  rm,
		pub: pub,
		log: log.With("module", "fanout"),
		now: time.Now,
	}
}

// Record writes one vibe record per receiver under the shared batch ID.
// Receivers are independent: a failure for one is reported in its result
// but never retracts records already committed for others. The
// (batch, receiver) pair is the idempotency key, so re-submitting a batch —
// e.g. after a client restart mid-upload — re-attempts only receivers that
// were never recorded and re-notifies nobody else.
func (s *FanoutService) Record(ctx context.Context, req *wire.BatchRequest) (*wire.BatchResult, error) {
	if req.BatchID == "" || req.SenderID == "" {
		return nil, fmt.Errorf("batch id and sender id are required")
	}
	if len(req.ReceiverIDs) == 0 {
		return nil, fmt.Errorf("batch %s has no receivers", req.BatchID)
	}

	sender, err := s.rm.Accounts(s.db).Get(ctx, req.SenderID)
	if err != nil {
		return nil, fmt.Errorf("load sender %s: %w", req.SenderID, err)
	}

	result := &wire.BatchResult{BatchID: req.BatchID, OK: true}
	timestamp := s.now().UnixMilli()

	for _, receiverID := range req.ReceiverIDs {
		events, err := s.recordOne(ctx, req, sender, receiverID, timestamp)
		if err != nil {
			s.log.Error(ctx, "receiver fan-out failed",
				"batch", req.BatchID, "receiver", receiverID, "error", err)
			result.OK = false
			result.Receivers = append(result.Receivers, wire.ReceiverResult{
				ReceiverID: receiverID,
				Error:      common.ErrInternal.Error(),
			})
			continue
		}

		// Publish only after the receiver's transaction committed. A lost
		// event is tolerable: the next mutation re-triggers dispatch.
		for _, ev := range events {
			if err := s.pub.Publish(ctx, ev); err != nil {
				s.log.Error(ctx, "event publish failed",
					"batch", req.BatchID, "receiver", receiverID, "type", ev.Type, "error", err)
			}
		}
		result.Receivers = append(result.Receivers, wire.ReceiverResult{ReceiverID: receiverID, OK: true})
	}
	return result, nil
}

// recordOne commits one receiver's vibe record and widget-state write in a
// single transaction and returns the events to publish.
func (s *FanoutService) recordOne(ctx context.Context, req *wire.BatchRequest, sender *models.Account, receiverID string, timestamp int64) ([]feed.Event, error) {
	var events []feed.Event

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		vibe := &models.Vibe{
			ID:            uuid.NewString(),
			BatchID:       req.BatchID,
			SenderID:      req.SenderID,
			ReceiverID:    receiverID,
			AudioURL:      req.AudioURL,
			ImageURL:      req.ImageURL,
			VideoURL:      req.VideoURL,
			AudioDuration: req.AudioDuration,
			WaveformData:  req.WaveformData,
			IsVideo:       req.IsVideo,
			IsAudioOnly:   req.IsAudioOnly,
			ReplyToVibeID: req.ReplyToVibeID,
			CreatedAt:     s.now(),
		}

		created, err := s.rm.Vibes(tx).Create(ctx, vibe)
		if err != nil {
			return err
		}
		if !created {
			// Already recorded by an earlier attempt of the same batch.
			// Leave the widget state alone so no duplicate push goes out.
			return nil
		}

		state := &models.WidgetState{
			ReceiverID:    receiverID,
			VibeID:        vibe.ID,
			SenderID:      sender.ID,
			SenderName:    sender.DisplayName,
			SenderAvatar:  sender.AvatarURL,
			AudioURL:      req.AudioURL,
			ImageURL:      WidgetImageURL(req.ImageURL),
			VideoURL:      req.VideoURL,
			AudioDuration: req.AudioDuration,
			Preview:       Preview(req.Transcription),
			Distance:      req.Distance,
			IsVideo:       req.IsVideo,
			IsAudioOnly:   req.IsAudioOnly,
			Timestamp:     timestamp,
		}

		prev, updated, err := s.rm.Widgets(tx).Upsert(ctx, state)
		if err != nil {
			return err
		}

		// Silent sends produce no visible notification; only the widget
		// refresh below goes out.
		if !req.IsSilent {
			createdEv, err := feed.NewEvent(feed.EventVibeCreated, &feed.VibeCreated{
				VibeID:     vibe.ID,
				SenderID:   sender.ID,
				SenderName: sender.DisplayName,
				ReceiverID: receiverID,
			})
			if err != nil {
				return err
			}
			events = append(events, createdEv)
		}

		if updated {
			changedEv, err := feed.NewEvent(feed.EventWidgetChanged, &feed.WidgetChanged{
				ReceiverID:    receiverID,
				VibeID:        state.VibeID,
				SenderID:      state.SenderID,
				SenderName:    state.SenderName,
				SenderAvatar:  state.SenderAvatar,
				AudioURL:      state.AudioURL,
				ImageURL:      state.ImageURL,
				VideoURL:      state.VideoURL,
				AudioDuration: state.AudioDuration,
				Preview:       state.Preview,
				Distance:      state.Distance,
				IsVideo:       state.IsVideo,
				IsAudioOnly:   state.IsAudioOnly,
				Timestamp:     state.Timestamp,
				PrevTimestamp: prev,
			})
			if err != nil {
				return err
			}
			events = append(events, changedEv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
