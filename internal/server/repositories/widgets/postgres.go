// Package widgets provides the PostgreSQL-backed repository for the
// per-receiver widget read model.
package widgets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vibecast/vibecast/internal/common"
	"github.com/vibecast/vibecast/internal/dbx"
	"github.com/vibecast/vibecast/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, receiverID string) (*models.WidgetState, error) {
	query := `
		SELECT receiver_id, vibe_id, sender_id, sender_name, sender_avatar,
			audio_url, image_url, video_url,
			audio_duration, preview, distance, is_video, is_audio_only, timestamp_ms
		FROM widget_states WHERE receiver_id=$1
	`
	row := r.db.QueryRowContext(ctx, query, receiverID)

	s := &models.WidgetState{}
	err := row.Scan(
		&s.ReceiverID, &s.VibeID, &s.SenderID, &s.SenderName, &s.SenderAvatar,
		&s.AudioURL, &s.ImageURL, &s.VideoURL,
		&s.AudioDuration, &s.Preview, &s.Distance, &s.IsVideo, &s.IsAudioOnly, &s.Timestamp,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select widget state: %w", err)
	}
	return s, nil
}

// Upsert reads the stored timestamp, then writes the new state only if it
// is strictly newer. Run it inside the same transaction as the vibe insert
// so the receiver's record and read model move together.
func (r *PostgresRepository) Upsert(ctx context.Context, state *models.WidgetState) (int64, bool, error) {
	var prev int64
	err := r.db.QueryRowContext(ctx,
		`SELECT timestamp_ms FROM widget_states WHERE receiver_id=$1`, state.ReceiverID).Scan(&prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to read widget timestamp: %w", err)
	}

	query := `
		INSERT INTO widget_states (receiver_id, vibe_id, sender_id, sender_name, sender_avatar,
			audio_url, image_url, video_url,
			audio_duration, preview, distance, is_video, is_audio_only, timestamp_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (receiver_id) DO UPDATE SET
			vibe_id = EXCLUDED.vibe_id,
			sender_id = EXCLUDED.sender_id,
			sender_name = EXCLUDED.sender_name,
			sender_avatar = EXCLUDED.sender_avatar,
			audio_url = EXCLUDED.audio_url,
			image_url = EXCLUDED.image_url,
			video_url = EXCLUDED.video_url,
			audio_duration = EXCLUDED.audio_duration,
			preview = EXCLUDED.preview,
			distance = EXCLUDED.distance,
			is_video = EXCLUDED.is_video,
			is_audio_only = EXCLUDED.is_audio_only,
			timestamp_ms = EXCLUDED.timestamp_ms
		WHERE widget_states.timestamp_ms < EXCLUDED.timestamp_ms;
	`
	res, err := r.db.ExecContext(ctx, query,
		state.ReceiverID, state.VibeID, state.SenderID, state.SenderName, state.SenderAvatar,
		state.AudioURL, state.ImageURL, state.VideoURL,
		state.AudioDuration, state.Preview, state.Distance, state.IsVideo, state.IsAudioOnly, state.Timestamp)
	if err != nil {
		return 0, false, fmt.Errorf("failed to upsert widget state: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("rows affected error: %w", err)
	}
	return prev, n == 1, nil
}
