// Package vibes provides the PostgreSQL-backed repository for vibe
// records.
package vibes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vibecast/vibecast/internal/common"
	"github.com/vibecast/vibecast/internal/dbx"
	"github.com/vibecast/vibecast/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or
// *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, v *models.Vibe) (bool, error) {
	waveform, err := json.Marshal(v.WaveformData)
	if err != nil {
		return false, fmt.Errorf("marshal waveform: %w", err)
	}

	query := `
		INSERT INTO vibes (id, batch_id, sender_id, receiver_id,
			audio_url, image_url, video_url,
			audio_duration, waveform_data, is_video, is_audio_only,
			reply_to_vibe_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (batch_id, receiver_id) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query,
		v.ID, v.BatchID, v.SenderID, v.ReceiverID,
		v.AudioURL, v.ImageURL, v.VideoURL,
		v.AudioDuration, waveform, v.IsVideo, v.IsAudioOnly,
		nullable(v.ReplyToVibeID), v.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Vibe, error) {
	query := `
		SELECT id, batch_id, sender_id, receiver_id,
			audio_url, image_url, video_url,
			audio_duration, waveform_data, is_video, is_audio_only,
			COALESCE(reply_to_vibe_id, ''), played, deleted, created_at
		FROM vibes WHERE id=$1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	v, err := scanVibe(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select vibe: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) ListByReceiver(ctx context.Context, receiverID string, limit int) ([]*models.Vibe, error) {
	query := `
		SELECT id, batch_id, sender_id, receiver_id,
			audio_url, image_url, video_url,
			audio_duration, waveform_data, is_video, is_audio_only,
			COALESCE(reply_to_vibe_id, ''), played, deleted, created_at
		FROM vibes
		WHERE receiver_id=$1 AND deleted=false
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, receiverID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select vibes: %w", err)
	}
	defer rows.Close()

	var result []*models.Vibe
	for rows.Next() {
		v, err := scanVibe(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) MarkPlayed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE vibes SET played=true WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark vibe played: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanVibe(scan func(dest ...any) error) (*models.Vibe, error) {
	v := &models.Vibe{}
	var waveform []byte
	if err := scan(
		&v.ID, &v.BatchID, &v.SenderID, &v.ReceiverID,
		&v.AudioURL, &v.ImageURL, &v.VideoURL,
		&v.AudioDuration, &waveform, &v.IsVideo, &v.IsAudioOnly,
		&v.ReplyToVibeID, &v.Played, &v.Deleted, &v.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(waveform) > 0 {
		if err := json.Unmarshal(waveform, &v.WaveformData); err != nil {
			return nil, fmt.Errorf("unmarshal waveform: %w", err)
		}
	}
	return v, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
