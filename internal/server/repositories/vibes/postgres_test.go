package vibes

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/vibecast/vibecast/internal/common"
	"github.com/vibecast/vibecast/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func sampleVibe() *models.Vibe {
	return &models.Vibe{
		ID:            "v1",
		BatchID:       "b1",
		SenderID:      "s1",
		ReceiverID:    "r1",
		AudioURL:      "https://media.test/a.m4a",
		AudioDuration: 4.2,
		WaveformData:  []float64{0.1, 0.9},
		IsAudioOnly:   true,
		CreatedAt:     time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

const insertPattern = `INSERT INTO vibes .* ON CONFLICT \(batch_id, receiver_id\) DO NOTHING;`

func TestCreate_NewRecord(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	v := sampleVibe()
	mock.ExpectExec(insertPattern).
		WithArgs(
			v.ID, v.BatchID, v.SenderID, v.ReceiverID,
			v.AudioURL, v.ImageURL, v.VideoURL,
			v.AudioDuration, []byte(`[0.1,0.9]`), v.IsVideo, v.IsAudioOnly,
			nil, v.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.Create(context.Background(), v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("want created=true for a fresh (batch, receiver) pair")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DuplicateBatchReceiverIsNoOp(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	v := sampleVibe()
	mock.ExpectExec(insertPattern).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.Create(context.Background(), v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatal("want created=false when the row already exists")
	}
}

func TestCreate_ReplyToTravelsAsNull(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	v := sampleVibe()
	v.ReplyToVibeID = "v0"
	mock.ExpectExec(insertPattern).
		WithArgs(
			v.ID, v.BatchID, v.SenderID, v.ReceiverID,
			v.AudioURL, v.ImageURL, v.VideoURL,
			v.AudioDuration, []byte(`[0.1,0.9]`), v.IsVideo, v.IsAudioOnly,
			"v0", v.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if _, err := repo.Create(context.Background(), v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM vibes WHERE id=\$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestGetByID_ScansWaveform(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"id", "batch_id", "sender_id", "receiver_id",
		"audio_url", "image_url", "video_url",
		"audio_duration", "waveform_data", "is_video", "is_audio_only",
		"reply_to_vibe_id", "played", "deleted", "created_at",
	}).AddRow("v1", "b1", "s1", "r1", "a", "", "", 4.2, []byte(`[0.1,0.9]`), false, true, "", false, false, time.Now())

	mock.ExpectQuery(`SELECT .* FROM vibes WHERE id=\$1`).
		WithArgs("v1").
		WillReturnRows(rows)

	v, err := repo.GetByID(context.Background(), "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.WaveformData) != 2 || v.WaveformData[1] != 0.9 {
		t.Fatalf("waveform not decoded: %+v", v.WaveformData)
	}
}

func TestMarkPlayed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE vibes SET played=true WHERE id=\$1`).
		WithArgs("v1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkPlayed(context.Background(), "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarkPlayed_MissingVibe(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE vibes SET played=true WHERE id=\$1`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkPlayed(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
