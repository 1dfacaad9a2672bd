package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vibecast/vibecast/internal/client/models"
	"github.com/vibecast/vibecast/internal/common"
	"github.com/vibecast/vibecast/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX (*sql.DB or *sql.Tx).
// Each row holds the task's JSON document plus indexed status/created_at
// columns for the restart-resume query.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, task *models.UploadTask) error {
	doc, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", task.ID, err)
	}

	query := `INSERT INTO upload_tasks (id, doc, status, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET doc = excluded.doc,
				status = excluded.status
	`
	if _, err := r.db.ExecContext(ctx, query, task.ID, string(doc), int(task.Status), task.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert task: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM upload_tasks WHERE id=?`, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.UploadTask, error) {
	row := r.db.QueryRowContext(ctx, `SELECT doc FROM upload_tasks WHERE id=?`, id)

	var doc string
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select task: %w", err)
	}
	return unmarshalTask(doc)
}

func (r *SQLiteRepository) GetInterrupted(ctx context.Context) ([]*models.UploadTask, error) {
	query := `SELECT doc FROM upload_tasks WHERE status IN (?, ?) ORDER BY created_at`
	return r.selectTasks(ctx, query, int(models.StatusProcessing), int(models.StatusUploading))
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.UploadTask, error) {
	return r.selectTasks(ctx, `SELECT doc FROM upload_tasks ORDER BY created_at`)
}

func (r *SQLiteRepository) selectTasks(ctx context.Context, query string, args ...any) ([]*models.UploadTask, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	var result []*models.UploadTask
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		task, err := unmarshalTask(doc)
		if err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func unmarshalTask(doc string) (*models.UploadTask, error) {
	task := &models.UploadTask{}
	if err := json.Unmarshal([]byte(doc), task); err != nil {
		return nil, fmt.Errorf("unmarshal task document: %w", err)
	}
	return task, nil
}
