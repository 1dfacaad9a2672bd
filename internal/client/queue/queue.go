// Package queue implements the durable upload task queue: restart-safe
// orchestration of one send operation from creation to terminal state.
//
// The persisted snapshot (tasks.Repository) is the single source of truth;
// everything in memory is a cache rebuilt from it on restart. Every state
// transition is persisted synchronously before work continues, so an
// interrupted pipeline can resume from its last known state. Each step is
// idempotent at task granularity: re-running a transform or an upload is
// acceptable, and double-creating message records is prevented server-side
// by the batch idempotency key (the task ID).
package queue

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vibecast/vibecast/internal/client/models"
	"github.com/vibecast/vibecast/internal/client/repositories/tasks"
	"github.com/vibecast/vibecast/internal/client/staging"
	"github.com/vibecast/vibecast/internal/client/transform"
	"github.com/vibecast/vibecast/internal/common"
	"github.com/vibecast/vibecast/internal/filex"
	"github.com/vibecast/vibecast/internal/logging"
	"github.com/vibecast/vibecast/internal/wire"
)

// Sender is the network side of the pipeline: presigned-upload slots, the
// upload itself, and the fan-out ingest call.
type Sender interface {
	CreateUpload(ctx context.Context, role, contentType string) (*wire.UploadSlot, error)
	Upload(ctx context.Context, slot *wire.UploadSlot, path, contentType string) error
	CreateBatch(ctx context.Context, req *wire.BatchRequest) (*wire.BatchResult, error)
}

// Config carries queue tuning.
type Config struct {
	// SenderID identifies the local account in batch requests.
	SenderID string

	// SuccessCleanupDelay is the display window before a succeeded task and
	// its staged files are purged.
	SuccessCleanupDelay time.Duration

	// ErrorCleanupDelay is the (longer) display window for failed tasks.
	ErrorCleanupDelay time.Duration

	// StaleAfter bounds restart-resume: an interrupted task older than this
	// is failed instead of retried.
	StaleAfter time.Duration
}

// SendRequest describes one send before staging. All paths are caller-owned;
// the queue copies them into the staging store before returning.
type SendRequest struct {
	ReceiverIDs []string

	AudioPath   string
	ImagePath   string
	VideoPath   string
	OverlayPath string

	AudioDuration float64
	WaveformData  []float64
	IsVideo       bool
	IsAudioOnly   bool
	IsFromGallery bool

	OriginalPhotoDate *time.Time
	ReplyToVibeID     string
	IsSilent          bool
}

// Queue drives upload tasks. One Queue instance owns the persisted snapshot;
// callers inject it into whatever drives the pipeline.
type Queue struct {
	repo   tasks.Repository
	store  *staging.Store
	comp   transform.Compositor
	sender Sender
	cfg    Config
	log    logging.Logger

	mu       sync.Mutex
	active   map[string]struct{}
	snapshot map[string]models.UploadTask

	wg  sync.WaitGroup
	now func() time.Time
}

// New returns a Queue ready to accept work.
func New(repo tasks.Repository, store *staging.Store, comp transform.Compositor, sender Sender, cfg Config, log logging.Logger) *Queue {
	return &Queue{
		repo:     repo,
		store:    store,
		comp:     comp,
		sender:   sender,
		cfg:      cfg,
		log:      log.With("module", "queue"),
		active:   make(map[string]struct{}),
		snapshot: make(map[string]models.UploadTask),
		now:      time.Now,
	}
}

// Enqueue stages the request's media, persists a new task in processing
// state and starts its pipeline in the background. It returns the task ID,
// which doubles as the batch identifier downstream.
func (q *Queue) Enqueue(ctx context.Context, req SendRequest) (string, error) {
	task, err := q.createTask(ctx, req)
	if err != nil {
		return "", err
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.run(context.WithoutCancel(ctx), task)
	}()
	return task.ID, nil
}

// SendNow drives a task to completion synchronously, for flows that need
// immediate success/failure feedback. The state machine is identical to the
// background path.
func (q *Queue) SendNow(ctx context.Context, req SendRequest) (string, error) {
	task, err := q.createTask(ctx, req)
	if err != nil {
		return "", err
	}

	q.run(ctx, task)
	if task.Status == models.StatusError {
		return task.ID, fmt.Errorf("send failed: %s", task.Error)
	}
	return task.ID, nil
}

// ResumeInterrupted restarts the pipeline for every persisted task found in
// a non-terminal state, purges terminal rows whose display window has
// passed, and sweeps staging directories that no longer belong to any
// persisted task.
func (q *Queue) ResumeInterrupted(ctx context.Context) error {
	interrupted, err := q.repo.GetInterrupted(ctx)
	if err != nil {
		return fmt.Errorf("load interrupted tasks: %w", err)
	}

	keep := make(map[string]struct{}, len(interrupted))
	for _, task := range interrupted {
		if q.now().Sub(task.CreatedAt) > q.cfg.StaleAfter {
			q.log.Warn(ctx, "dropping stale interrupted task", "task", task.ID, "status", task.Status.String())
			q.finishError(ctx, task, MsgGeneric, fmt.Errorf("task older than %s", q.cfg.StaleAfter))
			keep[task.ID] = struct{}{}
			continue
		}

		q.log.Info(ctx, "resuming interrupted task", "task", task.ID, "status", task.Status.String())
		q.remember(task)
		keep[task.ID] = struct{}{}
		q.wg.Add(1)
		go func(t *models.UploadTask) {
			defer q.wg.Done()
			q.run(context.WithoutCancel(ctx), t)
		}(task)
	}

	if err := q.sweepTerminal(ctx, keep); err != nil {
		return err
	}
	q.sweepStaging(ctx, keep)
	return nil
}

// sweepTerminal purges persisted error rows whose display window has
// passed and re-remembers the rest. Tasks already handled by the resume
// pass are left alone.
func (q *Queue) sweepTerminal(ctx context.Context, keep map[string]struct{}) error {
	all, err := q.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load persisted tasks: %w", err)
	}

	for _, task := range all {
		if _, ok := keep[task.ID]; ok {
			continue
		}
		if task.Status != models.StatusError {
			continue
		}
		if q.now().Sub(task.CreatedAt) > q.cfg.ErrorCleanupDelay {
			q.purge(ctx, task.ID)
			continue
		}
		q.remember(task)
		keep[task.ID] = struct{}{}
	}
	return nil
}

// Wait blocks until every running pipeline has reached a terminal state.
// Deferred cleanup timers are not waited on; restart sweeps cover them.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// Tasks returns a snapshot of tasks currently known to the queue, including
// terminal ones still inside their display window.
func (q *Queue) Tasks() []models.UploadTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.UploadTask, 0, len(q.snapshot))
	for _, t := range q.snapshot {
		out = append(out, t)
	}
	return out
}

func (q *Queue) createTask(ctx context.Context, req SendRequest) (*models.UploadTask, error) {
	if len(req.ReceiverIDs) == 0 {
		return nil, fmt.Errorf("send request has no receivers")
	}

	id := uuid.NewString()
	task := &models.UploadTask{
		ID:                id,
		ReceiverIDs:       req.ReceiverIDs,
		AudioPath:         q.store.Stage(ctx, req.AudioPath, id, staging.RoleAudio),
		ImagePath:         q.store.Stage(ctx, req.ImagePath, id, staging.RoleImage),
		VideoPath:         q.store.Stage(ctx, req.VideoPath, id, staging.RoleVideo),
		OverlayPath:       q.store.Stage(ctx, req.OverlayPath, id, staging.RoleOverlay),
		AudioDuration:     req.AudioDuration,
		WaveformData:      req.WaveformData,
		IsVideo:           req.IsVideo,
		IsAudioOnly:       req.IsAudioOnly,
		IsFromGallery:     req.IsFromGallery,
		OriginalPhotoDate: req.OriginalPhotoDate,
		ReplyToVibeID:     req.ReplyToVibeID,
		Status:            models.StatusProcessing,
		CreatedAt:         q.now(),
		IsSilent:          req.IsSilent,
	}

	if err := q.repo.Save(ctx, task); err != nil {
		_ = q.store.Cleanup(id)
		return nil, fmt.Errorf("persist new task: %w", err)
	}
	q.remember(task)
	return task, nil
}

// run executes the pipeline under the per-task active guard. At most one
// pipeline runs per task ID within the process; a restart-resume pass and a
// fresh caller request can never execute the same task concurrently.
func (q *Queue) run(ctx context.Context, task *models.UploadTask) {
	if !q.acquire(task.ID) {
		q.log.Warn(ctx, "task already active, skipping", "task", task.ID)
		return
	}
	defer q.release(task.ID)

	if task.Status.Terminal() {
		return
	}

	if err := q.pipeline(ctx, task); err != nil {
		q.finishError(ctx, task, ClassifyError(err), err)
		return
	}
	q.finishSuccess(ctx, task)
}

func (q *Queue) pipeline(ctx context.Context, task *models.UploadTask) error {
	if task.Status == models.StatusProcessing {
		if task.NeedsTransform() {
			out, err := q.store.Place(task.ID, "composed.mp4")
			if err != nil {
				return err
			}
			composed, err := q.comp.Compose(ctx, task.VideoPath, task.OverlayPath, out)
			if err != nil {
				return fmt.Errorf("transform: %w", err)
			}
			task.VideoPath = composed
			task.OverlayPath = ""
		}
		if err := q.transition(ctx, task, models.StatusUploading); err != nil {
			return err
		}
	}

	if err := q.validate(ctx, task); err != nil {
		return err
	}

	urls, err := q.uploadMedia(ctx, task)
	if err != nil {
		return err
	}

	res, err := q.sender.CreateBatch(ctx, &wire.BatchRequest{
		BatchID:       task.ID,
		SenderID:      q.cfg.SenderID,
		ReceiverIDs:   task.ReceiverIDs,
		AudioURL:      urls.audio,
		ImageURL:      urls.image,
		VideoURL:      urls.video,
		AudioDuration: task.AudioDuration,
		WaveformData:  task.WaveformData,
		IsVideo:       task.IsVideo,
		IsAudioOnly:   task.IsAudioOnly,
		ReplyToVibeID: task.ReplyToVibeID,
		IsSilent:      task.IsSilent,
	})
	if err != nil {
		return err
	}
	if !res.OK {
		failed := 0
		for _, r := range res.Receivers {
			if !r.OK {
				failed++
				q.log.Error(ctx, "receiver not recorded", "task", task.ID, "receiver", r.ReceiverID, "error", r.Error)
			}
		}
		return fmt.Errorf("%d of %d receivers failed: %w", failed, len(res.Receivers), common.ErrPartialFanout)
	}
	return nil
}

// validate checks every referenced file before transmitting. Missing or
// empty audio is a hard failure; imagery problems are logged and the
// reference dropped, since audio is the primary payload.
func (q *Queue) validate(ctx context.Context, task *models.UploadTask) error {
	if task.AudioPath == "" {
		return fmt.Errorf("task %s: %w", task.ID, common.ErrAudioMissing)
	}
	if !filex.NonEmpty(task.AudioPath) {
		if _, err := os.Stat(task.AudioPath); err != nil {
			return fmt.Errorf("task %s: %w", task.ID, common.ErrAudioMissing)
		}
		return fmt.Errorf("task %s: %w", task.ID, common.ErrAudioEmpty)
	}

	changed := false
	if task.ImagePath != "" && !filex.NonEmpty(task.ImagePath) {
		q.log.Warn(ctx, "dropping unreadable image", "task", task.ID, "path", task.ImagePath)
		task.ImagePath = ""
		changed = true
	}
	if task.VideoPath != "" && !filex.NonEmpty(task.VideoPath) {
		q.log.Warn(ctx, "dropping unreadable video", "task", task.ID, "path", task.VideoPath)
		task.VideoPath = ""
		task.IsVideo = false
		changed = true
	}
	if changed {
		return q.persist(ctx, task)
	}
	return nil
}

type mediaURLs struct {
	audio string
	image string
	video string
}

// uploadMedia transmits each staged asset exactly once, regardless of how
// many receivers the task fans out to. The durable URLs are reused across
// every receiver record.
func (q *Queue) uploadMedia(ctx context.Context, task *models.UploadTask) (mediaURLs, error) {
	var urls mediaURLs
	var err error

	if urls.audio, err = q.uploadOne(ctx, staging.RoleAudio, task.AudioPath); err != nil {
		return urls, err
	}
	if urls.image, err = q.uploadOne(ctx, staging.RoleImage, task.ImagePath); err != nil {
		return urls, err
	}
	if urls.video, err = q.uploadOne(ctx, staging.RoleVideo, task.VideoPath); err != nil {
		return urls, err
	}
	return urls, nil
}

func (q *Queue) uploadOne(ctx context.Context, role, path string) (string, error) {
	if path == "" {
		return "", nil
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	slot, err := q.sender.CreateUpload(ctx, role, contentType)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", role, err)
	}
	if err := q.sender.Upload(ctx, slot, path, contentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", role, err)
	}
	return slot.PublicURL, nil
}

// transition moves the task to the next state and persists synchronously,
// so a process restart can resume from the last known state.
func (q *Queue) transition(ctx context.Context, task *models.UploadTask, next models.TaskStatus) error {
	if task.Status.Terminal() {
		return fmt.Errorf("task %s already terminal (%s)", task.ID, task.Status)
	}
	task.Status = next
	return q.persist(ctx, task)
}

func (q *Queue) persist(ctx context.Context, task *models.UploadTask) error {
	if err := q.repo.Save(ctx, task); err != nil {
		return fmt.Errorf("persist task %s: %w", task.ID, err)
	}
	q.remember(task)
	return nil
}

func (q *Queue) finishSuccess(ctx context.Context, task *models.UploadTask) {
	task.Status = models.StatusSuccess
	task.Error = ""
	q.remember(task)

	// Success tasks are dropped from the persisted snapshot immediately;
	// only the display entry and staged files live out the grace window.
	if err := q.repo.Delete(ctx, task.ID); err != nil {
		q.log.Error(ctx, "failed to drop succeeded task", "task", task.ID, "error", err)
	}
	q.log.Info(ctx, "task succeeded", "task", task.ID, "receivers", len(task.ReceiverIDs))

	q.scheduleCleanup(task.ID, q.cfg.SuccessCleanupDelay, false)
}

func (q *Queue) finishError(ctx context.Context, task *models.UploadTask, msg string, cause error) {
	task.Status = models.StatusError
	task.Error = msg
	if err := q.persist(ctx, task); err != nil {
		q.log.Error(ctx, "failed to persist task error", "task", task.ID, "error", err)
	}
	q.log.Error(ctx, "task failed", "task", task.ID, "message", msg, "cause", cause)

	q.scheduleCleanup(task.ID, q.cfg.ErrorCleanupDelay, true)
}

// scheduleCleanup purges the task after its display window. A zero delay
// purges inline. Timers lost to process death are covered by the restart
// sweep in ResumeInterrupted.
func (q *Queue) scheduleCleanup(taskID string, delay time.Duration, dropRow bool) {
	cleanup := func() {
		ctx := context.Background()
		if dropRow {
			q.purge(ctx, taskID)
			return
		}
		if err := q.store.Cleanup(taskID); err != nil {
			q.log.Warn(ctx, "staging cleanup failed", "task", taskID, "error", err)
		}
		q.forget(taskID)
	}

	if delay <= 0 {
		cleanup()
		return
	}
	time.AfterFunc(delay, cleanup)
}

func (q *Queue) purge(ctx context.Context, taskID string) {
	if err := q.repo.Delete(ctx, taskID); err != nil {
		q.log.Warn(ctx, "failed to delete task row", "task", taskID, "error", err)
	}
	if err := q.store.Cleanup(taskID); err != nil {
		q.log.Warn(ctx, "staging cleanup failed", "task", taskID, "error", err)
	}
	q.forget(taskID)
}

// sweepStaging removes staging directories that belong to no persisted
// task; they are leftovers of cleanup timers lost to process death.
func (q *Queue) sweepStaging(ctx context.Context, keep map[string]struct{}) {
	entries, err := os.ReadDir(q.store.Base())
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, ok := keep[e.Name()]; ok {
			continue
		}
		if err := q.store.Cleanup(e.Name()); err != nil {
			q.log.Warn(ctx, "orphan staging cleanup failed", "dir", e.Name(), "error", err)
		}
	}
}

func (q *Queue) acquire(taskID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.active[taskID]; ok {
		return false
	}
	q.active[taskID] = struct{}{}
	return true
}

func (q *Queue) release(taskID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.active, taskID)
}

func (q *Queue) remember(task *models.UploadTask) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.snapshot[task.ID] = *task
}

func (q *Queue) forget(taskID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.snapshot, taskID)
}
