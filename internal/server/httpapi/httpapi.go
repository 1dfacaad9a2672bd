// Package httpapi exposes the server's HTTP surface: presigned upload
// slots, batch fan-out ingest, nudges, and push-token management.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vibecast/vibecast/internal/common"
	"github.com/vibecast/vibecast/internal/logging"
	"github.com/vibecast/vibecast/internal/server/models"
	"github.com/vibecast/vibecast/internal/server/repositories/accounts"
	"github.com/vibecast/vibecast/internal/wire"
)

// Uploads hands out presigned upload slots.
type Uploads interface {
	CreateSlot(ctx context.Context, req *wire.UploadRequest) (*wire.UploadSlot, error)
}

// Batches records fan-out batches.
type Batches interface {
	Record(ctx context.Context, req *wire.BatchRequest) (*wire.BatchResult, error)
}

// Nudges records nudges.
type Nudges interface {
	Create(ctx context.Context, req *wire.NudgeRequest) (*models.Nudge, error)
}

// Vibes serves the read side of delivered vibes.
type Vibes interface {
	Get(ctx context.Context, id string) (*models.Vibe, error)
	ListByReceiver(ctx context.Context, receiverID string, limit int) ([]*models.Vibe, error)
	MarkPlayed(ctx context.Context, id string) error
}

// Handlers holds the route handlers and their dependencies.
type Handlers struct {
	uploads  Uploads
	batches  Batches
	nudges   Nudges
	vibes    Vibes
	accounts accounts.Repository
	log      logging.Logger
}

// NewHandlers wires the HTTP handlers.
func NewHandlers(uploads Uploads, batches Batches, nudges Nudges, vibes Vibes, repo accounts.Repository, log logging.Logger) *Handlers {
	return &Handlers{
		uploads:  uploads,
		batches:  batches,
		nudges:   nudges,
		vibes:    vibes,
		accounts: repo,
		log:      log.With("module", "httpapi"),
	}
}

// Router builds the chi router with all API routes mounted.
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/uploads", h.CreateUpload)
		r.Post("/batches", h.CreateBatch)
		r.Post("/nudges", h.CreateNudge)
		r.Get("/vibes/{id}", h.GetVibe)
		r.Post("/vibes/{id}/played", h.MarkVibePlayed)
		r.Get("/accounts/{id}/vibes", h.ListVibes)
		r.Put("/accounts/{id}/push-token", h.SetPushToken)
		r.Delete("/accounts/{id}/push-token", h.ClearPushToken)
	})

	return r
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// CreateUpload presigns a PUT slot for one media asset.
func (h *Handlers) CreateUpload(w http.ResponseWriter, r *http.Request) {
	var req wire.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Role == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	slot, err := h.uploads.CreateSlot(r.Context(), &req)
	if err != nil {
		h.log.Error(r.Context(), "presign failed", "role", req.Role, "error", err)
		http.Error(w, "upload slot unavailable", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, slot)
}

// CreateBatch runs the fan-out for one batch. Per-receiver failures are
// reported in the body with status 200; the client decides whether to
// retry, which is safe because (batch, receiver) is the idempotency key.
func (h *Handlers) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req wire.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	res, err := h.batches.Record(r.Context(), &req)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.Error(w, "sender not found", http.StatusNotFound)
			return
		}
		h.log.Error(r.Context(), "batch rejected", "batch", req.BatchID, "error", err)
		http.Error(w, "invalid batch", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, res)
}

// CreateNudge records a nudge and queues its push.
func (h *Handlers) CreateNudge(w http.ResponseWriter, r *http.Request) {
	var req wire.NudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	nudge, err := h.nudges.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.Error(w, "sender not found", http.StatusNotFound)
			return
		}
		h.log.Error(r.Context(), "nudge rejected", "sender", req.SenderID, "error", err)
		http.Error(w, "invalid nudge", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"nudgeId": nudge.ID})
}

// GetVibe returns one delivered vibe record.
func (h *Handlers) GetVibe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	v, err := h.vibes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.Error(w, "vibe not found", http.StatusNotFound)
			return
		}
		h.log.Error(r.Context(), "vibe lookup failed", "vibe", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, vibeDTO(v))
}

// ListVibes returns the receiver's vibes, newest first. The limit query
// parameter caps the page; an absent or invalid value selects the default.
func (h *Handlers) ListVibes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, err := h.vibes.ListByReceiver(r.Context(), id, limit)
	if err != nil {
		h.log.Error(r.Context(), "vibe list failed", "receiver", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]*wire.Vibe, 0, len(list))
	for _, v := range list {
		out = append(out, vibeDTO(v))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// MarkVibePlayed flags a vibe as played by its receiver.
func (h *Handlers) MarkVibePlayed(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.vibes.MarkPlayed(r.Context(), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.Error(w, "vibe not found", http.StatusNotFound)
			return
		}
		h.log.Error(r.Context(), "played update failed", "vibe", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetPushToken registers a device token for an account.
func (h *Handlers) SetPushToken(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req wire.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.accounts.SetPushToken(r.Context(), id, req.Token); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}
		h.log.Error(r.Context(), "token update failed", "account", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearPushToken drops the stored device token for an account.
func (h *Handlers) ClearPushToken(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.accounts.ClearPushToken(r.Context(), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}
		h.log.Error(r.Context(), "token clear failed", "account", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func vibeDTO(v *models.Vibe) *wire.Vibe {
	return &wire.Vibe{
		ID:            v.ID,
		BatchID:       v.BatchID,
		SenderID:      v.SenderID,
		ReceiverID:    v.ReceiverID,
		AudioURL:      v.AudioURL,
		ImageURL:      v.ImageURL,
		VideoURL:      v.VideoURL,
		AudioDuration: v.AudioDuration,
		WaveformData:  v.WaveformData,
		IsVideo:       v.IsVideo,
		IsAudioOnly:   v.IsAudioOnly,
		ReplyToVibeID: v.ReplyToVibeID,
		Played:        v.Played,
		CreatedAt:     v.CreatedAt,
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error(context.Background(), "response encode failed", "error", err)
	}
}
