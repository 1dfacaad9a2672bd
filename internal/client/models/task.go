// Package models defines the client-side data models of the upload
// pipeline.
package models

import "time"

// TaskStatus is the bounded state machine of an upload task. The numeric
// values are part of the persisted task document and must stay stable.
type TaskStatus int

const (
	// StatusProcessing is the initial state; any required media transform
	// (e.g. compositing an overlay onto raw video) runs here.
	StatusProcessing TaskStatus = iota
	// StatusUploading means media is ready to transmit.
	StatusUploading
	// StatusSuccess is terminal: every receiver was recorded.
	StatusSuccess
	// StatusError is terminal: the task failed with a user-facing message.
	StatusError
)

// Terminal reports whether the status never transitions again.
func (s TaskStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

func (s TaskStatus) String() string {
	switch s {
	case StatusProcessing:
		return "processing"
	case StatusUploading:
		return "uploading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// UploadTask is one in-flight send operation, owned exclusively by the
// queue until terminal. The JSON field names are the persisted document
// format; only non-success tasks are ever written to the snapshot.
//
// All media paths point into the staging store, never into caller-owned
// storage. The task ID doubles as the staging namespace and as the batch
// identifier downstream.
type UploadTask struct {
	ID          string   `json:"id"`
	ReceiverIDs []string `json:"receiverIds"`

	AudioPath   string `json:"audioPath,omitempty"`
	ImagePath   string `json:"imagePath,omitempty"`
	VideoPath   string `json:"videoPath,omitempty"`
	OverlayPath string `json:"overlayPath,omitempty"`

	AudioDuration float64   `json:"audioDuration"`
	WaveformData  []float64 `json:"waveformData,omitempty"`
	IsVideo       bool      `json:"isVideo"`
	IsAudioOnly   bool      `json:"isAudioOnly"`
	IsFromGallery bool      `json:"isFromGallery"`

	OriginalPhotoDate *time.Time `json:"originalPhotoDate,omitempty"`
	ReplyToVibeID     string     `json:"replyToVibeId,omitempty"`

	Status    TaskStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	IsSilent  bool       `json:"isSilent"`
}

// HasVideo reports whether the task carries a video asset.
func (t *UploadTask) HasVideo() bool {
	return t.VideoPath != ""
}

// NeedsTransform reports whether a compositing step is required before the
// task can upload.
func (t *UploadTask) NeedsTransform() bool {
	return t.VideoPath != "" && t.OverlayPath != ""
}
