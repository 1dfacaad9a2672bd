package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTaskStatus_Terminal(t *testing.T) {
	tests := []struct {
		status TaskStatus
		want   bool
	}{
		{StatusProcessing, false},
		{StatusUploading, false},
		{StatusSuccess, true},
		{StatusError, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestTaskStatus_PersistedValuesAreStable(t *testing.T) {
	// the numeric values are stored in the queue database
	if StatusProcessing != 0 || StatusUploading != 1 || StatusSuccess != 2 || StatusError != 3 {
		t.Fatalf("status values changed: %d %d %d %d",
			StatusProcessing, StatusUploading, StatusSuccess, StatusError)
	}
}

func TestNeedsTransform(t *testing.T) {
	task := &UploadTask{VideoPath: "v.mp4", OverlayPath: "o.png"}
	if !task.NeedsTransform() {
		t.Error("video with overlay must require a transform")
	}

	task.OverlayPath = ""
	if task.NeedsTransform() {
		t.Error("video without overlay must not require a transform")
	}

	task = &UploadTask{OverlayPath: "o.png"}
	if task.NeedsTransform() {
		t.Error("overlay without video must not require a transform")
	}
}

func TestUploadTask_DocumentFieldNames(t *testing.T) {
	d := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	task := &UploadTask{
		ID:                "t1",
		ReceiverIDs:       []string{"r1"},
		AudioPath:         "a.m4a",
		OriginalPhotoDate: &d,
		ReplyToVibeID:     "v9",
		Status:            StatusUploading,
		CreatedAt:         d,
	}

	raw, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"id", "receiverIds", "audioPath", "originalPhotoDate", "replyToVibeId", "status", "createdAt"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing field %q", key)
		}
	}
	if doc["status"] != float64(StatusUploading) {
		t.Errorf("status stored as %v", doc["status"])
	}
}
