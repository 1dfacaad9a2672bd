// Package wire defines the JSON request/response types shared by the HTTP
// API and the client. These shapes are the stable contract between sender
// and server; field names must not change without a version bump.
package wire

import "time"

// UploadRequest asks the server for a presigned PUT slot for one media
// asset. Role is one of "audio", "image", "video".
type UploadRequest struct {
	Role        string `json:"role"`
	ContentType string `json:"contentType"`
}

// UploadSlot is a presigned upload destination plus the durable URL the
// object will be reachable at once uploaded.
type UploadSlot struct {
	Key       string `json:"key"`
	PutURL    string `json:"putUrl"`
	PublicURL string `json:"publicUrl"`
}

// BatchRequest records one send fan-out: N receivers sharing one batch of
// already-uploaded media. Media URLs are durable storage locations; the
// server never re-uploads.
type BatchRequest struct {
	BatchID       string    `json:"batchId"`
	SenderID      string    `json:"senderId"`
	ReceiverIDs   []string  `json:"receiverIds"`
	AudioURL      string    `json:"audioUrl,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	VideoURL      string    `json:"videoUrl,omitempty"`
	AudioDuration float64   `json:"audioDuration"`
	WaveformData  []float64 `json:"waveformData,omitempty"`
	IsVideo       bool      `json:"isVideo"`
	IsAudioOnly   bool      `json:"isAudioOnly"`
	Transcription string    `json:"transcription,omitempty"`
	Distance      string    `json:"distance,omitempty"`
	ReplyToVibeID string    `json:"replyToVibeId,omitempty"`

	// IsSilent suppresses the visible notification for every receiver;
	// the widget read model still updates and its silent refresh still
	// goes out.
	IsSilent bool `json:"isSilent,omitempty"`
}

// Vibe is one delivered message record as returned by the read endpoints.
type Vibe struct {
	ID            string    `json:"id"`
	BatchID       string    `json:"batchId"`
	SenderID      string    `json:"senderId"`
	ReceiverID    string    `json:"receiverId"`
	AudioURL      string    `json:"audioUrl,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	VideoURL      string    `json:"videoUrl,omitempty"`
	AudioDuration float64   `json:"audioDuration"`
	WaveformData  []float64 `json:"waveformData,omitempty"`
	IsVideo       bool      `json:"isVideo"`
	IsAudioOnly   bool      `json:"isAudioOnly"`
	ReplyToVibeID string    `json:"replyToVibeId,omitempty"`
	Played        bool      `json:"played"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ReceiverResult is the per-receiver outcome of a fan-out. Failures for one
// receiver never roll back records committed for another.
type ReceiverResult struct {
	ReceiverID string `json:"receiverId"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// BatchResult is the overall fan-out outcome. OK is true only if every
// receiver was recorded.
type BatchResult struct {
	BatchID   string           `json:"batchId"`
	OK        bool             `json:"ok"`
	Receivers []ReceiverResult `json:"receivers"`
}

// NudgeRequest creates a lightweight signal from sender to receiver; the
// dispatcher turns it into a visible push.
type NudgeRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

// TokenRequest registers a device push token for an account.
type TokenRequest struct {
	Token string `json:"token"`
}
