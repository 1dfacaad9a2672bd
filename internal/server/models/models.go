// Package models defines the server-side data models: vibe records, the
// per-receiver widget read model, accounts, and nudges.
package models

import "time"

// Vibe is one delivered message record: one row per (batch, receiver)
// pair. Records within a batch are independent; a failure for receiver B
// never rolls back receiver A.
type Vibe struct {
	ID         string
	BatchID    string
	SenderID   string
	ReceiverID string

	AudioURL string
	ImageURL string
	VideoURL string

	AudioDuration float64
	WaveformData  []float64
	IsVideo       bool
	IsAudioOnly   bool

	ReplyToVibeID string
	Played        bool
	Deleted       bool
	CreatedAt     time.Time
}

// WidgetState is the denormalized per-receiver "latest message" read model
// consumed by the glance surface. Timestamp is epoch milliseconds and only
// ever moves forward; the dispatcher uses timestamp inequality, not vibe
// identity, to decide whether a push is warranted.
type WidgetState struct {
	ReceiverID string

	VibeID       string
	SenderID     string
	SenderName   string
	SenderAvatar string

	AudioURL string
	ImageURL string
	VideoURL string

	AudioDuration float64
	Preview       string
	Distance      string
	IsVideo       bool
	IsAudioOnly   bool

	Timestamp int64
}

// Account is a receiver/sender account record. PushToken is empty when no
// device is registered or after the gateway reported the token invalid.
type Account struct {
	ID          string
	DisplayName string
	AvatarURL   string
	PushToken   string
}

// Nudge is a lightweight signal from one account to another; it produces a
// visible push but no media payload.
type Nudge struct {
	ID         string
	SenderID   string
	ReceiverID string
	CreatedAt  time.Time
}
