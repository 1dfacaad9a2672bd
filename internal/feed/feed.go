// Package feed is the change-feed abstraction between the durable store and
// the push dispatcher. The fan-out service publishes an event after each
// committed mutation; the dispatcher consumes events and decides whether a
// push is warranted. Implementations: Redis Streams for deployments, an
// in-process channel feed for tests and single-binary runs.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
)

// EventType discriminates the payload carried by an Event.
type EventType string

const (
	EventWidgetChanged EventType = "widget_changed"
	EventVibeCreated   EventType = "vibe_created"
	EventNudgeCreated  EventType = "nudge_created"
)

// Event is one durable-store mutation notification.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// WidgetChanged is emitted when a receiver's widget state row was written.
// PrevTimestamp carries the value before the write so consumers can detect
// idempotent re-writes without re-reading the store.
type WidgetChanged struct {
	ReceiverID    string  `json:"receiverId"`
	VibeID        string  `json:"vibeId"`
	SenderID      string  `json:"senderId"`
	SenderName    string  `json:"senderName"`
	SenderAvatar  string  `json:"senderAvatar"`
	AudioURL      string  `json:"audioUrl"`
	ImageURL      string  `json:"imageUrl"`
	VideoURL      string  `json:"videoUrl"`
	AudioDuration float64 `json:"audioDuration"`
	Preview       string  `json:"preview"`
	Distance      string  `json:"distance"`
	IsVideo       bool    `json:"isVideo"`
	IsAudioOnly   bool    `json:"isAudioOnly"`
	Timestamp     int64   `json:"timestamp"`
	PrevTimestamp int64   `json:"prevTimestamp"`
}

// VibeCreated is emitted when a new vibe record was inserted.
type VibeCreated struct {
	VibeID     string `json:"vibeId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	ReceiverID string `json:"receiverId"`
}

// NudgeCreated is emitted when a lightweight signal was recorded.
type NudgeCreated struct {
	NudgeID    string `json:"nudgeId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	ReceiverID string `json:"receiverId"`
}

// NewEvent wraps a typed payload into an Event.
func NewEvent(t EventType, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Event{Type: t, Payload: b}, nil
}

// Handler processes one event. A non-nil error is logged by the consumer;
// events are not redelivered (the next mutation naturally re-triggers).
type Handler func(ctx context.Context, ev Event) error

// Publisher is the write side of the feed.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Consumer is the read side of the feed. Consume blocks until ctx is
// cancelled, invoking h for each event in arrival order.
type Consumer interface {
	Consume(ctx context.Context, h Handler) error
}
