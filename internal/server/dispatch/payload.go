package dispatch

import (
	"fmt"
	"strconv"

	"github.com/vibecast/vibecast/internal/feed"
	"github.com/vibecast/vibecast/internal/push"
)

// Payload type discriminators carried in the push data block.
const (
	TypeWidgetUpdate = "WIDGET_UPDATE"
	TypeNewVibe      = "NEW_VIBE"
	TypeNudge        = "NUDGE"
)

// WidgetUpdateMessage builds the silent widget-refresh push for a widget
// state change. All values are strings — the push transport carries no
// other types — and the timestamp travels as epoch milliseconds, never as a
// store-native timestamp.
func WidgetUpdateMessage(token string, ev *feed.WidgetChanged) *push.Message {
	return &push.Message{
		Token: token,
		Data: map[string]string{
			"type":          TypeWidgetUpdate,
			"senderName":    ev.SenderName,
			"senderId":      ev.SenderID,
			"senderAvatar":  ev.SenderAvatar,
			"audioUrl":      ev.AudioURL,
			"imageUrl":      ev.ImageURL,
			"vibeId":        ev.VibeID,
			"audioDuration": strconv.FormatFloat(ev.AudioDuration, 'f', -1, 64),
			"distance":      ev.Distance,
			"transcription": ev.Preview,
			"isVideo":       strconv.FormatBool(ev.IsVideo),
			"isAudioOnly":   strconv.FormatBool(ev.IsAudioOnly),
			"videoUrl":      ev.VideoURL,
			"timestamp":     strconv.FormatInt(ev.Timestamp, 10),
		},
	}
}

// NewVibeMessage builds the visible notification for a freshly created vibe
// record, with a small data block for deep-linking.
func NewVibeMessage(token string, ev *feed.VibeCreated) *push.Message {
	return &push.Message{
		Token: token,
		Title: "New vibe",
		Body:  fmt.Sprintf("%s sent you a vibe", senderLabel(ev.SenderName)),
		Data: map[string]string{
			"type":     TypeNewVibe,
			"entityId": ev.VibeID,
			"senderId": ev.SenderID,
		},
	}
}

// NudgeMessage builds the visible notification for a nudge.
func NudgeMessage(token string, ev *feed.NudgeCreated) *push.Message {
	return &push.Message{
		Token: token,
		Title: "Nudge",
		Body:  fmt.Sprintf("%s nudged you", senderLabel(ev.SenderName)),
		Data: map[string]string{
			"type":     TypeNudge,
			"entityId": ev.NudgeID,
			"senderId": ev.SenderID,
		},
	}
}

func senderLabel(name string) string {
	if name == "" {
		return "Someone"
	}
	return name
}
