// Package common defines shared constants and sentinel errors used across
// the client and server layers of Vibecast. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Send-failure classes surfaced to the sender as short, actionable
	// messages by the upload queue.
	ErrNoConnection     = errors.New("no connection")
	ErrPermissionDenied = errors.New("permission denied")
	ErrTimeout          = errors.New("timeout")
	ErrQuotaExceeded    = errors.New("quota exceeded")

	// Media validation errors. Audio is the primary payload, so these are
	// hard failures for a task.
	ErrAudioMissing = errors.New("audio file missing")
	ErrAudioEmpty   = errors.New("audio file empty")

	// Fan-out errors.
	ErrPartialFanout = errors.New("partial fan-out failure")
)
