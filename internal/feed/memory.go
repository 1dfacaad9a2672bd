package feed

import (
	"context"

	"github.com/vibecast/vibecast/internal/logging"
)

// Memory is a buffered in-process feed. It backs tests and single-binary
// deployments where the fan-out service and the dispatcher share a process.
type Memory struct {
	ch  chan Event
	log logging.Logger
}

// NewMemory returns a Memory feed with the given buffer size.
func NewMemory(buffer int, log logging.Logger) *Memory {
	return &Memory{
		ch:  make(chan Event, buffer),
		log: log.With("module", "feed"),
	}
}

// Publish enqueues the event, blocking if the buffer is full.
func (m *Memory) Publish(ctx context.Context, ev Event) error {
	select {
	case m.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume delivers events to h until ctx is cancelled. Handler errors are
// logged and the event is not redelivered.
func (m *Memory) Consume(ctx context.Context, h Handler) error {
	for {
		select {
		case ev := <-m.ch:
			if err := h(ctx, ev); err != nil {
				m.log.Error(ctx, "event handler failed", "type", ev.Type, "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
