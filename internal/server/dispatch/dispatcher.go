// Package dispatch implements the push dispatcher: it consumes the change
// feed and converts durable-store mutations into platform push
// notifications, with token invalidation on delivery failure.
//
// The dispatcher holds no cross-document locks; unrelated events may be
// handled concurrently by multiple instances. It trusts timestamp
// monotonicity rather than arrival order, which tolerates reordering of the
// underlying change feed.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vibecast/vibecast/internal/common"
	"github.com/vibecast/vibecast/internal/feed"
	"github.com/vibecast/vibecast/internal/logging"
	"github.com/vibecast/vibecast/internal/push"
	"github.com/vibecast/vibecast/internal/server/repositories/accounts"
)

// Dispatcher consumes change events and emits pushes.
type Dispatcher struct {
	accounts accounts.Repository
	gateway  push.Gateway
	log      logging.Logger
}

// New wires a Dispatcher.
func New(repo accounts.Repository, gateway push.Gateway, log logging.Logger) *Dispatcher {
	return &Dispatcher{
		accounts: repo,
		gateway:  gateway,
		log:      log.With("module", "dispatch"),
	}
}

// Run consumes the feed until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, consumer feed.Consumer) error {
	d.log.Info(ctx, "dispatcher started")
	return consumer.Consume(ctx, d.Handle)
}

// Handle processes one event. Errors are isolated per event: the consumer
// logs them and moves on, and nothing is retried — the next mutation
// naturally re-triggers dispatch.
func (d *Dispatcher) Handle(ctx context.Context, ev feed.Event) error {
	switch ev.Type {
	case feed.EventWidgetChanged:
		var payload feed.WidgetChanged
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return fmt.Errorf("decode widget_changed: %w", err)
		}
		return d.handleWidgetChanged(ctx, &payload)

	case feed.EventVibeCreated:
		var payload feed.VibeCreated
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return fmt.Errorf("decode vibe_created: %w", err)
		}
		return d.deliver(ctx, payload.ReceiverID, func(token string) *push.Message {
			return NewVibeMessage(token, &payload)
		})

	case feed.EventNudgeCreated:
		var payload feed.NudgeCreated
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return fmt.Errorf("decode nudge_created: %w", err)
		}
		return d.deliver(ctx, payload.ReceiverID, func(token string) *push.Message {
			return NudgeMessage(token, &payload)
		})

	default:
		d.log.Warn(ctx, "ignoring unknown event type", "type", ev.Type)
		return nil
	}
}

// handleWidgetChanged emits the silent widget refresh. A mutation that left
// the timestamp unchanged warrants no push: duplicate writes of the same
// state never re-notify.
func (d *Dispatcher) handleWidgetChanged(ctx context.Context, ev *feed.WidgetChanged) error {
	if ev.Timestamp == ev.PrevTimestamp {
		d.log.Info(ctx, "widget timestamp unchanged, skipping push", "receiver", ev.ReceiverID)
		return nil
	}
	return d.deliver(ctx, ev.ReceiverID, func(token string) *push.Message {
		return WidgetUpdateMessage(token, ev)
	})
}

// deliver loads the receiver's token, sends the built message and applies
// token-lifecycle handling. A receiver with no registered token is a no-op.
func (d *Dispatcher) deliver(ctx context.Context, receiverID string, build func(token string) *push.Message) error {
	account, err := d.accounts.Get(ctx, receiverID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			d.log.Warn(ctx, "receiver account missing", "receiver", receiverID)
			return nil
		}
		return fmt.Errorf("load receiver %s: %w", receiverID, err)
	}
	if account.PushToken == "" {
		return nil
	}

	msg := build(account.PushToken)
	if err := d.gateway.Send(ctx, msg); err != nil {
		if errors.Is(err, push.ErrUnregistered) {
			// Self-healing: drop the dead token so the next mutation does
			// not hit the gateway again for this device.
			d.log.Warn(ctx, "push token unregistered, deleting", "receiver", receiverID)
			if clearErr := d.accounts.ClearPushToken(ctx, receiverID); clearErr != nil {
				return fmt.Errorf("clear token for %s: %w", receiverID, clearErr)
			}
			return nil
		}
		return fmt.Errorf("push to %s: %w", receiverID, err)
	}
	return nil
}
