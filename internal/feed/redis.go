package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/vibecast/vibecast/internal/logging"
)

const (
	fieldType    = "type"
	fieldPayload = "payload"
)

// Redis implements the feed over a Redis Stream. Each event becomes one
// stream entry; consumption starts at the end of the stream, so a restarted
// dispatcher only sees new mutations (the next write re-triggers anyway).
type Redis struct {
	client *redis.Client
	stream string
	maxLen int64
	log    logging.Logger
}

// NewRedis connects to addr and binds the feed to the named stream.
func NewRedis(ctx context.Context, addr, stream string, log logging.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{
		client: client,
		stream: stream,
		maxLen: 10000,
		log:    log.With("module", "feed"),
	}, nil
}

// Publish appends the event to the stream.
func (r *Redis) Publish(ctx context.Context, ev Event) error {
	err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]any{
			fieldType:    string(ev.Type),
			fieldPayload: string(ev.Payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", r.stream, err)
	}
	return nil
}

// Consume blocks reading the stream until ctx is cancelled. Handler errors
// are logged and the event is not redelivered.
func (r *Redis) Consume(ctx context.Context, h Handler) error {
	lastID := "$"
	for {
		res, err := r.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{r.stream, lastID},
			Block:   5 * time.Second,
			Count:   64,
		}).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			r.log.Error(ctx, "feed read failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				ev, err := decodeMessage(msg)
				if err != nil {
					r.log.Warn(ctx, "dropping malformed feed entry", "id", msg.ID, "error", err)
					continue
				}
				if err := h(ctx, ev); err != nil {
					r.log.Error(ctx, "event handler failed", "type", ev.Type, "error", err)
				}
			}
		}
	}
}

// Close releases the underlying connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

func decodeMessage(msg redis.XMessage) (Event, error) {
	t, ok := msg.Values[fieldType].(string)
	if !ok {
		return Event{}, fmt.Errorf("entry %s has no type field", msg.ID)
	}
	p, ok := msg.Values[fieldPayload].(string)
	if !ok {
		return Event{}, fmt.Errorf("entry %s has no payload field", msg.ID)
	}
	return Event{Type: EventType(t), Payload: json.RawMessage(p)}, nil
}
