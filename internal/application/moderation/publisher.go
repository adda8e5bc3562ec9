package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel carries moderation status changes.
const Channel = "properties:moderation"

// StatusChanged is published after a listing changes state.
type StatusChanged struct {
	PropertyID uuid.UUID `json:"property_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ActorID    uuid.UUID `json:"actor_id"`
	At         time.Time `json:"at"`
}

// Publisher delivers moderation events.
type Publisher interface {
	Publish(ctx context.Context, ev StatusChanged) error
}

// RedisPublisher publishes events on a Redis pub/sub channel.
type RedisPublisher struct {
	Rdb *redis.Client
}

func (p *RedisPublisher) Publish(ctx context.Context, ev StatusChanged) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.Rdb.Publish(ctx, Channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Publishers fans an event out to every publisher. All are tried; failures are joined.
type Publishers []Publisher

func (ps Publishers) Publish(ctx context.Context, ev StatusChanged) error {
	var errs []error
	for _, p := range ps {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
