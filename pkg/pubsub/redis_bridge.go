package pubsub

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const bridgeOutbox = 256

type envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// RedisBridge mirrors hub events through a Redis channel so every API
// instance sees events published by its peers.
type RedisBridge struct {
	client  *redis.Client
	hub     *Hub
	channel string
	origin  string
	outbox  chan Event
	logger  *zap.Logger
}

// NewRedisBridge attaches a bridge to the hub. Call Run to start consuming.
func NewRedisBridge(client *redis.Client, hub *Hub, channel string, logger *zap.Logger) *RedisBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	if channel == "" {
		channel = "vault:events"
	}
	b := &RedisBridge{
		client:  client,
		hub:     hub,
		channel: channel,
		origin:  uuid.NewString(),
		outbox:  make(chan Event, bridgeOutbox),
		logger:  logger,
	}
	hub.setRelay(b.forward)
	return b
}

// Run consumes peer events and publishes local ones until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close() //nolint:errcheck

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.receive(msg.Payload)
		case evt := <-b.outbox:
			b.send(ctx, evt)
		}
	}
}

func (b *RedisBridge) receive(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.logger.Warn("discarding malformed bridged event", zap.Error(err))
		return
	}
	if env.Origin == b.origin {
		return
	}
	b.hub.Deliver(env.Event)
}

// forward queues a local event for Run. A full outbox drops the event so the
// publishing request never waits on Redis.
func (b *RedisBridge) forward(evt Event) {
	select {
	case b.outbox <- evt:
	default:
		b.logger.Warn("bridge outbox full, event not mirrored", zap.String("topic", evt.Topic))
	}
}

func (b *RedisBridge) send(ctx context.Context, evt Event) {
	payload, err := json.Marshal(envelope{Origin: b.origin, Event: evt})
	if err != nil {
		return
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		b.logger.Warn("failed to bridge event", zap.String("topic", evt.Topic), zap.Error(err))
	}
}
