package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/budhitree/nexus-art-gallery/internal/entity"
	"github.com/redis/go-redis/v9"
)

// Channel is the redis channel gallery events travel on between processes.
const Channel = "gallery_events"

// Publisher pushes artwork events to connected sockets. With redis every
// process relays the channel to its own hub; without it events go straight
// to the local hub.
type Publisher struct {
	hub *Hub
	rdb *redis.Client
}

func NewPublisher(hub *Hub, rdb *redis.Client) *Publisher {
	return &Publisher{hub: hub, rdb: rdb}
}

func (p *Publisher) HandleArtworkEvent(ctx context.Context, event entity.ArtworkEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode gallery event: %w", err)
	}

	if p.rdb == nil {
		p.hub.Broadcast(payload)
		return nil
	}

	if err := p.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		// keep local viewers up to date even when redis is gone
		p.hub.Broadcast(payload)
		return fmt.Errorf("publish gallery event: %w", err)
	}
	return nil
}

// Relay forwards the redis channel into the local hub.
type Relay struct {
	hub *Hub
	rdb *redis.Client
}

func NewRelay(hub *Hub, rdb *redis.Client) *Relay {
	return &Relay{hub: hub, rdb: rdb}
}

// Start subscribes and returns once the subscription is live. Forwarding
// stops when ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	pubsub := r.rdb.Subscribe(ctx, Channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", Channel, err)
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				r.hub.Broadcast([]byte(msg.Payload))
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Printf("📡 Relaying %s to gallery sockets", Channel)
	return nil
}
