package publisher

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/sports-odds-gateway/pkg/contracts/events"
)

// RedisBroadcaster publica o evento no canal Pub/Sub lido pelos hubs WebSocket
type RedisBroadcaster struct {
	R       *redis.Client
	Channel string
}

func (b *RedisBroadcaster) Publish(ctx context.Context, e events.SnapshotRefreshed) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.R.Publish(ctx, b.Channel, payload).Err()
}

func (b *RedisBroadcaster) Name() string { return "redis" }
