package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/sports-odds-gateway/pkg/contracts/events"
)

// StartRedisSubscriber escuta o canal Pub/Sub e repassa cada SnapshotRefreshed
// ao Hub. Todas as réplicas assinam, então cada uma notifica os seus clientes.
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				handlePayload(hub, []byte(msg.Payload), log)
			}
		}
	}()
}

func handlePayload(hub *Hub, payload []byte, log *zap.Logger) {
	var ev events.SnapshotRefreshed
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Warn("ws subscriber unmarshal error", zap.Error(err))
		return
	}
	if ev.SportKey == "" {
		return
	}
	hub.Broadcast(ev)
}
