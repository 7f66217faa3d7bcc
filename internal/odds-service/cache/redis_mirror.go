package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/sports-odds-gateway/pkg/contracts/odds"
)

// Mirror replica o último snapshot real no Redis para que outras réplicas
// (ou este processo após reinício) tenham um fallback durante falhas do fornecedor
type Mirror struct {
	R   *redis.Client
	TTL time.Duration // normalmente a janela stale efetiva
}

func NewMirror(r *redis.Client, ttl time.Duration) *Mirror { return &Mirror{R: r, TTL: ttl} }

func keySnapshot(sport string) string { return "odds:snapshot:" + sport }

type mirrored struct {
	Games     []odds.GameOdds `json:"games"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Get lê o snapshot espelhado; ok=false quando a chave não existe
func (m *Mirror) Get(ctx context.Context, sport string) (Entry, bool, error) {
	b, err := m.R.Get(ctx, keySnapshot(sport)).Bytes()
	if err == redis.Nil {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var v mirrored
	if err := json.Unmarshal(b, &v); err != nil {
		return Entry{}, false, fmt.Errorf("decode mirrored snapshot: %w", err)
	}
	return Entry{Data: v.Games, FetchedAt: v.FetchedAt}, true, nil
}

// Set grava o snapshot com TTL
func (m *Mirror) Set(ctx context.Context, sport string, e Entry) error {
	b, err := json.Marshal(mirrored{Games: e.Data, FetchedAt: e.FetchedAt})
	if err != nil {
		return err
	}
	return m.R.Set(ctx, keySnapshot(sport), b, m.TTL).Err()
}
