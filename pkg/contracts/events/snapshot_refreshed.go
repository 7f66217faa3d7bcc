package events

import (
	"time"

	"github.com/radieske/sports-odds-gateway/pkg/contracts/odds"
)

// SnapshotRefreshed é publicado a cada atualização bem-sucedida do snapshot de um esporte
// (tópico "odds_snapshots" e canal Redis "odds_snapshots_broadcast")
type SnapshotRefreshed struct {
	RefreshID string          `json:"refresh_id"`
	SportKey  string          `json:"sport_key"`
	FetchedAt time.Time       `json:"fetched_at"`
	GameCount int             `json:"game_count"`
	Games     []odds.GameOdds `json:"games"`
}
