package ws

import (
	"time"

	"github.com/radieske/sports-odds-gateway/pkg/contracts/odds"
)

// ClientMsg representa uma mensagem recebida do cliente WebSocket
type ClientMsg struct {
	Type  string `json:"type"`  // subscribe | unsubscribe | ping
	Sport string `json:"sport"` // requerido em subscribe/unsubscribe
}

// SnapshotNotice é enviado aos inscritos quando um esporte é atualizado
type SnapshotNotice struct {
	Type      string          `json:"type"` // sempre "odds_snapshot"
	Sport     string          `json:"sport"`
	RefreshID string          `json:"refreshId"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Count     int             `json:"count"`
	Games     []odds.GameOdds `json:"games"`
}
