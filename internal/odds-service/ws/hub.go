package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/sports-odds-gateway/pkg/contracts/events"
)

const writeWait = 5 * time.Second

// client serializa escritas: gorilla/websocket aceita um único escritor por conexão
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub gerencia conexões WebSocket e assinaturas por esporte
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	mu       sync.RWMutex
	// sport -> set of clients
	subs map[string]map[*client]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		subs:     make(map[string]map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket.
// Cada cliente pode se inscrever em vários esportes.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			if msg.Sport == "" {
				continue
			}
			h.mu.Lock()
			if _, ok := h.subs[msg.Sport]; !ok {
				h.subs[msg.Sport] = make(map[*client]struct{})
			}
			h.subs[msg.Sport][c] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.remove(msg.Sport, c)
		case "ping":
			_ = c.write([]byte(`{"type":"pong"}`))
		}
	}

	// remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for sport, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, sport)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) remove(sport string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[sport]; ok {
		delete(m, c)
		if len(m) == 0 {
			delete(h.subs, sport)
		}
	}
}

// Subscriptions devolve quantos clientes acompanham cada esporte
func (h *Hub) Subscriptions() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]int, len(h.subs))
	for sport, set := range h.subs {
		out[sport] = len(set)
	}
	return out
}

// Broadcast envia o snapshot atualizado para os inscritos no esporte
func (h *Hub) Broadcast(ev events.SnapshotRefreshed) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.subs[ev.SportKey]))
	for c := range h.subs[ev.SportKey] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	b, err := json.Marshal(SnapshotNotice{
		Type:      "odds_snapshot",
		Sport:     ev.SportKey,
		RefreshID: ev.RefreshID,
		FetchedAt: ev.FetchedAt,
		Count:     ev.GameCount,
		Games:     ev.Games,
	})
	if err != nil {
		h.log.Error("ws marshal snapshot notice", zap.Error(err))
		return
	}

	for _, c := range targets {
		if err := c.write(b); err != nil {
			h.log.Debug("ws write failed", zap.String("sport", ev.SportKey), zap.Error(err))
		}
	}
}
