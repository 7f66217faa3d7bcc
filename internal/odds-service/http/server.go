package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/sports-odds-gateway/internal/odds-service/repo"
	"github.com/radieske/sports-odds-gateway/internal/odds-service/service"
	"github.com/radieske/sports-odds-gateway/pkg/contracts/odds"
)

// sportKeyPattern aceita chaves como "basketball_nba"; vai direto na URL do fornecedor
var sportKeyPattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// OddsService é o orquestrador visto pela camada HTTP
type OddsService interface {
	GetSnapshot(ctx context.Context, sport string) (service.Snapshot, error)
	SyntheticSnapshot(sport string) service.Snapshot
}

// RefreshLister lista tentativas recentes de atualização (opcional)
type RefreshLister interface {
	Recent(ctx context.Context, sport string, limit int) ([]repo.RefreshRow, error)
}

// API expõe os endpoints REST de consulta de odds
type API struct {
	Svc          OddsService
	Log          *zap.Logger
	DefaultSport string

	// SyntheticOnFailure troca o 502 por dados sintéticos quando o fornecedor está fora
	SyntheticOnFailure bool

	Refreshes RefreshLister    // nil desliga /refreshes
	WS        http.HandlerFunc // nil desliga /ws
	Now       func() time.Time
}

// Envelope é o corpo das respostas de snapshot
type Envelope struct {
	Games     []odds.GameOdds `json:"games"`
	Count     int             `json:"count"`
	Timestamp string          `json:"timestamp"`
	FetchedAt string          `json:"fetchedAt"`
	Source    string          `json:"source"`
	Sport     string          `json:"sport"`
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	if a.Log == nil {
		a.Log = zap.NewNop()
	}
	if a.Now == nil {
		a.Now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withCORS)

	r.Get("/api/live-odds", a.liveOdds)                    // esporte via ?sport=
	r.Get("/v1/odds/{sport}", a.sportOdds)                 // esporte via path
	r.Get("/v1/odds/{sport}/games/{gameId}", a.gameOdds)   // um jogo do snapshot atual
	r.Get("/v1/odds/{sport}/refreshes", a.recentRefreshes) // auditoria de tentativas
	if a.WS != nil {
		r.Get("/ws", a.WS)
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) liveOdds(w http.ResponseWriter, r *http.Request) {
	sport := r.URL.Query().Get("sport")
	if sport == "" {
		sport = a.DefaultSport
	}
	a.serveSnapshot(w, r, sport)
}

func (a *API) sportOdds(w http.ResponseWriter, r *http.Request) {
	a.serveSnapshot(w, r, chi.URLParam(r, "sport"))
}

func (a *API) gameOdds(w http.ResponseWriter, r *http.Request) {
	sport := chi.URLParam(r, "sport")
	snap, ok := a.snapshot(w, r, sport)
	if !ok {
		return
	}

	id := chi.URLParam(r, "gameId")
	for _, g := range snap.Games {
		if g.GameID == id {
			writeJSON(w, http.StatusOK, g)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
}

func (a *API) recentRefreshes(w http.ResponseWriter, r *http.Request) {
	if a.Refreshes == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "refresh log disabled"})
		return
	}
	sport := chi.URLParam(r, "sport")
	if !sportKeyPattern.MatchString(sport) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sport key"})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = min(n, 200)
	}

	rows, err := a.Refreshes.Recent(r.Context(), sport, limit)
	if err != nil {
		a.Log.Error("list refreshes failed", zap.String("sport", sport), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (a *API) serveSnapshot(w http.ResponseWriter, r *http.Request, sport string) {
	snap, ok := a.snapshot(w, r, sport)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Games:     snap.Games,
		Count:     len(snap.Games),
		Timestamp: a.Now().UTC().Format(time.RFC3339),
		FetchedAt: snap.FetchedAt.UTC().Format(time.RFC3339),
		Source:    string(snap.Source),
		Sport:     snap.Sport,
	})
}

// snapshot resolve o snapshot do esporte e escreve a resposta de erro quando falha
func (a *API) snapshot(w http.ResponseWriter, r *http.Request, sport string) (service.Snapshot, bool) {
	if !sportKeyPattern.MatchString(sport) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sport key"})
		return service.Snapshot{}, false
	}

	snap, err := a.Svc.GetSnapshot(r.Context(), sport)
	if err == nil {
		if snap.Games == nil {
			snap.Games = []odds.GameOdds{}
		}
		return snap, true
	}

	var unavailable *service.UpstreamUnavailableError
	switch {
	case errors.As(err, &unavailable):
		if a.SyntheticOnFailure {
			a.Log.Warn("upstream unavailable, serving synthetic odds", zap.String("sport", sport))
			return a.Svc.SyntheticSnapshot(sport), true
		}
		body := map[string]any{"error": "upstream unavailable"}
		if unavailable.Status != 0 {
			body["upstreamStatus"] = unavailable.Status
		}
		writeJSON(w, http.StatusBadGateway, body)
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": "timeout"})
	case errors.Is(err, context.Canceled):
		// cliente desistiu; não há para quem responder
	default:
		a.Log.Error("get odds failed", zap.String("sport", sport), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return service.Snapshot{}, false
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
