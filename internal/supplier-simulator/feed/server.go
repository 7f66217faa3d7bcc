package feed

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Server imita o endpoint de odds do fornecedor para o ambiente local
type Server struct {
	Gen      *Generator
	Log      *zap.Logger
	FailRate float64 // 0..1, fração de respostas 503 aleatórias
	Quota    int     // requisições disponíveis reportadas em x-requests-remaining
	Now      func() time.Time

	Requests *prometheus.CounterVec // opcional: supplier_odds_requests_total{shape,status}

	mu   sync.Mutex
	used int
	rnd  *rand.Rand
}

// NewRequestsCounter cria o contador de requisições do simulador
func NewRequestsCounter(reg prometheus.Registerer) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "supplier_odds_requests_total",
		Help: "Requisições de odds atendidas pelo simulador",
	}, []string{"shape", "status"})
	reg.MustRegister(c)
	return c
}

func (s *Server) Router() http.Handler {
	if s.Log == nil {
		s.Log = zap.NewNop()
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	r := chi.NewRouter()
	r.Get("/v4/sports/{sport}/odds", s.odds)
	r.Get("/v4/sports/{sport}/odds/", s.odds)
	return r
}

func (s *Server) odds(w http.ResponseWriter, r *http.Request) {
	sport := chi.URLParam(r, "sport")

	if r.URL.Query().Get("apiKey") == "" && r.Header.Get("x-rapidapi-key") == "" {
		s.fail(w, http.StatusUnauthorized, "missing api key")
		return
	}

	// falha forçada: ?fail=503
	if v := r.URL.Query().Get("fail"); v != "" {
		code, err := strconv.Atoi(v)
		if err != nil || code < 400 || code > 599 {
			code = http.StatusServiceUnavailable
		}
		s.fail(w, code, "forced failure")
		return
	}
	if s.shouldFail() {
		s.fail(w, http.StatusServiceUnavailable, "random failure")
		return
	}

	used, remaining := s.consume()
	payload, shape := s.Gen.Next(sport, s.Now())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("x-requests-used", strconv.Itoa(used))
	w.Header().Set("x-requests-remaining", strconv.Itoa(remaining))
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)

	s.count(shape.String(), http.StatusOK)
	s.Log.Debug("served odds", zap.String("sport", sport), zap.Stringer("shape", shape))
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
	s.count("none", status)
	s.Log.Info("odds request failed on purpose", zap.Int("status", status), zap.String("reason", msg))
}

func (s *Server) shouldFail() bool {
	if s.FailRate <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64() < s.FailRate
}

func (s *Server) consume() (used, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used++
	return s.used, max(s.Quota-s.used, 0)
}

func (s *Server) count(shape string, status int) {
	if s.Requests != nil {
		s.Requests.WithLabelValues(shape, strconv.Itoa(status)).Inc()
	}
}
