package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Odds reúne os coletores do gateway de odds
type Odds struct {
	Requests         *prometheus.CounterVec
	UpstreamErrors   *prometheus.CounterVec
	UpstreamDuration prometheus.Histogram
	GamesInSnapshot  *prometheus.GaugeVec
	PublishErrors    *prometheus.CounterVec
}

// NewOdds cria e registra os coletores no registerer informado
func NewOdds(reg prometheus.Registerer) *Odds {
	m := &Odds{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odds_gateway_requests_total",
			Help: "snapshots entregues por esporte e origem",
		}, []string{"sport", "source"}),
		UpstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odds_gateway_upstream_errors_total",
			Help: "falhas do fornecedor por tipo",
		}, []string{"kind"}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "odds_gateway_upstream_duration_seconds",
			Help:    "latência das chamadas ao fornecedor",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8},
		}),
		GamesInSnapshot: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "odds_gateway_games_in_snapshot",
			Help: "jogos no último snapshot real por esporte",
		}, []string{"sport"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odds_gateway_publish_errors_total",
			Help: "falhas ao publicar eventos de snapshot por destino",
		}, []string{"sink"}),
	}
	reg.MustRegister(m.Requests, m.UpstreamErrors, m.UpstreamDuration, m.GamesInSnapshot, m.PublishErrors)
	return m
}

func (m *Odds) Served(sport, source string) { m.Requests.WithLabelValues(sport, source).Inc() }

func (m *Odds) UpstreamError(kind string) { m.UpstreamErrors.WithLabelValues(kind).Inc() }

func (m *Odds) Attempt(d time.Duration) { m.UpstreamDuration.Observe(d.Seconds()) }

func (m *Odds) Refreshed(sport string, games int) {
	m.GamesInSnapshot.WithLabelValues(sport).Set(float64(games))
}

func (m *Odds) PublishError(sink string, _ error) { m.PublishErrors.WithLabelValues(sink).Inc() }

var wsSubscriptionsDesc = prometheus.NewDesc(
	"odds_gateway_ws_subscriptions",
	"clientes WebSocket inscritos por esporte",
	[]string{"sport"}, nil,
)

// subscriptionsCollector lê as assinaturas do hub no momento da coleta
type subscriptionsCollector struct {
	snapshot func() map[string]int
}

// RegisterSubscriptions expõe odds_gateway_ws_subscriptions{sport} a partir de snapshot
func RegisterSubscriptions(reg prometheus.Registerer, snapshot func() map[string]int) {
	reg.MustRegister(subscriptionsCollector{snapshot: snapshot})
}

func (c subscriptionsCollector) Describe(ch chan<- *prometheus.Desc) { ch <- wsSubscriptionsDesc }

func (c subscriptionsCollector) Collect(ch chan<- prometheus.Metric) {
	for sport, n := range c.snapshot() {
		ch <- prometheus.MustNewConstMetric(wsSubscriptionsDesc, prometheus.GaugeValue, float64(n), sport)
	}
}
