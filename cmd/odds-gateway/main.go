package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	oddscache "github.com/radieske/sports-odds-gateway/internal/odds-service/cache"
	httpapi "github.com/radieske/sports-odds-gateway/internal/odds-service/http"
	"github.com/radieske/sports-odds-gateway/internal/odds-service/publisher"
	"github.com/radieske/sports-odds-gateway/internal/odds-service/repo"
	"github.com/radieske/sports-odds-gateway/internal/odds-service/service"
	"github.com/radieske/sports-odds-gateway/internal/odds-service/upstream"
	"github.com/radieske/sports-odds-gateway/internal/odds-service/ws"
	"github.com/radieske/sports-odds-gateway/internal/shared/cache"
	"github.com/radieske/sports-odds-gateway/internal/shared/config"
	"github.com/radieske/sports-odds-gateway/internal/shared/db"
	"github.com/radieske/sports-odds-gateway/internal/shared/logger"
	"github.com/radieske/sports-odds-gateway/internal/shared/metrics"
	"github.com/radieske/sports-odds-gateway/pkg/contracts/events"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()
	logger.Warnings(log, cfg.Warnings)

	log.Info("starting service",
		zap.String("default_sport", cfg.DefaultSport),
		zap.Duration("fresh_ttl", cfg.FreshTTL),
		zap.Duration("stale_ttl", cfg.StaleTTL),
		zap.Bool("upstream_configured", cfg.OddsAPIKey != ""),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// métricas próprias num registry dedicado
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewOdds(reg)

	// núcleo: cliente do fornecedor + orquestrador
	client := upstream.New(upstream.Options{
		BaseURL:    cfg.OddsAPIBaseURL,
		APIKey:     cfg.OddsAPIKey,
		KeyInQuery: cfg.OddsAPIKeyMode != config.KeyModeHeader,
		KeyHeader:  cfg.OddsAPIKeyHeader,
		Regions:    cfg.OddsAPIRegions,
		Markets:    cfg.OddsAPIMarkets,
		OddsFormat: cfg.OddsAPIOddsFormat,
		DateFormat: cfg.OddsAPIDateFormat,
		Timeout:    cfg.OddsAPITimeout,
	}, log.Named("upstream"))

	svc := service.New(log.Named("orchestrator"), client, oddscache.NewFreshness(), cfg.FreshTTL, cfg.StaleTTL)

	var (
		checks []metrics.Check
		sinks  []publisher.Sink
		hub    = ws.NewHub(func(r *http.Request) bool { return true }, log.Named("ws"))
		audit  *repo.RefreshLog
	)

	// Postgres: auditoria das tentativas (opcional)
	if cfg.PostgresDSN != "" {
		pg, err := db.ConnectPostgres(cfg.PostgresDSN)
		if err != nil {
			log.Warn("postgres unavailable, refresh log disabled", zap.Error(err))
		} else {
			defer pg.Close()
			audit = &repo.RefreshLog{DB: pg}
			sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := audit.EnsureSchema(sctx); err != nil {
				log.Warn("refresh log schema", zap.Error(err))
			}
			cancel()
			checks = append(checks, metrics.Check{Name: "postgres", Fn: pg.PingContext})
			log.Info("postgres connected")
		}
	}

	// Redis: espelho do snapshot + Pub/Sub para os hubs WebSocket (opcional)
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			log.Warn("redis unavailable, mirror and ws fan-out disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			svc.Mirror = oddscache.NewMirror(rdb, svc.StaleTTL)
			sinks = append(sinks, &publisher.RedisBroadcaster{R: rdb, Channel: cfg.RedisPubSubChannel})
			ws.StartRedisSubscriber(ctx, rdb, cfg.RedisPubSubChannel, hub, log.Named("ws"))
			checks = append(checks, metrics.Check{Name: "redis", Fn: func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}})
			log.Info("redis connected")
		}
	}

	// Kafka: eventos de snapshot para consumidores externos (opcional)
	if cfg.KafkaBrokers != "" {
		kp, err := publisher.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.TopicOddsSnapshots, cfg.Env, log.Named("kafka"))
		if err != nil {
			log.Warn("kafka publisher disabled", zap.Error(err))
		} else {
			defer kp.Close()
			sinks = append(sinks, kp)
			log.Info("kafka writer ready", zap.String("topic", cfg.TopicOddsSnapshots))
		}
	}

	dispatcher := publisher.NewDispatcher(log.Named("publisher"), 64, sinks...)
	dispatcher.OnError = m.PublishError
	dispatcher.Start(ctx)
	metrics.RegisterSubscriptions(reg, hub.Subscriptions)

	// hooks -> métricas e integrações
	svc.OnServed = func(sport string, source service.Source) {
		m.Served(sport, string(source))
	}
	svc.OnUpstreamError = m.UpstreamError
	svc.OnAttempt = func(a service.Attempt) {
		m.Attempt(a.Duration)
		if audit == nil {
			return
		}
		go func() {
			actx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := audit.Insert(actx, a); err != nil {
				log.Warn("refresh log insert failed", zap.String("sport", a.Sport), zap.Error(err))
			}
		}()
	}
	svc.OnRefreshed = func(ev events.SnapshotRefreshed) {
		m.Refreshed(ev.SportKey, ev.GameCount)
		dispatcher.Enqueue(ev)
	}

	// servidor de métricas e health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, reg, log, checks...)

	api := &httpapi.API{
		Svc:                svc,
		Log:                log.Named("http"),
		DefaultSport:       cfg.DefaultSport,
		SyntheticOnFailure: cfg.SyntheticOnFailure,
		WS:                 hub.HandleWS,
	}
	if audit != nil {
		api.Refreshes = audit
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("odds-gateway listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	dispatcher.Wait()
}
