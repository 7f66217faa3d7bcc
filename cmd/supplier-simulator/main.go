package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/sports-odds-gateway/internal/shared/config"
	"github.com/radieske/sports-odds-gateway/internal/shared/logger"
	"github.com/radieske/sports-odds-gateway/internal/shared/metrics"
	"github.com/radieske/sports-odds-gateway/internal/supplier-simulator/feed"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	logger.Warnings(log, cfg.Warnings)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	s := &feed.Server{
		Gen:      feed.NewGenerator(time.Now().UnixNano()),
		Log:      log,
		FailRate: cfg.SupplierFailRate,
		Quota:    500,
		Requests: feed.NewRequestsCounter(reg),
	}

	// ==== servidor de métricas (/healthz, /metrics)
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, reg, log)

	// ==== servidor público: GET /v4/sports/{sport}/odds
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("supplier simulator (public) running",
			zap.String("addr", srv.Addr),
			zap.String("paths", "/v4/sports/{sport}/odds"),
			zap.Float64("fail_rate", cfg.SupplierFailRate),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("public server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
