package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/radieske/sports-odds-gateway/internal/odds-service/cache"
	"github.com/radieske/sports-odds-gateway/internal/odds-service/normalizer"
	"github.com/radieske/sports-odds-gateway/internal/odds-service/transformer"
	"github.com/radieske/sports-odds-gateway/internal/odds-service/upstream"
	"github.com/radieske/sports-odds-gateway/internal/shared/config"
	"github.com/radieske/sports-odds-gateway/pkg/contracts/events"
	"github.com/radieske/sports-odds-gateway/pkg/contracts/odds"
)

// mirrorTimeout limita leituras/escritas no espelho Redis
const mirrorTimeout = 500 * time.Millisecond

// Source informa de onde veio o snapshot entregue
type Source string

const (
	SourceCache     Source = "cache"
	SourceUpstream  Source = "upstream"
	SourceStale     Source = "stale"
	SourceMirror    Source = "mirror"
	SourceSynthetic Source = "synthetic"
)

// Fetcher é o cliente do fornecedor de odds
type Fetcher interface {
	Configured() bool
	Fetch(ctx context.Context, sportKey string) ([]byte, error)
}

// SnapshotMirror é um segundo nível de fallback compartilhado entre réplicas
type SnapshotMirror interface {
	Get(ctx context.Context, sport string) (cache.Entry, bool, error)
	Set(ctx context.Context, sport string, e cache.Entry) error
}

// Snapshot é o resultado entregue aos chamadores
type Snapshot struct {
	Sport     string
	Games     []odds.GameOdds
	FetchedAt time.Time
	Source    Source
}

// Attempt descreve uma tentativa de atualização junto ao fornecedor
type Attempt struct {
	ID         string
	Sport      string
	Outcome    string // "success" | "timeout" | "network" | "upstream_status" | "parse"
	HTTPStatus int
	GameCount  int
	Duration   time.Duration
	Err        error
	At         time.Time
}

// Service orquestra cache, fornecedor, fallback antigo e dados sintéticos.
// Callbacks de métricas/integrações são opcionais e chamados de forma síncrona.
type Service struct {
	Log      *zap.Logger
	Upstream Fetcher
	Cache    *cache.Freshness
	Mirror   SnapshotMirror // opcional

	FreshTTL time.Duration
	StaleTTL time.Duration
	Now      func() time.Time

	OnServed        func(sport string, source Source)
	OnUpstreamError func(kind string)
	OnAttempt       func(a Attempt)
	OnRefreshed     func(ev events.SnapshotRefreshed)

	flights singleflight.Group
}

// New cria o serviço; staleTTL é elevado para max(stale, fresh, 10s)
func New(log *zap.Logger, up Fetcher, c *cache.Freshness, freshTTL, staleTTL time.Duration) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if c == nil {
		c = cache.NewFreshness()
	}
	return &Service{
		Log:      log,
		Upstream: up,
		Cache:    c,
		FreshTTL: freshTTL,
		StaleTTL: config.EffectiveStaleTTL(freshTTL, staleTTL),
		Now:      time.Now,
	}
}

// GetOdds devolve o snapshot atual de odds de um esporte
func (s *Service) GetOdds(ctx context.Context, sport string) ([]odds.GameOdds, error) {
	snap, err := s.GetSnapshot(ctx, sport)
	if err != nil {
		return nil, err
	}
	return snap.Games, nil
}

// GetSnapshot segue a ordem: cache fresco, sintético (sem chave), fornecedor,
// cache antigo, espelho e, por fim, UpstreamUnavailableError
func (s *Service) GetSnapshot(ctx context.Context, sport string) (Snapshot, error) {
	// 1) cache fresco
	if e, ok := s.Cache.Within(sport, s.Now(), s.FreshTTL); ok {
		s.Log.Debug("odds cache hit", zap.String("sport", sport), zap.Duration("age", e.Age(s.Now())))
		return s.served(Snapshot{Sport: sport, Games: e.Data, FetchedAt: e.FetchedAt, Source: SourceCache}), nil
	}

	// 2) sem fornecedor configurado
	if s.Upstream == nil || !s.Upstream.Configured() {
		return s.SyntheticSnapshot(sport), nil
	}

	// 3..5) uma única chamada em voo por esporte; os demais aguardam o resultado
	flightCtx := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(sport, func() (any, error) {
		return s.refresh(flightCtx, sport)
	})

	select {
	case <-ctx.Done():
		// a atualização continua e grava o cache por inteiro; só este chamador desiste
		return Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Snapshot{}, res.Err
		}
		snap := res.Val.(Snapshot)
		if res.Shared {
			snap.Games = odds.CloneAll(snap.Games)
		}
		return s.served(snap), nil
	}
}

// SyntheticSnapshot devolve os dados de demonstração sem tocar no cache
func (s *Service) SyntheticSnapshot(sport string) Snapshot {
	now := s.Now()
	return s.served(Snapshot{Sport: sport, Games: Synthetic(now), FetchedAt: now, Source: SourceSynthetic})
}

func (s *Service) refresh(ctx context.Context, sport string) (Snapshot, error) {
	// outra chamada pode ter acabado de atualizar enquanto esta aguardava
	if e, ok := s.Cache.Within(sport, s.Now(), s.FreshTTL); ok {
		return Snapshot{Sport: sport, Games: e.Data, FetchedAt: e.FetchedAt, Source: SourceCache}, nil
	}

	attempt := Attempt{ID: uuid.NewString(), Sport: sport, At: s.Now()}
	start := time.Now()

	raw, err := s.Upstream.Fetch(ctx, sport)
	var payload any
	if err == nil {
		payload, err = upstream.Decode(raw)
	}
	attempt.Duration = time.Since(start)

	if err != nil {
		attempt.Outcome, attempt.HTTPStatus = classify(err)
		attempt.Err = err
		s.attempted(attempt)
		if s.OnUpstreamError != nil {
			s.OnUpstreamError(attempt.Outcome)
		}
		return s.fallback(ctx, sport, attempt, err)
	}

	games := transformer.TransformAll(normalizer.Normalize(payload))
	fetchedAt := s.Now()
	s.Cache.Store(sport, games, fetchedAt)

	attempt.Outcome = "success"
	attempt.GameCount = len(games)
	s.attempted(attempt)

	s.Log.Info("odds snapshot refreshed",
		zap.String("sport", sport),
		zap.Int("games", len(games)),
		zap.Duration("latency", attempt.Duration),
	)

	if s.Mirror != nil {
		mctx, cancel := context.WithTimeout(ctx, mirrorTimeout)
		if err := s.Mirror.Set(mctx, sport, cache.Entry{Data: games, FetchedAt: fetchedAt}); err != nil {
			s.Log.Warn("odds mirror write failed", zap.String("sport", sport), zap.Error(err))
		}
		cancel()
	}

	if s.OnRefreshed != nil {
		s.OnRefreshed(events.SnapshotRefreshed{
			RefreshID: attempt.ID,
			SportKey:  sport,
			FetchedAt: fetchedAt,
			GameCount: len(games),
			Games:     odds.CloneAll(games),
		})
	}

	return Snapshot{Sport: sport, Games: games, FetchedAt: fetchedAt, Source: SourceUpstream}, nil
}

// fallback tenta o cache antigo e depois o espelho; sem nenhum, a falha sobe ao chamador
func (s *Service) fallback(ctx context.Context, sport string, a Attempt, cause error) (Snapshot, error) {
	now := s.Now()

	if e, ok := s.Cache.Within(sport, now, s.StaleTTL); ok {
		s.Log.Warn("odds upstream failed, serving stale cache",
			zap.String("sport", sport),
			zap.String("kind", a.Outcome),
			zap.Duration("age", e.Age(now)),
			zap.Error(cause),
		)
		return Snapshot{Sport: sport, Games: e.Data, FetchedAt: e.FetchedAt, Source: SourceStale}, nil
	}

	if s.Mirror != nil {
		mctx, cancel := context.WithTimeout(ctx, mirrorTimeout)
		e, ok, err := s.Mirror.Get(mctx, sport)
		cancel()
		switch {
		case err != nil:
			s.Log.Warn("odds mirror read failed", zap.String("sport", sport), zap.Error(err))
		case ok && e.Age(now) < s.StaleTTL:
			s.Log.Warn("odds upstream failed, serving mirrored snapshot",
				zap.String("sport", sport),
				zap.String("kind", a.Outcome),
				zap.Duration("age", e.Age(now)),
				zap.Error(cause),
			)
			return Snapshot{Sport: sport, Games: e.Data, FetchedAt: e.FetchedAt, Source: SourceMirror}, nil
		}
	}

	s.Log.Error("odds upstream unavailable",
		zap.String("sport", sport),
		zap.String("kind", a.Outcome),
		zap.Int("status", a.HTTPStatus),
		zap.Error(cause),
	)
	return Snapshot{}, &UpstreamUnavailableError{Sport: sport, Status: a.HTTPStatus, Err: cause}
}

func (s *Service) served(snap Snapshot) Snapshot {
	if s.OnServed != nil {
		s.OnServed(snap.Sport, snap.Source)
	}
	return snap
}

func (s *Service) attempted(a Attempt) {
	if s.OnAttempt != nil {
		s.OnAttempt(a)
	}
}

// classify traduz o erro do fornecedor em (outcome, status HTTP)
func classify(err error) (string, int) {
	var te *upstream.TransportError
	if errors.As(err, &te) {
		return string(te.Kind), te.Status
	}
	var pe *upstream.ParseError
	if errors.As(err, &pe) {
		return "parse", 0
	}
	return string(upstream.KindNetwork), 0
}
