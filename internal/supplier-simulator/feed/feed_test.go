package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/radieske/sports-odds-gateway/internal/odds-service/normalizer"
	"github.com/radieske/sports-odds-gateway/internal/odds-service/transformer"
	"github.com/radieske/sports-odds-gateway/internal/odds-service/upstream"
)

var now = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

func TestGenerator_RotatesShapes(t *testing.T) {
	g := NewGenerator(1)
	want := []Shape{ShapeArray, ShapeData, ShapeEvents, ShapeObjectTeams, ShapeArray}
	for i, w := range want {
		if _, got := g.Next("basketball_nba", now); got != w {
			t.Errorf("call %d shape = %v, want %v", i, got, w)
		}
	}
}

// cada formato precisa sair do pipeline com os mesmos jogos e mercados completos
func TestGenerator_EveryShapeTransforms(t *testing.T) {
	g := NewGenerator(42)

	for s := ShapeArray; s < shapeCount; s++ {
		t.Run(s.String(), func(t *testing.T) {
			raw, err := json.Marshal(g.Payload(s, "basketball_nba", now))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			payload, err := upstream.Decode(raw)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			games := transformer.TransformAll(normalizer.Normalize(payload))

			if len(games) != len(Catalog) {
				t.Fatalf("games = %d, want %d", len(games), len(Catalog))
			}
			for i, m := range Catalog {
				got := games[i]
				if got.GameID != m.ID || got.HomeTeam != m.Home.FullName || got.AwayTeam != m.Away.FullName {
					t.Errorf("game %d = %s %q vs %q", i, got.GameID, got.HomeTeam, got.AwayTeam)
				}
				if got.StartTime != now.Add(m.StartsIn).Format(time.RFC3339) {
					t.Errorf("game %d start = %q", i, got.StartTime)
				}
				if len(got.Bookmakers) != len(Bookmakers) {
					t.Fatalf("game %d bookmakers = %d", i, len(got.Bookmakers))
				}
				for j, bq := range got.Bookmakers {
					if bq.Name != Bookmakers[j][1] {
						t.Errorf("bookmaker = %q, want %q", bq.Name, Bookmakers[j][1])
					}
					for name, v := range map[string]*float64{
						"moneyline.home": bq.Moneyline.Home, "moneyline.away": bq.Moneyline.Away,
						"spread.line": bq.Spread.Line, "spread.home": bq.Spread.Home, "spread.away": bq.Spread.Away,
						"total.line": bq.Total.Line, "total.over": bq.Total.Over, "total.under": bq.Total.Under,
					} {
						if v == nil {
							t.Errorf("game %d %s %s = nil", i, bq.Name, name)
						}
					}
					if bq.Moneyline.Home != nil && *bq.Moneyline.Home >= 0 {
						t.Errorf("home moneyline = %v, want favourite price", *bq.Moneyline.Home)
					}
				}
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{105, "+105"},
		{-120, "-120"},
		{-110.5, "-110.5"},
	}
	for _, tt := range tests {
		if got := formatPrice(tt.in); got != tt.want {
			t.Errorf("formatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func newClient(t *testing.T, s *Server, header bool) *upstream.Client {
	t.Helper()
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return upstream.New(upstream.Options{
		BaseURL:    srv.URL + "/v4",
		APIKey:     "dev",
		KeyInQuery: !header,
		KeyHeader:  "x-rapidapi-key",
		Timeout:    2 * time.Second,
	}, nil)
}

func TestServer_ServesUpstreamClient(t *testing.T) {
	for _, header := range []bool{false, true} {
		s := &Server{Gen: NewGenerator(7), Quota: 500, Now: func() time.Time { return now }}
		c := newClient(t, s, header)

		raw, err := c.Fetch(context.Background(), "basketball_nba")
		if err != nil {
			t.Fatalf("Fetch() header=%v error = %v", header, err)
		}
		payload, err := upstream.Decode(raw)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if n := len(normalizer.Normalize(payload)); n != len(Catalog) {
			t.Errorf("records = %d, want %d", n, len(Catalog))
		}
	}
}

func TestServer_Failures(t *testing.T) {
	tests := []struct {
		name       string
		server     *Server
		target     string
		wantStatus int
	}{
		{"missing key", &Server{Gen: NewGenerator(1)}, "/v4/sports/basketball_nba/odds", http.StatusUnauthorized},
		{"forced 503", &Server{Gen: NewGenerator(1)}, "/v4/sports/basketball_nba/odds?apiKey=x&fail=503", http.StatusServiceUnavailable},
		{"forced 429", &Server{Gen: NewGenerator(1)}, "/v4/sports/basketball_nba/odds?apiKey=x&fail=429", http.StatusTooManyRequests},
		{"invalid fail code", &Server{Gen: NewGenerator(1)}, "/v4/sports/basketball_nba/odds?apiKey=x&fail=abc", http.StatusServiceUnavailable},
		{"fail rate 1", &Server{Gen: NewGenerator(1), FailRate: 1}, "/v4/sports/basketball_nba/odds?apiKey=x", http.StatusServiceUnavailable},
		{"ok", &Server{Gen: NewGenerator(1)}, "/v4/sports/basketball_nba/odds?apiKey=x", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_FailureSurfacesAsTransportError(t *testing.T) {
	s := &Server{Gen: NewGenerator(1), FailRate: 1}
	c := newClient(t, s, false)

	_, err := c.Fetch(context.Background(), "basketball_nba")
	var te *upstream.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Fetch() error = %v, want TransportError", err)
	}
	if te.Kind != upstream.KindUpstreamStatus || te.Status != http.StatusServiceUnavailable {
		t.Errorf("TransportError = %+v", te)
	}
}

func TestServer_QuotaHeaders(t *testing.T) {
	s := &Server{Gen: NewGenerator(1), Quota: 2}
	h := s.Router()

	for i, want := range []string{"1", "0", "0"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v4/sports/nba/odds?apiKey=x", nil))
		if got := rec.Header().Get("x-requests-remaining"); got != want {
			t.Errorf("call %d remaining = %q, want %q", i, got, want)
		}
	}
}
