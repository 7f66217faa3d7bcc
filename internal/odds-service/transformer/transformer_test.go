package transformer

import (
	"encoding/json"
	"testing"

	"github.com/radieske/sports-odds-gateway/pkg/contracts/odds"
)

func record(t *testing.T, s string) Record {
	t.Helper()
	var r Record
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return r
}

func eq(p *float64, want float64) bool { return p != nil && *p == want }

func TestTeamName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain string unchanged", `"Chicago Bulls"`, "Chicago Bulls"},
		{"full name wins", `{"full_name":"Chicago Bulls","name":"Bulls","abbreviation":"CHI"}`, "Chicago Bulls"},
		{"short name next", `{"name":"Bulls","abbreviation":"CHI"}`, "Bulls"},
		{"abbreviation only", `{"abbreviation":"CHI"}`, "CHI"},
		{"code", `{"code":"CHI","id":4}`, "CHI"},
		{"raw team field", `{"team":"Bulls"}`, "Bulls"},
		{"nested team object", `{"team":{"abbreviation":"LAL"}}`, "LAL"},
		{"nothing usable", `{"id":4}`, ""},
		{"number", `4`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v any
			if err := json.Unmarshal([]byte(tt.in), &v); err != nil {
				t.Fatal(err)
			}
			if got := TeamName(v); got != tt.want {
				t.Errorf("TeamName(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransform_MoneylineTieBreak(t *testing.T) {
	r := record(t, `{
		"id": "g1", "home_team": "Bulls", "away_team": "Lakers",
		"bookmakers": [{"title": "BookA", "markets": [{"key": "h2h", "outcomes": [
			{"name": "Lakers", "price": -150},
			{"name": "Bulls", "price": 130},
			{"name": "Draw", "price": 900}
		]}]}]
	}`)

	g, ok := Transform(r)
	if !ok {
		t.Fatal("Transform() ok = false")
	}
	ml := g.Bookmakers[0].Moneyline
	if !eq(ml.Home, 130) || !eq(ml.Away, -150) {
		t.Errorf("moneyline = %v/%v, want 130/-150", ml.Home, ml.Away)
	}
}

func TestTransform_SpreadLineFromHomeOnly(t *testing.T) {
	tests := []struct {
		name      string
		outcomes  string
		wantLine  float64
		wantPrice float64
	}{
		{
			name:      "home first",
			outcomes:  `[{"name":"Bulls","price":-110,"point":-2.5},{"name":"Lakers","price":-105,"point":2.5}]`,
			wantLine:  -2.5,
			wantPrice: -110,
		},
		{
			name:      "away first does not set line",
			outcomes:  `[{"name":"Lakers","price":-105,"point":2.5},{"name":"Bulls","price":-110,"point":-2.5}]`,
			wantLine:  -2.5,
			wantPrice: -110,
		},
		{
			name:      "later home outcome keeps price and line paired",
			outcomes:  `[{"name":"Bulls","price":-110,"point":-2.5},{"name":"Bulls","price":-120,"point":-3.5}]`,
			wantLine:  -3.5,
			wantPrice: -120,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := record(t, `{"id":"g1","home_team":"Bulls","away_team":"Lakers",
				"bookmakers":[{"title":"B","markets":[{"key":"spreads","outcomes":`+tt.outcomes+`}]}]}`)
			g, _ := Transform(r)
			s := g.Bookmakers[0].Spread
			if !eq(s.Line, tt.wantLine) {
				t.Errorf("spread.line = %v, want %v", s.Line, tt.wantLine)
			}
			if !eq(s.Home, tt.wantPrice) {
				t.Errorf("spread.home = %v, want %v", s.Home, tt.wantPrice)
			}
		})
	}
}

// mercado alternativo no mesmo bookmaker: preço e linha vêm do mesmo outcome
func TestTransform_AlternateSpreadMarketPairsPriceAndLine(t *testing.T) {
	r := record(t, `{"id":"g1","home_team":"Bulls","away_team":"Lakers",
		"bookmakers":[{"title":"B","markets":[
			{"key":"spreads","outcomes":[{"name":"Bulls","price":-110,"point":-2.5},{"name":"Lakers","price":-110,"point":2.5}]},
			{"key":"spreads","outcomes":[{"name":"Bulls","price":150,"point":-7.5},{"name":"Lakers","price":-180,"point":7.5}]}
		]}]}`)
	g, _ := Transform(r)
	s := g.Bookmakers[0].Spread
	if !eq(s.Line, -7.5) || !eq(s.Home, 150) || !eq(s.Away, -180) {
		t.Errorf("spread = line %v home %v away %v, want -7.5/150/-180", s.Line, s.Home, s.Away)
	}
}

func TestTransform_SpreadAwayOnlyLeavesLineNull(t *testing.T) {
	r := record(t, `{"id":"g1","home_team":"Bulls","away_team":"Lakers",
		"bookmakers":[{"title":"B","markets":[{"key":"spreads","outcomes":[{"name":"Lakers","price":-105,"point":2.5}]}]}]}`)
	g, _ := Transform(r)
	s := g.Bookmakers[0].Spread
	if s.Line != nil || s.Home != nil {
		t.Errorf("spread line/home = %v/%v, want nil/nil", s.Line, s.Home)
	}
	if !eq(s.Away, -105) {
		t.Errorf("spread.away = %v, want -105", s.Away)
	}
}

func TestTransform_TotalsCaseInsensitive(t *testing.T) {
	r := record(t, `{"id":"g1","home_team":"Bulls","away_team":"Lakers",
		"bookmakers":[{"title":"B","markets":[{"key":"totals","outcomes":[
			{"name":"under","price":-105,"point":224.5},
			{"name":"Over","price":-115,"point":225.5}
		]}]}]}`)
	g, _ := Transform(r)
	tot := g.Bookmakers[0].Total
	if !eq(tot.Over, -115) || !eq(tot.Under, -105) {
		t.Errorf("total over/under = %v/%v, want -115/-105", tot.Over, tot.Under)
	}
	if !eq(tot.Line, 225.5) {
		t.Errorf("total.line = %v, want 225.5 (from over)", tot.Line)
	}
}

func TestTransform_AlternateFieldNames(t *testing.T) {
	r := record(t, `{
		"event_id": 991,
		"homeTeam": {"full_name": "Chicago Bulls", "abbreviation": "CHI"},
		"awayTeam": {"abbreviation": "LAL"},
		"start_time": "2025-01-01T19:00:00Z",
		"sites": [{"site_nice": "SiteX", "odds": [
			{"key": "h2h", "outcome": [{"selection": "Chicago Bulls", "odds": "-120"}, {"selection": "LAL", "odds": 100}]},
			{"key": "spreads", "outcome": [{"selection": "Chicago Bulls", "odds": -110, "line": 0}]}
		]}]
	}`)

	g, ok := Transform(r)
	if !ok {
		t.Fatal("Transform() ok = false")
	}
	if g.GameID != "991" {
		t.Errorf("GameID = %q, want 991", g.GameID)
	}
	if g.HomeTeam != "Chicago Bulls" || g.AwayTeam != "LAL" {
		t.Errorf("teams = %q/%q", g.HomeTeam, g.AwayTeam)
	}
	if g.StartTime != "2025-01-01T19:00:00Z" {
		t.Errorf("StartTime = %q", g.StartTime)
	}
	q := g.Bookmakers[0]
	if q.Name != "SiteX" {
		t.Errorf("Name = %q, want SiteX", q.Name)
	}
	if !eq(q.Moneyline.Home, -120) || !eq(q.Moneyline.Away, 100) {
		t.Errorf("moneyline = %v/%v", q.Moneyline.Home, q.Moneyline.Away)
	}
	// zero é uma linha válida e não pode ser confundida com ausência
	if !eq(q.Spread.Line, 0) {
		t.Errorf("spread.line = %v, want 0", q.Spread.Line)
	}
}

func TestTransform_UnknownBookmakerAndDuplicates(t *testing.T) {
	r := record(t, `{"id":"g1","home_team":"A","away_team":"B",
		"bookmakers":[{"markets":[]},{"title":"Dup"},{"title":"Dup"},"junk"]}`)
	g, _ := Transform(r)
	if len(g.Bookmakers) != 3 {
		t.Fatalf("len(Bookmakers) = %d, want 3", len(g.Bookmakers))
	}
	if g.Bookmakers[0].Name != odds.UnknownBookmaker {
		t.Errorf("Name = %q, want %q", g.Bookmakers[0].Name, odds.UnknownBookmaker)
	}
	if g.Bookmakers[1].Name != "Dup" || g.Bookmakers[2].Name != "Dup" {
		t.Errorf("duplicates not preserved in order: %+v", g.Bookmakers)
	}
}

func TestTransformAll_DropsRecordsWithoutID(t *testing.T) {
	recs := []Record{
		record(t, `{"home_team":"A","away_team":"B","bookmakers":[]}`),
		record(t, `{"id":"","home_team":"A"}`),
		record(t, `{"id":"ok"}`),
	}
	got := TransformAll(recs)
	if len(got) != 1 || got[0].GameID != "ok" {
		t.Errorf("TransformAll() = %+v, want only game ok", got)
	}
}

func TestTransform_ShapeTotality(t *testing.T) {
	r := record(t, `{"id":"g1","home_team":"Bulls","away_team":"Lakers","bookmakers":[{"title":"BookA"}]}`)
	g, _ := Transform(r)

	b, err := json.Marshal(g.Bookmakers[0])
	if err != nil {
		t.Fatal(err)
	}
	var m struct {
		Moneyline map[string]any `json:"moneyline"`
		Spread    map[string]any `json:"spread"`
		Total     map[string]any `json:"total"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	groups := map[string]map[string]any{"moneyline": m.Moneyline, "spread": m.Spread, "total": m.Total}

	want := map[string][]string{
		"moneyline": {"home", "away"},
		"spread":    {"line", "home", "away"},
		"total":     {"line", "over", "under"},
	}
	for group, fields := range want {
		for _, f := range fields {
			v, ok := groups[group][f]
			if !ok {
				t.Errorf("%s.%s missing from JSON", group, f)
			} else if v != nil {
				t.Errorf("%s.%s = %v, want null", group, f, v)
			}
		}
	}
}

func TestNumber(t *testing.T) {
	if Number(nil) != nil {
		t.Error("Number(nil) != nil")
	}
	if Number(true) != nil {
		t.Error("Number(true) != nil")
	}
	if Number("abc") != nil {
		t.Error(`Number("abc") != nil`)
	}
	if p := Number(0.0); !eq(p, 0) {
		t.Errorf("Number(0) = %v, want 0", p)
	}
	if p := Number(json.Number("-110")); !eq(p, -110) {
		t.Errorf("Number(json.Number) = %v, want -110", p)
	}
}
