package feed

import (
	"math/rand"
	"strconv"
	"sync"
	"time"
)

// Shape é o formato do payload devolvido pelo simulador
type Shape int

const (
	ShapeArray       Shape = iota // lista crua, como a v4 do fornecedor
	ShapeData                     // {"data": [...]}
	ShapeEvents                   // {"events": [...]}
	ShapeObjectTeams              // {"games": [...]} com times como objeto e campos alternativos
	shapeCount
)

func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeData:
		return "data"
	case ShapeEvents:
		return "events"
	case ShapeObjectTeams:
		return "object_teams"
	}
	return "unknown"
}

// Matchup é uma partida do catálogo fixo do simulador
type Matchup struct {
	ID         string
	Home, Away Team
	StartsIn   time.Duration
	Spread     float64 // linha do mandante
	Total      float64
}

type Team struct {
	FullName     string
	Abbreviation string
}

// Catalog lista as partidas simuladas
var Catalog = []Matchup{
	{ID: "sim-bos-nyk", Home: Team{"Boston Celtics", "BOS"}, Away: Team{"New York Knicks", "NYK"}, StartsIn: 90 * time.Minute, Spread: -4.5, Total: 221.5},
	{ID: "sim-den-phx", Home: Team{"Denver Nuggets", "DEN"}, Away: Team{"Phoenix Suns", "PHX"}, StartsIn: 3 * time.Hour, Spread: -3.0, Total: 229.0},
	{ID: "sim-mia-chi", Home: Team{"Miami Heat", "MIA"}, Away: Team{"Chicago Bulls", "CHI"}, StartsIn: 26 * time.Hour, Spread: -1.5, Total: 214.5},
}

// Bookmakers simulados: chave e título
var Bookmakers = [][2]string{
	{"draftkings", "DraftKings"},
	{"fanduel", "FanDuel"},
}

// Generator produz payloads com odds levemente variadas, alternando o formato a cada chamada
type Generator struct {
	mu   sync.Mutex
	rnd  *rand.Rand
	next Shape
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Next devolve o payload do próximo formato da rotação
func (g *Generator) Next(sport string, now time.Time) (any, Shape) {
	g.mu.Lock()
	shape := g.next
	g.next = (g.next + 1) % shapeCount
	g.mu.Unlock()
	return g.Payload(shape, sport, now), shape
}

// Payload monta o payload no formato pedido
func (g *Generator) Payload(shape Shape, sport string, now time.Time) any {
	games := make([]map[string]any, 0, len(Catalog))
	for _, m := range Catalog {
		if shape == ShapeObjectTeams {
			games = append(games, g.objectGame(m, now))
		} else {
			games = append(games, g.standardGame(m, sport, now))
		}
	}

	switch shape {
	case ShapeData:
		return map[string]any{"data": games}
	case ShapeEvents:
		return map[string]any{"events": games}
	case ShapeObjectTeams:
		return map[string]any{"games": games}
	}
	return games
}

type prices struct {
	homeML, awayML     float64
	homeSpr, awaySpr   float64
	over, under        float64
	spreadLine, totalL float64
}

func (g *Generator) quote(m Matchup) prices {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := float64(g.rnd.Intn(7)) * 5
	return prices{
		homeML:     -(120 + k),
		awayML:     100 + k,
		homeSpr:    -110 + float64(g.rnd.Intn(3))*5 - 5,
		awaySpr:    -110 - float64(g.rnd.Intn(3))*5 + 5,
		over:       -110 + float64(g.rnd.Intn(3))*5 - 5,
		under:      -110 - float64(g.rnd.Intn(3))*5 + 5,
		spreadLine: m.Spread + float64(g.rnd.Intn(3)-1)*0.5,
		totalL:     m.Total + float64(g.rnd.Intn(3)-1)*0.5,
	}
}

// standardGame segue o formato v4: home_team/away_team texto, bookmakers/markets/outcomes
func (g *Generator) standardGame(m Matchup, sport string, now time.Time) map[string]any {
	books := make([]map[string]any, 0, len(Bookmakers))
	for _, b := range Bookmakers {
		p := g.quote(m)
		books = append(books, map[string]any{
			"key":         b[0],
			"title":       b[1],
			"last_update": now.UTC().Format(time.RFC3339),
			"markets": []map[string]any{
				{"key": "h2h", "outcomes": []map[string]any{
					{"name": m.Home.FullName, "price": p.homeML},
					{"name": m.Away.FullName, "price": p.awayML},
				}},
				{"key": "spreads", "outcomes": []map[string]any{
					{"name": m.Home.FullName, "price": p.homeSpr, "point": p.spreadLine},
					{"name": m.Away.FullName, "price": p.awaySpr, "point": -p.spreadLine},
				}},
				{"key": "totals", "outcomes": []map[string]any{
					{"name": "Over", "price": p.over, "point": p.totalL},
					{"name": "Under", "price": p.under, "point": p.totalL},
				}},
			},
		})
	}

	return map[string]any{
		"id":            m.ID,
		"sport_key":     sport,
		"commence_time": now.Add(m.StartsIn).UTC().Format(time.RFC3339),
		"home_team":     m.Home.FullName,
		"away_team":     m.Away.FullName,
		"bookmakers":    books,
	}
}

// objectGame usa times como objeto, sites/odds/outcome e preços como texto
func (g *Generator) objectGame(m Matchup, now time.Time) map[string]any {
	team := func(t Team) map[string]any {
		return map[string]any{"full_name": t.FullName, "abbreviation": t.Abbreviation}
	}

	sites := make([]map[string]any, 0, len(Bookmakers))
	for _, b := range Bookmakers {
		p := g.quote(m)
		sites = append(sites, map[string]any{
			"site_key":  b[0],
			"site_nice": b[1],
			"odds": []map[string]any{
				{"market_key": "h2h", "outcome": []map[string]any{
					{"selection": m.Home.FullName, "odds": formatPrice(p.homeML)},
					{"selection": m.Away.FullName, "odds": formatPrice(p.awayML)},
				}},
				{"market_key": "spreads", "outcome": []map[string]any{
					{"selection": m.Home.FullName, "odds": p.homeSpr, "line": p.spreadLine},
					{"selection": m.Away.FullName, "odds": p.awaySpr, "line": -p.spreadLine},
				}},
				{"market_key": "totals", "outcome": []map[string]any{
					{"selection": "OVER", "odds": p.over, "line": p.totalL},
					{"selection": "UNDER", "odds": p.under, "line": p.totalL},
				}},
			},
		})
	}

	return map[string]any{
		"game_id":      m.ID,
		"start_time":   now.Add(m.StartsIn).Unix(),
		"home_team":    team(m.Home),
		"visitor_team": team(m.Away),
		"sites":        sites,
	}
}

// formatPrice escreve o preço americano como texto com sinal, ex.: "+105"
func formatPrice(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v > 0 {
		return "+" + s
	}
	return s
}
