package odds

// UnknownBookmaker é o nome usado quando o bookmaker não traz nenhum campo de nome reconhecível
const UnknownBookmaker = "unknown"

// Chaves de mercado usadas pelo fornecedor
const (
	MarketH2H     = "h2h"
	MarketSpreads = "spreads"
	MarketTotals  = "totals"
)

// GameOdds é a unidade canônica entregue aos chamadores
type GameOdds struct {
	GameID     string           `json:"gameId"`
	HomeTeam   string           `json:"homeTeam"`
	AwayTeam   string           `json:"awayTeam"`
	StartTime  string           `json:"startTime,omitempty"`
	Bookmakers []BookmakerQuote `json:"bookmakers"`
}

// BookmakerQuote agrupa as cotações de uma casa para um jogo.
// Todo preço/linha ausente é serializado como null, nunca omitido.
type BookmakerQuote struct {
	Name      string    `json:"name"`
	Moneyline Moneyline `json:"moneyline"`
	Spread    Spread    `json:"spread"`
	Total     Total     `json:"total"`
}

type Moneyline struct {
	Home *float64 `json:"home"`
	Away *float64 `json:"away"`
}

type Spread struct {
	Line *float64 `json:"line"`
	Home *float64 `json:"home"`
	Away *float64 `json:"away"`
}

type Total struct {
	Line  *float64 `json:"line"`
	Over  *float64 `json:"over"`
	Under *float64 `json:"under"`
}

// Price devolve um ponteiro para v; útil para montar cotações literais
func Price(v float64) *float64 { return &v }

// Clone devolve uma cópia profunda do jogo
func (g GameOdds) Clone() GameOdds {
	out := g
	if g.Bookmakers != nil {
		out.Bookmakers = make([]BookmakerQuote, len(g.Bookmakers))
		for i, b := range g.Bookmakers {
			out.Bookmakers[i] = b.clone()
		}
	}
	return out
}

func (b BookmakerQuote) clone() BookmakerQuote {
	return BookmakerQuote{
		Name:      b.Name,
		Moneyline: Moneyline{Home: dup(b.Moneyline.Home), Away: dup(b.Moneyline.Away)},
		Spread:    Spread{Line: dup(b.Spread.Line), Home: dup(b.Spread.Home), Away: dup(b.Spread.Away)},
		Total:     Total{Line: dup(b.Total.Line), Over: dup(b.Total.Over), Under: dup(b.Total.Under)},
	}
}

func dup(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CloneAll copia a sequência inteira, preservando a ordem
func CloneAll(games []GameOdds) []GameOdds {
	if games == nil {
		return nil
	}
	out := make([]GameOdds, len(games))
	for i, g := range games {
		out[i] = g.Clone()
	}
	return out
}
