package transformer

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/radieske/sports-odds-gateway/internal/odds-service/normalizer"
	"github.com/radieske/sports-odds-gateway/pkg/contracts/odds"
)

type Record = normalizer.Record

// Nomes de campo aceitos por versão do fornecedor, em ordem de prioridade
var (
	HomeTeamKeys  = []string{"home_team", "homeTeam", "home"}
	AwayTeamKeys  = []string{"away_team", "awayTeam", "away", "visitor_team"}
	StartTimeKeys = []string{"commence_time", "start_time", "startTime", "date", "scheduled"}

	// nome completo, nome curto, abreviação, código, campo "team" cru
	TeamNameKeys = []string{
		"full_name", "fullName", "display_name", "displayName",
		"name", "short_name", "shortName",
		"abbreviation", "abbr",
		"code",
		"team",
	}

	BookmakerNameKeys = []string{"title", "name", "site_nice", "key", "site_key"}
	MarketListKeys    = []string{"markets", "odds"}
	MarketKeyKeys     = []string{"key", "market_key"}
	OutcomeListKeys   = []string{"outcomes", "outcome"}
	OutcomeNameKeys   = []string{"name", "selection"}
	OutcomePriceKeys  = []string{"price", "odds"}
	OutcomePointKeys  = []string{"point", "line"}
)

// TransformAll converte os registros crus, descartando os que não têm identificador
func TransformAll(records []Record) []odds.GameOdds {
	out := make([]odds.GameOdds, 0, len(records))
	for _, r := range records {
		if g, ok := Transform(r); ok {
			out = append(out, g)
		}
	}
	return out
}

// Transform converte um registro de jogo no formato canônico.
// Retorna false quando o registro não tem identificador reconhecível.
func Transform(r Record) (odds.GameOdds, bool) {
	id, ok := identifier(r)
	if !ok {
		return odds.GameOdds{}, false
	}

	g := odds.GameOdds{
		GameID:     id,
		HomeTeam:   TeamName(first(r, HomeTeamKeys)),
		AwayTeam:   TeamName(first(r, AwayTeamKeys)),
		StartTime:  startTime(first(r, StartTimeKeys)),
		Bookmakers: []odds.BookmakerQuote{},
	}

	for _, item := range list(r, normalizer.BookmakerListKeys) {
		bm, ok := item.(Record)
		if !ok {
			continue
		}
		g.Bookmakers = append(g.Bookmakers, quote(bm, g.HomeTeam, g.AwayTeam))
	}
	return g, true
}

// TeamName resolve o nome de exibição de um time representado como texto ou objeto
func TeamName(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case Record:
		for _, k := range TeamNameKeys {
			if name := TeamName(t[k]); name != "" {
				return name
			}
		}
	}
	return ""
}

func quote(bm Record, home, away string) odds.BookmakerQuote {
	q := odds.BookmakerQuote{Name: odds.UnknownBookmaker}
	if name, ok := str(first(bm, BookmakerNameKeys)); ok && name != "" {
		q.Name = name
	}

	for _, item := range list(bm, MarketListKeys) {
		market, ok := item.(Record)
		if !ok {
			continue
		}
		key, _ := str(first(market, MarketKeyKeys))

		for _, o := range list(market, OutcomeListKeys) {
			outcome, ok := o.(Record)
			if !ok {
				continue
			}
			name := TeamName(first(outcome, OutcomeNameKeys))
			price := Number(first(outcome, OutcomePriceKeys))
			point := Number(first(outcome, OutcomePointKeys))

			switch key {
			case odds.MarketH2H:
				switch side(name, home, away) {
				case sideHome:
					q.Moneyline.Home = price
				case sideAway:
					q.Moneyline.Away = price
				}
			case odds.MarketSpreads:
				switch side(name, home, away) {
				case sideHome:
					// preço e linha sempre do mesmo outcome; o visitante nunca mexe na linha
					q.Spread.Home = price
					q.Spread.Line = point
				case sideAway:
					q.Spread.Away = price
				}
			case odds.MarketTotals:
				lower := strings.ToLower(name)
				switch {
				case strings.Contains(lower, "over"):
					q.Total.Over = price
					q.Total.Line = point
				case strings.Contains(lower, "under"):
					q.Total.Under = price
				}
			}
		}
	}
	return q
}

type sideKind int

const (
	sideNone sideKind = iota
	sideHome
	sideAway
)

func side(name, home, away string) sideKind {
	switch {
	case name == "":
		return sideNone
	case name == home:
		return sideHome
	case name == away:
		return sideAway
	default:
		return sideNone
	}
}

// Number converte preço/linha em número; ausência ou valor inválido vira nil (zero é válido)
func Number(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return &f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return &f
		}
	}
	return nil
}

func identifier(r Record) (string, bool) {
	for _, k := range normalizer.IDKeys {
		if s, ok := str(r[k]); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// startTime mantém strings como vieram; epoch numérico (dateFormat=unix) vira RFC3339
func startTime(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return time.Unix(int64(t), 0).UTC().Format(time.RFC3339)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return time.Unix(n, 0).UTC().Format(time.RFC3339)
		}
		if f, err := t.Float64(); err == nil {
			return time.Unix(int64(f), 0).UTC().Format(time.RFC3339)
		}
	}
	return ""
}

func str(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case json.Number:
		return s.String(), true
	}
	return "", false
}

func first(r Record, keys []string) any {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func list(r Record, keys []string) []any {
	for _, k := range keys {
		if l, ok := r[k].([]any); ok {
			return l
		}
	}
	return nil
}
