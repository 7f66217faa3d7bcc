package service

import (
	"time"

	"github.com/radieske/sports-odds-gateway/pkg/contracts/odds"
)

// SyntheticGameID identifica o jogo de demonstração
const SyntheticGameID = "mock-bulls-lakers"

// Synthetic gera dados de demonstração quando não há fornecedor configurado.
// Estes dados nunca entram no cache nem no espelho.
func Synthetic(now time.Time) []odds.GameOdds {
	return []odds.GameOdds{
		{
			GameID:    SyntheticGameID,
			HomeTeam:  "Chicago Bulls",
			AwayTeam:  "Los Angeles Lakers",
			StartTime: now.Add(2 * time.Hour).UTC().Format(time.RFC3339),
			Bookmakers: []odds.BookmakerQuote{
				{
					Name:      "DraftKings",
					Moneyline: odds.Moneyline{Home: odds.Price(-120), Away: odds.Price(100)},
					Spread:    odds.Spread{Line: odds.Price(-2.5), Home: odds.Price(-110), Away: odds.Price(-110)},
					Total:     odds.Total{Line: odds.Price(225.5), Over: odds.Price(-110), Under: odds.Price(-110)},
				},
				{
					Name:      "FanDuel",
					Moneyline: odds.Moneyline{Home: odds.Price(-115), Away: odds.Price(-105)},
					Spread:    odds.Spread{Line: odds.Price(-2.0), Home: odds.Price(-105), Away: odds.Price(-115)},
					Total:     odds.Total{Line: odds.Price(226.0), Over: odds.Price(-115), Under: odds.Price(-105)},
				},
			},
		},
	}
}
