package models

import "time"

// Game represents one scheduled matchup as supplied by the caller
type Game struct {
	GameID        string    `json:"game_id" validate:"required"`
	Sport         string    `json:"sport" validate:"required"`
	HomeTeam      string    `json:"home_team" validate:"required"`
	AwayTeam      string    `json:"away_team" validate:"required"`
	HomeMoneyline int       `json:"home_moneyline"`
	AwayMoneyline int       `json:"away_moneyline"`
	GameTime      time.Time `json:"game_time"`
}

// TeamFor returns the team name on the given side of the matchup.
func (g *Game) TeamFor(side Side) string {
	if side == SideAway {
		return g.AwayTeam
	}
	return g.HomeTeam
}
