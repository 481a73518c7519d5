package models

import (
	"time"
)

// Side represents the side of a market a quote prices
type Side string

const (
	SideHome  Side = "home"
	SideAway  Side = "away"
	SideOver  Side = "over"
	SideUnder Side = "under"
	SideDraw  Side = "draw"
)

// MarketType represents the type of betting market
type MarketType string

const (
	MarketTypeMoneyline MarketType = "moneyline"
	MarketTypeSpread    MarketType = "spread"
	MarketTypeTotal     MarketType = "total"
)

// Quote is a single provider's price for one side of a game/market.
// Quotes are immutable once recorded.
type Quote struct {
	ProviderID   string    `json:"provider_id" validate:"required"`
	Side         Side      `json:"side" validate:"required,oneof=home away over under draw"`
	AmericanOdds int       `json:"american_odds" validate:"required"`
	CapturedAt   time.Time `json:"captured_at" validate:"required"`
}

// CanonicalOdds is the merged view of all provider quotes for one game/market.
// It is rebuilt wholesale whenever new quotes arrive, never patched in place.
type CanonicalOdds struct {
	GameID           string         `json:"game_id" validate:"required"`
	MarketType       MarketType     `json:"market_type" validate:"required,oneof=moneyline spread total"`
	BestQuotePerSide map[Side]Quote `json:"best_quote_per_side"`
	ProviderCount    int            `json:"provider_count"`
}

// QuoteFor returns the best available quote for a side, if any provider priced it.
func (c *CanonicalOdds) QuoteFor(side Side) (Quote, bool) {
	q, ok := c.BestQuotePerSide[side]
	return q, ok
}

// HasQuotes reports whether any side of the market has a price.
func (c *CanonicalOdds) HasQuotes() bool {
	return len(c.BestQuotePerSide) > 0
}
