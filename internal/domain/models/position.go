package models

import "time"

// ExitReason names the rule that closed a position.
type ExitReason string

const (
	ExitHardStop     ExitReason = "HARD_STOP"
	ExitTrailingStop ExitReason = "TRAILING_STOP"
	ExitTP1          ExitReason = "TP1"
	ExitTP2          ExitReason = "TP2"
	ExitTP3          ExitReason = "TP3"
)

// Position is an open position owned exclusively by the position book
// for its lifetime. It is mutated on every price tick and destroyed
// when an exit rule fires.
type Position struct {
	ID             string    `json:"id"`
	Symbol         string    `json:"symbol"`
	Side           Side      `json:"side"`
	EntryPrice     float64   `json:"entry_price"`
	Size           float64   `json:"size"`     // base units
	Notional       float64   `json:"notional"` // quote value at entry
	StopLoss       float64   `json:"stop_loss"`
	TakeProfit1    float64   `json:"take_profit_1"`
	TakeProfit2    float64   `json:"take_profit_2"`
	TakeProfit3    float64   `json:"take_profit_3"`
	TrailingActive bool      `json:"trailing_active"`
	TrailingPrice  float64   `json:"trailing_price"`
	HighestPrice   float64   `json:"highest_price"`
	LowestPrice    float64   `json:"lowest_price"`
	PatternID      string    `json:"pattern_id,omitempty"`
	Regime         Regime    `json:"regime"`
	Session        string    `json:"session"`
	OpenTime       time.Time `json:"open_time"`
}

// PnlPct returns the side-aware unrealized percentage return at price.
func (p *Position) PnlPct(price float64) float64 {
	if p.EntryPrice == 0 {
		return 0
	}
	if p.Side == SideLong {
		return (price - p.EntryPrice) / p.EntryPrice * 100
	}
	return (p.EntryPrice - price) / p.EntryPrice * 100
}

// Pnl returns the unrealized quote-currency pnl at price.
func (p *Position) Pnl(price float64) float64 {
	return p.Notional * p.PnlPct(price) / 100
}
