package models

import "time"

// Outcome classifies a closed trade. Zero pnl counts as a loss: the
// check is strictly greater than zero.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

// OutcomeOf classifies a realized percentage return.
func OutcomeOf(pnlPct float64) Outcome {
	if pnlPct > 0 {
		return OutcomeWin
	}
	return OutcomeLoss
}

// Trade is a closed-trade record. Created exactly once when a position
// closes; append-only history afterward.
type Trade struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"`
	EntryTime  time.Time  `json:"entry_time"`
	ExitTime   time.Time  `json:"exit_time"`
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  float64    `json:"exit_price"`
	Side       Side       `json:"side"`
	Size       float64    `json:"size"`
	Pnl        float64    `json:"pnl"`
	PnlPct     float64    `json:"pnl_pct"`
	Outcome    Outcome    `json:"outcome"`
	PatternID  string     `json:"pattern_id,omitempty"`
	Regime     Regime     `json:"regime"`
	Session    string     `json:"session"`
	ExitReason ExitReason `json:"exit_reason"`
}
