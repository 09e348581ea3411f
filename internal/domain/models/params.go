package models

import "time"

// AdaptiveParams holds the multipliers the learning engine tunes from
// realized performance. A fresh instance starts at neutral 1.0.
type AdaptiveParams struct {
	RiskMultiplier         float64   `json:"risk_multiplier"`
	PositionSizeMultiplier float64   `json:"position_size_multiplier"`
	WindowWinRate          float64   `json:"window_win_rate"`
	TotalTrades            int       `json:"total_trades"`
	WinningTrades          int       `json:"winning_trades"`
	LosingTrades           int       `json:"losing_trades"`
	CurrentDrawdownPct     float64   `json:"current_drawdown_pct"`
	MaxDrawdownPct         float64   `json:"max_drawdown_pct"`
	LastUpdated            time.Time `json:"last_updated"`
}

// Adaptive multiplier bounds.
const (
	RiskMultiplierMin = 0.5
	RiskMultiplierMax = 1.5
	SizeMultiplierMin = 0.5
	SizeMultiplierMax = 1.3
)

// NewAdaptiveParams returns params at their neutral starting point.
func NewAdaptiveParams() *AdaptiveParams {
	return &AdaptiveParams{
		RiskMultiplier:         1.0,
		PositionSizeMultiplier: 1.0,
		LastUpdated:            time.Now().UTC(),
	}
}
