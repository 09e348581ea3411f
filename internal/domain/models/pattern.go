package models

import "time"

// IndicatorSummary is the condensed indicator state recorded when a
// pattern is first observed.
type IndicatorSummary struct {
	Price       float64 `json:"price"`
	RSI         float64 `json:"rsi"`
	MACD        float64 `json:"macd"`
	MACDSignal  float64 `json:"macd_signal"`
	EMA21       float64 `json:"ema_21"`
	VolumeRatio float64 `json:"volume_ratio"`
}

// Pattern is a discretized market-state signature with accumulated
// performance counters. Two snapshots with identical bucket values
// collide deliberately: that collision is the generalization mechanism.
type Pattern struct {
	ID           string           `json:"id"`
	Indicators   IndicatorSummary `json:"indicators"`
	Regime       Regime           `json:"regime"`
	Session      string           `json:"session"`
	Timeframe    string           `json:"timeframe"`
	CreatedAt    time.Time        `json:"created_at"`
	LastUsed     time.Time        `json:"last_used"`
	Occurrences  int              `json:"occurrences"`
	Wins         int              `json:"wins"`
	Losses       int              `json:"losses"`
	WinRate      float64          `json:"win_rate"`
	AvgProfitPct float64          `json:"avg_profit_pct"`
	AvgLossPct   float64          `json:"avg_loss_pct"`
	Weight       float64          `json:"weight"`
}

// Pattern weight bounds.
const (
	PatternWeightMin = 0.1
	PatternWeightMax = 2.0
)
