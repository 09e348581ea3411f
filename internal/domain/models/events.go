package models

import "time"

// Event types published to the notification topic.
const (
	EventSignal        = "signal"
	EventPositionOpen  = "position_opened"
	EventPositionClose = "position_closed"
	EventRiskHalt      = "risk_halt"
)

// SignalEvent is emitted when the scorer produces an actionable signal.
type SignalEvent struct {
	Type       string    `json:"type"`
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	Confidence float64   `json:"confidence"`
	Price      float64   `json:"price"`
	Timeframe  string    `json:"timeframe"`
	Regime     Regime    `json:"regime"`
	Session    string    `json:"session"`
	Reasons    []string  `json:"reasons"`
	Timestamp  time.Time `json:"timestamp"`
}

// PositionEvent is emitted on position open and close.
type PositionEvent struct {
	Type       string     `json:"type"`
	PositionID string     `json:"position_id"`
	Symbol     string     `json:"symbol"`
	Side       Side       `json:"side"`
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  float64    `json:"exit_price,omitempty"`
	Size       float64    `json:"size"`
	Pnl        float64    `json:"pnl,omitempty"`
	PnlPct     float64    `json:"pnl_pct,omitempty"`
	ExitReason ExitReason `json:"exit_reason,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// RiskHaltEvent is emitted when the daily loss limit trips.
type RiskHaltEvent struct {
	Type      string    `json:"type"`
	Symbol    string    `json:"symbol"`
	DailyPnl  float64   `json:"daily_pnl"`
	LimitPct  float64   `json:"limit_pct"`
	Timestamp time.Time `json:"timestamp"`
}
