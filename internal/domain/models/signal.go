package models

import (
	"strings"
	"time"
)

// SignalType classifies a signal.
type SignalType string

const (
	SignalEntry SignalType = "ENTRY"
	SignalExit  SignalType = "EXIT"
	SignalNone  SignalType = "NONE"
)

// Side is the direction of a trade or position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Signal is one scoring decision. Created once per cycle, immutable,
// consumed immediately by the position book.
type Signal struct {
	Type       SignalType         `json:"type"`
	Side       Side               `json:"side"`
	Confidence float64            `json:"confidence"`
	Price      float64            `json:"price"`
	Timestamp  time.Time          `json:"timestamp"`
	Timeframe  string             `json:"timeframe"`
	Snapshot   *IndicatorSnapshot `json:"snapshot,omitempty"`
	Reasons    []string           `json:"reasons"`
	Regime     Regime             `json:"regime"`
	Session    string             `json:"session"`
	PatternID  string             `json:"pattern_id,omitempty"`
}

// Reason joins the rationale trail for human-readable output.
func (s *Signal) Reason() string {
	return strings.Join(s.Reasons, "; ")
}
