package signal

import (
	"testing"

	"github.com/creasty/defaults"

	"TradePulse/internal/domain/models"
	"TradePulse/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	var c config.Config
	if err := defaults.Set(&c); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	return &c
}

func bullishSnapshot() *models.IndicatorSnapshot {
	return &models.IndicatorSnapshot{
		Timeframe:   "5m",
		Price:       95,
		RSI:         25,
		MACD:        1.5,
		MACDSignal:  1.0,
		MACDHist:    0.5,
		EMA9:        102,
		EMA21:       101,
		EMA50:       100,
		BBUpper:     110,
		BBLower:     96,
		VolumeRatio: 2.5,
		Regime:      models.RegimeTrending,
		Trend:       models.TrendBullish,
	}
}

func TestEntryFullBullishConfluence(t *testing.T) {
	s := NewScorer(testConfig(t))
	sig := s.Entry(bullishSnapshot(), "LONDON")

	// 20 (RSI) + 20 (MACD) + 15 (EMA) + 15 (BB) + 10 (volume) + 10 (regime) = 90
	if sig.Type != models.SignalEntry {
		t.Fatalf("type = %v, want ENTRY", sig.Type)
	}
	if sig.Side != models.SideLong {
		t.Fatalf("side = %v, want LONG", sig.Side)
	}
	if sig.Confidence != 90 {
		t.Fatalf("confidence = %v, want 90", sig.Confidence)
	}
	if len(sig.Reasons) != 6 {
		t.Fatalf("reasons = %v, want 6 entries", sig.Reasons)
	}
}

func TestEntryFullBearishConfluence(t *testing.T) {
	s := NewScorer(testConfig(t))
	snap := &models.IndicatorSnapshot{
		Timeframe:   "5m",
		Price:       115,
		RSI:         75,
		MACD:        -1.5,
		MACDSignal:  -1.0,
		MACDHist:    -0.5,
		EMA9:        100,
		EMA21:       101,
		EMA50:       102,
		BBUpper:     110,
		BBLower:     96,
		VolumeRatio: 2.5,
		Regime:      models.RegimeTrending,
		Trend:       models.TrendBearish,
	}
	sig := s.Entry(snap, "LONDON")
	if sig.Type != models.SignalEntry || sig.Side != models.SideShort {
		t.Fatalf("got (%v, %v), want (ENTRY, SHORT)", sig.Type, sig.Side)
	}
	if sig.Confidence != 90 {
		t.Fatalf("confidence = %v, want 90", sig.Confidence)
	}
}

func TestEntrySessionWeightScalesScore(t *testing.T) {
	s := NewScorer(testConfig(t))

	ny := s.Entry(bullishSnapshot(), "NY")
	asian := s.Entry(bullishSnapshot(), "ASIAN")

	// NY weight 1.2 raises 90 to 108, clamped to 100. Asian weight 0.8
	// lowers it to 72.
	if ny.Confidence != 100 {
		t.Fatalf("NY confidence = %v, want clamp at 100", ny.Confidence)
	}
	if asian.Confidence != 72 {
		t.Fatalf("ASIAN confidence = %v, want 72", asian.Confidence)
	}
}

func TestEntryRangingDampensBelowThreshold(t *testing.T) {
	s := NewScorer(testConfig(t))
	snap := bullishSnapshot()
	snap.Price = 100 // inside the bands
	snap.VolumeRatio = 1.0
	snap.Regime = models.RegimeRanging
	snap.Trend = models.TrendNeutral

	// 20 + 20 + 15 = 55, ranging dampens to 44, below min confidence 60.
	sig := s.Entry(snap, "LONDON")
	if sig.Type != models.SignalNone {
		t.Fatalf("type = %v, want NONE at confidence %v", sig.Type, sig.Confidence)
	}
	if sig.Confidence != 44 {
		t.Fatalf("confidence = %v, want 44", sig.Confidence)
	}
}

func TestEntryInsufficientSnapshot(t *testing.T) {
	s := NewScorer(testConfig(t))
	sig := s.Entry(&models.IndicatorSnapshot{Insufficient: true}, "LONDON")
	if sig.Type != models.SignalNone {
		t.Fatalf("type = %v, want NONE", sig.Type)
	}
}

func TestExitAdvisoryHardStop(t *testing.T) {
	s := NewScorer(testConfig(t))
	pos := &models.Position{
		Side:         models.SideLong,
		EntryPrice:   100,
		HighestPrice: 100,
		LowestPrice:  100,
	}
	sig := s.ExitAdvisory(pos, 69, nil)
	if sig == nil || sig.Type != models.SignalExit {
		t.Fatalf("expected exit at -31%%")
	}
	if sig.Reasons[0] != "Hard stop loss triggered" {
		t.Fatalf("reason = %v", sig.Reasons[0])
	}
	if s.ExitAdvisory(pos, 71, nil) != nil {
		t.Fatalf("no exit expected at -29%%")
	}
}

func TestExitAdvisoryTrailingBeatsTakeProfit(t *testing.T) {
	s := NewScorer(testConfig(t))
	pos := &models.Position{
		Side:         models.SideLong,
		EntryPrice:   100,
		HighestPrice: 130,
		LowestPrice:  100,
	}
	// At 117 the gain is 17%, trailing is active and the trail sits at
	// 130 * 0.9 = 117, so the trailing exit fires before TP1/TP2.
	sig := s.ExitAdvisory(pos, 117, nil)
	if sig == nil {
		t.Fatalf("expected trailing exit")
	}
	if sig.Reasons[0] != "Trailing stop triggered" {
		t.Fatalf("reason = %v, want trailing", sig.Reasons[0])
	}
}

func TestExitAdvisoryTakeProfitLadder(t *testing.T) {
	s := NewScorer(testConfig(t))
	pos := &models.Position{
		Side:         models.SideLong,
		EntryPrice:   100,
		HighestPrice: 100,
		LowestPrice:  100,
	}

	cases := []struct {
		price  float64
		reason string
		conf   float64
	}{
		{126, "Take Profit 3 reached", 90},
		{112, "Take Profit 2 reached", 70},
		{106, "Take Profit 1 reached", 50},
	}
	for _, tc := range cases {
		pos.HighestPrice = tc.price
		sig := s.ExitAdvisory(pos, tc.price, nil)
		if sig == nil {
			t.Fatalf("expected exit at %v", tc.price)
		}
		if sig.Reasons[0] != tc.reason || sig.Confidence != tc.conf {
			t.Fatalf("at %v got (%v, %v), want (%v, %v)", tc.price, sig.Reasons[0], sig.Confidence, tc.reason, tc.conf)
		}
	}
}
