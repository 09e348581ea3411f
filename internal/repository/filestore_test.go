package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestLoadFromEmptyDir(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	positions, err := s.LoadPositions(ctx)
	if err != nil || positions != nil {
		t.Fatalf("positions = (%v, %v), want (nil, nil)", positions, err)
	}
	patterns, err := s.LoadPatterns(ctx)
	if err != nil || patterns != nil {
		t.Fatalf("patterns = (%v, %v), want (nil, nil)", patterns, err)
	}
	params, err := s.LoadParams(ctx)
	if err != nil || params != nil {
		t.Fatalf("params = (%v, %v), want (nil, nil)", params, err)
	}
}

func TestPositionsRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	in := []*models.Position{{
		ID:             "pos-1",
		Symbol:         "BTCUSDT",
		Side:           models.SideLong,
		EntryPrice:     50000,
		Size:           0.008,
		Notional:       400,
		StopLoss:       35000,
		TakeProfit1:    52500,
		TakeProfit2:    55000,
		TakeProfit3:    60000,
		TrailingActive: true,
		TrailingPrice:  51000,
		HighestPrice:   56700,
		LowestPrice:    49000,
		PatternID:      "low_bullish_above_high_TRENDING_LONDON_5m",
		Regime:         models.RegimeTrending,
		Session:        "LONDON",
		OpenTime:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}}
	if err := s.SavePositions(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := s.LoadPositions(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 1 || *out[0] != *in[0] {
		t.Fatalf("round trip mismatch:\n in %+v\nout %+v", in[0], out[0])
	}
}

func TestPatternsRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	in := map[string]*models.Pattern{
		"p1": {
			ID:           "p1",
			Indicators:   models.IndicatorSummary{Price: 50000, RSI: 28, MACD: 1.2, MACDSignal: 0.8, EMA21: 49000, VolumeRatio: 2.4},
			Regime:       models.RegimeTrending,
			Session:      "NY",
			Timeframe:    "5m",
			CreatedAt:    time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			LastUsed:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Occurrences:  12,
			Wins:         8,
			Losses:       4,
			WinRate:      8.0 / 12.0,
			AvgProfitPct: 6.5,
			AvgLossPct:   3.1,
			Weight:       1.15,
		},
	}
	if err := s.SavePatterns(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := s.LoadPatterns(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 1 || *out["p1"] != *in["p1"] {
		t.Fatalf("round trip mismatch:\n in %+v\nout %+v", in["p1"], out["p1"])
	}
}

func TestParamsAndTradesRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	params := &models.AdaptiveParams{
		RiskMultiplier:         1.1,
		PositionSizeMultiplier: 1.05,
		WindowWinRate:          0.65,
		TotalTrades:            40,
		WinningTrades:          26,
		LosingTrades:           14,
		CurrentDrawdownPct:     2.5,
		MaxDrawdownPct:         8.3,
		LastUpdated:            time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
	}
	if err := s.SaveParams(ctx, params); err != nil {
		t.Fatalf("save params: %v", err)
	}
	gotParams, err := s.LoadParams(ctx)
	if err != nil {
		t.Fatalf("load params: %v", err)
	}
	if *gotParams != *params {
		t.Fatalf("params mismatch:\n in %+v\nout %+v", params, gotParams)
	}

	trades := []*models.Trade{{
		ID:         "t1",
		Symbol:     "BTCUSDT",
		EntryTime:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		ExitTime:   time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
		EntryPrice: 50000,
		ExitPrice:  52500,
		Side:       models.SideLong,
		Size:       0.008,
		Pnl:        20,
		PnlPct:     5,
		Outcome:    models.OutcomeWin,
		PatternID:  "p1",
		Regime:     models.RegimeTrending,
		Session:    "LONDON",
		ExitReason: models.ExitTP1,
	}}
	if err := s.SaveTrades(ctx, trades); err != nil {
		t.Fatalf("save trades: %v", err)
	}
	gotTrades, err := s.LoadTrades(ctx)
	if err != nil {
		t.Fatalf("load trades: %v", err)
	}
	if len(gotTrades) != 1 || *gotTrades[0] != *trades[0] {
		t.Fatalf("trades mismatch:\n in %+v\nout %+v", trades[0], gotTrades[0])
	}
}

func TestWriteIsAtomic(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := s.SaveTrades(ctx, []*models.Trade{{ID: "t1"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	// No temp file should survive a completed write.
	if _, err := os.Stat(filepath.Join(dir, tradesFile+".tmp")); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
	if _, err := os.Stat(filepath.Join(dir, tradesFile)); err != nil {
		t.Fatalf("target file missing: %v", err)
	}
}
