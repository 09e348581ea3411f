package indicator

import (
	"testing"
	"time"

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

func makeCandles(n int, priceAt func(i int) float64) []models.Candle {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		p := priceAt(i)
		candles[i] = models.Candle{
			Timestamp: start.Add(time.Duration(i) * 5 * time.Minute),
			Open:      p,
			High:      p * 1.005,
			Low:       p * 0.995,
			Close:     p,
			Volume:    1000,
		}
	}
	return candles
}

func TestSnapshotInsufficientWindow(t *testing.T) {
	e := NewEngine(testConfig(t))
	candles := makeCandles(10, func(i int) float64 { return 100 })

	snap, err := e.Snapshot(candles, "5m")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !snap.Insufficient {
		t.Fatalf("expected insufficient flag for 10 candles")
	}
	if snap.RSI != 50 || snap.ADX != 25 {
		t.Fatalf("insufficient snapshot should carry neutral values, got rsi=%v adx=%v", snap.RSI, snap.ADX)
	}
	if snap.Regime != models.RegimeNeutral {
		t.Fatalf("regime = %v, want NEUTRAL", snap.Regime)
	}
	if snap.Price != 100 {
		t.Fatalf("price = %v, want last close 100", snap.Price)
	}
}

func TestSnapshotUptrendClassification(t *testing.T) {
	e := NewEngine(testConfig(t))
	candles := makeCandles(250, func(i int) float64 { return 100 + 2*float64(i) })

	snap, err := e.Snapshot(candles, "5m")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Insufficient {
		t.Fatalf("unexpected insufficient flag")
	}
	if snap.Trend != models.TrendBullish {
		t.Fatalf("trend = %v, want BULLISH", snap.Trend)
	}
	if snap.Regime != models.RegimeTrending {
		t.Fatalf("regime = %v, want TRENDING for monotone rise", snap.Regime)
	}
	if snap.EMA9 <= snap.EMA21 || snap.EMA21 <= snap.EMA50 {
		t.Fatalf("ema ordering broken: %v %v %v", snap.EMA9, snap.EMA21, snap.EMA50)
	}
	if snap.Series == nil || len(snap.Series.RSI) != len(candles) {
		t.Fatalf("series missing or misaligned")
	}
}

func TestSnapshotFlatMarketIsRanging(t *testing.T) {
	e := NewEngine(testConfig(t))
	candles := makeCandles(250, func(i int) float64 { return 100 })

	snap, err := e.Snapshot(candles, "1h")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Regime != models.RegimeRanging {
		t.Fatalf("regime = %v, want RANGING for flat market", snap.Regime)
	}
	if snap.Trend != models.TrendNeutral {
		t.Fatalf("trend = %v, want NEUTRAL", snap.Trend)
	}
}

func TestSnapshotRejectsUnorderedCandles(t *testing.T) {
	e := NewEngine(testConfig(t))
	candles := makeCandles(250, func(i int) float64 { return 100 })
	candles[10].Timestamp = candles[200].Timestamp

	if _, err := e.Snapshot(candles, "5m"); err != ErrUnorderedCandles {
		t.Fatalf("err = %v, want ErrUnorderedCandles", err)
	}
}
