package position

import (
	"math"
	"testing"

	"github.com/creasty/defaults"

	"TradePulse/internal/domain/models"
	"TradePulse/pkg/config"
	"TradePulse/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	var c config.Config
	if err := defaults.Set(&c); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	return &c
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func entrySignal(side models.Side, price, confidence float64) *models.Signal {
	return &models.Signal{
		Type:       models.SignalEntry,
		Side:       side,
		Confidence: confidence,
		Price:      price,
		Regime:     models.RegimeNeutral,
		Session:    "LONDON",
	}
}

func TestOpenSizingFullConfidence(t *testing.T) {
	b := NewBook(testConfig(t), testLogger(t), nil)
	pos := b.Open(entrySignal(models.SideLong, 100, 100), "BTCUSDT", 0)
	if pos == nil {
		t.Fatalf("expected position")
	}
	if pos.Notional != 400 {
		t.Fatalf("notional = %v, want max 400", pos.Notional)
	}
	if pos.Size != 4 {
		t.Fatalf("size = %v, want 4", pos.Size)
	}
}

func TestOpenVolatilityShrinksSize(t *testing.T) {
	b := NewBook(testConfig(t), testLogger(t), nil)
	// ATR 5 on a 100 entry gives atr pct 0.05 and a 1/1.5 adjustment.
	pos := b.Open(entrySignal(models.SideLong, 100, 100), "BTCUSDT", 5)
	want := 400.0 / 1.5
	if math.Abs(pos.Notional-want) > 1e-9 {
		t.Fatalf("notional = %v, want %v", pos.Notional, want)
	}
}

func TestOpenMinimumNotional(t *testing.T) {
	b := NewBook(testConfig(t), testLogger(t), nil)
	pos := b.Open(entrySignal(models.SideLong, 100, 1), "BTCUSDT", 0)
	if pos.Notional != 10 {
		t.Fatalf("notional = %v, want floor 10", pos.Notional)
	}
}

func TestStopLossRegimeAndHardFloor(t *testing.T) {
	cfg := testConfig(t)
	b := NewBook(cfg, testLogger(t), nil)

	// Small ATR: the 30% hard-stop floor dominates.
	sig := entrySignal(models.SideLong, 100, 100)
	sig.Regime = models.RegimeVolatile
	pos := b.Open(sig, "BTCUSDT", 1)
	if pos.StopLoss != 70 {
		t.Fatalf("stop = %v, want hard floor 70", pos.StopLoss)
	}

	// Large ATR: 2x ATR distance wins over the floor.
	sig2 := entrySignal(models.SideLong, 100, 100)
	sig2.Regime = models.RegimeTrending
	pos2 := b.Open(sig2, "BTCUSDT", 20)
	if pos2.StopLoss != 60 {
		t.Fatalf("stop = %v, want 60 from 2x ATR", pos2.StopLoss)
	}

	// Short stops sit above entry.
	sig3 := entrySignal(models.SideShort, 100, 100)
	pos3 := b.Open(sig3, "BTCUSDT", 1)
	if pos3.StopLoss != 130 {
		t.Fatalf("short stop = %v, want 130", pos3.StopLoss)
	}
}

func TestTakeProfitLevels(t *testing.T) {
	b := NewBook(testConfig(t), testLogger(t), nil)
	pos := b.Open(entrySignal(models.SideLong, 100, 100), "BTCUSDT", 0)
	if pos.TakeProfit1 != 105 || pos.TakeProfit2 != 110 || pos.TakeProfit3 != 120 {
		t.Fatalf("tps = (%v, %v, %v), want (105, 110, 120)", pos.TakeProfit1, pos.TakeProfit2, pos.TakeProfit3)
	}
}

func TestCanOpenMaxConcurrent(t *testing.T) {
	b := NewBook(testConfig(t), testLogger(t), nil)
	for i := 0; i < 3; i++ {
		if b.Open(entrySignal(models.SideLong, 100, 100), "BTCUSDT", 0) == nil {
			t.Fatalf("open %d blocked unexpectedly", i)
		}
	}
	if b.CanOpen() {
		t.Fatalf("CanOpen should be false at max concurrent")
	}
	if b.Open(entrySignal(models.SideLong, 100, 100), "BTCUSDT", 0) != nil {
		t.Fatalf("fourth open should be rejected")
	}
}

func TestDailyLossLimitBlocksEntries(t *testing.T) {
	b := NewBook(testConfig(t), testLogger(t), nil)
	b.SetBalance(100) // loss limit of 5

	pos := b.Open(entrySignal(models.SideLong, 100, 100), "BTCUSDT", 0)
	trade := b.Close(pos.ID, 90, models.ExitHardStop)
	if trade == nil || trade.Pnl >= 0 {
		t.Fatalf("expected a losing trade, got %+v", trade)
	}
	if b.CanOpen() {
		t.Fatalf("CanOpen should be false past the daily loss limit")
	}

	b.ResetDaily()
	if !b.CanOpen() {
		t.Fatalf("CanOpen should recover after daily reset")
	}
}

func TestHardStopBoundary(t *testing.T) {
	b := NewBook(testConfig(t), testLogger(t), nil)
	b.Open(entrySignal(models.SideLong, 100, 100), "BTCUSDT", 0)

	// -29% does not trip the 30% hard stop.
	if closed := b.UpdateAll(71); len(closed) != 0 {
		t.Fatalf("no exit expected at 71, got %v", closed[0].ExitReason)
	}
	closed := b.UpdateAll(69)
	if len(closed) != 1 || closed[0].ExitReason != models.ExitHardStop {
		t.Fatalf("expected HARD_STOP at 69, got %+v", closed)
	}
	if b.OpenCount() != 0 {
		t.Fatalf("position should be removed after exit")
	}
}

func TestTakeProfitPriority(t *testing.T) {
	b := NewBook(testConfig(t), testLogger(t), nil)
	b.Open(entrySignal(models.SideLong, 100, 100), "BTCUSDT", 0)

	// 22% gain activates trailing but the price is above the trail, so
	// TP3 wins.
	closed := b.UpdateAll(122)
	if len(closed) != 1 || closed[0].ExitReason != models.ExitTP3 {
		t.Fatalf("expected TP3, got %+v", closed)
	}
}

func TestTrailingActivationAndRatchet(t *testing.T) {
	cfg := testConfig(t)
	// Push take profits out of the way to isolate the trailing stop.
	cfg.Risk.TP1Pct = 0.60
	cfg.Risk.TP2Pct = 0.70
	cfg.Risk.TP3Pct = 0.80
	b := NewBook(cfg, testLogger(t), nil)
	pos := b.Open(entrySignal(models.SideLong, 100, 100), "BTCUSDT", 0)

	// 20% gain activates the trail at 120 * 0.9 = 108.
	if closed := b.UpdateAll(120); len(closed) != 0 {
		t.Fatalf("unexpected exit at 120")
	}
	got := b.Positions()[0]
	if !got.TrailingActive || got.TrailingPrice != 108 {
		t.Fatalf("trail = (%v, %v), want (true, 108)", got.TrailingActive, got.TrailingPrice)
	}

	// New high ratchets the trail to 117.
	if closed := b.UpdateAll(130); len(closed) != 0 {
		t.Fatalf("unexpected exit at 130")
	}
	if got := b.Positions()[0]; got.TrailingPrice != 117 {
		t.Fatalf("trail = %v, want 117", got.TrailingPrice)
	}

	// Pullback above the trail keeps the position open and never moves
	// the trail down.
	if closed := b.UpdateAll(118); len(closed) != 0 {
		t.Fatalf("unexpected exit at 118")
	}
	if got := b.Positions()[0]; got.TrailingPrice != 117 {
		t.Fatalf("trail moved to %v on pullback", got.TrailingPrice)
	}

	// Crossing the trail closes the position.
	closed := b.UpdateAll(116)
	if len(closed) != 1 || closed[0].ExitReason != models.ExitTrailingStop {
		t.Fatalf("expected TRAILING_STOP at 116, got %+v", closed)
	}
	if closed[0].ID != pos.ID {
		t.Fatalf("closed wrong position")
	}
}

func TestShortTrailing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Risk.TP1Pct = 0.60
	cfg.Risk.TP2Pct = 0.70
	cfg.Risk.TP3Pct = 0.80
	b := NewBook(cfg, testLogger(t), nil)
	b.Open(entrySignal(models.SideShort, 100, 100), "BTCUSDT", 0)

	// 20% gain on a short (price 80) sets the trail at 80 * 1.1 = 88.
	if closed := b.UpdateAll(80); len(closed) != 0 {
		t.Fatalf("unexpected exit at 80")
	}
	got := b.Positions()[0]
	if !got.TrailingActive || math.Abs(got.TrailingPrice-88) > 1e-9 {
		t.Fatalf("trail = (%v, %v), want (true, 88)", got.TrailingActive, got.TrailingPrice)
	}

	closed := b.UpdateAll(89)
	if len(closed) != 1 || closed[0].ExitReason != models.ExitTrailingStop {
		t.Fatalf("expected short trailing exit at 89, got %+v", closed)
	}
}

func TestDoubleCloseIsNoOp(t *testing.T) {
	b := NewBook(testConfig(t), testLogger(t), nil)
	pos := b.Open(entrySignal(models.SideLong, 100, 100), "BTCUSDT", 0)

	first := b.Close(pos.ID, 110, models.ExitTP2)
	if first == nil {
		t.Fatalf("first close should produce a trade")
	}
	if second := b.Close(pos.ID, 110, models.ExitTP2); second != nil {
		t.Fatalf("second close should be a no-op, got %+v", second)
	}
}

func TestZeroPnlIsLoss(t *testing.T) {
	b := NewBook(testConfig(t), testLogger(t), nil)
	pos := b.Open(entrySignal(models.SideLong, 100, 100), "BTCUSDT", 0)
	trade := b.Close(pos.ID, 100, models.ExitHardStop)
	if trade.Outcome != models.OutcomeLoss {
		t.Fatalf("outcome = %v, want loss on zero pnl", trade.Outcome)
	}
}

func TestRestoreSeedsBook(t *testing.T) {
	b := NewBook(testConfig(t), testLogger(t), nil)
	b.Restore([]*models.Position{
		{ID: "a", Side: models.SideLong, EntryPrice: 100, Notional: 100, Size: 1, HighestPrice: 100, LowestPrice: 100},
		nil,
		{Side: models.SideLong}, // missing id, skipped
	})
	if b.OpenCount() != 1 {
		t.Fatalf("open count = %d, want 1", b.OpenCount())
	}
	if b.TotalExposure() != 100 {
		t.Fatalf("exposure = %v, want 100", b.TotalExposure())
	}
}
