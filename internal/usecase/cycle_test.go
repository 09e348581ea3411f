package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/creasty/defaults"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/indicator"
	"TradePulse/internal/learning"
	"TradePulse/internal/position"
	"TradePulse/internal/repository"
	"TradePulse/internal/signal"
	"TradePulse/pkg/config"
	"TradePulse/pkg/logger"
)

type nopMetrics struct {
	mu          sync.Mutex
	tradeClosed int
}

func (m *nopMetrics) RecordCycle()                        {}
func (m *nopMetrics) RecordSignal(string, string)         {}
func (m *nopMetrics) RecordError(string)                  {}
func (m *nopMetrics) RecordLastPrice(string, float64)     {}
func (m *nopMetrics) RecordDailyPnl(float64)              {}
func (m *nopMetrics) RecordOpenPositions(int)             {}
func (m *nopMetrics) RecordLatency(string, float64)       {}
func (m *nopMetrics) RecordTradeClosed(outcome, _ string) {
	m.mu.Lock()
	m.tradeClosed++
	m.mu.Unlock()
}

type capturePublisher struct {
	mu     sync.Mutex
	events []any
}

func (p *capturePublisher) Publish(_ context.Context, _ string, event any) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) haltCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if _, ok := e.(models.RiskHaltEvent); ok {
			n++
		}
	}
	return n
}

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

func testCycle(t *testing.T, cfg *config.Config, dir string) (*Cycle, *capturePublisher, *nopMetrics) {
	t.Helper()
	log := testLogger(t)
	store, err := repository.NewFileStore(dir)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	learner := learning.NewEngine(cfg, log, store)
	book := position.NewBook(cfg, log, learner)
	pub := &capturePublisher{}
	met := &nopMetrics{}
	cycle := NewCycle(cfg, log, nil,
		indicator.NewEngine(cfg), signal.NewScorer(cfg),
		book, learner, store, pub, repository.NopArchive{}, met)
	return cycle, pub, met
}

func losingSignal() *models.Signal {
	return &models.Signal{
		Type:       models.SignalEntry,
		Side:       models.SideLong,
		Confidence: 80,
		Price:      100,
		Regime:     models.RegimeNeutral,
		Session:    "LONDON",
		Timeframe:  "5m",
	}
}

// loseOneTrade opens a long at 100 and drives the price through the
// hard stop so the book hands back exactly one losing trade.
func loseOneTrade(t *testing.T, c *Cycle) *models.Trade {
	t.Helper()
	if pos := c.book.Open(losingSignal(), "BTCUSDT", 0); pos == nil {
		t.Fatalf("expected position to open")
	}
	closed := c.book.UpdateAll(50)
	if len(closed) != 1 {
		t.Fatalf("closed %d trades, want 1", len(closed))
	}
	return closed[0]
}

func TestOnTickUpdatesLastPrice(t *testing.T) {
	c, _, _ := testCycle(t, testConfig(t), t.TempDir())
	c.OnTick(models.Tick{Symbol: "BTCUSDT", Price: 101.5, Timestamp: time.Now()})
	if got := c.LastPrice(); got != 101.5 {
		t.Fatalf("last price = %v, want 101.5", got)
	}
}

func TestSettleTradeFeedsLearning(t *testing.T) {
	c, _, met := testCycle(t, testConfig(t), t.TempDir())
	trade := loseOneTrade(t, c)
	if trade.Outcome != models.OutcomeLoss {
		t.Fatalf("outcome = %v, want loss", trade.Outcome)
	}

	c.settleTrade(context.Background(), trade)

	perf := c.Performance()
	if perf.Stats.TotalTrades != 1 || perf.Stats.LosingTrades != 1 {
		t.Fatalf("stats = %+v, want 1 total / 1 losing", perf.Stats)
	}
	if perf.DailyPnl >= 0 {
		t.Fatalf("daily pnl = %v, want negative", perf.DailyPnl)
	}
	if met.tradeClosed != 1 {
		t.Fatalf("trade closed metric = %d, want 1", met.tradeClosed)
	}
}

func TestRiskHaltEmitsOncePerDay(t *testing.T) {
	cfg := testConfig(t)
	// Tiny balance so a single stopped-out trade trips the daily limit.
	cfg.Risk.AccountBalance = 100
	c, pub, _ := testCycle(t, cfg, t.TempDir())
	ctx := context.Background()

	loseOneTrade(t, c)
	c.checkRiskHalt(ctx, "BTCUSDT")
	c.checkRiskHalt(ctx, "BTCUSDT")
	if got := pub.haltCount(); got != 1 {
		t.Fatalf("halt events = %d, want 1", got)
	}

	// A new UTC day clears the counters and arms the halt again.
	c.mu.Lock()
	c.currentDay = "2000-01-01"
	c.mu.Unlock()
	c.rolloverDay()
	if pnl := c.book.DailyPnl(); pnl != 0 {
		t.Fatalf("daily pnl after rollover = %v, want 0", pnl)
	}
	c.checkRiskHalt(ctx, "BTCUSDT")
	if got := pub.haltCount(); got != 1 {
		t.Fatalf("halt events after rollover = %d, want 1", got)
	}
}

func TestShutdownRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	ctx := context.Background()

	c, _, _ := testCycle(t, cfg, dir)
	if pos := c.book.Open(losingSignal(), "BTCUSDT", 0); pos == nil {
		t.Fatalf("expected position to open")
	}
	if err := c.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	fresh, _, _ := testCycle(t, cfg, dir)
	if err := fresh.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := len(fresh.Positions()); got != 1 {
		t.Fatalf("restored %d positions, want 1", got)
	}
}
