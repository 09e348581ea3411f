package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/indicator"
	"TradePulse/internal/learning"
	"TradePulse/internal/position"
	"TradePulse/internal/service/binance"
	signalpkg "TradePulse/internal/signal"
	"TradePulse/pkg/config"
	"TradePulse/pkg/logger"
	"TradePulse/pkg/util"
)

// Performance is the aggregate view served by the API.
type Performance struct {
	Stats         learning.PerformanceStats `json:"stats"`
	Params        models.AdaptiveParams     `json:"adaptive_params"`
	DailyPnl      float64                   `json:"daily_pnl"`
	DailyTrades   int                       `json:"daily_trades"`
	OpenPositions int                       `json:"open_positions"`
	TotalExposure float64                   `json:"total_exposure"`
}

// Cycle runs one full decision pass: refresh data, manage open
// positions, score, and possibly enter. The scheduler calls Run
// strictly sequentially; all cross-cycle state lives behind the mutex.
type Cycle struct {
	cfg       *config.Config
	log       *logger.Logger
	market    *binance.Service
	engine    *indicator.Engine
	scorer    *signalpkg.Scorer
	book      *position.Book
	learner   *learning.Engine
	store     domrepo.StateStore
	publisher domrepo.EventPublisher
	archive   domrepo.TradeArchive
	metrics   domrepo.Metrics

	mu           sync.RWMutex
	analysis     map[string]*models.IndicatorSnapshot
	latestSignal *models.Signal
	lastPrice    float64
	lastTickAt   time.Time
	lastCycleAt  time.Time
	currentDay   string
	haltEmitted  bool
}

func NewCycle(
	cfg *config.Config,
	log *logger.Logger,
	market *binance.Service,
	engine *indicator.Engine,
	scorer *signalpkg.Scorer,
	book *position.Book,
	learner *learning.Engine,
	store domrepo.StateStore,
	publisher domrepo.EventPublisher,
	archive domrepo.TradeArchive,
	metrics domrepo.Metrics,
) *Cycle {
	return &Cycle{
		cfg:        cfg,
		log:        log,
		market:     market,
		engine:     engine,
		scorer:     scorer,
		book:       book,
		learner:    learner,
		store:      store,
		publisher:  publisher,
		archive:    archive,
		metrics:    metrics,
		analysis:   make(map[string]*models.IndicatorSnapshot),
		currentDay: time.Now().UTC().Format("2006-01-02"),
	}
}

// Restore loads persisted positions into the book at startup.
func (c *Cycle) Restore(ctx context.Context) error {
	positions, err := c.store.LoadPositions(ctx)
	if err != nil {
		return fmt.Errorf("restore positions: %w", err)
	}
	c.book.Restore(positions)
	if len(positions) > 0 {
		c.log.Info("positions restored", logger.Int("count", len(positions)))
	}
	return c.learner.Load(ctx)
}

// OnTick records a live price from the stream. Ticks only refresh the
// cached price; position state changes stay inside Run.
func (c *Cycle) OnTick(tick models.Tick) {
	c.mu.Lock()
	c.lastPrice = tick.Price
	c.lastTickAt = tick.Timestamp
	c.mu.Unlock()
	c.metrics.RecordLastPrice(tick.Symbol, tick.Price)
}

// Run executes one decision cycle.
func (c *Cycle) Run(ctx context.Context) error {
	start := time.Now()
	symbol := c.cfg.Engine.Symbol

	c.rolloverDay()

	price, err := c.currentPrice(ctx, symbol)
	if err != nil {
		c.metrics.RecordError("price_fetch")
		return fmt.Errorf("cycle price: %w", err)
	}
	c.metrics.RecordLastPrice(symbol, price)

	// Manage open positions first so exits see the freshest price.
	for _, trade := range c.book.UpdateAll(price) {
		c.settleTrade(ctx, trade)
	}
	c.persistPositions(ctx)

	windows, err := c.market.MultiTimeframe(ctx, symbol)
	if err != nil {
		c.metrics.RecordError("market_data")
		return fmt.Errorf("cycle market data: %w", err)
	}

	analysis := make(map[string]*models.IndicatorSnapshot, len(windows))
	for tf, candles := range windows {
		snap, err := c.engine.Snapshot(candles, string(tf))
		if err != nil {
			c.metrics.RecordError("indicator")
			return fmt.Errorf("cycle snapshot %s: %w", tf, err)
		}
		analysis[string(tf)] = snap
	}
	primary := analysis[c.cfg.Engine.PrimaryTimeframe]

	session := util.CurrentSession()
	sig := c.scorer.Entry(primary, session)
	c.metrics.RecordSignal(string(sig.Type), string(sig.Side))

	if sig.Type == models.SignalEntry {
		c.tryEnter(ctx, sig, primary, symbol)
	}

	c.checkRiskHalt(ctx, symbol)

	c.mu.Lock()
	c.analysis = analysis
	c.latestSignal = sig
	c.lastCycleAt = time.Now().UTC()
	c.mu.Unlock()

	c.metrics.RecordCycle()
	c.metrics.RecordDailyPnl(c.book.DailyPnl())
	c.metrics.RecordOpenPositions(c.book.OpenCount())
	c.metrics.RecordLatency("cycle", time.Since(start).Seconds())
	return nil
}

// currentPrice prefers a fresh stream tick over a REST round trip.
func (c *Cycle) currentPrice(ctx context.Context, symbol string) (float64, error) {
	c.mu.RLock()
	price := c.lastPrice
	fresh := time.Since(c.lastTickAt) < c.cfg.Engine.ScanInterval
	c.mu.RUnlock()
	if price > 0 && fresh {
		return price, nil
	}
	return c.market.LastPrice(ctx, symbol)
}

// tryEnter passes an entry signal through admission and opens the
// position. A blocked entry is a silent no-op.
func (c *Cycle) tryEnter(ctx context.Context, sig *models.Signal, snap *models.IndicatorSnapshot, symbol string) {
	if !c.book.CanOpen() {
		c.log.Debug("entry blocked by admission", logger.String("side", string(sig.Side)))
		return
	}

	pattern := c.learner.GetOrCreatePattern(ctx, snap, sig.Session, sig.Timeframe)
	sig.PatternID = pattern.ID

	pos := c.book.Open(sig, symbol, snap.ATR)
	if pos == nil {
		return
	}
	c.persistPositions(ctx)

	c.publish(ctx, symbol, models.SignalEvent{
		Type:       models.EventSignal,
		Symbol:     symbol,
		Side:       sig.Side,
		Confidence: sig.Confidence,
		Price:      sig.Price,
		Timeframe:  sig.Timeframe,
		Regime:     sig.Regime,
		Session:    sig.Session,
		Reasons:    sig.Reasons,
		Timestamp:  sig.Timestamp,
	})
	c.publish(ctx, symbol, models.PositionEvent{
		Type:       models.EventPositionOpen,
		PositionID: pos.ID,
		Symbol:     symbol,
		Side:       pos.Side,
		EntryPrice: pos.EntryPrice,
		Size:       pos.Size,
		Timestamp:  pos.OpenTime,
	})
}

// settleTrade feeds a closed trade to the learning engine, the archive,
// the event topic, and metrics. Archive and publish failures are logged
// and never interrupt the cycle.
func (c *Cycle) settleTrade(ctx context.Context, trade *models.Trade) {
	c.learner.RecordTrade(ctx, trade)
	c.metrics.RecordTradeClosed(string(trade.Outcome), string(trade.ExitReason))

	if err := c.archive.Archive(ctx, trade); err != nil {
		c.metrics.RecordError("archive")
		c.log.Warn("trade archive failed", logger.Error(err))
	}

	c.publish(ctx, trade.Symbol, models.PositionEvent{
		Type:       models.EventPositionClose,
		PositionID: trade.ID,
		Symbol:     trade.Symbol,
		Side:       trade.Side,
		EntryPrice: trade.EntryPrice,
		ExitPrice:  trade.ExitPrice,
		Size:       trade.Size,
		Pnl:        trade.Pnl,
		PnlPct:     trade.PnlPct,
		ExitReason: trade.ExitReason,
		Timestamp:  trade.ExitTime,
	})
}

// checkRiskHalt emits one halt event per day when the loss limit trips.
func (c *Cycle) checkRiskHalt(ctx context.Context, symbol string) {
	limit := -c.cfg.Risk.AccountBalance * c.cfg.Risk.MaxDailyLossPct
	pnl := c.book.DailyPnl()
	if pnl > limit {
		return
	}

	c.mu.Lock()
	emitted := c.haltEmitted
	c.haltEmitted = true
	c.mu.Unlock()
	if emitted {
		return
	}

	c.log.Warn("daily loss limit reached, entries halted",
		logger.Float64("daily_pnl", pnl))
	c.publish(ctx, symbol, models.RiskHaltEvent{
		Type:      models.EventRiskHalt,
		Symbol:    symbol,
		DailyPnl:  pnl,
		LimitPct:  c.cfg.Risk.MaxDailyLossPct,
		Timestamp: time.Now().UTC(),
	})
}

// rolloverDay resets daily counters at the first cycle of a new UTC day.
func (c *Cycle) rolloverDay() {
	today := time.Now().UTC().Format("2006-01-02")
	c.mu.Lock()
	changed := today != c.currentDay
	if changed {
		c.currentDay = today
		c.haltEmitted = false
	}
	c.mu.Unlock()
	if changed {
		c.book.ResetDaily()
	}
}

func (c *Cycle) persistPositions(ctx context.Context) {
	if err := c.store.SavePositions(ctx, c.book.Positions()); err != nil {
		c.metrics.RecordError("persist_positions")
		c.log.Error("persist positions", logger.Error(err))
	}
}

func (c *Cycle) publish(ctx context.Context, key string, event any) {
	if err := c.publisher.Publish(ctx, key, event); err != nil {
		c.metrics.RecordError("publish")
		c.log.Warn("event publish failed", logger.Error(err))
	}
}

// Shutdown checkpoints all state before the process exits.
func (c *Cycle) Shutdown(ctx context.Context) error {
	if err := c.store.SavePositions(ctx, c.book.Positions()); err != nil {
		return fmt.Errorf("checkpoint positions: %w", err)
	}
	if err := c.learner.Save(ctx); err != nil {
		return fmt.Errorf("checkpoint learning state: %w", err)
	}
	return nil
}

// --- read accessors ---

// Analysis returns the latest snapshot per timeframe.
func (c *Cycle) Analysis() map[string]*models.IndicatorSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*models.IndicatorSnapshot, len(c.analysis))
	for k, v := range c.analysis {
		out[k] = v
	}
	return out
}

// LatestSignal returns the most recent scoring decision, nil before the
// first cycle.
func (c *Cycle) LatestSignal() *models.Signal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latestSignal
}

// Positions returns the open positions.
func (c *Cycle) Positions() []*models.Position {
	return c.book.Positions()
}

// Performance aggregates learning stats with the book's daily state.
func (c *Cycle) Performance() Performance {
	return Performance{
		Stats:         c.learner.PerformanceStats(),
		Params:        c.learner.AdaptiveParams(),
		DailyPnl:      c.book.DailyPnl(),
		DailyTrades:   c.book.DailyTrades(),
		OpenPositions: c.book.OpenCount(),
		TotalExposure: c.book.TotalExposure(),
	}
}

// Patterns returns the best performing patterns.
func (c *Cycle) Patterns(limit int) []*models.Pattern {
	return c.learner.BestPatterns(limit)
}

// LastCycleAt reports when the last cycle completed.
func (c *Cycle) LastCycleAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastCycleAt
}

// LastPrice returns the most recent known price.
func (c *Cycle) LastPrice() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastPrice
}
