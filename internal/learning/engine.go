package learning

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/domain/repository"
	"TradePulse/pkg/config"
	"TradePulse/pkg/logger"
)

// PerformanceStats summarizes the full closed-trade history.
type PerformanceStats struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	TotalPnlPct   float64 `json:"total_pnl_pct"`
	AvgProfitPct  float64 `json:"avg_profit_pct"`
	AvgLossPct    float64 `json:"avg_loss_pct"`
	ProfitFactor  float64 `json:"profit_factor"`
	MaxDrawdown   float64 `json:"max_drawdown"`
}

// Engine owns the pattern library, the trade history, and the adaptive
// multipliers. Everything mutable lives behind one lock; persistence
// goes through the state store after each mutation.
type Engine struct {
	mu sync.Mutex

	cfg   *config.Config
	log   *logger.Logger
	store repository.StateStore

	patterns map[string]*models.Pattern
	trades   []*models.Trade
	params   *models.AdaptiveParams
}

func NewEngine(cfg *config.Config, log *logger.Logger, store repository.StateStore) *Engine {
	return &Engine{
		cfg:      cfg,
		log:      log,
		store:    store,
		patterns: make(map[string]*models.Pattern),
		params:   models.NewAdaptiveParams(),
	}
}

// Load restores persisted state. Missing data is not an error: the
// engine starts empty.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	patterns, err := e.store.LoadPatterns(ctx)
	if err != nil {
		return fmt.Errorf("load patterns: %w", err)
	}
	if patterns != nil {
		e.patterns = patterns
	}

	trades, err := e.store.LoadTrades(ctx)
	if err != nil {
		return fmt.Errorf("load trades: %w", err)
	}
	e.trades = trades

	params, err := e.store.LoadParams(ctx)
	if err != nil {
		return fmt.Errorf("load params: %w", err)
	}
	if params != nil {
		e.params = params
	}

	e.log.Info("learning state loaded",
		logger.Int("patterns", len(e.patterns)),
		logger.Int("trades", len(e.trades)))
	return nil
}

// Signature discretizes a snapshot into the pattern key. Thresholds are
// shared with the signal scorer so the two views of "overbought" or
// "high volume" never drift apart.
func (e *Engine) Signature(snap *models.IndicatorSnapshot, session, timeframe string) string {
	sig := e.cfg.Signal

	rsiState := "mid"
	if snap.RSI > sig.RSIOverbought {
		rsiState = "high"
	} else if snap.RSI < sig.RSIOversold {
		rsiState = "low"
	}

	macdState := "bearish"
	if snap.MACD > snap.MACDSignal {
		macdState = "bullish"
	}

	emaState := "below"
	if snap.Price > snap.EMA21 {
		emaState = "above"
	}

	volumeState := "normal"
	if snap.VolumeRatio > sig.VolumeSpike {
		volumeState = "high"
	}

	return fmt.Sprintf("%s_%s_%s_%s_%s_%s_%s",
		rsiState, macdState, emaState, volumeState, snap.Regime, session, timeframe)
}

// GetOrCreatePattern returns the pattern for a snapshot, creating and
// persisting a fresh one on first sight.
func (e *Engine) GetOrCreatePattern(ctx context.Context, snap *models.IndicatorSnapshot, session, timeframe string) *models.Pattern {
	id := e.Signature(snap, session, timeframe)

	e.mu.Lock()
	defer e.mu.Unlock()

	if p, ok := e.patterns[id]; ok {
		cp := *p
		return &cp
	}

	p := &models.Pattern{
		ID: id,
		Indicators: models.IndicatorSummary{
			Price:       snap.Price,
			RSI:         snap.RSI,
			MACD:        snap.MACD,
			MACDSignal:  snap.MACDSignal,
			EMA21:       snap.EMA21,
			VolumeRatio: snap.VolumeRatio,
		},
		Regime:    snap.Regime,
		Session:   session,
		Timeframe: timeframe,
		CreatedAt: time.Now().UTC(),
		Weight:    1.0,
	}
	e.patterns[id] = p

	if err := e.store.SavePatterns(ctx, e.patterns); err != nil {
		e.log.Error("persist patterns", logger.Error(err))
	}
	e.log.Info("new pattern", logger.String("id", id))

	cp := *p
	return &cp
}

// RecordTrade appends a closed trade, updates the pattern it used, and
// re-derives the adaptive multipliers. State is persisted before
// returning.
func (e *Engine) RecordTrade(ctx context.Context, trade *models.Trade) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.trades = append(e.trades, trade)

	if trade.PatternID != "" {
		if p, ok := e.patterns[trade.PatternID]; ok {
			e.updatePattern(p, trade)
			if err := e.store.SavePatterns(ctx, e.patterns); err != nil {
				e.log.Error("persist patterns", logger.Error(err))
			}
		}
	}

	e.updateAdaptiveParams()

	if err := e.store.SaveTrades(ctx, e.trades); err != nil {
		e.log.Error("persist trades", logger.Error(err))
	}
	if err := e.store.SaveParams(ctx, e.params); err != nil {
		e.log.Error("persist params", logger.Error(err))
	}

	e.log.Info("trade recorded",
		logger.String("id", trade.ID),
		logger.String("outcome", string(trade.Outcome)),
		logger.Float64("pnl_pct", trade.PnlPct))
}

// updatePattern folds one trade result into a pattern's incremental
// averages and recomputes its weight.
func (e *Engine) updatePattern(p *models.Pattern, trade *models.Trade) {
	p.Occurrences++
	p.LastUsed = time.Now().UTC()

	if trade.Outcome == models.OutcomeWin {
		p.Wins++
		p.AvgProfitPct = (p.AvgProfitPct*float64(p.Wins-1) + trade.PnlPct) / float64(p.Wins)
	} else {
		p.Losses++
		pnl := trade.PnlPct
		if pnl < 0 {
			pnl = -pnl
		}
		p.AvgLossPct = (p.AvgLossPct*float64(p.Losses-1) + pnl) / float64(p.Losses)
	}

	p.WinRate = float64(p.Wins) / float64(p.Occurrences)
	p.Weight = e.patternWeight(p)
}

// patternWeight derives a sizing weight from win rate, occurrence count
// and the reward/loss ratio. Patterns below the occurrence minimum stay
// neutral.
func (e *Engine) patternWeight(p *models.Pattern) float64 {
	if p.Occurrences < e.cfg.Learning.MinPatternOccurrences {
		return 1.0
	}

	consistency := float64(p.Occurrences) / 100.0
	if consistency > 0.2 {
		consistency = 0.2
	}

	rrFactor := 1.0
	if p.AvgLossPct > 0 {
		rrFactor = p.AvgProfitPct / p.AvgLossPct / 2.0
		if rrFactor > 1.0 {
			rrFactor = 1.0
		}
	}

	w := p.WinRate * (1 + consistency) * rrFactor
	if w < models.PatternWeightMin {
		w = models.PatternWeightMin
	}
	if w > models.PatternWeightMax {
		w = models.PatternWeightMax
	}
	return w
}

// updateAdaptiveParams recomputes the windowed win rate and equity-curve
// drawdown, then nudges the multipliers. Needs at least five trades.
func (e *Engine) updateAdaptiveParams() {
	if len(e.trades) < 5 {
		return
	}

	window := e.trades
	if n := e.cfg.Learning.WindowTrades; len(window) > n {
		window = window[len(window)-n:]
	}

	wins := 0
	for _, t := range window {
		if t.Outcome == models.OutcomeWin {
			wins++
		}
	}
	winRate := float64(wins) / float64(len(window))

	// Equity curve over the full history, starting from 100.
	equity := 100.0
	peak := equity
	maxDD := 0.0
	currentDD := 0.0
	totalWins := 0
	for _, t := range e.trades {
		if t.Outcome == models.OutcomeWin {
			totalWins++
		}
		equity *= 1 + t.PnlPct/100
		if equity > peak {
			peak = equity
		}
		currentDD = (peak - equity) / peak * 100
		if currentDD > maxDD {
			maxDD = currentDD
		}
	}

	p := e.params
	p.WindowWinRate = winRate
	p.TotalTrades = len(e.trades)
	p.WinningTrades = totalWins
	p.LosingTrades = len(e.trades) - totalWins
	p.CurrentDrawdownPct = currentDD
	p.MaxDrawdownPct = maxDD
	p.LastUpdated = time.Now().UTC()

	learn := e.cfg.Learning
	switch {
	case winRate >= learn.WinRateHigh:
		p.RiskMultiplier = minf(models.RiskMultiplierMax, p.RiskMultiplier*1.05)
		p.PositionSizeMultiplier = minf(models.SizeMultiplierMax, p.PositionSizeMultiplier*1.02)
	case winRate <= learn.WinRateLow || maxDD > learn.MaxDrawdownPct:
		p.RiskMultiplier = maxf(models.RiskMultiplierMin, p.RiskMultiplier*0.9)
		p.PositionSizeMultiplier = maxf(models.SizeMultiplierMin, p.PositionSizeMultiplier*0.95)
	}

	e.log.Debug("adaptive params updated",
		logger.Float64("win_rate", winRate),
		logger.Float64("risk_multiplier", p.RiskMultiplier))
}

// PatternWeight returns the weight for a pattern id, neutral for ids
// the library has never seen.
func (e *Engine) PatternWeight(id string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.patterns[id]; ok {
		return p.Weight
	}
	return 1.0
}

// RiskMultiplier implements the position book's weight source.
func (e *Engine) RiskMultiplier() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.RiskMultiplier
}

// SizeMultiplier implements the position book's weight source.
func (e *Engine) SizeMultiplier() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.PositionSizeMultiplier
}

// AdaptiveParams returns a copy of the current adaptive parameters.
func (e *Engine) AdaptiveParams() models.AdaptiveParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.params
}

// BestPatterns returns the highest-weighted patterns that have cleared
// the occurrence minimum.
func (e *Engine) BestPatterns(limit int) []*models.Pattern {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*models.Pattern, 0, len(e.patterns))
	for _, p := range e.patterns {
		if p.Occurrences >= e.cfg.Learning.MinPatternOccurrences {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// PerformanceStats aggregates the closed-trade history.
func (e *Engine) PerformanceStats() PerformanceStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var stats PerformanceStats
	if len(e.trades) == 0 {
		return stats
	}

	var grossProfit, grossLoss, totalPnl float64
	for _, t := range e.trades {
		totalPnl += t.PnlPct
		if t.Outcome == models.OutcomeWin {
			stats.WinningTrades++
			grossProfit += t.PnlPct
		} else {
			stats.LosingTrades++
			grossLoss += -t.PnlPct
		}
	}

	stats.TotalTrades = len(e.trades)
	stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades) * 100
	stats.TotalPnlPct = totalPnl
	if stats.WinningTrades > 0 {
		stats.AvgProfitPct = grossProfit / float64(stats.WinningTrades)
	}
	if stats.LosingTrades > 0 {
		stats.AvgLossPct = grossLoss / float64(stats.LosingTrades)
	}
	if grossLoss > 0 {
		stats.ProfitFactor = grossProfit / grossLoss
	} else if grossProfit > 0 {
		stats.ProfitFactor = grossProfit
	}
	stats.MaxDrawdown = e.params.MaxDrawdownPct
	return stats
}

// Trades returns a copy of the recorded trade history, newest last.
func (e *Engine) Trades(limit int) []*models.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()

	trades := e.trades
	if limit > 0 && len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}
	out := make([]*models.Trade, 0, len(trades))
	for _, t := range trades {
		cp := *t
		out = append(out, &cp)
	}
	return out
}

// Save persists all learning state, used at shutdown checkpoints.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.SavePatterns(ctx, e.patterns); err != nil {
		return fmt.Errorf("save patterns: %w", err)
	}
	if err := e.store.SaveTrades(ctx, e.trades); err != nil {
		return fmt.Errorf("save trades: %w", err)
	}
	if err := e.store.SaveParams(ctx, e.params); err != nil {
		return fmt.Errorf("save params: %w", err)
	}
	return nil
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
