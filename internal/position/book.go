package position

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"TradePulse/internal/domain/models"
	"TradePulse/pkg/config"
	"TradePulse/pkg/logger"
)

// Weights is the source of sizing multipliers the book consults when
// opening a position. The learning engine implements it.
type Weights interface {
	PatternWeight(patternID string) float64
	RiskMultiplier() float64
	SizeMultiplier() float64
}

// noWeights is the neutral fallback when no learning engine is wired.
type noWeights struct{}

func (noWeights) PatternWeight(string) float64 { return 1.0 }
func (noWeights) RiskMultiplier() float64      { return 1.0 }
func (noWeights) SizeMultiplier() float64      { return 1.0 }

const minPositionNotional = 10.0

var regimeStopMultipliers = map[models.Regime]float64{
	models.RegimeTrending: 1.0,
	models.RegimeRanging:  0.8,
	models.RegimeVolatile: 1.5,
	models.RegimeNeutral:  1.0,
}

// Book owns every open position. All mutation goes through its methods
// under one lock; positions handed out are live references that callers
// must treat as read-only.
type Book struct {
	mu sync.Mutex

	cfg     *config.Config
	log     *logger.Logger
	weights Weights

	positions   map[string]*models.Position
	dailyPnl    float64
	dailyTrades int
	balance     float64
}

func NewBook(cfg *config.Config, log *logger.Logger, weights Weights) *Book {
	if weights == nil {
		weights = noWeights{}
	}
	return &Book{
		cfg:       cfg,
		log:       log,
		weights:   weights,
		positions: make(map[string]*models.Position),
		balance:   cfg.Risk.AccountBalance,
	}
}

// SetBalance updates the account balance used by the daily loss limit.
func (b *Book) SetBalance(balance float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balance = balance
}

// CanOpen reports whether a new position is allowed right now.
func (b *Book) CanOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canOpenLocked()
}

func (b *Book) canOpenLocked() bool {
	if len(b.positions) >= b.cfg.Risk.MaxConcurrent {
		return false
	}
	if b.dailyPnl <= -b.balance*b.cfg.Risk.MaxDailyLossPct {
		b.log.Warn("daily loss limit reached",
			logger.Float64("daily_pnl", b.dailyPnl),
			logger.Float64("limit", -b.balance*b.cfg.Risk.MaxDailyLossPct))
		return false
	}
	return true
}

// Open creates a position from an entry signal. Returns nil when risk
// limits block the entry.
func (b *Book) Open(sig *models.Signal, symbol string, atr float64) *models.Position {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.canOpenLocked() {
		return nil
	}

	entry := sig.Price
	patternWeight := b.weights.PatternWeight(sig.PatternID)
	notional := b.positionNotional(entry, atr, sig.Confidence, patternWeight)
	stop := b.stopLoss(entry, atr, sig.Side, sig.Regime)
	tp1, tp2, tp3 := b.takeProfits(entry, sig.Side)

	pos := &models.Position{
		ID:           uuid.NewString(),
		Symbol:       symbol,
		Side:         sig.Side,
		EntryPrice:   entry,
		Size:         notional / entry,
		Notional:     notional,
		StopLoss:     stop,
		TakeProfit1:  tp1,
		TakeProfit2:  tp2,
		TakeProfit3:  tp3,
		HighestPrice: entry,
		LowestPrice:  entry,
		PatternID:    sig.PatternID,
		Regime:       sig.Regime,
		Session:      sig.Session,
		OpenTime:     time.Now().UTC(),
	}

	b.positions[pos.ID] = pos
	b.dailyTrades++

	b.log.Info("position opened",
		logger.String("id", pos.ID),
		logger.String("side", string(pos.Side)),
		logger.Float64("entry", entry),
		logger.Float64("notional", notional),
		logger.Float64("stop", stop))
	return pos
}

// positionNotional sizes a position in quote currency. Confidence and
// pattern weight scale it up, volatility and the adaptive multipliers
// scale it in either direction, then the result is clamped.
func (b *Book) positionNotional(entry, atr, confidence, patternWeight float64) float64 {
	risk := b.cfg.Risk
	notional := risk.MaxPositionNotional * (confidence / 100.0)
	notional *= patternWeight

	if entry > 0 {
		atrPct := atr / entry
		notional *= 1.0 / (1.0 + atrPct*10.0)
	}

	notional *= b.weights.SizeMultiplier()
	notional *= b.weights.RiskMultiplier()

	if notional > risk.MaxPositionNotional {
		notional = risk.MaxPositionNotional
	}
	if notional < minPositionNotional {
		notional = minPositionNotional
	}
	return notional
}

// stopLoss places the stop at 2x ATR scaled by regime, floored at the
// hard-stop distance.
func (b *Book) stopLoss(entry, atr float64, side models.Side, regime models.Regime) float64 {
	distance := atr * 2.0
	if m, ok := regimeStopMultipliers[regime]; ok {
		distance *= m
	}
	if min := entry * b.cfg.Risk.HardStopPct; distance < min {
		distance = min
	}
	if side == models.SideLong {
		return entry - distance
	}
	return entry + distance
}

func (b *Book) takeProfits(entry float64, side models.Side) (tp1, tp2, tp3 float64) {
	risk := b.cfg.Risk
	if side == models.SideLong {
		return entry * (1 + risk.TP1Pct), entry * (1 + risk.TP2Pct), entry * (1 + risk.TP3Pct)
	}
	return entry * (1 - risk.TP1Pct), entry * (1 - risk.TP2Pct), entry * (1 - risk.TP3Pct)
}

// UpdateAll pushes a price through every open position: extremes and
// trailing state first, then exit checks in priority order. Positions
// whose exit fires are closed and returned as trades.
func (b *Book) UpdateAll(price float64) []*models.Trade {
	b.mu.Lock()
	defer b.mu.Unlock()

	var closed []*models.Trade
	for id, pos := range b.positions {
		b.updatePrice(pos, price)
		if reason, ok := b.exitReason(pos, price); ok {
			if t := b.closeLocked(id, price, reason); t != nil {
				closed = append(closed, t)
			}
		}
	}
	return closed
}

// updatePrice tracks per-tick extremes and the trailing stop. The trail
// only ever moves in the position's favor.
func (b *Book) updatePrice(pos *models.Position, price float64) {
	risk := b.cfg.Risk

	if price > pos.HighestPrice {
		pos.HighestPrice = price
	}
	if price < pos.LowestPrice {
		pos.LowestPrice = price
	}

	pnlPct := pos.PnlPct(price) / 100.0
	if pos.Side == models.SideLong {
		if !pos.TrailingActive && pnlPct >= risk.TrailingActivationPct {
			pos.TrailingActive = true
			pos.TrailingPrice = pos.HighestPrice * (1 - risk.TrailingDistancePct)
			b.log.Info("trailing stop activated",
				logger.String("id", pos.ID), logger.Float64("trail", pos.TrailingPrice))
		}
		if pos.TrailingActive {
			if trail := pos.HighestPrice * (1 - risk.TrailingDistancePct); trail > pos.TrailingPrice {
				pos.TrailingPrice = trail
			}
		}
	} else {
		if !pos.TrailingActive && pnlPct >= risk.TrailingActivationPct {
			pos.TrailingActive = true
			pos.TrailingPrice = pos.LowestPrice * (1 + risk.TrailingDistancePct)
			b.log.Info("trailing stop activated",
				logger.String("id", pos.ID), logger.Float64("trail", pos.TrailingPrice))
		}
		if pos.TrailingActive {
			if trail := pos.LowestPrice * (1 + risk.TrailingDistancePct); trail < pos.TrailingPrice {
				pos.TrailingPrice = trail
			}
		}
	}
}

// exitReason evaluates exit rules in priority order.
func (b *Book) exitReason(pos *models.Position, price float64) (models.ExitReason, bool) {
	risk := b.cfg.Risk
	pnlPct := pos.PnlPct(price)

	if pnlPct <= -risk.HardStopPct*100 {
		return models.ExitHardStop, true
	}

	if pos.TrailingActive {
		if pos.Side == models.SideLong && price <= pos.TrailingPrice {
			return models.ExitTrailingStop, true
		}
		if pos.Side == models.SideShort && price >= pos.TrailingPrice {
			return models.ExitTrailingStop, true
		}
	}

	switch {
	case pnlPct >= risk.TP3Pct*100:
		return models.ExitTP3, true
	case pnlPct >= risk.TP2Pct*100:
		return models.ExitTP2, true
	case pnlPct >= risk.TP1Pct*100:
		return models.ExitTP1, true
	}
	return "", false
}

// Close closes a position by id. Returns nil for unknown or already
// closed ids, so a double close is a no-op.
func (b *Book) Close(id string, price float64, reason models.ExitReason) *models.Trade {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeLocked(id, price, reason)
}

func (b *Book) closeLocked(id string, price float64, reason models.ExitReason) *models.Trade {
	pos, ok := b.positions[id]
	if !ok {
		return nil
	}
	delete(b.positions, id)

	pnlPct := pos.PnlPct(price)
	pnl := pos.Pnl(price)
	b.dailyPnl += pnl

	trade := &models.Trade{
		ID:         pos.ID,
		Symbol:     pos.Symbol,
		EntryTime:  pos.OpenTime,
		ExitTime:   time.Now().UTC(),
		EntryPrice: pos.EntryPrice,
		ExitPrice:  price,
		Side:       pos.Side,
		Size:       pos.Size,
		Pnl:        pnl,
		PnlPct:     pnlPct,
		Outcome:    models.OutcomeOf(pnlPct),
		PatternID:  pos.PatternID,
		Regime:     pos.Regime,
		Session:    pos.Session,
		ExitReason: reason,
	}

	b.log.Info("position closed",
		logger.String("id", id),
		logger.Float64("pnl_pct", pnlPct),
		logger.String("reason", string(reason)))
	return trade
}

// Positions returns a snapshot copy of the open positions.
func (b *Book) Positions() []*models.Position {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*models.Position, 0, len(b.positions))
	for _, pos := range b.positions {
		cp := *pos
		out = append(out, &cp)
	}
	return out
}

// Restore seeds the book with persisted positions on startup.
func (b *Book) Restore(positions []*models.Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, pos := range positions {
		if pos == nil || pos.ID == "" {
			continue
		}
		cp := *pos
		b.positions[cp.ID] = &cp
	}
}

// DailyPnl returns the realized pnl accumulated since the last reset.
func (b *Book) DailyPnl() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dailyPnl
}

// DailyTrades returns the count of positions opened since the last reset.
func (b *Book) DailyTrades() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dailyTrades
}

// OpenCount returns the number of open positions.
func (b *Book) OpenCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.positions)
}

// TotalExposure sums the entry notional of the open positions.
func (b *Book) TotalExposure() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var total float64
	for _, pos := range b.positions {
		total += pos.Notional
	}
	return total
}

// ResetDaily clears the daily counters at the start of a new UTC day.
func (b *Book) ResetDaily() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dailyPnl = 0
	b.dailyTrades = 0
	b.log.Info("daily stats reset")
}
