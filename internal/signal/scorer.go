package signal

import (
	"fmt"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/pkg/config"
)

// Score contributions per indicator condition.
const (
	scoreRSIExtreme  = 20.0
	scoreRSINeutral  = 5.0
	scoreMACD        = 20.0
	scoreEMA         = 15.0
	scoreBB          = 15.0
	scoreVolume      = 10.0
	scoreRegime      = 10.0
	rangingDampening = 0.8
)

// Scorer turns an indicator snapshot into a trading signal. Scoring is
// additive: each condition contributes symmetrically, positive for long
// evidence, negative for short.
type Scorer struct {
	cfg *config.Config
}

func NewScorer(cfg *config.Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Entry scores a snapshot and returns an ENTRY signal when confidence
// clears the configured minimum, NONE otherwise. Insufficient snapshots
// never produce an entry.
func (s *Scorer) Entry(snap *models.IndicatorSnapshot, session string) *models.Signal {
	now := time.Now().UTC()
	if snap == nil || snap.Insufficient {
		return &models.Signal{
			Type:      models.SignalNone,
			Side:      models.SideLong,
			Timestamp: now,
			Reasons:   []string{"insufficient data"},
			Session:   session,
		}
	}

	sig := s.cfg.Signal
	score := 0.0
	reasons := make([]string, 0, 8)

	switch {
	case snap.RSI < sig.RSIOversold:
		score += scoreRSIExtreme
		reasons = append(reasons, "RSI oversold")
	case snap.RSI > sig.RSIOverbought:
		score -= scoreRSIExtreme
		reasons = append(reasons, "RSI overbought")
	case snap.RSI >= 40 && snap.RSI <= 60:
		score += scoreRSINeutral
		reasons = append(reasons, "RSI neutral")
	}

	if snap.MACD > snap.MACDSignal && snap.MACDHist > 0 {
		score += scoreMACD
		reasons = append(reasons, "MACD bullish crossover")
	} else if snap.MACD < snap.MACDSignal && snap.MACDHist < 0 {
		score -= scoreMACD
		reasons = append(reasons, "MACD bearish crossover")
	}

	if snap.EMA9 > snap.EMA21 && snap.EMA21 > snap.EMA50 {
		score += scoreEMA
		reasons = append(reasons, "Bullish EMA alignment")
	} else if snap.EMA9 < snap.EMA21 && snap.EMA21 < snap.EMA50 {
		score -= scoreEMA
		reasons = append(reasons, "Bearish EMA alignment")
	}

	if snap.Price < snap.BBLower {
		score += scoreBB
		reasons = append(reasons, "Price below lower BB")
	} else if snap.Price > snap.BBUpper {
		score -= scoreBB
		reasons = append(reasons, "Price above upper BB")
	}

	// Volume amplifies an existing bias, it never creates one.
	if snap.VolumeRatio > sig.VolumeSpike {
		if score > 0 {
			score += scoreVolume
			reasons = append(reasons, fmt.Sprintf("High volume (%.1fx)", snap.VolumeRatio))
		} else if score < 0 {
			score -= scoreVolume
			reasons = append(reasons, fmt.Sprintf("High volume (%.1fx)", snap.VolumeRatio))
		}
	}

	switch {
	case snap.Regime == models.RegimeTrending && snap.Trend == models.TrendBullish:
		score += scoreRegime
		reasons = append(reasons, "Bullish trending regime")
	case snap.Regime == models.RegimeTrending && snap.Trend == models.TrendBearish:
		score -= scoreRegime
		reasons = append(reasons, "Bearish trending regime")
	case snap.Regime == models.RegimeRanging:
		score *= rangingDampening
		reasons = append(reasons, "Ranging market")
	}

	score *= s.cfg.SessionWeight(session)

	confidence := score
	if confidence < 0 {
		confidence = -confidence
	}

	out := &models.Signal{
		Type:       models.SignalNone,
		Side:       models.SideLong,
		Confidence: min100(confidence),
		Price:      snap.Price,
		Timestamp:  now,
		Timeframe:  snap.Timeframe,
		Snapshot:   snap,
		Reasons:    reasons,
		Regime:     snap.Regime,
		Session:    session,
	}
	if confidence >= sig.MinConfidence {
		out.Type = models.SignalEntry
		if score < 0 {
			out.Side = models.SideShort
		}
	}
	return out
}

// ExitAdvisory is a read-only mirror of the position book's exit rules:
// it reports which exit would fire at the given price without mutating
// the position. Returns nil when no exit applies.
func (s *Scorer) ExitAdvisory(pos *models.Position, price float64, snap *models.IndicatorSnapshot) *models.Signal {
	reason, confidence := s.exitCheck(pos, price)
	if reason == "" {
		return nil
	}

	timeframe := s.cfg.Engine.PrimaryTimeframe
	if snap != nil {
		timeframe = snap.Timeframe
	}
	return &models.Signal{
		Type:       models.SignalExit,
		Side:       pos.Side,
		Confidence: confidence,
		Price:      price,
		Timestamp:  time.Now().UTC(),
		Timeframe:  timeframe,
		Snapshot:   snap,
		Reasons:    []string{reason},
		Session:    "",
	}
}

func (s *Scorer) exitCheck(pos *models.Position, price float64) (string, float64) {
	risk := s.cfg.Risk
	pnlPct := pos.PnlPct(price)

	if pnlPct <= -risk.HardStopPct*100 {
		return "Hard stop loss triggered", 100
	}

	if pnlPct >= risk.TrailingActivationPct*100 {
		var trail float64
		if pos.Side == models.SideLong {
			trail = pos.HighestPrice * (1 - risk.TrailingDistancePct)
			if price <= trail {
				return "Trailing stop triggered", 100
			}
		} else {
			trail = pos.LowestPrice * (1 + risk.TrailingDistancePct)
			if price >= trail {
				return "Trailing stop triggered", 100
			}
		}
	}

	switch {
	case pnlPct >= risk.TP3Pct*100:
		return "Take Profit 3 reached", 90
	case pnlPct >= risk.TP2Pct*100:
		return "Take Profit 2 reached", 70
	case pnlPct >= risk.TP1Pct*100:
		return "Take Profit 1 reached", 50
	}
	return "", 0
}

func min100(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}
