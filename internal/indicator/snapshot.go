package indicator

import (
	"errors"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/pkg/config"
)

// ErrUnorderedCandles reports a window whose timestamps are not strictly
// increasing. Such input is a data-source fault, not a market condition.
var ErrUnorderedCandles = errors.New("indicator: candle timestamps not strictly increasing")

// Engine derives indicator snapshots from candle windows. It holds only
// configuration and is safe for concurrent use.
type Engine struct {
	cfg        *config.Config
	minCandles int
}

func NewEngine(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg, minCandles: cfg.Engine.MinCandles}
}

// Snapshot computes the full indicator fingerprint for a candle window.
// Windows shorter than the configured minimum yield a neutral snapshot
// flagged Insufficient; the caller must not trade on it. Windows with
// non-monotonic timestamps fail with ErrUnorderedCandles.
func (e *Engine) Snapshot(candles []models.Candle, timeframe string) (*models.IndicatorSnapshot, error) {
	for i := 1; i < len(candles); i++ {
		if !candles[i].Timestamp.After(candles[i-1].Timestamp) {
			return nil, ErrUnorderedCandles
		}
	}
	if len(candles) < e.minCandles {
		return e.insufficient(candles, timeframe), nil
	}

	closes := models.Closes(candles)
	highs := models.Highs(candles)
	lows := models.Lows(candles)
	volumes := models.Volumes(candles)

	sig := e.cfg.Signal
	price := closes[len(closes)-1]

	ema9 := EMA(closes, sig.EMAFast)
	ema21 := EMA(closes, sig.EMAMedium)
	ema50 := EMA(closes, sig.EMASlow)
	ema200 := EMA(closes, sig.EMATrend)

	rsi := RSI(closes, sig.RSIPeriod)
	macd, macdSignal, macdHist := MACD(closes, sig.MACDFast, sig.MACDSlow, sig.MACDSignal)
	bbUpper, bbMiddle, bbLower := BollingerBands(closes, sig.BBPeriod, sig.BBStdDev)
	atr := ATR(highs, lows, closes, sig.ATRPeriod)
	adx, plusDI, minusDI := ADX(highs, lows, closes, sig.ADXPeriod)
	volumeMA := VolumeMA(volumes, sig.VolumeMA)

	volumeRatio := 1.0
	if vma := last(volumeMA); vma > 0 {
		volumeRatio = last(volumes) / vma
	}

	atrValue := last(atr)
	atrPct := 0.0
	if price > 0 {
		atrPct = atrValue / price * 100.0
	}

	snap := &models.IndicatorSnapshot{
		Timeframe:   timeframe,
		Timestamp:   candles[len(candles)-1].Timestamp,
		Price:       price,
		EMA9:        last(ema9),
		EMA21:       last(ema21),
		EMA50:       last(ema50),
		EMA200:      last(ema200),
		RSI:         last(rsi),
		MACD:        last(macd),
		MACDSignal:  last(macdSignal),
		MACDHist:    last(macdHist),
		BBUpper:     last(bbUpper),
		BBMiddle:    last(bbMiddle),
		BBLower:     last(bbLower),
		ATR:         atrValue,
		ATRPct:      atrPct,
		ADX:         last(adx),
		PlusDI:      last(plusDI),
		MinusDI:     last(minusDI),
		Volume:      last(volumes),
		VolumeMA:    last(volumeMA),
		VolumeRatio: volumeRatio,
		Series: &models.IndicatorSeries{
			EMA9:       ema9,
			EMA21:      ema21,
			EMA50:      ema50,
			RSI:        rsi,
			MACD:       macd,
			MACDSignal: macdSignal,
			MACDHist:   macdHist,
			BBUpper:    bbUpper,
			BBLower:    bbLower,
			Volume:     volumes,
			Timestamps: timestamps(candles),
		},
	}

	snap.Regime = e.classifyRegime(snap.ADX, atrPct)
	snap.Trend = classifyTrend(snap.EMA9, snap.EMA21, snap.EMA50)
	return snap, nil
}

// classifyRegime applies the priority order: trending beats ranging
// beats volatile beats neutral.
func (e *Engine) classifyRegime(adx, atrPct float64) models.Regime {
	switch {
	case adx > e.cfg.Signal.ADXTrending:
		return models.RegimeTrending
	case adx < e.cfg.Signal.ADXRanging:
		return models.RegimeRanging
	case atrPct > 3:
		return models.RegimeVolatile
	default:
		return models.RegimeNeutral
	}
}

func classifyTrend(ema9, ema21, ema50 float64) models.Trend {
	switch {
	case ema9 > ema21 && ema21 > ema50:
		return models.TrendBullish
	case ema9 < ema21 && ema21 < ema50:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}

func (e *Engine) insufficient(candles []models.Candle, timeframe string) *models.IndicatorSnapshot {
	snap := &models.IndicatorSnapshot{
		Timeframe:    timeframe,
		Timestamp:    time.Now().UTC(),
		RSI:          50.0,
		ADX:          25.0,
		PlusDI:       20.0,
		MinusDI:      20.0,
		VolumeRatio:  1.0,
		Regime:       models.RegimeNeutral,
		Trend:        models.TrendNeutral,
		Insufficient: true,
	}
	if len(candles) > 0 {
		lastCandle := candles[len(candles)-1]
		snap.Timestamp = lastCandle.Timestamp
		snap.Price = lastCandle.Close
		snap.Volume = lastCandle.Volume
	}
	return snap
}

func last(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

func timestamps(candles []models.Candle) []time.Time {
	ts := make([]time.Time, len(candles))
	for i, c := range candles {
		ts[i] = c.Timestamp
	}
	return ts
}
