package models

import "time"

// Regime is the coarse market-behavior classification.
type Regime string

const (
	RegimeTrending Regime = "TRENDING"
	RegimeRanging  Regime = "RANGING"
	RegimeVolatile Regime = "VOLATILE"
	RegimeNeutral  Regime = "NEUTRAL"
)

// Trend is the EMA-alignment direction tag.
type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendNeutral Trend = "NEUTRAL"
)

// IndicatorSeries holds the full derived series behind a snapshot so
// dashboards can chart them. All slices share the candle index.
type IndicatorSeries struct {
	EMA9       []float64   `json:"ema_9"`
	EMA21      []float64   `json:"ema_21"`
	EMA50      []float64   `json:"ema_50"`
	RSI        []float64   `json:"rsi"`
	MACD       []float64   `json:"macd"`
	MACDSignal []float64   `json:"macd_signal"`
	MACDHist   []float64   `json:"macd_hist"`
	BBUpper    []float64   `json:"bb_upper"`
	BBLower    []float64   `json:"bb_lower"`
	Volume     []float64   `json:"volume"`
	Timestamps []time.Time `json:"timestamps"`
}

// IndicatorSnapshot is the numeric market fingerprint derived fresh
// from the latest candle window every cycle. It carries no persisted
// identity.
type IndicatorSnapshot struct {
	Timeframe   string    `json:"timeframe"`
	Timestamp   time.Time `json:"timestamp"`
	Price       float64   `json:"price"`
	EMA9        float64   `json:"ema_9"`
	EMA21       float64   `json:"ema_21"`
	EMA50       float64   `json:"ema_50"`
	EMA200      float64   `json:"ema_200"`
	RSI         float64   `json:"rsi"`
	MACD        float64   `json:"macd"`
	MACDSignal  float64   `json:"macd_signal"`
	MACDHist    float64   `json:"macd_hist"`
	BBUpper     float64   `json:"bb_upper"`
	BBMiddle    float64   `json:"bb_middle"`
	BBLower     float64   `json:"bb_lower"`
	ATR         float64   `json:"atr"`
	ATRPct      float64   `json:"atr_pct"`
	ADX         float64   `json:"adx"`
	PlusDI      float64   `json:"plus_di"`
	MinusDI     float64   `json:"minus_di"`
	Volume      float64   `json:"volume"`
	VolumeMA    float64   `json:"volume_ma"`
	VolumeRatio float64   `json:"volume_ratio"`
	Regime      Regime    `json:"regime"`
	Trend       Trend     `json:"trend"`

	// Insufficient marks a snapshot built from fewer candles than the
	// configured minimum: all values are neutral defaults.
	Insufficient bool `json:"insufficient"`

	Series *IndicatorSeries `json:"series,omitempty"`
}
