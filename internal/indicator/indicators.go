package indicator

import "math"

// Default indicator periods.
const (
	DefaultRSIPeriod      = 14
	DefaultMACDFast       = 12
	DefaultMACDSlow       = 26
	DefaultMACDSignal     = 9
	DefaultBBPeriod       = 20
	DefaultBBStdDev       = 2.0
	DefaultATRPeriod      = 14
	DefaultADXPeriod      = 14
	DefaultVolumeMAPeriod = 20
)

// EMA computes an exponential moving average seeded with the SMA of the
// first period values. The head of the result is padded with the seed so
// the output aligns 1:1 with the input.
func EMA(prices []float64, period int) []float64 {
	if len(prices) == 0 {
		return nil
	}
	if len(prices) < period {
		out := make([]float64, len(prices))
		last := prices[len(prices)-1]
		for i := range out {
			out[i] = last
		}
		return out
	}

	multiplier := 2.0 / float64(period+1)
	seed := mean(prices[:period])

	out := make([]float64, 0, len(prices))
	for i := 0; i < period-1; i++ {
		out = append(out, seed)
	}
	out = append(out, seed)
	prev := seed
	for _, p := range prices[period:] {
		prev = (p-prev)*multiplier + prev
		out = append(out, prev)
	}
	return out
}

// RSI computes the Wilder-smoothed relative strength index. With fewer
// than period+1 prices the series is flat 50. When the average loss hits
// zero the value saturates at 100.
func RSI(prices []float64, period int) []float64 {
	if len(prices) < period+1 {
		out := make([]float64, len(prices))
		for i := range out {
			out[i] = 50.0
		}
		return out
	}

	deltas := make([]float64, len(prices)-1)
	gains := make([]float64, len(deltas))
	losses := make([]float64, len(deltas))
	for i := 1; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		deltas[i-1] = d
		if d > 0 {
			gains[i-1] = d
		} else if d < 0 {
			losses[i-1] = -d
		}
	}

	avgGain := mean(gains[:period])
	avgLoss := mean(losses[:period])

	out := make([]float64, 0, len(prices))
	for i := 0; i < period+1; i++ {
		out = append(out, 50.0)
	}
	for i := period; i < len(deltas); i++ {
		if avgLoss == 0 {
			out = append(out, 100.0)
		} else {
			rs := avgGain / avgLoss
			out = append(out, 100.0-(100.0/(1.0+rs)))
		}
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
	}
	return out
}

// MACD returns the MACD line, signal line, and histogram.
func MACD(prices []float64, fast, slow, signal int) (macd, macdSignal, hist []float64) {
	emaFast := EMA(prices, fast)
	emaSlow := EMA(prices, slow)

	macd = make([]float64, len(prices))
	for i := range macd {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	macdSignal = EMA(macd, signal)
	hist = make([]float64, len(prices))
	for i := range hist {
		hist[i] = macd[i] - macdSignal[i]
	}
	return macd, macdSignal, hist
}

// BollingerBands returns upper, middle, lower bands. Before the window
// fills, bands default to price +/- 2%.
func BollingerBands(prices []float64, period int, stdDev float64) (upper, middle, lower []float64) {
	upper = make([]float64, len(prices))
	middle = make([]float64, len(prices))
	lower = make([]float64, len(prices))

	for i, p := range prices {
		if i < period-1 || len(prices) < period {
			upper[i] = p * 1.02
			middle[i] = p
			lower[i] = p * 0.98
			continue
		}
		window := prices[i-period+1 : i+1]
		sma := mean(window)
		std := stddev(window)
		upper[i] = sma + stdDev*std
		middle[i] = sma
		lower[i] = sma - stdDev*std
	}
	return upper, middle, lower
}

// ATR computes the Wilder-smoothed average true range, head-padded so the
// output aligns with the input closes.
func ATR(highs, lows, closes []float64, period int) []float64 {
	if len(closes) < 2 {
		return make([]float64, len(closes))
	}

	tr := trueRanges(highs, lows, closes)
	if len(tr) < period {
		avg := mean(tr)
		out := make([]float64, len(closes))
		for i := range out {
			out[i] = avg
		}
		return out
	}

	out := make([]float64, 0, len(closes))
	seed := mean(tr[:period])
	for i := 0; i < period; i++ {
		out = append(out, seed)
	}
	out = append(out, seed)
	prev := seed
	for _, v := range tr[period:] {
		prev = (prev*float64(period-1) + v) / float64(period)
		out = append(out, prev)
	}
	return out
}

// ADX computes the average directional index along with the smoothed
// directional movement series. With insufficient data the series are flat
// at the neutral defaults (ADX 25, DM 20). The DM series may run longer
// than the input; callers read the tail.
func ADX(highs, lows, closes []float64, period int) (adx, plusDI, minusDI []float64) {
	if len(closes) < period+1 {
		adx = make([]float64, len(closes))
		plusDI = make([]float64, len(closes))
		minusDI = make([]float64, len(closes))
		for i := range adx {
			adx[i] = 25.0
			plusDI[i] = 20.0
			minusDI[i] = 20.0
		}
		return adx, plusDI, minusDI
	}

	n := len(highs) - 1
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr := make([]float64, n)
	for i := 1; i < len(highs); i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i-1] = up
		}
		if down > up && down > 0 {
			minusDM[i-1] = down
		}
		tr[i-1] = trueRange(highs[i], lows[i], closes[i-1])
	}

	smTR := wilderSmooth(tr, period)
	smPlus := wilderSmooth(plusDM, period)
	smMinus := wilderSmooth(minusDM, period)

	dx := make([]float64, len(smTR))
	for i := range smTR {
		sum := smPlus[i] + smMinus[i]
		if sum != 0 {
			dx[i] = math.Abs(smPlus[i]-smMinus[i]) / sum * 100.0
		}
	}

	adxCore := []float64{sumHead(dx, period) / float64(period)}
	for i := period; i < len(dx); i++ {
		prev := adxCore[len(adxCore)-1]
		adxCore = append(adxCore, (prev*float64(period-1)+dx[i])/float64(period))
	}

	pad := len(closes) - len(adxCore)
	adx = padHead(adxCore, pad, 25.0)
	plusDI = padHead(smPlus, pad, 20.0)
	minusDI = padHead(smMinus, pad, 20.0)
	return adx, plusDI, minusDI
}

// VolumeMA computes a simple moving average of volume, expanding while
// the window fills.
func VolumeMA(volumes []float64, period int) []float64 {
	if len(volumes) < period {
		out := make([]float64, len(volumes))
		copy(out, volumes)
		return out
	}

	out := make([]float64, len(volumes))
	for i := range volumes {
		if i < period-1 {
			out[i] = mean(volumes[:i+1])
		} else {
			out[i] = mean(volumes[i-period+1 : i+1])
		}
	}
	return out
}

func trueRange(high, low, prevClose float64) float64 {
	tr := high - low
	if v := math.Abs(high - prevClose); v > tr {
		tr = v
	}
	if v := math.Abs(low - prevClose); v > tr {
		tr = v
	}
	return tr
}

func trueRanges(highs, lows, closes []float64) []float64 {
	tr := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		tr[i-1] = trueRange(highs[i], lows[i], closes[i-1])
	}
	return tr
}

// wilderSmooth seeds with the SMA of the first period values and applies
// Wilder's recursive smoothing to the rest.
func wilderSmooth(values []float64, period int) []float64 {
	out := []float64{mean(values[:period])}
	for i := period; i < len(values); i++ {
		prev := out[len(out)-1]
		out = append(out, (prev*float64(period-1)+values[i])/float64(period))
	}
	return out
}

func padHead(values []float64, pad int, fill float64) []float64 {
	if pad <= 0 {
		return values
	}
	out := make([]float64, 0, pad+len(values))
	for i := 0; i < pad; i++ {
		out = append(out, fill)
	}
	return append(out, values...)
}

func sumHead(values []float64, n int) float64 {
	if n > len(values) {
		n = len(values)
	}
	var s float64
	for _, v := range values[:n] {
		s += v
	}
	return s
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var s float64
	for _, v := range values {
		s += v
	}
	return s / float64(len(values))
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var s float64
	for _, v := range values {
		d := v - m
		s += d * d
	}
	return math.Sqrt(s / float64(len(values)))
}
