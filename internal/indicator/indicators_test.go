package indicator

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func constantSeries(v float64, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestEMAConstantSeries(t *testing.T) {
	prices := constantSeries(100, 60)
	ema := EMA(prices, 21)
	if len(ema) != len(prices) {
		t.Fatalf("length mismatch: %d != %d", len(ema), len(prices))
	}
	for i, v := range ema {
		if !almostEqual(v, 100, 1e-9) {
			t.Fatalf("ema[%d] = %v, want 100", i, v)
		}
	}
}

func TestEMAShortInput(t *testing.T) {
	prices := []float64{10, 20, 30}
	ema := EMA(prices, 9)
	if len(ema) != 3 {
		t.Fatalf("length = %d, want 3", len(ema))
	}
	for i, v := range ema {
		if v != 30 {
			t.Fatalf("ema[%d] = %v, want last price 30", i, v)
		}
	}
}

func TestEMATracksRisingPrices(t *testing.T) {
	prices := make([]float64, 100)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	ema := EMA(prices, 9)
	// EMA lags a rising series but must stay below the last price and
	// above the window mean.
	lastEMA := ema[len(ema)-1]
	lastPrice := prices[len(prices)-1]
	if lastEMA >= lastPrice {
		t.Fatalf("ema %v should lag rising price %v", lastEMA, lastPrice)
	}
	if lastEMA < lastPrice-9 {
		t.Fatalf("ema %v lags too far behind %v", lastEMA, lastPrice)
	}
}

func TestRSIBounds(t *testing.T) {
	prices := make([]float64, 120)
	for i := range prices {
		prices[i] = 100 + 10*math.Sin(float64(i)/3)
	}
	rsi := RSI(prices, 14)
	if len(rsi) != len(prices) {
		t.Fatalf("length mismatch: %d != %d", len(rsi), len(prices))
	}
	for i, v := range rsi {
		if v < 0 || v > 100 {
			t.Fatalf("rsi[%d] = %v out of [0,100]", i, v)
		}
	}
}

func TestRSIAllGainsSaturates(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	rsi := RSI(prices, 14)
	if got := rsi[len(rsi)-1]; got != 100 {
		t.Fatalf("rsi on monotone gains = %v, want 100", got)
	}
}

func TestRSIShortInputIsNeutral(t *testing.T) {
	rsi := RSI([]float64{1, 2, 3}, 14)
	for i, v := range rsi {
		if v != 50 {
			t.Fatalf("rsi[%d] = %v, want 50", i, v)
		}
	}
}

func TestMACDConstantSeriesIsZero(t *testing.T) {
	prices := constantSeries(250, 80)
	macd, signal, hist := MACD(prices, 12, 26, 9)
	for i := range prices {
		if !almostEqual(macd[i], 0, 1e-9) || !almostEqual(signal[i], 0, 1e-9) || !almostEqual(hist[i], 0, 1e-9) {
			t.Fatalf("macd[%d] = (%v, %v, %v), want zeros", i, macd[i], signal[i], hist[i])
		}
	}
}

func TestBollingerConstantSeries(t *testing.T) {
	prices := constantSeries(50, 40)
	upper, middle, lower := BollingerBands(prices, 20, 2.0)
	// After the window fills, std is zero so all bands collapse to price.
	for i := 19; i < len(prices); i++ {
		if upper[i] != 50 || middle[i] != 50 || lower[i] != 50 {
			t.Fatalf("bands[%d] = (%v, %v, %v), want 50s", i, upper[i], middle[i], lower[i])
		}
	}
	// Before the window fills, default bands are price +/- 2%.
	if upper[0] != 51 || lower[0] != 49 {
		t.Fatalf("warmup bands = (%v, %v), want (51, 49)", upper[0], lower[0])
	}
}

func TestBollingerOrdering(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + 5*math.Sin(float64(i)/2)
	}
	upper, middle, lower := BollingerBands(prices, 20, 2.0)
	for i := 19; i < len(prices); i++ {
		if !(lower[i] <= middle[i] && middle[i] <= upper[i]) {
			t.Fatalf("band ordering broken at %d: %v %v %v", i, lower[i], middle[i], upper[i])
		}
	}
}

func TestATRNonNegativeAndAligned(t *testing.T) {
	n := 80
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + 3*math.Sin(float64(i)/4)
		highs[i] = base + 1
		lows[i] = base - 1
		closes[i] = base
	}
	atr := ATR(highs, lows, closes, 14)
	if len(atr) != n {
		t.Fatalf("length mismatch: %d != %d", len(atr), n)
	}
	for i, v := range atr {
		if v < 0 {
			t.Fatalf("atr[%d] = %v, want >= 0", i, v)
		}
	}
}

func TestATRConstantRange(t *testing.T) {
	n := 60
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = 102
		lows[i] = 98
		closes[i] = 100
	}
	atr := ATR(highs, lows, closes, 14)
	if got := atr[len(atr)-1]; !almostEqual(got, 4, 1e-9) {
		t.Fatalf("atr on constant 4-range = %v, want 4", got)
	}
}

func TestADXShortInputDefaults(t *testing.T) {
	highs := []float64{1, 2, 3}
	lows := []float64{0.5, 1.5, 2.5}
	closes := []float64{0.8, 1.8, 2.8}
	adx, plusDI, minusDI := ADX(highs, lows, closes, 14)
	if len(adx) != 3 {
		t.Fatalf("length = %d, want 3", len(adx))
	}
	if adx[0] != 25 || plusDI[0] != 20 || minusDI[0] != 20 {
		t.Fatalf("defaults = (%v, %v, %v), want (25, 20, 20)", adx[0], plusDI[0], minusDI[0])
	}
}

func TestADXStrongUptrend(t *testing.T) {
	n := 100
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + 2*float64(i)
		highs[i] = base + 1
		lows[i] = base - 1
		closes[i] = base
	}
	adx, plusDI, minusDI := ADX(highs, lows, closes, 14)
	if got := adx[len(adx)-1]; got < 25 {
		t.Fatalf("adx on strong trend = %v, want > 25", got)
	}
	if plusDI[len(plusDI)-1] <= minusDI[len(minusDI)-1] {
		t.Fatalf("uptrend should have +DM above -DM")
	}
}

func TestVolumeMAExpandingWindow(t *testing.T) {
	volumes := []float64{10, 20, 30, 40, 50, 60}
	vma := VolumeMA(volumes, 3)
	want := []float64{10, 15, 20, 30, 40, 50}
	for i := range want {
		if !almostEqual(vma[i], want[i], 1e-9) {
			t.Fatalf("vma[%d] = %v, want %v", i, vma[i], want[i])
		}
	}
}

func TestVolumeMAShortInputPassthrough(t *testing.T) {
	volumes := []float64{5, 6}
	vma := VolumeMA(volumes, 20)
	if len(vma) != 2 || vma[0] != 5 || vma[1] != 6 {
		t.Fatalf("short input should pass through, got %v", vma)
	}
}
