package binance

import "testing"

func TestSplitSymbol(t *testing.T) {
	cases := []struct {
		symbol string
		base   string
		quote  string
	}{
		{"BTCUSDT", "BTC", "USDT"},
		{"ETHUSDT", "ETH", "USDT"},
		{"ETHBTC", "ETH", "BTC"},
		{"SOLBUSD", "SOL", "BUSD"},
		{"UNKNOWN1", "UNKNOWN1", "USDT"},
	}
	for _, tc := range cases {
		base, quote := splitSymbol(tc.symbol)
		if base != tc.base || quote != tc.quote {
			t.Errorf("splitSymbol(%q) = (%q, %q), want (%q, %q)", tc.symbol, base, quote, tc.base, tc.quote)
		}
	}
}

func TestCryptoCompareIntervalMapping(t *testing.T) {
	cases := []struct {
		interval  string
		endpoint  string
		aggregate int
	}{
		{"1m", "histominute", 1},
		{"5m", "histominute", 5},
		{"15m", "histominute", 15},
		{"1h", "histohour", 1},
		{"4h", "histohour", 4},
		{"1d", "histoday", 1},
		{"weird", "histominute", 1},
	}
	for _, tc := range cases {
		endpoint, aggregate := cryptoCompareInterval(tc.interval)
		if endpoint != tc.endpoint || aggregate != tc.aggregate {
			t.Errorf("cryptoCompareInterval(%q) = (%q, %d), want (%q, %d)",
				tc.interval, endpoint, aggregate, tc.endpoint, tc.aggregate)
		}
	}
}
