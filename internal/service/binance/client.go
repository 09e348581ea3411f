package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/domain/repository"
	"TradePulse/pkg/cache"
	"TradePulse/pkg/config"
	httpclient "TradePulse/pkg/http"
	"TradePulse/pkg/logger"
)

// Stats24h is a condensed view of the Binance 24h ticker.
type Stats24h struct {
	PriceChange        float64 `json:"price_change"`
	PriceChangePercent float64 `json:"price_change_percent"`
	WeightedAvgPrice   float64 `json:"weighted_avg_price"`
	PrevClose          float64 `json:"prev_close"`
	LastPrice          float64 `json:"last_price"`
	High               float64 `json:"high"`
	Low                float64 `json:"low"`
	Volume             float64 `json:"volume"`
	QuoteVolume        float64 `json:"quote_volume"`
}

// Service fetches market data from the Binance REST API with a
// CryptoCompare fallback and a short-lived candle cache.
type Service struct {
	cfg    *config.Config
	client *httpclient.Client
	cache  cache.Service
	log    *logger.Logger

	mu        sync.Mutex
	lastPrice float64
}

func NewService(cfg *config.Config, cacheSvc cache.Service, log *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		client: httpclient.NewClient(httpclient.WithTimeout(cfg.Binance.Timeout)),
		cache:  cacheSvc,
		log:    log,
	}
}

// Candles returns the latest candle window for a timeframe. Results are
// cached for the configured TTL so multi-timeframe scans inside one
// cycle hit the network once.
func (s *Service) Candles(ctx context.Context, symbol string, tf repository.Timeframe, limit int) ([]models.Candle, error) {
	key := cache.GenerateKeyWithParams("candles", symbol, tf, limit)
	if s.cache != nil {
		var cached []models.Candle
		if err := s.cache.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	candles, err := s.binanceKlines(ctx, symbol, string(tf), limit)
	if err != nil {
		s.log.Warn("binance klines failed, trying fallback", logger.Error(err))
		candles, err = s.cryptoCompareHistory(ctx, symbol, string(tf), limit)
		if err != nil {
			return nil, fmt.Errorf("fetch candles %s %s: %w", symbol, tf, err)
		}
	}

	if err := models.ValidateCandles(candles); err != nil {
		return nil, fmt.Errorf("candles %s %s: %w", symbol, tf, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, candles, s.cfg.Binance.CacheTTL); err != nil {
			s.log.Debug("cache candles", logger.Error(err))
		}
	}
	return candles, nil
}

// MultiTimeframe fetches candle windows for every configured timeframe.
// A single failed timeframe fails the whole call: the cycle needs a
// consistent view.
func (s *Service) MultiTimeframe(ctx context.Context, symbol string) (map[repository.Timeframe][]models.Candle, error) {
	out := make(map[repository.Timeframe][]models.Candle, len(s.cfg.Engine.Timeframes))
	for _, tf := range s.cfg.Engine.Timeframes {
		candles, err := s.Candles(ctx, symbol, repository.Timeframe(tf), s.cfg.Engine.CandleLimit)
		if err != nil {
			return nil, err
		}
		out[repository.Timeframe(tf)] = candles
	}
	return out, nil
}

// LastPrice returns the current price, falling back to CryptoCompare
// and then to the last price seen when both sources fail.
func (s *Service) LastPrice(ctx context.Context, symbol string) (float64, error) {
	var ticker struct {
		Price string `json:"price"`
	}
	err := s.client.SendAndParse(ctx, &httpclient.RequestOptions{
		Method: httpclient.MethodGet,
		URL:    s.cfg.Binance.RESTBase + "/api/v3/ticker/price",
		QueryParams: map[string][]string{
			"symbol": {symbol},
		},
	}, &ticker)
	if err == nil {
		if p, perr := strconv.ParseFloat(ticker.Price, 64); perr == nil {
			s.setLastPrice(p)
			return p, nil
		}
	}

	base, quote := splitSymbol(symbol)
	var fallback map[string]float64
	err = s.client.SendAndParse(ctx, &httpclient.RequestOptions{
		Method: httpclient.MethodGet,
		URL:    s.cfg.Binance.FallbackBase + "/data/price",
		QueryParams: map[string][]string{
			"fsym":  {base},
			"tsyms": {quote},
		},
	}, &fallback)
	if err == nil {
		if p, ok := fallback[quote]; ok && p > 0 {
			s.setLastPrice(p)
			return p, nil
		}
	}

	s.mu.Lock()
	last := s.lastPrice
	s.mu.Unlock()
	if last > 0 {
		return last, nil
	}
	return 0, fmt.Errorf("fetch price %s: %w", symbol, err)
}

// Stats24h returns the 24h rolling ticker statistics.
func (s *Service) Stats24h(ctx context.Context, symbol string) (*Stats24h, error) {
	var raw struct {
		PriceChange        string `json:"priceChange"`
		PriceChangePercent string `json:"priceChangePercent"`
		WeightedAvgPrice   string `json:"weightedAvgPrice"`
		PrevClosePrice     string `json:"prevClosePrice"`
		LastPrice          string `json:"lastPrice"`
		HighPrice          string `json:"highPrice"`
		LowPrice           string `json:"lowPrice"`
		Volume             string `json:"volume"`
		QuoteVolume        string `json:"quoteVolume"`
	}
	err := s.client.SendAndParse(ctx, &httpclient.RequestOptions{
		Method: httpclient.MethodGet,
		URL:    s.cfg.Binance.RESTBase + "/api/v3/ticker/24hr",
		QueryParams: map[string][]string{
			"symbol": {symbol},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("fetch 24h stats: %w", err)
	}

	return &Stats24h{
		PriceChange:        parseFloat(raw.PriceChange),
		PriceChangePercent: parseFloat(raw.PriceChangePercent),
		WeightedAvgPrice:   parseFloat(raw.WeightedAvgPrice),
		PrevClose:          parseFloat(raw.PrevClosePrice),
		LastPrice:          parseFloat(raw.LastPrice),
		High:               parseFloat(raw.HighPrice),
		Low:                parseFloat(raw.LowPrice),
		Volume:             parseFloat(raw.Volume),
		QuoteVolume:        parseFloat(raw.QuoteVolume),
	}, nil
}

func (s *Service) setLastPrice(p float64) {
	s.mu.Lock()
	s.lastPrice = p
	s.mu.Unlock()
}

// binanceKlines fetches and parses the Binance kline array format:
// [openTime, open, high, low, close, volume, closeTime, ...] with
// numeric fields encoded as strings.
func (s *Service) binanceKlines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	var rows [][]json.RawMessage
	err := s.client.SendAndParse(ctx, &httpclient.RequestOptions{
		Method: httpclient.MethodGet,
		URL:    s.cfg.Binance.RESTBase + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"interval": {interval},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &rows)
	if err != nil {
		return nil, err
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("malformed kline row with %d fields", len(row))
		}
		var openMs int64
		if err := json.Unmarshal(row[0], &openMs); err != nil {
			return nil, fmt.Errorf("parse kline time: %w", err)
		}
		c := models.Candle{Timestamp: time.UnixMilli(openMs).UTC()}
		for i, dst := range []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume} {
			var str string
			if err := json.Unmarshal(row[i+1], &str); err != nil {
				return nil, fmt.Errorf("parse kline field %d: %w", i+1, err)
			}
			v, err := strconv.ParseFloat(str, 64)
			if err != nil {
				return nil, fmt.Errorf("parse kline field %d: %w", i+1, err)
			}
			*dst = v
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// cryptoCompareHistory is the fallback candle source. Intervals map to
// the histo endpoints with an aggregate multiplier.
func (s *Service) cryptoCompareHistory(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	endpoint, aggregate := cryptoCompareInterval(interval)
	base, quote := splitSymbol(symbol)

	var resp struct {
		Data struct {
			Data []struct {
				Time     int64   `json:"time"`
				Open     float64 `json:"open"`
				High     float64 `json:"high"`
				Low      float64 `json:"low"`
				Close    float64 `json:"close"`
				VolumeTo float64 `json:"volumeto"`
			} `json:"Data"`
		} `json:"Data"`
	}
	err := s.client.SendAndParse(ctx, &httpclient.RequestOptions{
		Method: httpclient.MethodGet,
		URL:    s.cfg.Binance.FallbackBase + "/data/v2/" + endpoint,
		QueryParams: map[string][]string{
			"fsym":      {base},
			"tsym":      {quote},
			"limit":     {strconv.Itoa(limit)},
			"aggregate": {strconv.Itoa(aggregate)},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Data.Data) == 0 {
		return nil, fmt.Errorf("empty fallback history")
	}

	candles := make([]models.Candle, 0, len(resp.Data.Data))
	for _, r := range resp.Data.Data {
		candles = append(candles, models.Candle{
			Timestamp: time.Unix(r.Time, 0).UTC(),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.VolumeTo,
		})
	}
	return candles, nil
}

func cryptoCompareInterval(interval string) (endpoint string, aggregate int) {
	switch interval {
	case "1m":
		return "histominute", 1
	case "5m":
		return "histominute", 5
	case "15m":
		return "histominute", 15
	case "1h":
		return "histohour", 1
	case "4h":
		return "histohour", 4
	case "1d":
		return "histoday", 1
	default:
		return "histominute", 1
	}
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// splitSymbol breaks a pair like BTCUSDT into base and quote assets.
func splitSymbol(symbol string) (base, quote string) {
	for _, q := range []string{"USDT", "BUSD", "USDC", "USD", "BTC", "ETH"} {
		if strings.HasSuffix(symbol, q) && len(symbol) > len(q) {
			return symbol[:len(symbol)-len(q)], q
		}
	}
	return symbol, "USDT"
}
