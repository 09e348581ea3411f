package repository

import (
	"context"

	"TradePulse/internal/domain/models"
)

// MarketData fetches historical candles for a symbol/timeframe.
type MarketData interface {
	Candles(ctx context.Context, symbol string, tf Timeframe, limit int) ([]models.Candle, error)
	LastPrice(ctx context.Context, symbol string) (float64, error)
}

// PriceStream delivers live prices over a persistent connection.
type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, symbol string) error
	Read(ctx context.Context) (<-chan models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// StateStore persists engine state across restarts.
type StateStore interface {
	SavePositions(ctx context.Context, positions []*models.Position) error
	LoadPositions(ctx context.Context) ([]*models.Position, error)
	SavePatterns(ctx context.Context, patterns map[string]*models.Pattern) error
	LoadPatterns(ctx context.Context) (map[string]*models.Pattern, error)
	SaveParams(ctx context.Context, params *models.AdaptiveParams) error
	LoadParams(ctx context.Context) (*models.AdaptiveParams, error)
	SaveTrades(ctx context.Context, trades []*models.Trade) error
	LoadTrades(ctx context.Context) ([]*models.Trade, error)
	Close() error
}

// TradeArchive stores closed trades in a queryable backend.
type TradeArchive interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Archive(ctx context.Context, t *models.Trade) error
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher emits engine events to the notification topic.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

// Metrics records operational counters and gauges.
type Metrics interface {
	RecordCycle()
	RecordSignal(signalType, side string)
	RecordTradeClosed(outcome, reason string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordDailyPnl(pnl float64)
	RecordOpenPositions(n int)
	RecordLatency(op string, seconds float64)
}
