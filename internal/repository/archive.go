package repository

import (
	"context"
	"fmt"

	"TradePulse/internal/domain/models"
	"TradePulse/pkg/clickhouse"
)

const tradesSchema = `
CREATE TABLE IF NOT EXISTS trades (
    id            String,
    symbol        LowCardinality(String),
    entry_time    DateTime64(3, 'UTC'),
    exit_time     DateTime64(3, 'UTC'),
    entry_price   Float64,
    exit_price    Float64,
    side          LowCardinality(String),
    size          Float64,
    pnl           Float64,
    pnl_pct       Float64,
    outcome       LowCardinality(String),
    pattern_id    String,
    regime        LowCardinality(String),
    session       LowCardinality(String),
    exit_reason   LowCardinality(String)
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(exit_time)
ORDER BY (symbol, exit_time)`

const insertTrade = `
INSERT INTO trades (
    id, symbol, entry_time, exit_time, entry_price, exit_price,
    side, size, pnl, pnl_pct, outcome, pattern_id, regime, session, exit_reason
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// ClickHouseArchive appends closed trades to ClickHouse for offline
// analysis. The archive is best effort: the caller decides whether a
// failed insert matters.
type ClickHouseArchive struct {
	client *clickhouse.Client
}

func NewClickHouseArchive(client *clickhouse.Client) *ClickHouseArchive {
	return &ClickHouseArchive{client: client}
}

func (a *ClickHouseArchive) Init(ctx context.Context) error {
	return a.client.InitSchema(ctx, []string{tradesSchema})
}

func (a *ClickHouseArchive) Archive(ctx context.Context, t *models.Trade) error {
	_, err := a.client.DB().ExecContext(ctx, insertTrade,
		t.ID, t.Symbol, t.EntryTime, t.ExitTime, t.EntryPrice, t.ExitPrice,
		string(t.Side), t.Size, t.Pnl, t.PnlPct, string(t.Outcome),
		t.PatternID, string(t.Regime), t.Session, string(t.ExitReason))
	if err != nil {
		return fmt.Errorf("archive trade %s: %w", t.ID, err)
	}
	return nil
}

func (a *ClickHouseArchive) Health(ctx context.Context) error {
	return a.client.Health(ctx)
}

func (a *ClickHouseArchive) Close() error {
	return a.client.Close()
}

// NopArchive is used when no ClickHouse host is configured.
type NopArchive struct{}

func (NopArchive) Init(context.Context) error                   { return nil }
func (NopArchive) Archive(context.Context, *models.Trade) error { return nil }
func (NopArchive) Health(context.Context) error                 { return nil }
func (NopArchive) Close() error                                 { return nil }
