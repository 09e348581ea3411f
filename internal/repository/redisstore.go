package repository

import (
	"context"
	"errors"
	"fmt"

	"TradePulse/internal/domain/models"
	"TradePulse/pkg/cache"
)

// Redis keys for engine state. Values are JSON documents; state is
// small and read whole, so one key per collection is enough.
const (
	keyPositions = "state:positions"
	keyPatterns  = "state:patterns"
	keyTrades    = "state:trades"
	keyParams    = "state:params"
)

// RedisStore persists engine state in Redis through the shared cache
// service. Keys never expire: state survives until overwritten.
type RedisStore struct {
	client *cache.RedisCache
}

func NewRedisStore(client *cache.RedisCache) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SavePositions(ctx context.Context, positions []*models.Position) error {
	return s.set(ctx, keyPositions, positions)
}

func (s *RedisStore) LoadPositions(ctx context.Context) ([]*models.Position, error) {
	var out []*models.Position
	if err := s.get(ctx, keyPositions, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisStore) SavePatterns(ctx context.Context, patterns map[string]*models.Pattern) error {
	return s.set(ctx, keyPatterns, patterns)
}

func (s *RedisStore) LoadPatterns(ctx context.Context) (map[string]*models.Pattern, error) {
	var out map[string]*models.Pattern
	if err := s.get(ctx, keyPatterns, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisStore) SaveParams(ctx context.Context, params *models.AdaptiveParams) error {
	return s.set(ctx, keyParams, params)
}

func (s *RedisStore) LoadParams(ctx context.Context) (*models.AdaptiveParams, error) {
	var out *models.AdaptiveParams
	if err := s.get(ctx, keyParams, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisStore) SaveTrades(ctx context.Context, trades []*models.Trade) error {
	return s.set(ctx, keyTrades, trades)
}

func (s *RedisStore) LoadTrades(ctx context.Context) ([]*models.Trade, error) {
	var out []*models.Trade
	if err := s.get(ctx, keyTrades, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) set(ctx context.Context, key string, v interface{}) error {
	if err := s.client.Set(ctx, key, v, 0); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// get reads a state key into v. A missing key is not an error.
func (s *RedisStore) get(ctx context.Context, key string, v interface{}) error {
	err := s.client.Get(ctx, key, v)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	return nil
}
