package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"TradePulse/internal/domain/models"
)

// State file names inside the data directory.
const (
	positionsFile = "positions.json"
	patternsFile  = "pattern_library.json"
	tradesFile    = "trade_history.json"
	paramsFile    = "adaptive_params.json"
)

// FileStore persists engine state as JSON files. Writes go through a
// temp file and rename so a crash mid-write never corrupts the previous
// checkpoint.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) SavePositions(_ context.Context, positions []*models.Position) error {
	return s.write(positionsFile, positions)
}

func (s *FileStore) LoadPositions(context.Context) ([]*models.Position, error) {
	var out []*models.Position
	if err := s.read(positionsFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FileStore) SavePatterns(_ context.Context, patterns map[string]*models.Pattern) error {
	return s.write(patternsFile, patterns)
}

func (s *FileStore) LoadPatterns(context.Context) (map[string]*models.Pattern, error) {
	var out map[string]*models.Pattern
	if err := s.read(patternsFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FileStore) SaveParams(_ context.Context, params *models.AdaptiveParams) error {
	return s.write(paramsFile, params)
}

func (s *FileStore) LoadParams(context.Context) (*models.AdaptiveParams, error) {
	var out *models.AdaptiveParams
	if err := s.read(paramsFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FileStore) SaveTrades(_ context.Context, trades []*models.Trade) error {
	return s.write(tradesFile, trades)
}

func (s *FileStore) LoadTrades(context.Context) ([]*models.Trade, error) {
	var out []*models.Trade
	if err := s.read(tradesFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) write(name string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	target := filepath.Join(s.dir, name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// read unmarshals a state file into v. A missing file is not an error:
// v is left at its zero value.
func (s *FileStore) read(name string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
