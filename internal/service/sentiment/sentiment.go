package sentiment

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	httpclient "TradePulse/pkg/http"
	"TradePulse/pkg/logger"
)

const fearGreedURL = "https://api.alternative.me/fng/"

// FearGreed is the market-wide sentiment reading.
type FearGreed struct {
	Value          int       `json:"value"`
	Classification string    `json:"classification"`
	Timestamp      time.Time `json:"timestamp"`
}

// Service fetches market sentiment. Text sentiment is a neutral stub.
type Service struct {
	client *httpclient.Client
	log    *logger.Logger

	mu     sync.Mutex
	cached *FearGreed
}

func NewService(log *logger.Logger) *Service {
	return &Service{
		client: httpclient.NewClient(httpclient.WithTimeout(10 * time.Second)),
		log:    log,
	}
}

// FearGreedIndex fetches the current Fear & Greed index, falling back
// to the last cached reading on failure.
func (s *Service) FearGreedIndex(ctx context.Context) (*FearGreed, error) {
	var resp struct {
		Data []struct {
			Value string `json:"value"`
		} `json:"data"`
	}
	err := s.client.SendAndParse(ctx, &httpclient.RequestOptions{
		Method: httpclient.MethodGet,
		URL:    fearGreedURL,
	}, &resp)
	if err != nil || len(resp.Data) == 0 {
		s.mu.Lock()
		cached := s.cached
		s.mu.Unlock()
		if cached != nil {
			return cached, nil
		}
		if err == nil {
			err = fmt.Errorf("empty response")
		}
		return nil, fmt.Errorf("fetch fear greed: %w", err)
	}

	value, err := strconv.Atoi(resp.Data[0].Value)
	if err != nil {
		return nil, fmt.Errorf("parse fear greed value: %w", err)
	}

	out := &FearGreed{
		Value:          value,
		Classification: Classify(value),
		Timestamp:      time.Now().UTC(),
	}
	s.mu.Lock()
	s.cached = out
	s.mu.Unlock()
	return out, nil
}

// Classify maps an index value to its sentiment band.
func Classify(value int) string {
	switch {
	case value <= 20:
		return "Extreme Fear"
	case value <= 40:
		return "Fear"
	case value <= 60:
		return "Neutral"
	case value <= 80:
		return "Greed"
	default:
		return "Extreme Greed"
	}
}

// Score analyzes text sentiment. Always neutral: real NLP is out of
// scope and the engine must not act on fabricated sentiment.
func (s *Service) Score(text string) float64 {
	return 0.0
}
