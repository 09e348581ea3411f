package di

import (
	"context"
	"fmt"
	"time"

	"TradePulse/internal/domain/repository"
	"TradePulse/internal/handler/api"
	"TradePulse/internal/indicator"
	"TradePulse/internal/learning"
	"TradePulse/internal/position"
	internalrepo "TradePulse/internal/repository"
	"TradePulse/internal/service/binance"
	"TradePulse/internal/service/sentiment"
	"TradePulse/internal/service/stream"
	signalpkg "TradePulse/internal/signal"
	"TradePulse/internal/usecase"
	"TradePulse/pkg/cache"
	pkgch "TradePulse/pkg/clickhouse"
	"TradePulse/pkg/config"
	xhttp "TradePulse/pkg/http"
	pkgkafka "TradePulse/pkg/kafka"
	"TradePulse/pkg/logger"
	"TradePulse/pkg/metrics"
	"TradePulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCandleCache creates the candle cache. With the Redis backend
// the cache is layered so restarts keep warm candles; otherwise it
// lives in process memory.
func ProvideCandleCache(cfg *config.Config) cache.Service {
	if cfg.Storage.Backend == "redis" {
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Storage.Redis.Host),
			cache.WithRedisPort(cfg.Storage.Redis.Port),
			cache.WithRedisPassword(cfg.Storage.Redis.Password),
			cache.WithRedisDB(cfg.Storage.Redis.DB),
			cache.WithRedisPrefix("market"),
		)
		if err == nil {
			return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(500))
		}
	}
	return cache.NewMemoryCache()
}

// ProvideMarketData creates the Binance REST market data service.
func ProvideMarketData(cfg *config.Config, candleCache cache.Service, l *logger.Logger) *binance.Service {
	return binance.NewService(cfg, candleCache, l)
}

// ProvidePriceStream creates the Binance WebSocket price stream.
func ProvidePriceStream(cfg *config.Config, l *logger.Logger) repository.PriceStream {
	return stream.New(
		cfg.Binance.WebSocketURL,
		cfg.Binance.ReconnectDelay,
		cfg.Binance.PingInterval,
		l,
	)
}

// ProvideStateStore creates the state store selected by config.
func ProvideStateStore(cfg *config.Config) (repository.StateStore, error) {
	switch cfg.Storage.Backend {
	case "redis":
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Storage.Redis.Host),
			cache.WithRedisPort(cfg.Storage.Redis.Port),
			cache.WithRedisPassword(cfg.Storage.Redis.Password),
			cache.WithRedisDB(cfg.Storage.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis state store: %w", err)
		}
		return internalrepo.NewRedisStore(rc), nil
	default:
		fs, err := internalrepo.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, fmt.Errorf("file state store: %w", err)
		}
		return fs, nil
	}
}

// ProvideEventPublisher creates the Kafka publisher, or a no-op one
// when no brokers are configured.
func ProvideEventPublisher(cfg *config.Config) (repository.EventPublisher, error) {
	if len(cfg.Events.Brokers) == 0 {
		return internalrepo.NopPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Events.Brokers),
		pkgkafka.WithCompression(cfg.Events.Compression),
		pkgkafka.WithRequiredAcks(cfg.Events.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Events.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Events.BatchTimeout),
		pkgkafka.WithTimeouts(cfg.Events.WriteTimeout, cfg.Events.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Events.Topic), nil
}

// ProvideTradeArchive creates the ClickHouse archive, or a no-op one
// when no host is configured. The schema is initialized eagerly.
func ProvideTradeArchive(cfg *config.Config) (repository.TradeArchive, error) {
	if cfg.Archive.Host == "" {
		return internalrepo.NopArchive{}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.Archive.Host),
		pkgch.WithPort(cfg.Archive.Port),
		pkgch.WithDatabase(cfg.Archive.Database),
		pkgch.WithCredentials(cfg.Archive.User, cfg.Archive.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.Archive.DialTimeout, cfg.Archive.ReadTimeout, cfg.Archive.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	archive := internalrepo.NewClickHouseArchive(client)
	if err := archive.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return archive, nil
}

// ProvideIndicatorEngine creates the indicator engine.
func ProvideIndicatorEngine(cfg *config.Config) *indicator.Engine {
	return indicator.NewEngine(cfg)
}

// ProvideScorer creates the signal scorer.
func ProvideScorer(cfg *config.Config) *signalpkg.Scorer {
	return signalpkg.NewScorer(cfg)
}

// ProvideLearningEngine creates the learning engine.
func ProvideLearningEngine(cfg *config.Config, l *logger.Logger, store repository.StateStore) *learning.Engine {
	return learning.NewEngine(cfg, l, store)
}

// ProvideBook creates the position book with learned weights.
func ProvideBook(cfg *config.Config, l *logger.Logger, learner *learning.Engine) *position.Book {
	return position.NewBook(cfg, l, learner)
}

// ProvideSentiment creates the market sentiment service.
func ProvideSentiment(l *logger.Logger) *sentiment.Service {
	return sentiment.NewService(l)
}

// ProvideCycle creates the decision cycle use case.
func ProvideCycle(
	cfg *config.Config,
	l *logger.Logger,
	market *binance.Service,
	engine *indicator.Engine,
	scorer *signalpkg.Scorer,
	book *position.Book,
	learner *learning.Engine,
	store repository.StateStore,
	publisher repository.EventPublisher,
	archive repository.TradeArchive,
	m repository.Metrics,
) *usecase.Cycle {
	return usecase.NewCycle(cfg, l, market, engine, scorer, book, learner, store, publisher, archive, m)
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(
	cfg *config.Config,
	l *logger.Logger,
	cycle *usecase.Cycle,
	market *binance.Service,
	sent *sentiment.Service,
) xhttp.Handler {
	return api.NewEngineEchoHandler(l, cycle, market, sent, cfg.Engine.Symbol)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	cycle *usecase.Cycle,
	priceStream repository.PriceStream,
	store repository.StateStore,
	publisher repository.EventPublisher,
	archive repository.TradeArchive,
	handler xhttp.Handler,
) *server.App {
	app := server.New(cfg, l, cycle, priceStream, store, publisher, archive)
	app.SetHTTPHandler(handler)
	return app
}
