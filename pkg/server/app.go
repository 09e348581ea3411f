package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	drepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/usecase"
	"TradePulse/pkg/config"
	xhttp "TradePulse/pkg/http"
	applogger "TradePulse/pkg/logger"
)

// App encapsulates the entire application lifecycle: the price stream,
// the cycle scheduler, and the HTTP server.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	cycle     *usecase.Cycle
	stream    drepo.PriceStream
	store     drepo.StateStore
	publisher drepo.EventPublisher
	archive   drepo.TradeArchive

	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	cycle *usecase.Cycle,
	stream drepo.PriceStream,
	store drepo.StateStore,
	publisher drepo.EventPublisher,
	archive drepo.TradeArchive,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		cycle:     cycle,
		stream:    stream,
		store:     store,
		publisher: publisher,
		archive:   archive,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.cycle.Restore(ctx); err != nil {
		a.log.Warn("state restore failed, starting cold", applogger.Error(err))
	}

	if a.stream != nil {
		go a.streamLoop(ctx)
	}

	go a.scheduleLoop(ctx)
	a.log.Info("engine started",
		applogger.String("symbol", a.cfg.Engine.Symbol),
		applogger.Duration("scan_interval", a.cfg.Engine.ScanInterval))

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// scheduleLoop runs decision cycles on a fixed interval. One goroutine,
// one cycle at a time; a slow cycle delays the next, never overlaps it.
func (a *App) scheduleLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Engine.ScanInterval)
	defer ticker.Stop()

	if err := a.cycle.Run(ctx); err != nil {
		a.log.Error("cycle error", applogger.Error(err))
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.cycle.Run(ctx); err != nil {
				a.log.Error("cycle error", applogger.Error(err))
			}
		}
	}
}

// streamLoop feeds live ticks into the cycle and reconnects on errors.
func (a *App) streamLoop(ctx context.Context) {
	symbol := a.cfg.Engine.Symbol

	if err := a.stream.Connect(ctx); err != nil {
		a.log.Warn("stream connect failed, running on REST only", applogger.Error(err))
		return
	}
	if err := a.stream.Subscribe(ctx, symbol); err != nil {
		a.log.Warn("stream subscribe failed", applogger.Error(err))
		return
	}
	a.log.Info("price stream connected", applogger.String("symbol", symbol))

	for {
		ticks, errs := a.stream.Read(ctx)
	consume:
		for {
			select {
			case <-ctx.Done():
				return
			case tick, ok := <-ticks:
				if !ok {
					break consume
				}
				a.cycle.OnTick(tick)
			case err, ok := <-errs:
				if !ok {
					break consume
				}
				a.log.Warn("stream error, reconnecting", applogger.Error(err))
				break consume
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(a.cfg.Binance.ReconnectDelay):
		}
		if err := a.stream.Reconnect(ctx); err != nil {
			a.log.Error("stream reconnect failed, running on REST only", applogger.Error(err))
			return
		}
		if err := a.stream.Subscribe(ctx, symbol); err != nil {
			a.log.Error("stream resubscribe failed, running on REST only", applogger.Error(err))
			return
		}
	}
}

// shutdown checkpoints state and stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.cycle.Shutdown(shutdownCtx); err != nil {
		a.log.Error("state checkpoint error", applogger.Error(err))
	}

	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.log.Warn("stream close error", applogger.Error(err))
		}
	}

	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	if err := a.publisher.Close(); err != nil {
		a.log.Warn("publisher close error", applogger.Error(err))
	}
	if err := a.archive.Close(); err != nil {
		a.log.Warn("archive close error", applogger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("state store close error", applogger.Error(err))
	}

	a.log.Info("shutdown complete")
	return nil
}
