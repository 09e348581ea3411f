package api

import (
	"time"

	"TradePulse/internal/service/binance"
	"TradePulse/internal/service/sentiment"
	"TradePulse/internal/usecase"
	xhttp "TradePulse/pkg/http"
	xlogger "TradePulse/pkg/logger"
	"TradePulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// EngineEchoHandler serves the engine's read-only state over HTTP.
// Every endpoint reads cached cycle output; nothing here touches the
// decision path.
type EngineEchoHandler struct {
	logger    *xlogger.Logger
	cycle     *usecase.Cycle
	market    *binance.Service
	sentiment *sentiment.Service
	symbol    string
	startedAt time.Time
}

func NewEngineEchoHandler(
	logger *xlogger.Logger,
	cycle *usecase.Cycle,
	market *binance.Service,
	sent *sentiment.Service,
	symbol string,
) *EngineEchoHandler {
	return &EngineEchoHandler{
		logger:    logger,
		cycle:     cycle,
		market:    market,
		sentiment: sent,
		symbol:    symbol,
		startedAt: time.Now().UTC(),
	}
}

func (h *EngineEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/status", h.Status)
	g.GET("/analysis", h.Analysis)
	g.GET("/signal", h.Signal)
	g.GET("/positions", h.Positions)
	g.GET("/performance", h.Performance)
	g.GET("/patterns", h.Patterns)
	g.GET("/logs", h.Logs)
}

type statusResponse struct {
	Symbol        string               `json:"symbol"`
	Session       string               `json:"session"`
	LastPrice     float64              `json:"last_price"`
	LastCycleAt   time.Time            `json:"last_cycle_at"`
	UptimeSeconds float64              `json:"uptime_seconds"`
	Stats24h      *binance.Stats24h    `json:"stats_24h,omitempty"`
	FearGreed     *sentiment.FearGreed `json:"fear_greed,omitempty"`
	Performance   usecase.Performance  `json:"performance"`
}

func (h *EngineEchoHandler) Status(c echo.Context) error {
	ctx := c.Request().Context()

	res := statusResponse{
		Symbol:        h.symbol,
		Session:       util.CurrentSession(),
		LastPrice:     h.cycle.LastPrice(),
		LastCycleAt:   h.cycle.LastCycleAt(),
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		Performance:   h.cycle.Performance(),
	}

	// Best effort; status stays useful when upstreams are down.
	if stats, err := h.market.Stats24h(ctx, h.symbol); err != nil {
		h.logger.Warn("status 24h stats", xlogger.Error(err))
	} else {
		res.Stats24h = stats
	}
	if fg, err := h.sentiment.FearGreedIndex(ctx); err != nil {
		h.logger.Warn("status fear greed", xlogger.Error(err))
	} else {
		res.FearGreed = fg
	}

	return xhttp.SuccessResponse(c, res)
}

type analysisRequest struct {
	TF string `query:"tf" validate:"omitempty,oneof=1m 5m 15m 1h"`
}

func (h *EngineEchoHandler) Analysis(c echo.Context) error {
	req := &analysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	analysis := h.cycle.Analysis()
	if req.TF != "" {
		snap, ok := analysis[req.TF]
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no analysis for timeframe %s", req.TF))
		}
		return xhttp.SuccessResponse(c, snap)
	}
	return xhttp.SuccessResponse(c, analysis)
}

func (h *EngineEchoHandler) Signal(c echo.Context) error {
	sig := h.cycle.LatestSignal()
	if sig == nil {
		return xhttp.NotFoundResponse(c, "no signal yet")
	}
	return xhttp.SuccessResponse(c, sig)
}

func (h *EngineEchoHandler) Positions(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.cycle.Positions())
}

func (h *EngineEchoHandler) Performance(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.cycle.Performance())
}

type limitRequest struct {
	Limit int `query:"limit" default:"10" validate:"gte=1,lte=500"`
}

func (h *EngineEchoHandler) Patterns(c echo.Context) error {
	req := &limitRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.cycle.Patterns(req.Limit))
}

func (h *EngineEchoHandler) Logs(c echo.Context) error {
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 100)
	return xhttp.SuccessResponse(c, h.logger.Recent(limit))
}
