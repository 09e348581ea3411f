package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cyclesTotal  prometheus.Counter
	signalsTotal *prometheus.CounterVec
	tradesTotal  *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	dailyPnl     prometheus.Gauge
	openCount    prometheus.Gauge
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tradepulse_cycles_total",
				Help: "Total number of completed scan cycles",
			},
		),
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_signals_total",
				Help: "Total number of generated signals",
			},
			[]string{"type", "side"},
		),
		tradesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_trades_closed_total",
				Help: "Total number of closed trades",
			},
			[]string{"outcome", "reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradepulse_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		dailyPnl: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradepulse_daily_pnl",
				Help: "Realized profit and loss for the current day",
			},
		),
		openCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradepulse_open_positions",
				Help: "Number of currently open positions",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradepulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCycle records one completed scan cycle.
func (r *Recorder) RecordCycle() {
	r.cyclesTotal.Inc()
}

// RecordSignal records a generated signal by type and side.
func (r *Recorder) RecordSignal(sigType, side string) {
	r.signalsTotal.WithLabelValues(sigType, side).Inc()
}

// RecordTradeClosed records a closed trade by outcome and exit reason.
func (r *Recorder) RecordTradeClosed(outcome, reason string) {
	r.tradesTotal.WithLabelValues(outcome, reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordDailyPnl records the running daily realized pnl.
func (r *Recorder) RecordDailyPnl(pnl float64) {
	r.dailyPnl.Set(pnl)
}

// RecordOpenPositions records the active position count.
func (r *Recorder) RecordOpenPositions(n int) {
	r.openCount.Set(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
