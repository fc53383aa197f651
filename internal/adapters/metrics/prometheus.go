// Package metrics expone el estado del trader como métricas Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var feedStates = []string{"disconnected", "connecting", "subscribing", "streaming"}

// Recorder implementa ports.Metrics sobre un registry propio.
// Un *Recorder nil es válido y descarta todo.
type Recorder struct {
	registry *prometheus.Registry

	feedState        *prometheus.GaugeVec
	feedEvents       *prometheus.CounterVec
	feedGaps         *prometheus.CounterVec
	reconnects       prometheus.Counter
	providerFailures *prometheus.CounterVec
	signals          *prometheus.CounterVec
	position         *prometheus.GaugeVec
	cash             *prometheus.GaugeVec
	probability      *prometheus.GaugeVec
}

// NewRecorder crea y registra todas las métricas.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		feedState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kalshi_feed_state",
				Help: "1 for the current feed connection state, 0 otherwise",
			},
			[]string{"state"},
		),
		feedEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kalshi_feed_events_total",
				Help: "Feed messages received by kind",
			},
			[]string{"kind"},
		),
		feedGaps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kalshi_feed_gaps_total",
				Help: "Sequence gaps detected per market",
			},
			[]string{"ticker"},
		),
		reconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kalshi_feed_reconnects_total",
				Help: "Feed reconnect attempts",
			},
		),
		providerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kalshi_provider_failures_total",
				Help: "Failed calls to external providers",
			},
			[]string{"kind"},
		),
		signals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kalshi_signals_total",
				Help: "Signals produced by strategy and direction",
			},
			[]string{"strategy", "direction"},
		),
		position: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kalshi_position_contracts",
				Help: "Net YES position (negative = short)",
			},
			[]string{"strategy", "ticker"},
		),
		cash: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kalshi_cash_usd",
				Help: "Simulated ledger cash",
			},
			[]string{"strategy", "ticker"},
		),
		probability: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kalshi_blended_probability_pct",
				Help: "Last blended win probability for the YES team",
			},
			[]string{"ticker"},
		),
	}

	r.registry.MustRegister(
		r.feedState, r.feedEvents, r.feedGaps, r.reconnects, r.providerFailures,
		r.signals, r.position, r.cash, r.probability,
	)
	return r
}

// Registry devuelve el registry de Prometheus.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler sirve el endpoint /metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// FeedState deja a 1 solo el estado actual.
func (r *Recorder) FeedState(state string) {
	if r == nil {
		return
	}
	for _, s := range feedStates {
		v := 0.0
		if s == state {
			v = 1
		}
		r.feedState.WithLabelValues(s).Set(v)
	}
}

func (r *Recorder) FeedEvent(kind string) {
	if r == nil {
		return
	}
	r.feedEvents.WithLabelValues(kind).Inc()
}

func (r *Recorder) FeedGap(ticker string) {
	if r == nil {
		return
	}
	r.feedGaps.WithLabelValues(ticker).Inc()
}

func (r *Recorder) Reconnect() {
	if r == nil {
		return
	}
	r.reconnects.Inc()
}

func (r *Recorder) ProviderFailure(kind string) {
	if r == nil {
		return
	}
	r.providerFailures.WithLabelValues(kind).Inc()
}

func (r *Recorder) Signal(strategy, direction string) {
	if r == nil {
		return
	}
	r.signals.WithLabelValues(strategy, direction).Inc()
}

func (r *Recorder) Ledger(strategy, ticker string, position int, cash float64) {
	if r == nil {
		return
	}
	r.position.WithLabelValues(strategy, ticker).Set(float64(position))
	r.cash.WithLabelValues(strategy, ticker).Set(cash)
}

func (r *Recorder) Probability(ticker string, p float64) {
	if r == nil {
		return
	}
	r.probability.WithLabelValues(ticker).Set(p)
}
