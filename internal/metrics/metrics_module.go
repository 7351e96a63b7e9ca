// Package metrics wires matchcore's prometheus counters/histograms and the
// /metrics HTTP endpoint that serves them. Only cmd/matchcore registers the
// handler and listens — the core book/matching/tif/stops/cascade packages
// take a *Recorder (or nil) and never import net/http themselves.
//
// Wired through fx.Provide/fx.Invoke/fx.Lifecycle so the HTTP server starts
// and stops with the rest of the application.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the registry, the Recorder, and the HTTP handler
// lifecycle hook for an fx-wired cmd/matchcore.
var Module = fx.Options(
	fx.Provide(NewPrometheusRegistry),
	fx.Provide(NewRecorder),
	fx.Invoke(RegisterHandler),
)

// NewPrometheusRegistry returns a fresh, unpopulated registry.
func NewPrometheusRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Recorder holds every instrument matchcore's engine emits to. A nil
// *Recorder is valid everywhere it's accepted — every method is a no-op on
// a nil receiver — so the core packages can take one unconditionally
// without an fx dependency of their own.
type Recorder struct {
	ordersSubmitted  *prometheus.CounterVec
	tradesExecuted   prometheus.Counter
	cascadeDepth     prometheus.Histogram
	cancelsProcessed prometheus.Counter
	compactions      prometheus.Counter
}

// NewRecorder registers matchcore's instruments against registry.
func NewRecorder(registry *prometheus.Registry) *Recorder {
	r := &Recorder{
		ordersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "orders_submitted_total",
			Help:      "Orders submitted, by time-in-force.",
		}, []string{"tif"}),
		tradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "trades_executed_total",
			Help:      "Trades produced by the matching engine.",
		}),
		cascadeDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "matchcore",
			Name:      "cascade_depth",
			Help:      "Stop orders triggered per stop cascade.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		cancelsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "cancels_processed_total",
			Help:      "Successful order cancellations.",
		}),
		compactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "book_compactions_total",
			Help:      "Explicit compact() calls run against the book.",
		}),
	}
	registry.MustRegister(r.ordersSubmitted, r.tradesExecuted, r.cascadeDepth, r.cancelsProcessed, r.compactions)
	return r
}

func (r *Recorder) OrderSubmitted(tif string) {
	if r == nil {
		return
	}
	r.ordersSubmitted.WithLabelValues(tif).Inc()
}

func (r *Recorder) TradesExecuted(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.tradesExecuted.Add(float64(n))
}

func (r *Recorder) CascadeDepth(triggered int) {
	if r == nil {
		return
	}
	r.cascadeDepth.Observe(float64(triggered))
}

func (r *Recorder) CancelProcessed() {
	if r == nil {
		return
	}
	r.cancelsProcessed.Inc()
}

func (r *Recorder) Compacted() {
	if r == nil {
		return
	}
	r.compactions.Inc()
}

// RegisterHandler starts an HTTP server on addr (from config, supplied via
// fx.Supply in cmd/matchcore) serving registry at /metrics, stopping it on
// fx shutdown.
func RegisterHandler(lc fx.Lifecycle, registry *prometheus.Registry, addr string, logger *zap.Logger) {
	server := &http.Server{
		Addr:    addr,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("starting metrics server", zap.String("addr", addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("metrics server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping metrics server")
			return server.Shutdown(ctx)
		},
	})
}
