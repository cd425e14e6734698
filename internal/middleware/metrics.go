package middleware

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LedgerErrorHeader names the response metadata key carrying a ledger error kind.
const LedgerErrorHeader = "X-Ledger-Error"

// Metrics records RPC counts and latencies.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rejected *prometheus.CounterVec
}

// NewMetrics registers the RPC collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flatsby_rpc_requests_total",
				Help: "Total number of RPCs by procedure and result code",
			},
			[]string{"procedure", "code"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flatsby_rpc_duration_seconds",
				Help:    "RPC handling latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"procedure"},
		),
		rejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flatsby_ledger_rejections_total",
				Help: "Expenses and settlements rejected by ledger validation, by kind",
			},
			[]string{"kind"},
		),
	}
}

// Interceptor returns a Connect interceptor feeding the collectors.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					if kind := connectErr.Meta().Get(LedgerErrorHeader); kind != "" {
						m.rejected.WithLabelValues(kind).Inc()
					}
				}
			}
			m.requests.WithLabelValues(procedure, code).Inc()
			m.duration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}
