// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitledger"

var (
	rpcRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rpc_requests_total",
		Help:      "Connect RPCs handled, by procedure and result code.",
	}, []string{"procedure", "code"})

	rpcDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_duration_seconds",
		Help:      "Connect RPC latency by procedure.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure"})

	aggregationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "aggregation_duration_seconds",
		Help:      "Time spent folding records into a derived view, by aggregator.",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
	}, []string{"aggregator"})

	invalidRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invalid_records_total",
		Help:      "Stored records skipped during aggregation because they failed validation.",
	}, []string{"kind"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveAggregation records how long aggregator took since start.
func ObserveAggregation(aggregator string, start time.Time) {
	aggregationDuration.WithLabelValues(aggregator).Observe(time.Since(start).Seconds())
}

// InvalidRecord counts one skipped record of kind ("expense" or "settlement").
func InvalidRecord(kind string) {
	invalidRecords.WithLabelValues(kind).Inc()
}

// Interceptor counts and times every unary RPC.
func Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			rpcDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			rpcRequests.WithLabelValues(procedure, codeOf(err)).Inc()
			return resp, err
		}
	}
}

func codeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Code().String()
	}
	return connect.CodeUnknown.String()
}
