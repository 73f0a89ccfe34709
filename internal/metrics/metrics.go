// Package metrics exposes Prometheus instrumentation for the engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "market_ticks_total", Help: "Market snapshot updates applied"},
		[]string{"symbol"},
	)
	SnapshotsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "market_snapshots_rejected_total", Help: "Snapshots rejected by validation"},
		[]string{"symbol"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signals emitted by detectors"},
		[]string{"strategy", "symbol"},
	)
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trades_total", Help: "Trades settled against the ledger"},
		[]string{"symbol"},
	)
	RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "executions_rejected_total", Help: "Signal executions rejected before settlement"},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, SnapshotsRejected, SignalsTotal, TradesTotal, RejectionsTotal)
}

// Serve starts the /metrics endpoint on addr and returns the server for shutdown.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
