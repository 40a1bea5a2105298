package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "niftypulse_scans_total",
		Help: "Completed scan cycles.",
	})

	ScanFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "niftypulse_scan_failures_total",
		Help: "Scan cycles aborted on fetch or parse errors.",
	})

	SignalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "niftypulse_signals_total",
		Help: "Validated signals by direction.",
	}, []string{"direction"})

	RejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "niftypulse_rejections_total",
		Help: "Candidate signals rejected, by gate.",
	}, []string{"gate"})

	ExitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "niftypulse_exits_total",
		Help: "Closed positions by exit reason.",
	}, []string{"reason"})

	LastPrice = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "niftypulse_last_price",
		Help: "Futures price from the most recent scan.",
	})

	LastPCR = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "niftypulse_last_pcr",
		Help: "Put-call ratio from the most recent scan.",
	})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "niftypulse_fetch_duration_seconds",
		Help:    "Wall time of a full collect cycle.",
		Buckets: prometheus.DefBuckets,
	})
)

// Serve exposes /metrics on addr until ctx is cancelled. Returns
// immediately when addr is empty.
func Serve(ctx context.Context, addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("metrics listener started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics listener failed")
	}
}
