package insights

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"regwatch/models/constants"
	"regwatch/utils/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// NewProbes serves liveness, readiness and metrics on port. Readiness holds
// while every check passes.
func NewProbes(port int, checks ...Check) *Impl {
	probes := &Impl{mux: http.NewServeMux(), checks: checks}

	probes.mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	probes.mux.HandleFunc("/readyz", probes.ready)
	probes.mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	probes.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           probes.mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return probes
}

func (probes *Impl) Handle(pattern string, handler http.Handler) {
	probes.mux.Handle(pattern, handler)
}

func (probes *Impl) Handler() http.Handler {
	return probes.mux
}

func (probes *Impl) ready(w http.ResponseWriter, _ *http.Request) {
	for _, check := range probes.checks {
		if !check() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// ListenAndServe blocks until the server is shut down.
func (probes *Impl) ListenAndServe() {
	log.Info().Str("addr", probes.server.Addr).Msg("Probes are listening")
	if err := probes.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Probes stopped unexpectedly")
	}
}

func (probes *Impl) Shutdown(ctx context.Context) {
	if err := probes.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Str(constants.LogStatus, "shutdown").Msg("Cannot shutdown probes, continuing...")
	}
}
