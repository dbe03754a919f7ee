package environment

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"time"

	"gym-cutoff/internal/config"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type Servers struct {
	HTTP struct {
		Observability *http.Server
	}
}

func newServers(cfg config.Config, logger *slog.Logger, clients *Clients) *Servers {
	var servers Servers
	servers.HTTP.Observability = newObservabilityServer(cfg.Observability, logger.WithGroup("http"), clients.SQLiteDB)
	return &servers
}

func newObservabilityServer(cfg config.ObservabilityHTTPConfig, logger *slog.Logger, db pinger) *http.Server {
	return &http.Server{
		Handler:           observabilityHandler(logger, db),
		Addr:              cfg.ADDR(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
	}
}

func observabilityHandler(logger *slog.Logger, db pinger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Warn("Readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "Database unavailable")
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Ready")
	})

	return mux
}
