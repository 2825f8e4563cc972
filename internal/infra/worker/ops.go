package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OpsServer exposes the operational HTTP endpoints:
//   - /health: liveness probe, always 200 OK
//   - /health/ready: readiness probe, 200 once the bot session is ready
//   - /metrics: Prometheus metrics
type OpsServer struct {
	addr    string
	isReady atomic.Bool
	server  *http.Server
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewOpsServer creates an OpsServer listening on addr. It is not
// started until Start is called and reports not-ready until SetReady.
func NewOpsServer(addr string) *OpsServer {
	return &OpsServer{addr: addr}
}

// Start runs the server until ctx is canceled, then shuts it down
// gracefully with a 5 second deadline. It returns http.ErrServerClosed
// on a clean shutdown.
func (o *OpsServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", o.handleLiveness)
	mux.HandleFunc("/health/ready", o.handleReadiness)
	mux.Handle("/metrics", promhttp.Handler())

	o.server = &http.Server{
		Addr:         o.addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("ops server starting", slog.String("addr", o.addr))
		if err := o.server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("ops server shutting down")
		if err := o.server.Shutdown(shutdownCtx); err != nil {
			slog.Error("ops server shutdown failed", slog.Any("error", err))
			return err
		}
		return http.ErrServerClosed

	case err := <-errChan:
		if err != http.ErrServerClosed {
			slog.Error("ops server failed", slog.Any("error", err))
		}
		return err
	}
}

// SetReady flips the readiness state reported by /health/ready.
func (o *OpsServer) SetReady(ready bool) {
	o.isReady.Store(ready)
	slog.Info("ops server readiness changed", slog.Bool("ready", ready))
}

func (o *OpsServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok"})
}

func (o *OpsServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if o.isReady.Load() {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok"})
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "not ready"})
}
