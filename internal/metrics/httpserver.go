package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServer exposes Prometheus metrics over HTTP at the configured
// path, implementing the Server interface.
type HTTPServer struct {
	address string
	srv     *http.Server
}

// NewHTTPServer builds an HTTPServer serving the default Prometheus
// registry's metrics at path on address.
func NewHTTPServer(address, path string) *HTTPServer {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	return &HTTPServer{
		address: address,
		srv:     &http.Server{Addr: address, Handler: mux},
	}
}

// Start begins serving metrics. It blocks until the context is
// canceled or ListenAndServe returns a non-shutdown error.
func (h *HTTPServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- h.srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		_ = h.srv.Shutdown(context.Background())
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Shutdown gracefully stops the metrics server.
func (h *HTTPServer) Shutdown(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}
