// Package server mounts the JSON API and MCP transports on one listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hylla/dagord/internal/adapters/server/httpapi"
	"github.com/hylla/dagord/internal/adapters/server/mcpapi"
	"github.com/hylla/dagord/internal/engine"
)

const (
	defaultBindAddress     = "127.0.0.1:8080"
	defaultShutdownTimeout = 5 * time.Second
)

// Config defines serve-mode endpoint configuration.
type Config struct {
	HTTPBind      string
	APIEndpoint   string
	MCPEndpoint   string
	ServerName    string
	ServerVersion string
}

// NewHandler builds the root mux: health probes, the JSON API under
// APIEndpoint, and the MCP mount under MCPEndpoint. The returned Config
// carries the normalized values actually mounted.
func NewHandler(cfg Config, eng *engine.Engine) (http.Handler, Config, error) {
	if eng == nil {
		return nil, Config{}, fmt.Errorf("engine dependency is required")
	}
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, Config{}, err
	}

	mcpHandler, err := mcpapi.NewHandler(
		mcpapi.Config{
			ServerName:    cfg.ServerName,
			ServerVersion: cfg.ServerVersion,
			EndpointPath:  cfg.MCPEndpoint,
		},
		eng,
	)
	if err != nil {
		return nil, Config{}, fmt.Errorf("configure mcp handler: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler)
	mux.Handle(cfg.MCPEndpoint, mcpHandler)
	api := http.StripPrefix(cfg.APIEndpoint, httpapi.NewHandler(eng))
	mux.Handle(cfg.APIEndpoint, api)
	mux.Handle(cfg.APIEndpoint+"/", api)
	return mux, cfg, nil
}

// Run serves the composed handler on cfg.HTTPBind and blocks until the
// context is cancelled or the listener fails. Cancellation triggers a
// bounded graceful shutdown.
func Run(ctx context.Context, cfg Config, eng *engine.Engine) error {
	if ctx == nil {
		ctx = context.Background()
	}
	handler, cfg, err := NewHandler(cfg, eng)
	if err != nil {
		return fmt.Errorf("build server handler: %w", err)
	}
	srv := &http.Server{Addr: cfg.HTTPBind, Handler: handler}

	shutdownDone := make(chan error, 1)
	stop := context.AfterFunc(ctx, func() {
		sctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		shutdownDone <- srv.Shutdown(sctx)
	})
	defer stop()

	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	// ErrServerClosed means Shutdown ran; report its outcome.
	if serr := <-shutdownDone; serr != nil && !errors.Is(serr, context.Canceled) {
		return fmt.Errorf("shutdown server: %w", serr)
	}
	return nil
}

// normalizeConfig fills defaults and rejects colliding mounts.
func normalizeConfig(cfg Config) (Config, error) {
	cfg.HTTPBind = strings.TrimSpace(cfg.HTTPBind)
	if cfg.HTTPBind == "" {
		cfg.HTTPBind = defaultBindAddress
	}
	cfg.APIEndpoint = normalizeEndpoint(cfg.APIEndpoint, "/api/v1")
	cfg.MCPEndpoint = normalizeEndpoint(cfg.MCPEndpoint, "/mcp")
	if cfg.APIEndpoint == cfg.MCPEndpoint {
		return Config{}, fmt.Errorf("api and mcp endpoints must differ")
	}
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "dagord"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	return cfg, nil
}

// normalizeEndpoint reduces a path to a single leading slash with no
// trailing slash; blank and root paths take the fallback.
func normalizeEndpoint(path string, fallback string) string {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return fallback
	}
	return "/" + trimmed
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}
