package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	questlog "github.com/openquest/questlog"
	"github.com/openquest/questlog/config"
	httpx "github.com/openquest/questlog/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) (*http.Server, error) {
	if cfg == nil || cfg.Services == nil {
		return nil, errors.New("http server: services are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	staticFS, err := selectStaticFS(appCfg.IsDev, logger)
	if err != nil {
		return nil, err
	}

	services := httpx.RouterServices{
		Auth:        cfg.Services.Auth,
		Resolver:    cfg.Services.Auth,
		Codec:       cfg.Services.Codec,
		Limiter:     cfg.Services.Limiter,
		Quests:      cfg.Services.Quests,
		Profile:     cfg.Services.Profile,
		Leaderboard: cfg.Services.Leaderboard,
		Stats:       cfg.Services.Stats,

		CookieDomain:      appCfg.HTTP.CookieDomain,
		GoogleRedirectURL: appCfg.Auth.Google.RedirectURL,
		RefreshTTL:        appCfg.Auth.Tokens.RefreshTTL,

		StaticFS: staticFS,

		Logger:  logger,
		Metrics: cfg.Services.Metrics,
	}

	handler := httpx.NewRouter(services)
	server := startServer(logger, handler, appCfg.HTTP.Addr)

	return server, nil
}

// selectStaticFS picks the front-end filesystem: disk in dev mode for
// hot reloading, the embedded copy otherwise.
func selectStaticFS(isDev bool, logger *slog.Logger) (fs.FS, error) {
	if isDev {
		if _, err := os.Stat("public"); err == nil {
			logger.Info("serving front end from disk", "dir", "public")
			return os.DirFS("public"), nil
		}
		logger.Warn("public directory not found on disk, falling back to embedded assets")
	}

	sub, err := fs.Sub(questlog.PublicFS, "public")
	if err != nil {
		return nil, fmt.Errorf("embedded assets: %w", err)
	}
	return sub, nil
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// RunUntilSignal blocks until SIGINT or SIGTERM, then gracefully shuts
// down the HTTP server within the configured timeout.
func RunUntilSignal(ctx context.Context, server *http.Server, cfg *config.AppConfig, logger *slog.Logger) error {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()

	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	timeout := 10 * time.Second
	if cfg != nil && cfg.HTTP.ShutdownTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.HTTP.ShutdownTimeoutSeconds) * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}

	return nil
}
