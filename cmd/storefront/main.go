// Command storefront runs the custom-apparel storefront service: the HTTP
// surface for catalog browsing, bundle and product customization, the cart,
// and the seller panel, backed by the commerce REST backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/threadline/storefront/internal/backend"
	"github.com/threadline/storefront/internal/content"
	"github.com/threadline/storefront/internal/handlers"
	"github.com/threadline/storefront/internal/platform/config"
	"github.com/threadline/storefront/internal/platform/observability"
	"github.com/threadline/storefront/internal/session"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "storefront: build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("storefront exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	sessions := session.NewStore(cfg.Session.TTL)
	pages := content.NewStore(cfg.Content.Dir)

	health := handlers.NewHealthHandlers()
	health.AddCheck("backend", func(ctx context.Context) error {
		_, err := client.Products(ctx)
		return err
	})

	catalog, err := handlers.NewCatalogHandlers(client)
	if err != nil {
		return err
	}
	customizeH, err := handlers.NewCustomizeHandlers(client)
	if err != nil {
		return err
	}
	cartH, err := handlers.NewCartHandlers(client)
	if err != nil {
		return err
	}
	authH, err := handlers.NewAuthHandlers(client)
	if err != nil {
		return err
	}
	contentH, err := handlers.NewContentHandlers(pages)
	if err != nil {
		return err
	}
	settingsH := handlers.NewSettingsHandlers(cfg.Backend.BaseURL)

	opts := []handlers.Option{
		handlers.WithMiddleware(
			observability.InjectLoggerMiddleware(logger),
			observability.RequestLoggerMiddleware(),
			observability.RecoveryMiddleware(logger),
			handlers.SessionMiddleware(sessions, cfg.Session.CookieName),
		),
		handlers.WithHealth(health),
		handlers.WithCatalogRoutes(catalog.Register),
		handlers.WithCustomizeRoutes(customizeH.Register),
		handlers.WithCartRoutes(cartH.Register),
		handlers.WithAuthRoutes(authH.Register),
		handlers.WithSettingsRoutes(settingsH.Register),
		handlers.WithContentRoutes(contentH.Register),
	}
	if cfg.Features.EnableAdminPanel {
		adminH, err := handlers.NewAdminHandlers(client)
		if err != nil {
			return err
		}
		opts = append(opts, handlers.WithAdminRoutes(adminH.Register, adminH.RequireAdmin))
	}

	router := handlers.NewRouter(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sessions.Sweep(ctx, cfg.Session.SweepInterval)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.ListenAndServe() }()

	logger.Info("storefront listening",
		zap.String("port", cfg.Server.Port),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.Bool("admin_panel", cfg.Features.EnableAdminPanel),
	)

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("grace", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
