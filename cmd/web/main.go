package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pdiomede/graph-metrics/feed"
	"github.com/pdiomede/graph-metrics/pkg/clock"
	"github.com/pdiomede/graph-metrics/pkg/ens"
	"github.com/pdiomede/graph-metrics/pkg/graphnet"
	"github.com/pdiomede/graph-metrics/pkg/logger"
	"github.com/pdiomede/graph-metrics/web/config"
	"github.com/pdiomede/graph-metrics/web/handler"
)

var (
	version = "dev"
	date    = "unknown"
)

func main() {
	// Load .env (if present), then configuration
	_ = godotenv.Load()
	cfg := config.New()

	// Initialize logger and set as default
	log := logger.NewFromConfig(logger.Config{
		LogLevel:         cfg.LogLevel,
		LogHumanFriendly: cfg.LogHumanFriendly,
	})
	slog.SetDefault(log)

	// Prepare context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.InfoContext(ctx, "Delegation Activity Service starting",
		slog.String("version", version),
		slog.String("date", date),
	)

	// Upstream clients
	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	networkClient := graphnet.NewClientWithHTTP(httpClient, cfg.NetworkSubgraphURL)
	ensClient := ens.NewClientWithHTTP(httpClient, cfg.ENSSubgraphURL, cfg.ENSLookupsPerSec)

	// Feed service
	feedService := feed.NewService(
		networkClient,
		networkClient,
		ensClient,
		feed.WithCap(cfg.FeedCap()),
		feed.WithEnrichWorkers(cfg.EnrichWorkers),
	)

	// Subscribe to refresh lifecycle events for logging
	subCloser := setupEventLogging(ctx, feedService.Events(), log)
	defer subCloser()
	defer feedService.Close()

	// Initial refresh so the first request is served from a warm snapshot.
	// A failure here is not fatal: the feed moves to failed and a manual
	// refresh can recover it.
	if err := feedService.Refresh(ctx); err != nil {
		log.WarnContext(ctx, "Initial refresh failed", slog.Any("error", err))
	}

	// Create HTTP server
	mux := http.NewServeMux()

	sysClock := clock.SystemClock{}
	handler.NewNetworkGetDelegations(feedService, sysClock).AddRoutes(mux)
	handler.NewNetworkExportDelegations(feedService, sysClock).AddRoutes(mux)
	handler.NewNetworkRefresh(feedService).AddRoutes(mux)

	// Wrap with logging middleware
	loggedMux := logger.NewMiddleware(log)(mux)

	// Create server address
	addr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)

	server := &http.Server{
		Addr:    addr,
		Handler: loggedMux,
	}

	// Start server in a goroutine
	go func() {
		log.InfoContext(ctx, "Server started", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.ErrorContext(ctx, "Server failed to start", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	log.InfoContext(ctx, "Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(ctx, "Server forced to shutdown", slog.Any("error", err))
		os.Exit(1)
	}

	log.InfoContext(ctx, "Server exited gracefully")
}

// setupEventLogging configures refresh event handlers using slog directly
func setupEventLogging(ctx context.Context, events <-chan feed.Event, log *slog.Logger) func() {
	return feed.NewSubscriber(events,
		feed.OnRefreshStarted(func(event feed.RefreshStarted) {
			log.InfoContext(ctx, "Refresh started",
				slog.String("startedAt", event.StartedAt.Format(logger.BritishTimeFormat)),
			)
		}),
		feed.OnSourcesFetched(func(event feed.SourcesFetched) {
			log.InfoContext(ctx, "Sources fetched",
				slog.Int("deposits", event.Deposits),
				slog.Int("withdrawals", event.Withdrawals),
				slog.Int("dropped", event.Dropped),
			)
		}),
		feed.OnMetricsUnavailable(func(event feed.MetricsUnavailable) {
			log.WarnContext(ctx, "Network metrics unavailable", slog.Any("error", event.Err))
		}),
		feed.OnRefreshCompleted(func(event feed.RefreshCompleted) {
			log.InfoContext(ctx, "Refresh completed",
				slog.Int("records", event.Records),
				slog.Int("resolvedAddresses", event.Resolved),
				slog.Duration("duration", event.Duration),
			)
		}),
		feed.OnRefreshFailed(func(event feed.RefreshFailed) {
			log.ErrorContext(ctx, "Refresh failed", slog.Any("error", event.Err))
		}),
	)
}
