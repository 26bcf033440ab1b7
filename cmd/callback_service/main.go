package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/aradsms/bdappsapi/internal/callback_service/app"
	httptransport "github.com/aradsms/bdappsapi/internal/callback_service/transport/http"
	"github.com/aradsms/bdappsapi/internal/platform/config"
	"github.com/aradsms/bdappsapi/internal/platform/logger"
	"github.com/aradsms/bdappsapi/internal/platform/messagebroker"
)

const (
	serviceName     = "callback_service"
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("Callback service stopped with error", "service", serviceName, "error", err)
		os.Exit(1)
	}
}

// run owns every resource so its defers, including the NATS drain, finish
// before main exits.
func run() error {
	cfg, err := config.Load(serviceName)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat).With("service", serviceName)
	appLogger.Info("Callback service starting...", "port", cfg.CallbackServicePort, "metrics_port", cfg.MetricsPort)

	natsClient, err := messagebroker.NewNATSClient(cfg.NATSUrl, serviceName, appLogger)
	if err != nil {
		return err
	}
	defer natsClient.Close()
	appLogger.Info("Successfully connected to NATS", "url", cfg.NATSUrl)

	callbackService := app.NewCallbackService(natsClient, appLogger)
	handler := httptransport.NewCallbackHandler(callbackService, appLogger, cfg.CallbackMaxBodyBytes)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.CallbackServicePort),
		Handler:           httptransport.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return serve(appLogger, "callback", httpServer) })
	g.Go(func() error { return serve(appLogger, "metrics", metricsServer) })
	g.Go(func() error {
		<-groupCtx.Done()
		appLogger.Info("Shutting down servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(httpServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		return err
	}
	appLogger.Info("Callback service shut down.")
	return nil
}

func serve(log *slog.Logger, name string, srv *http.Server) error {
	log.Info("HTTP server listening", "server", name, "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}
