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

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"knowledge-qa/internal/adapter/qahttp"
	"knowledge-qa/internal/di"
	"knowledge-qa/internal/infra/config"
	"knowledge-qa/internal/infra/logger"
	qaotel "knowledge-qa/internal/infra/otel"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. Initialize OpenTelemetry and Logger
	otelCfg := qaotel.ConfigFromEnv()
	otelShutdown, err := qaotel.InitProvider(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("failed to init otel: %w", err)
	}

	log := logger.New(cfg.LogLevel, otelCfg.Enabled)
	slog.SetDefault(log)

	// 3. Wire storage, gateway and usecases
	comps, err := di.NewApplicationComponents(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer comps.Close()

	spec, err := qahttp.LoadOpenAPI()
	if err != nil {
		return err
	}

	// 4. Initialize Echo
	e, err := qahttp.NewRouter(comps.Handler, qahttp.RouterConfig{
		ServiceName:      otelCfg.ServiceName,
		EnableTracing:    otelCfg.Enabled,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		RateLimitRPS:     cfg.QA.RateLimitRPS,
		RateLimitBurst:   cfg.QA.RateLimitBurst,
		Ready:            comps.DocRepo.Ping,
		OpenAPI:          spec,
		Logger:           log,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           h2c.NewHandler(e, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.InfoContext(ctx, "starting server",
		"addr", srv.Addr,
		"storage", cfg.StorageBackend,
		"llm", comps.LLM.Version(),
	)

	// 5. Serve until a signal arrives, then shut down server and telemetry
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return otelShutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("server exited properly")
	return nil
}
