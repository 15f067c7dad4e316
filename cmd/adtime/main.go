package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"adtime-printshop/internal/bot"
	"adtime-printshop/internal/config"
	"adtime-printshop/internal/pricing"
	"adtime-printshop/internal/ratelimit"
	"adtime-printshop/internal/storage"
	transport "adtime-printshop/internal/transport/http"
	"adtime-printshop/pkg/api"
	"adtime-printshop/pkg/logger"
	"adtime-printshop/pkg/redis"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ENTRY POINT

func main() {
	migrate := flag.String("migrate", "", "run a migration command and exit: up, down or status")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	if err := run(ctx, cfg, *migrate, zapLogger); err != nil {
		zapLogger.Fatal("Service stopped with error", zap.Error(err))
	}

	zapLogger.Info("Service shutdown gracefully")
}

func run(ctx context.Context, cfg *config.Config, migrate string, zapLogger *zap.Logger) error {
	pgStorage, err := storage.NewPostgresStorage(ctx, cfg.Database, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to init PostgreSQL storage: %w", err)
	}
	defer pgStorage.Close()

	switch migrate {
	case "":
		if cfg.Database.AutoMigrate {
			if err := storage.RunMigrations(ctx, pgStorage.DB(), zapLogger); err != nil {
				return err
			}
		}
	case "up":
		return storage.RunMigrations(ctx, pgStorage.DB(), zapLogger)
	case "down":
		return storage.RollbackMigration(ctx, pgStorage.DB(), zapLogger)
	case "status":
		return storage.Status(ctx, pgStorage.DB(), zapLogger)
	default:
		return fmt.Errorf("unknown migrate command %q", migrate)
	}

	redisClient := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.StateTTL)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	var reference pricing.ReferenceStore = pgStorage
	if cfg.Catalog.BaseURL != "" {
		zapLogger.Info("Using catalog API for reference data", zap.String("base_url", cfg.Catalog.BaseURL))
		reference = api.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, cfg.Catalog.Timeout, zapLogger)
	}

	engine := pricing.NewEngine(reference, zapLogger, cfg.Pricing.Options())
	limiter := ratelimit.New(redisClient, cfg.HTTP.RateLimit, cfg.HTTP.RateWindow)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      transport.NewHandler(engine, pgStorage, limiter, zapLogger).Routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zapLogger.Info("Starting HTTP server", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Telegram.Token != "" {
		tgBot, err := bot.New(cfg.Telegram.Token, bot.Deps{
			State:   redisClient,
			Pricer:  engine,
			Quotes:  pgStorage,
			Limiter: limiter,
		}, zapLogger, cfg)
		if err != nil {
			return fmt.Errorf("failed to create bot: %w", err)
		}
		g.Go(func() error {
			return tgBot.Start(gctx)
		})
	} else {
		zapLogger.Warn("TELEGRAM_TOKEN is empty, bot disabled")
	}

	return g.Wait()
}
