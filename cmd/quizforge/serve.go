package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/petrijr/quizforge/internal/config"
	"github.com/petrijr/quizforge/internal/dispatch"
	"github.com/petrijr/quizforge/internal/exam"
	"github.com/petrijr/quizforge/internal/fingerprint"
	"github.com/petrijr/quizforge/internal/generation"
	"github.com/petrijr/quizforge/internal/httpapi"
	"github.com/petrijr/quizforge/internal/invoker"
	"github.com/petrijr/quizforge/internal/logging"
	"github.com/petrijr/quizforge/internal/metrics"
	"github.com/petrijr/quizforge/internal/persistence"
	"github.com/petrijr/quizforge/internal/reference"
	"github.com/petrijr/quizforge/internal/render"
	"github.com/petrijr/quizforge/internal/tracker"
	"github.com/petrijr/quizforge/pkg/api"
)

const (
	shutdownTimeout = 30 * time.Second
	pageCacheTTL    = 10 * time.Minute
)

func newServeCmd() *cobra.Command {
	var opts config.Options
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return serve(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().StringVar(&opts.File, "config", "", "config file (yaml, toml or json)")
	cmd.Flags().StringVar(&opts.EnvFile, "env-file", "", "dotenv file (defaults to ./.env when present)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	srv, closeStack, err := buildServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStack()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutdown_requested", slog.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if n := len(srv.Interrupted()); n > 0 {
		logger.Warn("workflows_interrupted", slog.Int("count", n))
	}
	return <-errCh
}

// buildServer wires the full generation stack from cfg. The returned func
// releases the cache store.
func buildServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*httpapi.Server, func(), error) {
	store, err := persistence.Open(ctx, persistence.Backend(cfg.Cache.Backend), persistence.Options{
		Dir:        cfg.Cache.Dir,
		DSN:        cfg.Cache.DSN,
		Prefix:     cfg.Cache.Prefix,
		Database:   cfg.Cache.Database,
		Collection: cfg.Cache.Collection,
	})
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Warn("cache_store_close_failed", slog.Any("error", err))
		}
	}

	cacheOpts := []fingerprint.Option{fingerprint.WithTTL(cfg.Cache.TTL), fingerprint.WithLogger(logger)}
	if !cfg.Cache.Memory {
		cacheOpts = append(cacheOpts, fingerprint.WithoutMemory())
	}
	cache := fingerprint.New(store, cacheOpts...)

	prom := metrics.NewObserver()
	obs := api.NewCompositeObserver(api.NewLoggingObserver(logger), prom)

	gen := newGenerator(cfg, logger)
	if rps := cfg.Generation.RequestsPerSecond; rps > 0 {
		gen = generation.RateLimited(gen, rate.NewLimiter(rate.Limit(rps), 1))
	}

	inv := invoker.New(gen,
		invoker.WithPolicy(api.RetryPolicy{
			MaxAttempts:  cfg.Retry.MaxAttempts,
			InitialDelay: cfg.Retry.InitialDelay,
			Backoff:      api.DefaultBackoff,
		}),
		invoker.WithCallTimeout(cfg.Generation.CallTimeout),
		invoker.WithObserver(obs),
	)

	d := dispatch.New(inv,
		dispatch.WithMaxConcurrency(cfg.Dispatch.MaxConcurrency),
		dispatch.WithCache(cache),
		dispatch.WithSettings(generation.Settings{
			Model:       cfg.Generation.Model,
			MaxTokens:   cfg.Generation.MaxTokens,
			Temperature: cfg.Generation.Temperature,
		}),
		dispatch.WithObserver(obs),
		dispatch.WithLogger(logger),
	)

	renderer, err := newRenderer(cfg, logger)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	refs := reference.NewProcessor(
		reference.WithMaxLength(cfg.Exam.MaxReferenceLength),
		reference.WithPageCache(pageCacheTTL),
		reference.WithLogger(logger),
	)

	difficulty, _ := api.ParseDifficulty(cfg.Exam.DefaultDifficulty)
	t := tracker.New(tracker.WithLogger(logger))
	svc := exam.NewService(t, d, refs, renderer,
		exam.WithDefaults(exam.Defaults{
			Count:      cfg.Exam.DefaultQuestionCount,
			Difficulty: difficulty,
			MaxCount:   cfg.Exam.MaxQuestionCount,
		}),
		exam.WithLogger(logger),
	)

	srv := httpapi.New(svc, httpapi.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		Provider:  cfg.Generation.Provider,
		Model:     cfg.Generation.Model,
		Metrics:   prom.Handler(),
		BodyLimit: cfg.Server.BodyLimit,
		Logger:    logger,
	})
	return srv, closeStore, nil
}

func newGenerator(cfg *config.Config, logger *slog.Logger) api.Generator {
	if cfg.Generation.Provider == config.ProviderOpenAI {
		return generation.NewOpenAIClient(generation.OpenAIConfig{
			APIKey:  cfg.Generation.APIKey,
			BaseURL: cfg.Generation.BaseURL,
			Stream:  cfg.Generation.Stream,
			Logger:  logger,
		})
	}
	return generation.NewMessagesClient(generation.MessagesConfig{
		APIKey:  cfg.Generation.APIKey,
		BaseURL: cfg.Generation.BaseURL,
		Logger:  logger,
	})
}

func newRenderer(cfg *config.Config, logger *slog.Logger) (render.Renderer, error) {
	if cfg.Render.LocalDir != "" || cfg.Render.URL == "" {
		dir := cfg.Render.LocalDir
		if dir == "" {
			dir = "rendered"
		}
		return render.NewLocalRenderer(dir)
	}
	return render.NewHTTPRenderer(cfg.Render.URL, &http.Client{Timeout: cfg.Render.Timeout}, logger), nil
}
