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
	"time"

	"ai-access-platform/internal/config"
	"ai-access-platform/internal/domain/ports/adapter"
	ai "ai-access-platform/internal/infra/ai"
	"ai-access-platform/internal/infra/api"
	pg "ai-access-platform/internal/infra/db/postgres"
	"ai-access-platform/internal/infra/logging"
	red "ai-access-platform/internal/infra/redis"
	"ai-access-platform/internal/infra/sched"
	"ai-access-platform/internal/infra/worker"
	"ai-access-platform/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, dev token endpoint)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		log.Warn().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	decisionCache := red.NewDecisionCache(redisClient, cfg.Redis.TTL)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	userRepo := pg.NewPostgresUserRepo(pool)
	codeRepo := pg.NewActivationCodeRepo(pool)
	statusRepo := pg.NewAccessStatusRepo(pool)
	pricingRepo := pg.NewPricingRepoCacheDecorator(pg.NewModelPricingRepo(pool), redisClient, cfg.Redis.TTL)
	selLogRepo := pg.NewSelectionLogRepo(pool)

	// ---- AI adapter (OpenAI -> Gemini -> none) ----
	var aiAdapter adapter.AIServiceAdapter
	switch {
	case cfg.AI.OpenAIKey != "":
		aiAdapter, err = ai.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.ClassifierModel)
		if err != nil {
			log.Fatal().Err(err).Msg("openai adapter init failed")
		}
		log.Info().Str("model", cfg.AI.ClassifierModel).Msg("AI adapter: OpenAI")
	case cfg.AI.GeminiKey != "":
		aiAdapter, err = ai.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.ClassifierModel)
		if err != nil {
			log.Fatal().Err(err).Msg("gemini adapter init failed")
		}
		log.Info().Str("model", cfg.AI.ClassifierModel).Msg("AI adapter: Gemini")
	default:
		aiAdapter = ai.NoopAdapter{}
		log.Warn().Msg("no AI provider configured; routing uses rules only")
	}
	aiAdapter = ai.NewLimitedAdapter(aiAdapter, cfg.AI.ConcurrentLimit)

	// ---- Background pool ----
	pool2 := worker.NewPool(0, log)
	pool2.Start(ctx)
	defer pool2.Stop()

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, tm, log)
	accessUC := usecase.NewAccessUseCase(codeRepo, statusRepo, userRepo, tm, decisionCache, log)
	pricingUC := usecase.NewPricingUseCase(pricingRepo, log)
	routerUC := usecase.NewRouterUseCase(pricingRepo, selLogRepo, aiAdapter, pool2, &cfg.AI, log)
	statsUC := usecase.NewStatsUseCase(userRepo, codeRepo, statusRepo, log)

	if err := routerUC.LoadStats(ctx); err != nil {
		log.Warn().Err(err).Msg("model performance load failed, starting cold")
	}

	// ---- Workers ----
	go func() { _ = sched.NewExpiryWorker(cfg.Scheduler.CodeExpiryInterval, accessUC, log).Run(ctx) }()
	go func() {
		_ = sched.NewStatsFlushWorker(cfg.Scheduler.StatsFlushInterval, routerUC, locker, log).Run(ctx)
	}()

	// ---- HTTP ----
	auth := api.NewAuthManager(&cfg.Auth)
	srv := api.NewServer(cfg, auth, userUC, accessUC, routerUC, pricingUC, statsUC, rateLimiter, pool, redisClient, log)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	cancel()

	// Flush whatever the router accumulated since the last tick.
	if err := routerUC.FlushStats(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("final stats flush failed")
	}
}
