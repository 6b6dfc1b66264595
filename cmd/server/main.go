package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/ContentWarnings/Backend/internal/auth"
	"github.com/ContentWarnings/Backend/internal/config"
	"github.com/ContentWarnings/Backend/internal/db"
	"github.com/ContentWarnings/Backend/internal/event"
	"github.com/ContentWarnings/Backend/internal/handler"
	"github.com/ContentWarnings/Backend/internal/metrics"
	"github.com/ContentWarnings/Backend/internal/middleware"
	"github.com/ContentWarnings/Backend/internal/repository"
	"github.com/ContentWarnings/Backend/internal/router"
	"github.com/ContentWarnings/Backend/internal/service"
	"github.com/ContentWarnings/Backend/pkg/hash"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "content-warnings-api")
	log := middleware.Logger

	if cfg.Environment == "production" && cfg.JWTSecret == "dev-secret-change-me" {
		log.Fatal().Msg("JWT_SECRET must be set in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	metrics.Init(pool)

	cache := service.NewCacheService(cfg.RedisURL, log)
	defer cache.Close()

	events, err := event.NewPublisher(cfg.AMQPURL, log)
	if err != nil {
		log.Warn().Err(err).Msg("amqp: connection failed, events disabled")
		events = event.Nop{}
	}
	defer events.Close()

	// Repositories
	warningRepo := repository.NewWarningRepo(pool)
	movieRepo := repository.NewMovieIndexRepo(pool)
	contributorRepo := repository.NewContributorRepo(pool)
	ledgerRepo := repository.NewLedgerRepo(pool)

	// Services
	trust := service.NewTrustService()
	cascade := service.NewCascadeService(warningRepo, movieRepo, contributorRepo, cache, events, log)
	ledger := service.NewLedgerService(warningRepo, contributorRepo, ledgerRepo, trust, events, log)
	votes := service.NewVoteService(warningRepo, trust, cascade, cache, log)
	warnings := service.NewWarningService(warningRepo, movieRepo, ledger, cascade,
		service.NewProfanityScreen(cfg.ExtraProfanity), cache, log)
	contributors := service.NewContributorService(warningRepo, ledger, log)

	var broker handler.BrokerHealth
	if p, ok := events.(*event.AMQPPublisher); ok {
		broker = p
	}

	h := &router.Handlers{
		Health:         handler.NewHealthHandler(pool, cache.Client(), broker, version),
		Warning:        handler.NewWarningHandler(warnings),
		Vote:           handler.NewVoteHandler(votes),
		Classification: handler.NewClassificationHandler(),
		Contributor:    handler.NewContributorHandler(contributors),
	}

	g := &router.Guards{
		Tokens:       auth.NewTokenService(cfg.JWTSecret, cfg.JWTUserLifetime),
		Hasher:       hash.NewIdentityHasher(cfg.VoterHashSalt, cfg.VoterHashIterations),
		ReadLimiter:  middleware.NewReadRateLimiter(),
		VoteLimiter:  middleware.NewVoteRateLimiter(),
		WriteLimiter: middleware.NewWriteRateLimiter(),
	}
	defer g.ReadLimiter.Stop()
	defer g.VoteLimiter.Stop()
	defer g.WriteLimiter.Stop()

	appCfg := fiber.Config{
		AppName:      "Content Warnings API",
		ServerHeader: "ContentWarnings",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	middleware.TrustProxies(&appCfg, cfg.TrustedProxies)
	if len(cfg.TrustedProxies) == 0 {
		log.Warn().Msg("TRUSTED_PROXIES not set, CF-Connecting-IP is ignored and voters are keyed by connection address")
	}
	app := fiber.New(appCfg)
	router.Setup(app, h, g, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("content warnings backend starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}
