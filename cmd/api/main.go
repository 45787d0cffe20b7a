package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"captioner/internal/adapter/repo"
	"captioner/internal/bootstrap"
	"captioner/internal/domain"
	"captioner/internal/http/handlers"
	httpapi "captioner/internal/http/httpapi"
	"captioner/internal/infra"
	"captioner/internal/infra/google"
	"captioner/internal/middleware"
)

func main() {
	// Optional .env for local runs.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline, err := bootstrap.NewPipeline(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure caption pipeline")
	}

	var usage domain.UsageRepository = repo.NopUsageRepository{Logger: &logger}
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	if pool != nil {
		defer pool.Close()
		usageRepo := repo.NewUsageRepository(infra.NewSQLRunner(pool, logger))
		if err := usageRepo.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare usage table")
		}
		usage = usageRepo
		logger.Info().Msg("usage audit log enabled")
	}

	app := &handlers.App{
		Logger:   &logger,
		Captions: pipeline.Service,
		Sessions: middleware.NewSessionGuard(middleware.SessionOptions{
			Secret:     cfg.SessionSecret,
			EncryptKey: cfg.SessionEncryptKey,
			Secure:     cfg.SessionSecureCookie,
		}),
		Usage:         usage,
		MaxCaptions:   cfg.MaxCaptions,
		Provider:      cfg.PromptProvider,
		SecureCookies: cfg.SessionSecureCookie,
	}
	if cfg.OAuthEnabled() {
		googleOpts := google.Options{
			ClientID:       cfg.GoogleClientID,
			ClientSecret:   cfg.GoogleClientSecret,
			RedirectURL:    cfg.OAuthRedirectURL,
			AllowedEmails:  cfg.AllowedEmails,
			AllowedDomains: cfg.AllowedDomains,
		}
		app.OAuth = google.OAuthConfig(googleOpts)
		app.Verifier = google.NewVerifier(googleOpts)
	} else {
		logger.Warn().Msg("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set, sign-in disabled")
	}

	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GenerationTimeout+5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
