package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"localserv/internal/adapter/repo"
	"localserv/internal/http/handlers"
	httpapi "localserv/internal/http/httpapi"
	"localserv/internal/identity"
	"localserv/internal/infra"
	"localserv/internal/infra/credentials"
	"localserv/internal/infra/geoip"
	"localserv/internal/policy"
	"localserv/internal/providers/textenhance"
	"localserv/internal/session"
	"localserv/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := infra.Migrate(ctx, cfg.DatabaseURL, infra.Component(logger, "migrate")); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()
	runner := infra.NewSQLRunner(dbpool, infra.Component(logger, "sql"))

	accounts := repo.NewAccountRepository(runner)
	profiles := repo.NewProfileRepository(runner)
	listings := repo.NewListingRepository(runner)
	subscriptions := repo.NewSubscriptionRepository(runner)

	storagePath := cfg.StoragePath
	if abs, err := filepath.Abs(storagePath); err == nil {
		storagePath = abs
	}
	files, err := storage.NewFileStore(storagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	provider := identity.NewProvider(accounts, profiles, cfg.JWTSecret, cfg.AccessTokenTTL, infra.Component(logger, "identity"))
	registry := session.NewRegistry(func(clientID string) session.IdentityClient {
		return provider.ForClient(clientID)
	}, profiles, cfg.SessionBootstrapWait, cfg.SessionIdleTTL, infra.Component(logger, "session"))
	registry.OnSweep(func() {
		if n := provider.PruneExpired(); n > 0 {
			logger.Debug().Int("sessions", n).Msg("expired identity sessions pruned")
		}
	})
	defer registry.Close()
	go registry.Run(ctx)

	app := &handlers.App{
		Logger:        infra.Component(logger, "http"),
		DB:            dbpool,
		Auth:          provider,
		Profiles:      profiles,
		Listings:      listings,
		Subscriptions: subscriptions,
		Quota:         policy.NewQuotaChecker(subscriptions, listings, infra.Component(logger, "quota")),
		Enhancer:      newEnhancer(ctx, cfg, credentials.NewStore(runner), logger),
		Uploads:       storage.NewUploader(files, cfg.StorageBaseURL, cfg.MaxUploadBytes),
		SessionWait:   cfg.SessionBootstrapWait,
	}

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip database unavailable, city suggestions disabled")
	} else if geo != nil {
		defer geo.Close()
		app.Geo = geo
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:             infra.Component(logger, "http"),
		Sessions:           registry,
		SessionWait:        cfg.SessionBootstrapWait,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMin:    cfg.RateLimitPerMin,
		DefaultLocale:      cfg.DefaultLocale,
		SecureCookies:      cfg.AppEnv == "production",
		StaticDir:          files.BasePath(),
	})

	server := infra.NewHTTPServer(cfg, router)
	logger.Info().Msgf("API listening on :%s", cfg.Port)
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("server stopped")
}

// newEnhancer prefers Gemini and falls back to returning drafts untouched when no
// key is configured.
func newEnhancer(ctx context.Context, cfg *infra.Config, creds *credentials.Store, logger infra.Logger) textenhance.Enhancer {
	log := infra.Component(logger, "enhance")
	key := creds.ResolveGeminiAPIKey(ctx, cfg.GeminiAPIKey)
	if key == "" {
		log.Warn().Msg("gemini api key missing, text enhancement disabled")
		return textenhance.NewPassthroughEnhancer()
	}
	gen, err := textenhance.NewGenAIGenerator(ctx, key, cfg.GeminiModel)
	if err != nil {
		log.Warn().Err(err).Msg("gemini client unavailable, text enhancement disabled")
		return textenhance.NewPassthroughEnhancer()
	}
	enh, err := textenhance.NewGeminiEnhancer(textenhance.GeminiOptions{
		Generator: gen,
		OnFallback: func(reason string, err error) {
			log.Warn().Err(err).Str("reason", reason).Msg("gemini enhance fell back to draft")
		},
	})
	if err != nil {
		log.Warn().Err(err).Msg("gemini enhancer unavailable")
		return textenhance.NewPassthroughEnhancer()
	}
	return enh
}
