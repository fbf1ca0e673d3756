package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"formzen/internal/auth"
	"formzen/internal/cache"
	"formzen/internal/config"
	"formzen/internal/domain/repositories"
	"formzen/internal/handler"
	"formzen/internal/middleware"
	"formzen/internal/plans"
	"formzen/internal/repository/memory"
	"formzen/internal/repository/postgres"
	"formzen/internal/service/access"
	"formzen/internal/service/billing"
	"formzen/internal/service/forms"
	"formzen/internal/service/identity"
	"formzen/internal/service/llm"
	"formzen/internal/upload"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// repositorySet groups the storage backend chosen at startup
type repositorySet struct {
	users       repositories.UserRepository
	forms       repositories.FormRepository
	submissions repositories.SubmissionRepository
	tx          repositories.TransactionManager
	db          handler.Pinger
	close       func()
}

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"generation_provider", cfg.GenerationProvider,
	)

	ctx := context.Background()

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to set up storage: %v", err)
	}
	defer repos.close()

	// Named sessions are optional in dev; bearer tokens are refused without a verifier
	var jwtVerifier auth.JWTVerifier
	if cfg.AuthJWKSURL != "" {
		jwtVerifier, err = auth.NewJWTVerifier(cfg.AuthJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
	} else {
		logger.Warn("AUTH_JWKS_URL not set, named sign-in disabled")
	}

	sessionSecret := []byte(cfg.SessionSecret)
	if len(sessionSecret) == 0 {
		if cfg.Environment == "prod" {
			log.Fatalf("SESSION_SECRET is required in production")
		}
		sessionSecret, err = auth.RandomSecret()
		if err != nil {
			log.Fatalf("Failed to generate session secret: %v", err)
		}
		logger.Warn("SESSION_SECRET not set, anonymous sessions will not survive a restart")
	}
	sessionTTL := time.Duration(config.AnonymousSessionDays) * 24 * time.Hour
	signer, err := auth.NewAnonymousSigner(sessionSecret, sessionTTL)
	if err != nil {
		log.Fatalf("Failed to create session signer: %v", err)
	}

	planRegistry, err := plans.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize plan registry: %v", err)
	}
	logger.Info("plan registry initialized", "free_form_limit", planRegistry.FreeFormLimit())

	formCache := cache.WithMetrics(cache.New(ctx, cfg.RedisEnabled, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
		Prefix:   "formzen:" + cfg.TablePrefix,
	}, logger))

	completer, err := llm.NewProviderFactory(cfg, logger).NewClient(ctx)
	if err != nil {
		log.Fatalf("Failed to set up generation client: %v", err)
	}

	uploader := upload.NewCloudinaryClient(upload.CloudinaryConfig{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    "formzen",
	}, logger)

	var webhookVerifier *billing.Verifier
	if cfg.BillingWebhookSecret != "" {
		webhookVerifier, err = billing.NewVerifier(cfg.BillingWebhookSecret)
		if err != nil {
			log.Fatalf("Failed to create webhook verifier: %v", err)
		}
	} else {
		logger.Warn("BILLING_WEBHOOK_SECRET not set, billing webhooks will be rejected")
	}

	// Services
	gate := access.NewGate(repos.users, repos.forms, planRegistry, signer, logger)
	formService := forms.NewFormService(repos.forms, repos.submissions, formCache, logger)
	generationService := forms.NewGenerationService(gate, completer, formService, logger)
	submissionService := forms.NewSubmissionService(repos.forms, repos.submissions, repos.tx, uploader, formCache, logger)
	identityService := identity.NewIdentityService(repos.users, repos.forms, repos.tx, formCache, logger)
	billingService := billing.NewBillingService(repos.users, planRegistry, webhookVerifier, logger)

	secureCookies := cfg.Environment == "prod"

	// Handlers
	formHandler := handler.NewFormHandler(formService, generationService, gate, cfg.PublicBaseURL, sessionTTL, secureCookies, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	userHandler := handler.NewUserHandler(gate, identityService, sessionTTL, secureCookies, logger)
	billingHandler := handler.NewBillingHandler(billingService, logger)
	plansHandler := handler.NewPlansHandler(planRegistry)
	healthHandler := handler.NewHealthHandler(repos.db, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	route := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.Instrument(pattern, h))
	}

	route("GET /health", healthHandler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	route("GET /api/plans", plansHandler.ListPlans)

	// Identity routes
	route("POST /api/auth/anonymous", userHandler.EnsureAnonymous)
	route("POST /api/auth/link", userHandler.Link)
	route("GET /api/users/me", userHandler.Me)
	route("PATCH /api/users/me", userHandler.UpdateMe)

	// Form routes
	route("POST /api/forms/generate", formHandler.Generate)
	route("GET /api/forms", formHandler.ListForms)
	route("GET /api/dashboard", formHandler.Dashboard)
	route("GET /api/forms/{id}", formHandler.GetForm)
	route("POST /api/forms/{id}/publish", formHandler.PublishForm)
	route("GET /api/forms/{id}/public", formHandler.GetPublicForm)
	route("GET /api/forms/{id}/submissions", formHandler.ListSubmissions)
	route("POST /api/forms/{id}/submissions", submissionHandler.Submit)
	route("GET /api/share/{token}", formHandler.GetSharedForm)

	// Billing provider callbacks
	route("POST /api/webhooks/billing", billingHandler.Webhook)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Logging → Recovery → Identity → Routes
	h = middleware.Identity(jwtVerifier, signer, gate, secureCookies, logger)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - Must be before identity to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // generation can take a while
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// openRepositories connects to Postgres when DATABASE_URL is set and falls
// back to the in-memory store otherwise (dev only).
func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositorySet, error) {
	if cfg.DatabaseURL == "" {
		if cfg.Environment == "prod" {
			return nil, errors.New("DATABASE_URL is required in production")
		}
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		store := memory.NewStore()
		return &repositorySet{
			users:       memory.NewUserRepository(store),
			forms:       memory.NewFormRepository(store),
			submissions: memory.NewSubmissionRepository(store),
			tx:          memory.NewTransactionManager(store),
			close:       func() {},
		}, nil
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 2,
	)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}

	if err := postgres.Migrate(ctx, repoConfig); err != nil {
		pool.Close()
		return nil, err
	}

	return &repositorySet{
		users:       postgres.NewUserRepository(repoConfig),
		forms:       postgres.NewFormRepository(repoConfig),
		submissions: postgres.NewSubmissionRepository(repoConfig),
		tx:          postgres.NewTransactionManager(pool, logger),
		db:          pool,
		close:       pool.Close,
	}, nil
}
