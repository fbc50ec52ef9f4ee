package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ValayAI/pm-pathfinder/internal"
	"github.com/ValayAI/pm-pathfinder/internal/billing"
	"github.com/ValayAI/pm-pathfinder/internal/chat"
	"github.com/ValayAI/pm-pathfinder/internal/domain"
	"github.com/ValayAI/pm-pathfinder/internal/handler"
	"github.com/ValayAI/pm-pathfinder/internal/metrics"
	"github.com/ValayAI/pm-pathfinder/internal/middleware"
	"github.com/ValayAI/pm-pathfinder/internal/repository"
	"github.com/ValayAI/pm-pathfinder/internal/responder"
	"github.com/ValayAI/pm-pathfinder/internal/responder/mock"
	"github.com/ValayAI/pm-pathfinder/internal/service"
	"github.com/ValayAI/pm-pathfinder/internal/store"
	"github.com/ValayAI/pm-pathfinder/internal/worker"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Initialize state store
	stateStore, err := newStateStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("state store initialization failed: %w", err)
	}
	logger.Info("State store ready", "provider", cfg.StateStoreProvider)

	// Initialize responder
	chatResponder := mock.New(responder.Config{Delay: cfg.ResponderDelay}, logger)

	// Initialize chat session manager.
	// The manager is declared before the user service so the usage-reset
	// hook can evict live sessions; it is assigned below, before serving.
	var chatManager *chat.Manager

	// usageReset clears a user's message counter when their effective tier
	// changes. Evicting any live session forces a rebuild from the cleared
	// state on the next message.
	usageReset := func(ctx context.Context, userID uuid.UUID) error {
		key := "user:" + userID.String()
		tracker := chat.NewUsageTracker(stateStore, "chat/"+key+"/usage", logger)
		if err := tracker.Reset(ctx); err != nil {
			return err
		}
		if chatManager != nil {
			chatManager.Evict(key)
		}
		return nil
	}

	// Initialize services
	userService := service.NewUserService(repo, usageReset, logger)

	chatCfg := chat.Config{
		CacheSize:        cfg.ChatCacheSize,
		CacheTTL:         cfg.ChatCacheTTL,
		CachedReplyDelay: cfg.ChatCachedDelay,
		PaywallDelay:     cfg.ChatPaywallDelay,
		RefreshInterval:  cfg.PlanRefreshEvery,
	}
	chatManager = chat.NewManager(func(key string) *chat.Session {
		return chat.NewSession(key, stateStore, planSourceForKey(key, userService), chatResponder, nil, logger, chatCfg)
	})

	// Initialize billing (optional; billing endpoints degrade gracefully)
	var billingService billing.Service
	if cfg.StripeSecretKey != "" {
		billingService = billing.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, billing.PriceConfig{
			StarterMonthlyPriceID: cfg.StripeStarterMonthlyPriceID,
			StarterYearlyPriceID:  cfg.StripeStarterYearlyPriceID,
			PopularMonthlyPriceID: cfg.StripePopularMonthlyPriceID,
			PopularYearlyPriceID:  cfg.StripePopularYearlyPriceID,
			ProMonthlyPriceID:     cfg.StripeProMonthlyPriceID,
			ProYearlyPriceID:      cfg.StripeProYearlyPriceID,
		})
		logger.Info("Stripe billing enabled")
	} else {
		logger.Warn("Stripe billing not configured, billing endpoints disabled")
	}

	// Initialize middleware
	isSecure := cfg.Env != "development"
	authMw := middleware.NewAuthMiddleware(userService, logger, isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	authLimiter := middleware.NewAuthRateLimiter(logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService, logger, isSecure)
	authHandler.SetLoginRateHooks(authLimiter.RecordFailedLogin, authLimiter.ResetLogin)
	chatHandler := handler.NewChatHandler(chatManager, logger)
	billingHandler := handler.NewBillingHandler(billingService, userService, cfg.BaseURL, logger)
	webhookHandler := handler.NewWebhookHandler(billingService, userService, logger)
	toolsHandler := handler.NewToolsHandler(logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics (basic auth when configured)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Auth (public, rate limited)
	mux.Handle("POST /api/auth/register", authLimiter.LimitRegister(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", authLimiter.LimitLogin(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/logout", authMw.WithUser(http.HandlerFunc(authHandler.Logout)))

	// Middleware stacks
	withUser := middleware.Stack(authMw.WithUser)
	requireUser := middleware.Stack(authMw.WithUser, authMw.RequireUser)
	requireSubscriber := middleware.Stack(authMw.WithUser, authMw.RequireUser, authMw.RequireActiveSubscription)

	// Current user
	mux.Handle("GET /api/me", requireUser(http.HandlerFunc(authHandler.Me)))

	// Chat (works for both authenticated users and anonymous visitors)
	mux.Handle("POST /api/chat/messages", withUser(http.HandlerFunc(chatHandler.SendMessage)))
	mux.Handle("GET /api/chat/messages", withUser(http.HandlerFunc(chatHandler.ListMessages)))
	mux.Handle("GET /api/chat/usage", withUser(http.HandlerFunc(chatHandler.Usage)))

	// Billing
	mux.Handle("GET /api/billing/subscription", requireUser(http.HandlerFunc(billingHandler.GetSubscription)))
	mux.Handle("POST /api/billing/checkout", requireUser(http.HandlerFunc(billingHandler.CreateCheckout)))
	mux.Handle("POST /api/billing/portal", requireUser(http.HandlerFunc(billingHandler.OpenPortal)))
	mux.Handle("POST /api/billing/cancel", requireUser(http.HandlerFunc(billingHandler.CancelSubscription)))
	mux.Handle("POST /api/billing/reactivate", requireUser(http.HandlerFunc(billingHandler.ReactivateSubscription)))

	// Stripe webhook (public, signature-verified)
	mux.HandleFunc("POST /webhooks/stripe", webhookHandler.HandleStripeWebhook)

	// PM toolkit (subscribers only)
	mux.Handle("POST /api/tools/rice", requireSubscriber(http.HandlerFunc(toolsHandler.ScoreRICE)))
	mux.Handle("POST /api/tools/roadmap", requireSubscriber(http.HandlerFunc(toolsHandler.BuildRoadmap)))
	mux.Handle("POST /api/tools/plan", requireSubscriber(http.HandlerFunc(toolsHandler.BuildPlan)))

	// Outer middleware chain
	root := metrics.Middleware(securityMw.Handler(loggingMw.Handler(mux)))

	// ==========================================================================
	// Start maintenance worker
	// ==========================================================================

	maintenance, err := worker.New(cfg.MaintenanceEvery, logger)
	if err != nil {
		return fmt.Errorf("worker initialization failed: %w", err)
	}
	maintenance.Register(worker.NewExpiredSessionsTask(userService))
	maintenance.Register(worker.NewIdleChatSessionsTask(chatManager, cfg.ChatIdleTimeout))
	maintenance.Start(ctx)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	maintenance.Stop()

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// newStateStore builds the configured state store implementation.
func newStateStore(cfg *internal.Config, logger *slog.Logger) (store.StateStore, error) {
	switch cfg.StateStoreProvider {
	case "r2":
		return store.NewR2Store(store.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
		}, logger)
	default:
		return store.NewLocalStore(cfg.LocalStatePath, logger)
	}
}

// planSourceForKey maps a chat session key to its plan source. User-keyed
// sessions read the live subscription tier; anonymous sessions are free tier.
func planSourceForKey(key string, users service.UserService) chat.PlanSource {
	const userPrefix = "user:"
	if !strings.HasPrefix(key, userPrefix) {
		return chat.StaticPlanSource(domain.PlanTierFree)
	}

	userID, err := uuid.Parse(strings.TrimPrefix(key, userPrefix))
	if err != nil {
		return chat.StaticPlanSource(domain.PlanTierFree)
	}

	return chat.PlanSourceFunc(func(ctx context.Context) (domain.PlanTier, error) {
		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return "", err
		}
		return user.EffectiveTier(), nil
	})
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
