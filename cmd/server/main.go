package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/zenithflow/zenithflow/internal/config"
	"github.com/zenithflow/zenithflow/internal/database"
	"github.com/zenithflow/zenithflow/internal/handlers"
	"github.com/zenithflow/zenithflow/internal/hub"
	"github.com/zenithflow/zenithflow/internal/logger"
	"github.com/zenithflow/zenithflow/internal/middleware"
	"github.com/zenithflow/zenithflow/internal/queue"
	"github.com/zenithflow/zenithflow/internal/services/google"
	"github.com/zenithflow/zenithflow/internal/services/oidc"
	"github.com/zenithflow/zenithflow/internal/session"
	"github.com/zenithflow/zenithflow/internal/telemetry"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for verbose logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !cfg.GoogleConfigured() {
		log.Fatal("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required: sign-in runs through Google")
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	newLogger := logger.NewProductionLogger
	if debugMode {
		newLogger = logger.NewDevelopmentLogger
	}
	zapLogger, err := newLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry tracing, when enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "zenithflow-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Postgres
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	if err := db.EnsureSchema(context.Background()); err != nil {
		zapLogger.Fatal("failed_to_ensure_schema", zap.Error(err))
	}
	zapLogger.Info("connected_to_database")

	// Redis sessions (also backs the rate limiter store)
	sessions, err := session.NewManager(cfg.RedisURL, cfg.SessionTTL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	// RabbitMQ with exponential backoff; brokers come up slower than we do
	const maxRetries = 10
	const initialDelay = 2 * time.Second
	var jobQueue queue.JobQueue
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err = queue.NewRabbitMQQueue(cfg.RabbitMQURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			defer func() {
				if err := jobQueue.Close(); err != nil {
					zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
				}
			}()
			break
		}

		lastErr = err
		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
			zap.Int("max_retries", maxRetries),
			zap.Error(lastErr),
		)
	}

	// Repositories
	userRepo := database.NewUserRepository(db)
	stateRepo := database.NewAppStateRepository(db)
	coachResultRepo := database.NewCoachResultRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)

	// Google OAuth and ID token verification
	oauth := google.NewOAuth(cfg.GoogleClientID, cfg.GoogleSecret, cfg.GoogleRedirect)
	verifier := oidc.NewVerifier(oidc.NewJWKSManager(), cfg.GoogleClientID)

	// Per-user workspaces
	workspaces := hub.New(stateRepo, coachResultRepo, oauth, zapLogger, cfg.SheetSaveDelay)

	// Handlers
	authHandler := handlers.NewAuthHandler(oauth, verifier, userRepo, sessions, workspaces, zapLogger)
	stateHandler := handlers.NewStateHandler(workspaces)
	taskHandler := handlers.NewTaskHandler(workspaces)
	eventHandler := handlers.NewEventHandler(workspaces)
	transactionHandler := handlers.NewTransactionHandler(workspaces)
	plannerHandler := handlers.NewPlannerHandler(workspaces)
	knowledgeHandler := handlers.NewKnowledgeHandler(workspaces)
	timelineHandler := handlers.NewTimelineHandler(workspaces)
	coachHandler := handlers.NewCoachHandler(workspaces, jobQueue, stateRepo, zapLogger)
	syncHandler := handlers.NewSyncHandler(workspaces, zapLogger)
	healthChecker := handlers.NewHealthChecker(db, sessions, handlers.PingerFunc(jobQueue.HealthCheck))

	r := mux.NewRouter()

	zapLogger.Info("setting_up_middleware")

	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware("zenithflow-api"))
		zapLogger.Info("otel_middleware_enabled")
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))

	// CORS from the database with hot reload, falling back to FRONTEND_URL
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, 1*time.Minute)
	r.Use(corsReloader.Middleware())

	// Rate limiting is applied per route group, not globally
	rateLimitReloader := middleware.NewRateLimitReloader(sessions.Client(), ratelimitConfigRepo, "5-S", zapLogger, 1*time.Minute)
	if rateLimitReloader == nil {
		zapLogger.Fatal("failed_to_create_rate_limit_reloader")
	}
	rateLimitMW := rateLimitReloader.Middleware()

	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	openAPIHandler := handlers.NewOpenAPIHandler(filepath.Join("api", "openapi.yaml"))
	openAPIHandler.RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	// Public auth routes, rate limited
	authRouter := apiRouter.PathPrefix("/auth").Subrouter()
	publicAuthRouter := authRouter.PathPrefix("").Subrouter()
	publicAuthRouter.Use(rateLimitMW)
	authHandler.RegisterRoutes(publicAuthRouter)

	// Protected auth routes
	protectedAuthRouter := authRouter.PathPrefix("").Subrouter()
	protectedAuthRouter.Use(middleware.Auth(sessions, userRepo))
	protectedAuthRouter.Use(rateLimitMW)
	authHandler.RegisterProtectedRoutes(protectedAuthRouter)

	// Everything below requires a session
	protect := func(prefix string) *mux.Router {
		sub := apiRouter.PathPrefix(prefix).Subrouter()
		sub.Use(middleware.Auth(sessions, userRepo))
		sub.Use(rateLimitMW)
		return sub
	}

	stateHandler.RegisterRoutes(protect("/state"))
	// Shorthand the client binds to its undo keystroke
	protect("/undo").HandleFunc("", stateHandler.Undo).Methods("POST")
	taskHandler.RegisterRoutes(protect("/tasks"))
	eventHandler.RegisterRoutes(protect("/events"))
	transactionHandler.RegisterRoutes(protect("/transactions"))
	plannerHandler.RegisterRoutes(protect("/planner"))
	knowledgeHandler.RegisterRoutes(protect("/knowledge"))
	timelineHandler.RegisterRoutes(protect("/timeline"))
	coachHandler.RegisterRoutes(protect("/coach"))
	syncHandler.RegisterRoutes(protect("/sync"))

	// Catch-all OPTIONS handler so preflights succeed on every route
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Config hot-reload loops
	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	go corsReloader.Start(reloadCtx)
	go rateLimitReloader.Start(reloadCtx)

	// DLQ garbage collection when the queue supports it
	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, 1*time.Hour, 24*time.Hour, zapLogger)
		go func() {
			if err := dlqGC.Start(reloadCtx); err != nil && err != context.Canceled {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", 1*time.Hour),
			zap.Duration("retention", 24*time.Hour),
		)
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	// Flush debounced Postgres and spreadsheet writes before exiting.
	workspaces.Shutdown()

	zapLogger.Info("server_exited")
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
