package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/creatorpulse/creator-backend/internal/api"
	"github.com/creatorpulse/creator-backend/internal/config"
	"github.com/creatorpulse/creator-backend/internal/services/auth"
	"github.com/creatorpulse/creator-backend/internal/services/cache"
	"github.com/creatorpulse/creator-backend/internal/services/circuitbreaker"
	"github.com/creatorpulse/creator-backend/internal/services/credentials"
	"github.com/creatorpulse/creator-backend/internal/services/dashboard"
	"github.com/creatorpulse/creator-backend/internal/services/database"
	"github.com/creatorpulse/creator-backend/internal/services/middleware"
	"github.com/creatorpulse/creator-backend/internal/services/telemetry"
	"github.com/creatorpulse/creator-backend/internal/services/token"
	"github.com/creatorpulse/creator-backend/internal/services/youtube"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

// Server is the composed backend instance: infrastructure, services, routes
// and lifecycle in one place.
type Server struct {
	config *config.Config
	app    *fiber.App
	redis  *redis.Client
	db     *database.DB
	worker *telemetry.Worker
}

// New creates a Server with the given configuration. The cfg parameter is
// required and must not be nil.
func New(cfg *config.Config) *Server {
	if cfg == nil {
		panic("config cannot be nil - use config.LoadFromFile() to create config")
	}
	return &Server{config: cfg}
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogLevel(s.config)

	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}
	listenAddr := ":" + port

	s.app = createFiberApp(s.config)

	var err error
	s.redis, err = createRedisClient(s.config)
	if err != nil {
		return err
	}
	if s.redis != nil {
		defer func() {
			if err := s.redis.Close(); err != nil {
				fiberlog.Errorf("Failed to close Redis client: %v", err)
			}
		}()
	}

	s.db, err = createDatabase(s.config)
	if err != nil {
		return err
	}
	if s.db != nil {
		defer func() {
			if err := s.db.Close(); err != nil {
				fiberlog.Errorf("Failed to close database connection: %v", err)
			}
		}()
	}

	setupMiddleware(s.app, s.config)

	if err := s.setupRoutes(); err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}
	if s.worker != nil {
		defer s.worker.Stop()
	}

	fmt.Printf("CreatorPulse backend starting on %s\n", listenAddr)
	fmt.Printf("   Environment: %s\n", s.config.Server.Environment)
	fmt.Printf("   Go version: %s\n", runtime.Version())
	fmt.Printf("   GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(listenAddr); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		fiberlog.Infof("Received signal: %v. Starting graceful shutdown...", sig)
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		fiberlog.Info("Context cancelled, starting shutdown...")
	}

	fiberlog.Info("Server shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	shutdownErrChan := make(chan error, 1)
	go func() {
		shutdownErrChan <- s.app.ShutdownWithTimeout(30 * time.Second)
	}()

	select {
	case err := <-shutdownErrChan:
		if err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		fiberlog.Info("Server shutdown completed successfully")
	case <-shutdownCtx.Done():
		return fmt.Errorf("shutdown timeout exceeded")
	}

	return nil
}

// setupRoutes wires services to handlers. The telemetry worker created here
// is stopped by Run on shutdown.
func (s *Server) setupRoutes() error {
	cfg := s.config

	store := credentials.NewStore(s.db.DB)
	if err := s.db.Migrate(); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	ledger := telemetry.NewLedger(cfg.Telemetry.RingCapacity)
	s.worker = telemetry.NewWorker(s.db.DB, cfg.Telemetry.WorkerPoolSize, cfg.Telemetry.BufferSize)
	recorder := telemetry.NewRecorder(ledger, s.worker)

	var breaker *circuitbreaker.CircuitBreaker
	if s.redis != nil {
		breaker = circuitbreaker.NewForUpstream(s.redis, "youtube")
	}

	tokens := token.NewManager(store, &cfg.YouTube)
	executor := youtube.NewExecutor(&cfg.YouTube, tokens, recorder, breaker)
	reports := youtube.NewReportService(executor)

	reportCache := cache.NewReportCache(s.redis, cfg.YouTube.CacheTTL())
	dashboardSvc := dashboard.NewService(reports, reportCache)

	// Registered ahead of the auth middleware so the service ping stays
	// reachable without a token.
	s.app.Get("/", welcomeHandler())

	verifier, err := buildVerifier(cfg)
	if err != nil {
		return err
	}
	authMW := middleware.NewAuthMiddleware(verifier, nil)
	s.app.Use(authMW.RequireAuth())

	healthHandler := api.NewHealthHandler(s.db.DB, s.redis)
	s.app.Get("/health", healthHandler.HealthCheck)

	dashboardHandler := api.NewDashboardHandler(dashboardSvc)
	dashboardHandler.RegisterRoutes(s.app, "/v1/dashboard")

	accountsHandler := api.NewAccountsHandler(store)
	accountsHandler.RegisterRoutes(s.app, "/v1/accounts")

	telemetryHandler := api.NewTelemetryHandler(ledger)
	telemetryHandler.RegisterRoutes(s.app, "/admin/telemetry")

	if cfg.Webhooks != nil && cfg.Webhooks.SigningSecret != "" {
		webhookHandler := api.NewAccountWebhookHandler(cfg.Webhooks.SigningSecret, store, reportCache)
		s.app.Post("/webhooks/account", webhookHandler.HandleWebhook)
	}

	return nil
}

func buildVerifier(cfg *config.Config) (auth.Verifier, error) {
	if cfg.Auth == nil {
		return nil, fmt.Errorf("auth configuration is required")
	}

	switch cfg.Auth.Provider {
	case "clerk":
		if cfg.Auth.ClerkConfig == nil || cfg.Auth.ClerkConfig.SecretKey == "" {
			return nil, fmt.Errorf("clerk auth requires a secret key")
		}
		return auth.NewClerkVerifier(cfg.Auth.ClerkConfig.SecretKey), nil
	case "database":
		if cfg.Auth.DatabaseConfig == nil || cfg.Auth.DatabaseConfig.JWTSecret == "" {
			return nil, fmt.Errorf("database auth requires a JWT secret")
		}
		return auth.NewJWTVerifier(cfg.Auth.DatabaseConfig.JWTSecret), nil
	default:
		return nil, fmt.Errorf("unsupported auth provider: %s", cfg.Auth.Provider)
	}
}

func createFiberApp(cfg *config.Config) *fiber.App {
	isProd := cfg.IsProduction()

	return fiber.New(fiber.Config{
		AppName:              "CreatorPulse v1.0",
		EnablePrintRoutes:    !isProd,
		ReadTimeout:          2 * time.Minute,
		WriteTimeout:         2 * time.Minute,
		IdleTimeout:          5 * time.Minute,
		ReadBufferSize:       8192,
		WriteBufferSize:      8192,
		CompressedFileSuffix: ".gz",
		Prefork:              false,
		CaseSensitive:        true,
		StrictRouting:        false,
		Network:              "tcp",
		ServerHeader:         "CreatorPulse",
	})
}

func setupMiddleware(app *fiber.App, cfg *config.Config) {
	isProd := cfg.IsProduction()

	app.Use(recover.New(recover.Config{
		EnableStackTrace: !isProd,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:               1000,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fmt.Errorf("1000 requests per minute")
		},
	}))

	app.Use(func(c *fiber.Ctx) error {
		const (
			defaultTimeout = 30 * time.Second
			maxTimeout     = 2 * time.Minute
		)

		timeout := defaultTimeout
		if customTimeout := c.Get("X-Request-Timeout"); customTimeout != "" {
			if d, err := time.ParseDuration(customTimeout); err == nil && d > 0 {
				timeout = min(d, maxTimeout)
			}
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)

		return c.Next()
	})

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	if isProd {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency} ${bytesSent}b\n",
			Output: os.Stdout,
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
			Output: os.Stdout,
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, User-Agent",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
	}))

	if !isProd {
		app.Use(pprof.New())
	}
}

func setupLogLevel(cfg *config.Config) {
	logLevel := cfg.GetNormalizedLogLevel()

	switch logLevel {
	case "trace":
		fiberlog.SetLevel(fiberlog.LevelTrace)
	case "debug":
		fiberlog.SetLevel(fiberlog.LevelDebug)
	case "info":
		fiberlog.SetLevel(fiberlog.LevelInfo)
	case "warn", "warning":
		fiberlog.SetLevel(fiberlog.LevelWarn)
	case "error":
		fiberlog.SetLevel(fiberlog.LevelError)
	case "fatal":
		fiberlog.SetLevel(fiberlog.LevelFatal)
	case "panic":
		fiberlog.SetLevel(fiberlog.LevelPanic)
	default:
		fiberlog.SetLevel(fiberlog.LevelInfo)
		fiberlog.Warnf("Unknown log level '%s', defaulting to 'info'", logLevel)
	}

	fiberlog.Infof("Log level set to: %s", logLevel)
}

func createRedisClient(cfg *config.Config) (*redis.Client, error) {
	if cfg.Cache == nil || !cfg.Cache.Enabled || cfg.Cache.RedisURL == "" {
		fiberlog.Info("Redis not configured - circuit breaker and report cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.Cache.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 50
	opt.MinIdleConns = 10
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute
	opt.ConnMaxLifetime = 30 * time.Minute
	opt.DialTimeout = 10 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.MaxRetries = 3
	opt.MinRetryBackoff = 8 * time.Millisecond
	opt.MaxRetryBackoff = 512 * time.Millisecond

	client := redis.NewClient(opt)

	return testRedisConnectionWithRetry(client)
}

func testRedisConnectionWithRetry(client *redis.Client) (*redis.Client, error) {
	const maxAttempts = 3
	const baseDelay = 1 * time.Second

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()

		if err == nil {
			fiberlog.Infof("Redis connection established successfully (attempt %d/%d)", attempt, maxAttempts)
			return client, nil
		}

		fiberlog.Warnf("Redis connection failed (attempt %d/%d): %v", attempt, maxAttempts, err)

		if attempt < maxAttempts {
			delay := time.Duration(attempt) * baseDelay
			fiberlog.Infof("Retrying Redis connection in %v...", delay)
			time.Sleep(delay)
		}
	}

	if err := client.Close(); err != nil {
		fiberlog.Errorf("Failed to close Redis client after connection failures: %v", err)
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d attempts", maxAttempts)
}

func createDatabase(cfg *config.Config) (*database.DB, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	db, err := database.New(*cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database initialization failed: %w", err)
	}

	fiberlog.Infof("Database connected (%s)", db.DriverName())
	return db, nil
}

func welcomeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "creatorpulse-backend",
			"status":  "ok",
		})
	}
}
