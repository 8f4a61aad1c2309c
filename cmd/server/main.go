package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"challengeboard/internal/api/handlers"
	"challengeboard/internal/config"
	"challengeboard/internal/jobs"
	"challengeboard/internal/repository"
	"challengeboard/internal/scoring"
	"challengeboard/internal/service"
	"challengeboard/internal/websocket"
	"challengeboard/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// cacheStore is what both cache backends provide beyond the engine's view.
type cacheStore interface {
	scoring.Cache
	websocket.VersionSource
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize PostgreSQL with connection pooling
	db, err := initPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	log.Println("✓ Connected to PostgreSQL")

	postgresRepo := repository.NewPostgresRepository(db)

	// Run migrations
	if err := postgresRepo.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("✓ Database migrations completed")

	// Initialize the leaderboard cache (Redis, or in-process when disabled)
	var cache cacheStore
	if cfg.Redis.Enabled {
		redisClient, err := initRedis(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Println("✓ Connected to Redis")
		cache = repository.NewRedisCache(redisClient)
	} else {
		log.Println("⚠️ Redis disabled, using in-process leaderboard cache")
		cache = repository.NewMemoryCache()
	}

	// Initialize Worker Pool for score write-behind
	workerPool := worker.NewWorkerPool(cfg.Engine.WorkerCount, cfg.Engine.QueueSize, postgresRepo)
	workerPool.Start()

	// Initialize WebSocket Hub
	hub := websocket.NewHub(cache)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	// Initialize the scoring engine
	leaderboardService := service.NewLeaderboardService(postgresRepo, cache, workerPool, cfg.Engine.SummarySize)

	// Initialize the periodic recompute sweep
	sweeper := jobs.NewSweeper(leaderboardService, hub, cfg.Engine.SweepInterval)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start sweeper: %v", err)
	}

	// Initialize handlers
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "Challengeboard Scoring Engine",
		DisableStartupMessage: false,
		ErrorHandler:          customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Actor-Team, X-Actor-Role",
	}))

	// Routes
	api := app.Group("/api/v1")

	// The export route must precede the :teamId route
	api.Get("/boards/:boardId/leaderboard/export", leaderboardHandler.ExportLeaderboard)
	api.Get("/boards/:boardId/leaderboard/:teamId", leaderboardHandler.GetTeamScore)
	api.Get("/boards/:boardId/leaderboard", leaderboardHandler.GetLeaderboard)
	api.Post("/boards/:boardId/teams/:teamId/score", leaderboardHandler.RecomputeTeamScore)
	api.Post("/leaderboard/recompute", leaderboardHandler.Recompute)
	api.Get("/problems/:problemId/attempts", leaderboardHandler.GetProblemAttempts)
	api.Get("/health", leaderboardHandler.HealthCheck)

	// WebSocket route with upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", fiberws.New(func(c *fiberws.Conn) {
		websocket.ServeWS(hub, c)
	}))

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Challengeboard Scoring Engine API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/v1/boards/:boardId/leaderboard",
				"GET /api/v1/boards/:boardId/leaderboard/:teamId",
				"GET /api/v1/boards/:boardId/leaderboard/export",
				"POST /api/v1/boards/:boardId/teams/:teamId/score",
				"POST /api/v1/leaderboard/recompute",
				"GET /api/v1/problems/:problemId/attempts",
				"GET /api/v1/health",
				"WS /ws (WebSocket)",
			},
			"websocket_clients": hub.GetClientCount(),
		})
	})

	// Graceful shutdown with worker pool flushing
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("\n🛑 Shutting down server...")

		// First, stop the sweep so no new recomputes start
		log.Println("⏹️ Stopping sweeper...")
		sweeper.Stop()

		// Second, stop accepting new HTTP requests
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
		}

		// Third, gracefully shutdown worker pool (flush pending writes)
		log.Println("🔄 Flushing worker pool (pending database writes)...")
		if err := workerPool.Shutdown(30 * time.Second); err != nil {
			log.Printf("Worker pool shutdown error: %v", err)
		}

		// Finally, close the stores
		if err := postgresRepo.Close(); err != nil {
			log.Printf("Error closing PostgreSQL: %v", err)
		}
		if err := cache.Close(); err != nil {
			log.Printf("Error closing cache: %v", err)
		}

		log.Println("✓ Server shutdown complete")
	}()

	// Start server
	port := cfg.Server.Port
	log.Printf("🚀 Server starting on port %d...", port)
	if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initPostgres initializes PostgreSQL connection with connection pooling
func initPostgres(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.GetDSN()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Get underlying sql.DB for connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Max connections should cover the write-behind workers plus request traffic
	sqlDB.SetMaxOpenConns(cfg.Engine.WorkerCount + 10)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

// initRedis initializes Redis connection with connection pooling
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.Redis.Username,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     20,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   "Request failed",
		"message": err.Error(),
	})
}
