package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/lemur-ai/meeting-brain/pkg/validator"

	"github.com/lemur-ai/meeting-brain/internal/adapter/handler"
	"github.com/lemur-ai/meeting-brain/internal/adapter/repository"
	"github.com/lemur-ai/meeting-brain/internal/infrastructure/cache"
	"github.com/lemur-ai/meeting-brain/internal/infrastructure/database"
	"github.com/lemur-ai/meeting-brain/internal/infrastructure/external/recall"
	"github.com/lemur-ai/meeting-brain/internal/infrastructure/storage"
	"github.com/lemur-ai/meeting-brain/internal/usecase/content"
	"github.com/lemur-ai/meeting-brain/internal/usecase/knowledge"
	"github.com/lemur-ai/meeting-brain/internal/usecase/meeting"
	pkgai "github.com/lemur-ai/meeting-brain/pkg/ai"
	"github.com/lemur-ai/meeting-brain/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run migrations only when explicitly enabled in config.
	// Production deployments should manage schema via the migrate script.
	if cfg.Database.AutoMigrate {
		log.Println("🔄 Applying pending database migrations...")
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; run scripts/migrate.go in CI/CD/production")
	}

	// Initialize session registry
	registry := cache.NewMemoryRegistry()
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		registry = cache.NewRedisRegistry(redisClient)
		log.Println("✅ Session registry backed by Redis")
	} else {
		log.Println("⚠️  Session registry running in-memory (sessions lost on restart)")
	}

	// Initialize object storage for transcript archival
	var archiver meeting.TranscriptArchiver
	if cfg.Storage.Enabled {
		log.Println("🗄️  Connecting to object storage...")
		minioClient, err := storage.NewMinIOClient(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to connect to object storage: %v", err)
		}
		archiver = minioClient
		log.Printf("✅ Transcript archival enabled on bucket %s", cfg.Storage.BucketName)
	} else {
		log.Println("🗄️  Transcript archival disabled")
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	meetingRepo := repository.NewMeetingRepository(db)
	outputRepo := repository.NewOutputRepository(db, logger)
	knowledgeRepo := repository.NewKnowledgeRepository(db)
	clientRepo := repository.NewClientRepository(db)

	// Initialize external clients
	log.Println("🤖 Initializing external clients...")
	recallClient := recall.NewClient(&cfg.Recall)
	openaiClient := pkgai.NewOpenAIClient(&cfg.OpenAI)

	// Initialize services
	log.Println("✨ Initializing services...")
	knowledgeService := knowledge.NewService(knowledgeRepo, openaiClient, &cfg.Knowledge, logger)
	contentService := content.NewService(knowledgeService, openaiClient, &cfg.Knowledge, logger)
	meetingService := meeting.NewService(
		registry,
		meetingRepo,
		outputRepo,
		recallClient,
		knowledgeService,
		contentService,
		archiver,
		cfg,
		logger,
	)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	meetingHandler := handler.NewMeetingHandler(meetingService, logger)
	knowledgeHandler := handler.NewKnowledgeHandler(knowledgeService, logger)
	contentHandler := handler.NewContentHandler(contentService, logger)
	clientHandler := handler.NewClientHandler(clientRepo, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, meetingHandler, knowledgeHandler, contentHandler, clientHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	// Stop accepting new monitors and wait for in-flight sessions to park
	meetingService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
