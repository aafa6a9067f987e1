package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/cv-reader/internal/config"
	"alfredoptarigan/cv-reader/internal/handlers"
	"alfredoptarigan/cv-reader/internal/repositories"
	"alfredoptarigan/cv-reader/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize repositories
	sessions, err := newSessionRepository(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize session store: %v", err)
	}
	runRepo := repositories.NewRunRepository()
	log.Println("✅ Repositories initialized successfully")

	// Initialize LLM provider
	provider, closeProvider, err := services.NewLLMProvider(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize LLM provider: %v", err)
	}
	log.Printf("✅ LLM provider %s initialized successfully\n", provider.Name())

	agent, err := services.NewCandidateAgent(provider)
	if err != nil {
		log.Fatalf("❌ Failed to initialize candidate agent: %v", err)
	}

	// Initialize services
	pdfParser := services.NewPDFParserService()
	uploadService := services.NewUploadService(sessions, pdfParser, cfg.Storage.MaxFileSize)
	extractionService := services.NewExtractionService(runRepo, sessions, agent)
	log.Println("✅ Services initialized successfully")

	// Initialize worker
	worker := services.NewWorker(runRepo, sessions, extractionService, services.WorkerOptions{
		Concurrency:  cfg.Worker.Concurrency,
		JobTimeout:   cfg.Worker.AgentTimeout,
		RetentionTTL: cfg.Session.TTL,
	})
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "CV Reader",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxBodySize),
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Session-ID",
	}))

	handlers.RegisterRoutes(app, handlers.Handlers{
		Upload:  handlers.NewUploadHandler(uploadService),
		Process: handlers.NewProcessHandler(extractionService, runRepo, worker),
		Result:  handlers.NewResultHandler(runRepo, worker),
		Page:    handlers.NewPageHandler(uploadService, runRepo),
	}, cfg.Session.TTL)
	log.Println("✅ Handlers initialized")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		closeProvider(shutdownCtx)

		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 Open http://localhost%s in a browser\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func newSessionRepository(cfg *config.Config) (repositories.SessionRepository, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		return repositories.NewMemorySessionRepository(), nil
	case config.SessionBackendRedis:
		client, err := config.InitRedis(cfg)
		if err != nil {
			return nil, err
		}
		log.Printf("✅ Redis connected at %s\n", cfg.Redis.Addr)
		return repositories.NewRedisSessionRepository(client, cfg.Session.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
