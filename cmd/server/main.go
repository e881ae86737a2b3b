package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/marminbh/indexpush-svc/internal/config"
	"github.com/marminbh/indexpush-svc/internal/database"
	"github.com/marminbh/indexpush-svc/internal/handlers"
	"github.com/marminbh/indexpush-svc/internal/listener"
	"github.com/marminbh/indexpush-svc/internal/logger"
	"github.com/marminbh/indexpush-svc/internal/rabbitmq"
	"github.com/marminbh/indexpush-svc/internal/routes"
	"github.com/marminbh/indexpush-svc/internal/service"
)

func main() {
	// Initialize logger (production mode by default, can be changed via env)
	if err := logger.Init(os.Getenv("LOG_LEVEL")); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()
	log := logger.L()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// An invalid tenant disables processing but keeps the service running
	tenant, err := config.LoadTenant()
	if err != nil {
		logger.Error("Invalid indexing configuration, publish notifications will not be processed",
			zap.Error(err),
		)
		tenant = nil
	}

	// Connect to PostgreSQL
	db, err := database.Connect(&cfg.Database, log)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			logger.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := database.RunMigrations(&cfg.Database, log); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to RabbitMQ
	rmq := rabbitmq.NewConnection(&cfg.RabbitMQ, log)
	if err := rmq.Connect(); err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer rmq.Close()

	svc, err := service.NewService(cfg, tenant, db, log, rmq)
	if err != nil {
		logger.Fatal("Failed to build service", zap.Error(err))
	}

	// Initialize and start listener
	lst := listener.NewListener(&cfg.Consumer, svc.RMQ, svc.Handler, log)
	if err := lst.Start(); err != nil {
		logger.Fatal("Failed to start listener", zap.Error(err))
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Index Push Service",
		ServerHeader: "Fiber",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Setup routes
	routes.SetupRoutes(app,
		handlers.NewHealthHandler(svc.DB, svc.RMQ, svc.Handler),
		handlers.NewEventsHandler(svc.Handler, svc.PushLog, log),
		svc.Metrics,
	)

	// Start server in a goroutine
	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Error("Error during server shutdown", zap.Error(err))
	}

	// Stop listener
	if err := lst.Stop(); err != nil {
		logger.Error("Error stopping listener", zap.Error(err))
	}

	logger.Info("Server stopped")
}
