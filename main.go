package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/Loxfxgc/lost-and-found-children-reporting/config"
	"github.com/Loxfxgc/lost-and-found-children-reporting/controllers"
	"github.com/Loxfxgc/lost-and-found-children-reporting/database"
	"github.com/Loxfxgc/lost-and-found-children-reporting/logging"
	"github.com/Loxfxgc/lost-and-found-children-reporting/repository"
	"github.com/Loxfxgc/lost-and-found-children-reporting/routes"
	"github.com/Loxfxgc/lost-and-found-children-reporting/storage"
)

func main() {
	logging.Setup()
	cfg := config.Load()

	if err := database.Connect(context.Background(), cfg.Mongo); err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	gateway, err := storage.NewGateway(cfg, database.DB())
	if err != nil {
		log.Fatalf("blob gateway init failed: %v", err)
	}
	if s3, ok := gateway.(*storage.S3Store); ok {
		if err := s3.EnsureBucket(context.Background()); err != nil {
			log.Fatalf("bucket init failed: %v", err)
		}
	}
	slog.Info("blob gateway ready", "backend", gateway.Kind())

	resolver := storage.NewResolver("/api/images", cfg.S3.PublicBaseURL)

	reportRepo := repository.NewReportRepo(database.DB(), gateway)
	enquiryRepo := repository.NewEnquiryRepo(database.DB(), gateway)

	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxUploadBytes) + 1<<20, // payload headroom over the image limit
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	// Log concise request lines
	app.Use(logger.New(logger.Config{
		TimeFormat: "15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "*",
		AllowCredentials: false,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))

	// Health
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	routes.Register(app,
		controllers.NewReportController(reportRepo, resolver),
		controllers.NewEnquiryController(enquiryRepo),
		controllers.NewImageController(gateway, resolver),
	)

	go func() {
		slog.Info("API listening", "address", cfg.Address)
		if err := app.Listen(cfg.Address); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if err := database.Disconnect(context.Background()); err != nil {
		slog.Error("db disconnect failed", "error", err)
	}
}
