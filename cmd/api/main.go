package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ai-recruiter/internal/config"
	"ai-recruiter/internal/handlers"
	"ai-recruiter/internal/repositories"
	"ai-recruiter/internal/services"
)

func main() {
	cfg := config.Load()

	if cfg.Server.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	vacancyRepo := repositories.NewVacancyRepository(db)
	interviewRepo := repositories.NewInterviewRepository(db)

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal().Err(err).Msg("failed to create upload directory")
	}
	pdfParser := services.NewPDFParserService()

	llmService, err := services.NewLLMService(cfg.Gemini)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize gemini client")
	}

	resumeIndex, err := services.NewResumeIndexService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize qdrant client")
	}
	if err := resumeIndex.InitCollection(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize qdrant collection")
	}

	notifier := services.NewNotifierService(cfg.SMTP, cfg.Telegram)
	worker := services.NewNotificationWorker(notifier, cfg.Worker.Concurrency, cfg.Worker.RetryInitialDelay)
	worker.Start(context.Background())

	vacancyService := services.NewVacancyService(vacancyRepo, llmService)
	interviewService := services.NewInterviewService(vacancyRepo, interviewRepo, llmService, storageService)
	resumeService := services.NewResumeService(
		vacancyRepo,
		interviewRepo,
		llmService,
		storageService,
		pdfParser,
		resumeIndex,
		worker,
	)

	app := fiber.New(fiber.Config{
		AppName:      "AI Recruiter API",
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	handlers.NewVacancyHandler(vacancyService).RegisterRoutes(api)
	handlers.NewInterviewHandler(interviewService, cfg.Storage.MaxFileSize).RegisterRoutes(api)
	handlers.NewResumeHandler(resumeService, cfg.Storage.MaxFileSize).RegisterRoutes(api)
	handlers.NewStorageHandler(storageService).RegisterRoutes(api)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("shutting down server")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server starting")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
