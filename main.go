package main

import (
	"os"
	"os/signal"
	"syscall"

	"catalogo/internal/app"
	"catalogo/internal/config"
	"catalogo/internal/database"
	"catalogo/internal/logger"
	"catalogo/internal/models"
	"catalogo/internal/repositories"
	"catalogo/internal/services"
	"catalogo/pkg/rabbitmq"

	"github.com/rs/zerolog"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", false)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	// --- Repository ---
	productRepo, err := newProductRepository(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to initialize product store")
	}

	// --- RabbitMQ (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		publisher = mqClient

		if cfg.RabbitMQ.Audit {
			if err := mqClient.ConsumeProductEvents(auditHandler(log)); err != nil {
				log.Error().Err(err).Msg("failed to start product event consumer")
			}
		}
	} else {
		log.Info().Msg("RABBITMQ_URL not set, product events disabled")
	}

	// --- Service and HTTP app ---
	productService := services.NewProductService(productRepo, publisher, log)
	fiberApp := app.NewApp(productService, log, app.Options{
		APIPrefix:      cfg.APIPrefix,
		RequestLogging: true,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.AppPort).Str("api_prefix", cfg.APIPrefix).Msg("starting server")
		if err := fiberApp.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")

	if err := fiberApp.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during fiber shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}

func newProductRepository(cfg config.DatabaseConfig) (repositories.ProductRepository, error) {
	if cfg.Driver == "memory" {
		return repositories.NewMemoryProductRepository(), nil
	}
	db, err := database.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	return repositories.NewGORMProductRepository(db), nil
}

// auditHandler writes every consumed product event to the log.
func auditHandler(log zerolog.Logger) func(models.ProductEvent) error {
	return func(event models.ProductEvent) error {
		log.Info().
			Str("type", event.Type).
			Str("product_id", event.ProductID).
			Str("nome", event.Nome).
			Str("preco", event.Preco).
			Time("occurred_at", event.OccurredAt).
			Msg("product event")
		return nil
	}
}
