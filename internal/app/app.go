// Package app assembles the fiber application: middleware, product routes,
// health check and metrics endpoint.
package app

import (
	"errors"
	"time"

	"catalogo/internal/handlers"
	"catalogo/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Options controls how the application is assembled.
type Options struct {
	// APIPrefix is the group the product routes are mounted under, e.g. "/api".
	APIPrefix string
	// RequestLogging enables fiber's access log middleware.
	RequestLogging bool
}

// NewApp builds the fiber app with every route registered.
func NewApp(productService *services.ProductService, log zerolog.Logger, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "catalogo",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(recover.New())
	if opts.RequestLogging {
		app.Use(logger.New())
	}

	app.Get("/health", healthHandler(productService))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group(opts.APIPrefix)
	handlers.NewProductHandler(productService, log).RegisterRoutes(api)

	return app
}

func healthHandler(productService *services.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, database, code := "healthy", "up", fiber.StatusOK
		if err := productService.Ping(c.UserContext()); err != nil {
			status, database, code = "unhealthy", "down", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"database": database,
			"time":     time.Now().Format(time.RFC3339),
		})
	}
}

// errorHandler renders errors that escape a handler (unknown routes, recovered
// panics) as JSON. Only fiber errors keep their message.
func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal Server Error",
		})
	}
}
