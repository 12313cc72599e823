// Package app wires configuration, storage, services and handlers into a Fiber application.
package app

import (
	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options are the collaborators NewApp is built from.
type Options struct {
	Config     *config.Config
	Logger     *zap.Logger
	Repository repositories.ProductRepository
	// Publisher is optional; product events are dropped when nil.
	Publisher services.EventPublisher
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

// NewApp builds the Fiber application with every route mounted.
func NewApp(opts Options) *fiber.App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config

	app := fiber.New(fiber.Config{
		AppName:               "Product Catalog",
		ErrorHandler:          handlers.ErrorHandler(logger),
		DisableStartupMessage: cfg.IsProduction(),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if opts.AccessLog {
		app.Use(fiberlogger.New())
	}

	productService := services.NewProductService(opts.Repository, opts.Publisher, logger)
	productHandler := handlers.NewProductHandler(productService, logger)

	app.Get("/", handlers.HandleIndex)
	app.Get("/health", handlers.HandleHealth)

	// /api mirrors the root routes for the behaviour test harness.
	routers := []fiber.Router{app, app.Group("/api")}

	if cfg.AdminEnabled() {
		authService := services.NewAuthService(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.TokenTTL)
		authHandler := handlers.NewAuthHandler(authService, logger)
		adminOnly := middleware.AdminRequired(authService)
		for _, router := range routers {
			authHandler.RegisterRoutes(router)
			productHandler.RegisterAdminRoutes(router, adminOnly)
		}
	} else {
		logger.Info("admin routes disabled: ADMIN_PASSWORD_HASH is not set")
	}

	for _, router := range routers {
		productHandler.RegisterRoutes(router)
	}

	return app
}

// OpenRepository returns the product repository selected by cfg.DatabaseDSN and a
// function releasing it.
func OpenRepository(cfg *config.Config) (repositories.ProductRepository, func() error, error) {
	if cfg.DatabaseDSN == database.MemoryDSN {
		return repositories.NewMemoryProductRepository(), func() error { return nil }, nil
	}
	db, err := database.Open(cfg.DatabaseDSN, cfg.DatabaseDebug)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewGORMProductRepository(db), func() error { return database.Close(db) }, nil
}
