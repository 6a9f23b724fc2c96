// Package main provides the Factotum API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/dukex/factotum/pkg/eventbus"
	"github.com/dukex/factotum/pkg/lifecycle"
	"github.com/dukex/factotum/pkg/persistence"
	"github.com/dukex/factotum/pkg/planner"
	"github.com/dukex/factotum/pkg/registry"
	"github.com/dukex/factotum/pkg/services"
	"github.com/dukex/factotum/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	generator := planner.NewGenerator(a.logger, a.eventBus, planner.DefaultRules())
	manager := lifecycle.NewManager(a.logger, a.persistence, a.registry, generator, a.eventBus, lifecycle.DefaultPolicy())
	workItemService := services.NewWorkItem(a.persistence, manager)

	handlers := web.NewAPIHandlers(workItemService, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Factotum API")
	})

	w := app.Group("/work-items")
	w.Get("/", handlers.GetWorkItems)
	w.Post("/", handlers.CreateWorkItem)
	w.Get("/:id", handlers.GetWorkItem)
	w.Post("/:id/decision", handlers.RecordDecision)
	w.Get("/:id/approvals", handlers.GetApprovals)

	app.Get("/capabilities", handlers.GetCapabilities)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
