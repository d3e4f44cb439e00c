// Package main provides the flow definition API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/kmare/flowsync/pkg/persistence"
	"github.com/kmare/flowsync/pkg/registry"
	"github.com/kmare/flowsync/pkg/services"
	"github.com/kmare/flowsync/pkg/web"
)

type API struct {
	logger   *slog.Logger
	store    persistence.FlowStore
	registry *registry.Registry
}

func NewAPI(logger *slog.Logger, store persistence.FlowStore, reg *registry.Registry) *API {
	return &API{
		logger:   logger,
		store:    store,
		registry: reg,
	}
}

func (a *API) App() *fiber.App {
	flowService := services.NewFlow(a.store, a.registry)
	handlers := web.NewAPIHandlers(flowService)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("flowsync API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	a.logger.Info("Starting API server", "port", port)

	return a.App().Listen(":" + strconv.Itoa(port))
}
