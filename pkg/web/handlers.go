// Package web exposes the flow store as a REST API.
package web

import (
	"github.com/gofiber/fiber/v3"

	"github.com/kmare/flowsync/pkg/models"
	"github.com/kmare/flowsync/pkg/services"
)

type APIHandlers struct {
	flowService *services.Flow
}

func NewAPIHandlers(flowService *services.Flow) *APIHandlers {
	return &APIHandlers{
		flowService: flowService,
	}
}

// Register mounts the flow routes on the app.
func (h *APIHandlers) Register(app *fiber.App) {
	flows := app.Group("/flows")
	flows.Get("/", h.GetFlows)
	flows.Post("/", h.CreateFlow)
	flows.Get("/:id", h.GetFlow)
	flows.Put("/:id", h.UpdateFlow)
	flows.Delete("/:id", h.DeleteFlow)

	app.Get("/health", h.Health)
}

func (h *APIHandlers) GetFlows(c fiber.Ctx) error {
	flows, err := h.flowService.ListFlows(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"flows": flows,
		"count": len(flows),
	})
}

func (h *APIHandlers) GetFlow(c fiber.Ctx) error {
	flow, err := h.flowService.GetFlow(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(flow)
}

func (h *APIHandlers) CreateFlow(c fiber.Ctx) error {
	var flow models.FlowDefinition

	err := c.Bind().JSON(&flow)
	if err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	created, err := h.flowService.CreateFlow(c.Context(), &flow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateFlow(c fiber.Ctx) error {
	var flow models.FlowDefinition

	err := c.Bind().JSON(&flow)
	if err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	updated, err := h.flowService.UpdateFlow(c.Context(), c.Params("id"), &flow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteFlow(c fiber.Ctx) error {
	err := h.flowService.DeleteFlow(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) Health(c fiber.Ctx) error {
	message, healthy := h.flowService.HealthCheck(c.Context())
	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "unhealthy",
			"message": message,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "healthy",
		"message": message,
	})
}
