// Package web provides the read-mostly HTTP surface over the pipeline.
package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/dukex/factotum/pkg/models"
	"github.com/dukex/factotum/pkg/registry"
	"github.com/dukex/factotum/pkg/services"
)

type APIHandlers struct {
	workItemService *services.WorkItem
	validator       *validator.Validate
	registry        *registry.Registry
}

func NewAPIHandlers(
	workItemService *services.WorkItem,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		workItemService: workItemService,
		validator:       validator,
		registry:        registry,
	}
}

func (h *APIHandlers) GetWorkItems(c fiber.Ctx) error {
	items, err := h.workItemService.List(c.Context(), c.Query("status"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"work_items":  items,
		"total_count": len(items),
	})
}

func (h *APIHandlers) GetWorkItem(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Work item ID is required")
	}

	item, err := h.workItemService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(item)
}

func (h *APIHandlers) CreateWorkItem(c fiber.Ctx) error {
	var req CreateWorkItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	item, err := h.workItemService.Create(c.Context(), req.Type, req.Priority, req.Description, req.Payload)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *APIHandlers) RecordDecision(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Work item ID is required")
	}

	var req DecisionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	item, err := h.workItemService.Decide(c.Context(), id, models.Decision(req.Decision), req.Actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(item)
}

func (h *APIHandlers) GetApprovals(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Work item ID is required")
	}

	records, err := h.workItemService.Approvals(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"work_item_id": id,
		"approvals":    records,
	})
}

func (h *APIHandlers) GetCapabilities(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"capabilities": h.registry.Capabilities(),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workItemService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
