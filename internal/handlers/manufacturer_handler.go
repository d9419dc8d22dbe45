package handlers

import (
	"encoding/json"
	"errors"

	"inventory/internal/merge"
	"inventory/internal/models"
	"inventory/internal/services"

	"github.com/gofiber/fiber/v2"
)

var errNotAnObject = errors.New("body must be a JSON object")

// ManufacturerHandler handles HTTP requests for manufacturers.
type ManufacturerHandler struct {
	service *services.ManufacturerService
}

// NewManufacturerHandler creates a new ManufacturerHandler.
func NewManufacturerHandler(service *services.ManufacturerService) *ManufacturerHandler {
	return &ManufacturerHandler{service: service}
}

// RegisterRoutes registers the manufacturer routes with the Fiber app.
func (h *ManufacturerHandler) RegisterRoutes(router fiber.Router) {
	manufacturerRoutes := router.Group("/manufacturers")
	manufacturerRoutes.Get("/", h.HandleListManufacturers)
	manufacturerRoutes.Get("/:id", h.HandleGetManufacturer)
	manufacturerRoutes.Post("/", h.HandleCreateManufacturer)
	manufacturerRoutes.Delete("/:id", h.HandleDeleteManufacturer)
}

// HandleListManufacturers returns the distinct manufacturer names.
func (h *ManufacturerHandler) HandleListManufacturers(c *fiber.Ctx) error {
	names, err := h.service.ListManufacturerNames(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(names)
}

func (h *ManufacturerHandler) HandleGetManufacturer(c *fiber.Ctx) error {
	m, err := h.service.GetManufacturer(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(m)
}

// HandleCreateManufacturer creates a manufacturer with an inline contact or a contactId.
func (h *ManufacturerHandler) HandleCreateManufacturer(c *fiber.Ctx) error {
	var doc merge.Document
	if err := json.Unmarshal(c.Body(), &doc); err != nil || doc == nil {
		return badRequest(c, "Request body must be a JSON object", err)
	}
	var in models.ManufacturerInput
	if err := merge.Decode(merge.NormalizeRefs(doc, merge.ManufacturerRelations), &in); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	created, err := h.service.CreateManufacturer(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleDeleteManufacturer deletes a manufacturer no product references.
func (h *ManufacturerHandler) HandleDeleteManufacturer(c *fiber.Ctx) error {
	deleted, err := h.service.DeleteManufacturer(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(deleted)
}
