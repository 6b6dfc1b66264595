package handler

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/ContentWarnings/Backend/internal/middleware"
	"github.com/ContentWarnings/Backend/internal/model"
)

type ClassificationHandler struct{}

func NewClassificationHandler() *ClassificationHandler {
	return &ClassificationHandler{}
}

// List handles GET /api/classifications
func (h *ClassificationHandler) List(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"classifications": model.Classifications})
}

// Description handles GET /api/classifications/description?name=
func (h *ClassificationHandler) Description(c fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_FIELDS", "name is required")
	}

	desc, ok := model.Classification(name).Description()
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Unknown classification")
	}
	return c.JSON(fiber.Map{"name": name, "description": desc})
}
