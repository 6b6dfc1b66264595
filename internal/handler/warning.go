package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/ContentWarnings/Backend/internal/middleware"
	"github.com/ContentWarnings/Backend/internal/model"
	"github.com/ContentWarnings/Backend/internal/service"
)

type WarningHandler struct {
	svc *service.WarningService
}

func NewWarningHandler(svc *service.WarningService) *WarningHandler {
	return &WarningHandler{svc: svc}
}

// Get handles GET /api/warnings/:id
func (h *WarningHandler) Get(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateWarningID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	v, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to look up warning")
	}
	return c.JSON(v)
}

// ListForMovie handles GET /api/movies/:movieId/warnings
func (h *WarningHandler) ListForMovie(c fiber.Ctx) error {
	movieID, errMsg := middleware.ValidateMovieID(c.Params("movieId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	views, err := h.svc.ListForMovie(c.Context(), movieID)
	if err != nil {
		return respondError(c, err, "Failed to list warnings")
	}
	return c.JSON(fiber.Map{"movieId": movieID, "warnings": views})
}

// Submit handles POST /api/movies/:movieId/warnings
func (h *WarningHandler) Submit(c fiber.Ctx) error {
	movieID, errMsg := middleware.ValidateMovieID(c.Params("movieId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var content model.WarningContent
	if err := c.Bind().JSON(&content); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	if content.MovieID != 0 && content.MovieID != movieID {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "movieId in body does not match path")
	}
	content.MovieID = movieID

	res, err := h.svc.Submit(c.Context(), content, middleware.ContributorID(c))
	if err != nil {
		return respondError(c, err, "Failed to submit warning")
	}
	return c.JSON(res)
}

// Edit handles POST /api/warnings/:id. An empty body or a "none"
// classification deletes the warning.
func (h *WarningHandler) Edit(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateWarningID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var content model.WarningContent
	if len(c.Body()) == 0 {
		content.Classification = model.ClassificationNone
	} else if err := c.Bind().JSON(&content); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	res, err := h.svc.Edit(c.Context(), id, content, middleware.ContributorID(c))
	if err != nil {
		return respondError(c, err, "Failed to edit warning")
	}
	return c.JSON(res)
}

// Delete handles DELETE /api/warnings/:id
func (h *WarningHandler) Delete(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateWarningID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	report, err := h.svc.Delete(c.Context(), id, middleware.ContributorID(c))
	if err != nil {
		return respondError(c, err, "Failed to delete warning")
	}
	return c.JSON(report)
}
