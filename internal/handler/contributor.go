package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/ContentWarnings/Backend/internal/middleware"
	"github.com/ContentWarnings/Backend/internal/service"
)

type ContributorHandler struct {
	svc *service.ContributorService
}

func NewContributorHandler(svc *service.ContributorService) *ContributorHandler {
	return &ContributorHandler{svc: svc}
}

// Me handles GET /api/contributors/me
func (h *ContributorHandler) Me(c fiber.Ctx) error {
	profile, err := h.svc.Profile(c.Context(), middleware.ContributorID(c))
	if err != nil {
		return respondError(c, err, "Failed to load contributor")
	}
	return c.JSON(profile)
}
