package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/ContentWarnings/Backend/internal/middleware"
	"github.com/ContentWarnings/Backend/internal/model"
	"github.com/ContentWarnings/Backend/internal/service"
)

type VoteHandler struct {
	svc *service.VoteService
}

func NewVoteHandler(svc *service.VoteService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Upvote handles POST /api/warnings/:id/upvote
func (h *VoteHandler) Upvote(c fiber.Ctx) error {
	return h.cast(c, model.Upvote)
}

// Downvote handles POST /api/warnings/:id/downvote
func (h *VoteHandler) Downvote(c fiber.Ctx) error {
	return h.cast(c, model.Downvote)
}

func (h *VoteHandler) cast(c fiber.Ctx, dir model.Direction) error {
	id, errMsg := middleware.ValidateWarningID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	out, err := h.svc.Cast(c.Context(), id, middleware.VoterToken(c), dir)
	if err != nil {
		return respondError(c, err, "Failed to record vote")
	}
	return c.JSON(out)
}

// Status handles GET /api/warnings/:id/vote
func (h *VoteHandler) Status(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateWarningID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	status, err := h.svc.Status(c.Context(), id, middleware.VoterToken(c))
	if err != nil {
		return respondError(c, err, "Failed to look up vote")
	}
	return c.JSON(fiber.Map{"response": status})
}
