package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/ContentWarnings/Backend/internal/middleware"
	"github.com/ContentWarnings/Backend/internal/service"
)

// respondError maps a service error onto the API error response. Unknown
// errors are logged and reported as 500 with fallback as the message.
func respondError(c fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrInvalidVote):
		return middleware.ErrorResponse(c, fiber.StatusConflict, "ALREADY_VOTED", err.Error())
	case errors.Is(err, service.ErrConflict):
		return middleware.ErrorResponse(c, fiber.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, service.ErrForbidden):
		return middleware.ErrorResponse(c, fiber.StatusForbidden, "FORBIDDEN", "You do not own this warning")
	case errors.Is(err, service.ErrContentRejected):
		return middleware.ErrorResponse(c, fiber.StatusNotAcceptable, "CONTENT_REJECTED", "Description contains disallowed language")
	case errors.Is(err, service.ErrInvalidInput):
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", err.Error())
	}

	middleware.Logger.Error().Err(err).Str("path", c.Path()).Msg(fallback)
	return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", fallback)
}
