package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/ContentWarnings/Backend/internal/auth"
)

// RequireContributor rejects requests without a valid session token.
// The token is read from "Authorization: Bearer <token>".
func RequireContributor(tokens *auth.TokenService) fiber.Handler {
	return func(c fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))

		claims, err := tokens.Parse(raw)
		if errors.Is(err, auth.ErrSessionExpired) {
			return ErrorResponse(c, fiber.StatusForbidden, "SESSION_EXPIRED", "Session expired, please log in again")
		}
		if err != nil {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		}

		c.Locals(localClaims, claims)
		return c.Next()
	}
}

// ContributorID returns the authenticated contributor's id, or "" outside RequireContributor.
func ContributorID(c fiber.Ctx) string {
	claims, ok := c.Locals(localClaims).(*auth.Claims)
	if !ok {
		return ""
	}
	return claims.Email
}
