package middleware

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field length limits matching database schema constraints.
const (
	MaxWarningIDLen = 64 // warnings.id VARCHAR(64)
	MaxMovieIDLen   = 19 // fits in BIGINT
)

// warningIDRe matches warning ids: alphanumeric, dash, underscore. Generated ids are UUIDs.
var warningIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateWarningID checks that a warning id is well-formed and within DB limits.
func ValidateWarningID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "warningId is required"
	}
	if len(id) > MaxWarningIDLen {
		return "", "warningId must be at most 64 characters"
	}
	if !warningIDRe.MatchString(id) {
		return "", "warningId contains invalid characters"
	}
	return id, ""
}

// ValidateMovieID parses a movie reference. Movie ids are positive integers.
func ValidateMovieID(raw string) (int64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "movieId is required"
	}
	if len(raw) > MaxMovieIDLen {
		return 0, "movieId is too long"
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, "movieId must be an integer"
	}
	if id <= 0 {
		return 0, "movieId must be positive"
	}
	return id, ""
}
