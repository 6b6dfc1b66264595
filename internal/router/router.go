package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/ContentWarnings/Backend/internal/auth"
	"github.com/ContentWarnings/Backend/internal/handler"
	"github.com/ContentWarnings/Backend/internal/middleware"
	"github.com/ContentWarnings/Backend/pkg/hash"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Health         *handler.HealthHandler
	Warning        *handler.WarningHandler
	Vote           *handler.VoteHandler
	Classification *handler.ClassificationHandler
	Contributor    *handler.ContributorHandler
}

// Guards holds the request preconditions. Nil rate limiters are skipped.
type Guards struct {
	Tokens *auth.TokenService
	Hasher *hash.IdentityHasher

	ReadLimiter  *middleware.RateLimiter
	VoteLimiter  *middleware.RateLimiter
	WriteLimiter *middleware.RateLimiter
}

func limit(rl *middleware.RateLimiter) fiber.Handler {
	if rl == nil {
		return func(c fiber.Ctx) error { return c.Next() }
	}
	return rl.Handler()
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, g *Guards, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	// Route guards run in the order given, before the final handler.
	api := app.Group("/api")
	requireContributor := middleware.RequireContributor(g.Tokens)
	voter := middleware.VoterIdentity(g.Hasher)

	// Classification catalogue
	api.Get("/classifications", h.Classification.List)
	api.Get("/classifications/description", h.Classification.Description)

	// Movie routes
	api.Get("/movies/:movieId/warnings", limit(g.ReadLimiter), h.Warning.ListForMovie)
	api.Post("/movies/:movieId/warnings", requireContributor, limit(g.WriteLimiter), h.Warning.Submit)

	// Vote routes
	api.Post("/warnings/:id/upvote", voter, limit(g.VoteLimiter), h.Vote.Upvote)
	api.Post("/warnings/:id/downvote", voter, limit(g.VoteLimiter), h.Vote.Downvote)
	api.Get("/warnings/:id/vote", voter, limit(g.ReadLimiter), h.Vote.Status)

	// Warning routes
	api.Get("/warnings/:id", limit(g.ReadLimiter), h.Warning.Get)
	api.Post("/warnings/:id", requireContributor, limit(g.WriteLimiter), h.Warning.Edit)
	api.Delete("/warnings/:id", requireContributor, limit(g.WriteLimiter), h.Warning.Delete)

	// Contributor routes
	api.Get("/contributors/me", requireContributor, h.Contributor.Me)
}
