package api

import (
	"github.com/labstack/echo/v4"

	"netcode-backend/internal/auth"
	"netcode-backend/internal/database"
	"netcode-backend/internal/orchestrator"
)

// Handlers bundles the dependencies the route handlers need. Everything is
// injected here once at startup; handlers never reach for globals.
type Handlers struct {
	Auth     *auth.Service
	Versions *database.VersionRepo
	Shell    *orchestrator.Client
	Limiter  *auth.RateLimiter
}

// RegisterRoutes sets up all API routes. Each route declares its access
// level explicitly: public routes run with whatever Resolve produced,
// anonymous-only routes reject resolved identities, authenticated routes
// require one.
func RegisterRoutes(g *echo.Group, h *Handlers) {
	// Every request passes through the resolver first
	g.Use(auth.Resolve(h.Auth))

	// Public
	g.GET("/health", healthCheck)
	g.GET("/status", h.status)
	g.GET("/latest-version", h.latestVersion)
	g.GET("/servers-status", h.serversStatus)
	g.GET("/servers-status/ws", h.serversStatusWS)

	// Anonymous-only
	g.POST("/register", h.register, auth.RequireAnonymous())
	g.POST("/login", h.login, auth.RequireAnonymous(), h.Limiter.Middleware())

	// Authenticated
	g.GET("/logout", h.logout, auth.RequireAuth())
	g.POST("/create-session", h.createSession, auth.RequireAuth())
}
