package router

import (
    "github.com/labstack/echo/v4"

    "github.com/velora/submarket-gateway/internal/handler"
    "github.com/velora/submarket-gateway/internal/middleware"
)

// RegisterCreator registers creator-scoped endpoints under /v1.  All routes
// require a valid JWT and the creator role.  Creators upload media to the
// pinning service and register the resulting hash on-chain; the content stays
// pending until an admin approves it.
func RegisterCreator(e *echo.Echo, h *handler.CreatorHandler, jwtSecret string, limit echo.MiddlewareFunc) {
    g := e.Group(
        "/v1/creator",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("creator"),
        limit,
    )
    g.POST("/content", h.Register)
}
