package router

import (
    "github.com/labstack/echo/v4"

    "github.com/velora/submarket-gateway/internal/handler"
    "github.com/velora/submarket-gateway/internal/middleware"
)

// RegisterMarket registers the marketplace endpoints under /v1.  All routes
// require a valid JWT; every role may browse the directory and purchase, so
// the role gate accepts all three.  Reads go straight to the chain on every
// request.
func RegisterMarket(e *echo.Echo, h *handler.ContentHandler, jwtSecret string, limit echo.MiddlewareFunc) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("subscriber", "creator", "admin"),
        limit,
    )
    // Browse the approved directory with per-item access flags.
    g.GET("/content", h.ListApproved)
    // The caller's currently-valid subscriptions with remaining time.
    g.GET("/subscriptions", h.MySubscriptions)
    // Pay the subscription price for one content item.
    g.POST("/content/:id/purchase", h.Purchase)
}
