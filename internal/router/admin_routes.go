package router

import (
    "github.com/labstack/echo/v4"

    "github.com/velora/submarket-gateway/internal/handler"
    "github.com/velora/submarket-gateway/internal/middleware"
)

// RegisterAdmin registers admin-scoped endpoints under /v1/admin.  The role
// middleware only gates navigation; each handler independently verifies that
// the connected account equals the contract's admin() before any privileged
// call, so a forged role claim gets a 403 from the handler even if it passes
// here.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, limit echo.MiddlewareFunc) {
    g := e.Group(
        "/v1/admin",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("admin"),
        limit,
    )
    g.GET("/status", h.Status)
    g.GET("/content/pending", h.Pending)
    g.POST("/content/:id/approve", h.Approve)
    g.PUT("/price", h.SetPrice)
    g.POST("/withdraw", h.Withdraw)
}
