package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/velora/submarket-gateway/internal/handler"    // import the handlers that implement business logic
    "github.com/velora/submarket-gateway/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Map the GET request at path "/healthz" to the Health handler.  This
    // endpoint can be used by load balancers or monitoring systems to verify
    // that the gateway is up and running.
    e.GET("/healthz", handler.Health)
}

// RegisterSession registers the wallet session endpoints.  Connect is
// unauthenticated because it is what issues the token; every other session
// endpoint requires a valid token.  Any of the three roles may manage its own
// session.
func RegisterSession(e *echo.Echo, s *handler.SessionHandler, jwtSecret string, limit echo.MiddlewareFunc) {
    // The entry point: pick a role, authorize the wallet, receive a token.
    e.POST("/v1/session/connect", s.Connect, limit)

    g := e.Group(
        "/v1/session",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("subscriber", "creator", "admin"),
        limit,
    )
    g.GET("", s.Current)
    g.GET("/accounts", s.Accounts)
    g.POST("/account", s.SwitchAccount)
    g.POST("/logout", s.Logout)
}
