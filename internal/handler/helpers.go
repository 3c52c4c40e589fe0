package handler

import (
    "context"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/velora/submarket-gateway/internal/chain"
    "github.com/velora/submarket-gateway/internal/config"
    "github.com/velora/submarket-gateway/internal/queue"
    "github.com/velora/submarket-gateway/internal/storage"
)

// OpenSession produces a fresh contract session for a request.  Handlers call
// it per request and never cache the result; the wallet's account and chain
// are externally owned.
type OpenSession func(ctx context.Context) (*chain.Session, error)

// PublishFunc pushes a confirmed-transaction event to the broker.  Handlers
// treat it as fire-and-forget: a broker failure never fails the request.
type PublishFunc func(ctx context.Context, ev queue.TxConfirmedEvent) error

// failJSON maps a wallet/chain/storage error to an HTTP response.  Read
// failures are surfaced explicitly - an error is observably different from an
// empty list and the two must never be conflated.
func failJSON(c echo.Context, err error) error {
    status := http.StatusInternalServerError
    switch {
    case errors.Is(err, chain.ErrNoWalletProvider):
        status = http.StatusServiceUnavailable
    case errors.Is(err, chain.ErrAuthorizationDenied):
        status = http.StatusUnauthorized
    case errors.Is(err, config.ErrUnsupportedNetwork):
        status = http.StatusBadRequest
    case errors.Is(err, chain.ErrInsufficientBalance):
        status = http.StatusPaymentRequired
    case errors.Is(err, storage.ErrUpload):
        status = http.StatusBadGateway
    case errors.Is(err, chain.ErrChainRead), errors.Is(err, chain.ErrChainWrite):
        status = http.StatusBadGateway
    }
    return c.JSON(status, echo.Map{"error": err.Error()})
}
