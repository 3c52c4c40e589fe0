package handler

import (
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/velora/submarket-gateway/internal/market"
    "github.com/velora/submarket-gateway/internal/queue"
    "github.com/velora/submarket-gateway/internal/storage"
)

// CreatorHandler serves the creator dashboard: uploading media to the pinning
// service and registering the resulting content hash on-chain.
type CreatorHandler struct {
    Open    OpenSession
    Sync    *market.Synchronizer
    Pinner  *storage.Client
    Publish PublishFunc
}

// NewCreatorHandler constructs a CreatorHandler.
func NewCreatorHandler(open OpenSession, sync *market.Synchronizer, pinner *storage.Client, publish PublishFunc) *CreatorHandler {
    if open == nil || sync == nil || pinner == nil {
        panic("nil dependency passed to NewCreatorHandler")
    }
    return &CreatorHandler{Open: open, Sync: sync, Pinner: pinner, Publish: publish}
}

// Register handles POST /v1/creator/content (multipart: name, file).  The
// file is pinned first; only a successful upload reaches the chain.  The
// content enters the directory unapproved and stays invisible to subscribers
// until an admin approves it.
func (h *CreatorHandler) Register(c echo.Context) error {
    name := strings.TrimSpace(c.FormValue("name"))
    if name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
    }
    fh, err := c.FormFile("file")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
    }

    ctx := c.Request().Context()
    sess, err := h.Open(ctx)
    if err != nil {
        return failJSON(c, err)
    }

    src, err := fh.Open()
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
    }
    defer src.Close()

    contentHash, err := h.Pinner.Upload(ctx, fh.Filename, src)
    if err != nil {
        return failJSON(c, err)
    }

    txHash, err := sess.Contract.RegisterContent(ctx, name, contentHash, sess.Account)
    if err != nil {
        return failJSON(c, err)
    }

    if _, err := h.Sync.Refresh(ctx); err != nil {
        log.Printf("register: refresh after tx %s: %v", txHash, err)
    }

    if h.Publish != nil {
        _ = h.Publish(ctx, queue.TxConfirmedEvent{
            Kind:        queue.KindContentRegistered,
            TxHash:      txHash,
            Account:     sess.Account.Hex(),
            Network:     sess.Profile.Name,
            ContentName: name,
            ContentHash: contentHash,
            ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
        })
    }

    return c.JSON(http.StatusCreated, echo.Map{
        "tx_hash":      txHash,
        "content_hash": contentHash,
        "name":         name,
        "approved":     false,
    })
}
