package handler

import (
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/velora/submarket-gateway/internal/market"
    "github.com/velora/submarket-gateway/internal/queue"
)

// ContentHandler serves the subscriber-facing views: the approved content
// directory, the caller's active subscriptions, and the purchase action.
type ContentHandler struct {
    Open       OpenSession
    Sync       *market.Synchronizer
    GatewayURL string
    Publish    PublishFunc
}

// NewContentHandler constructs a ContentHandler.
func NewContentHandler(open OpenSession, sync *market.Synchronizer, gatewayURL string, publish PublishFunc) *ContentHandler {
    if open == nil || sync == nil {
        panic("nil dependency passed to NewContentHandler")
    }
    return &ContentHandler{Open: open, Sync: sync, GatewayURL: gatewayURL, Publish: publish}
}

type contentItem struct {
    market.ContentRecord
    URL        string `json:"url"`
    Subscribed bool   `json:"subscribed"`
}

// ListApproved handles GET /v1/content.  It re-reads the directory and the
// caller's access set from the chain on every call; approval flags and
// subscription validity change under other users' transactions, so nothing is
// served from cache.  A failed read returns an error response, never an empty
// list.
func (h *ContentHandler) ListApproved(c echo.Context) error {
    ctx := c.Request().Context()
    sess, err := h.Open(ctx)
    if err != nil {
        return failJSON(c, err)
    }
    rd := market.NewReader(sess.Contract)

    records, err := rd.ListApproved(ctx)
    if err != nil {
        return failJSON(c, err)
    }
    accessible, err := rd.ListAccessible(ctx, sess.Account)
    if err != nil {
        return failJSON(c, err)
    }
    price, err := sess.Contract.SubscriptionPrice(ctx)
    if err != nil {
        return failJSON(c, err)
    }

    subscribed := make(map[string]bool, len(accessible))
    for _, hash := range accessible {
        subscribed[hash] = true
    }

    items := make([]contentItem, 0, len(records))
    for _, r := range records {
        items = append(items, contentItem{
            ContentRecord: r,
            URL:           h.GatewayURL + r.ContentHash,
            Subscribed:    subscribed[r.ContentHash],
        })
    }

    return c.JSON(http.StatusOK, echo.Map{
        "network":   sess.Profile.Name,
        "price_wei": price.String(),
        "price_eth": market.FormatEther(price),
        "content":   items,
    })
}

type subscriptionItem struct {
    market.SubscriptionRecord
    URL string `json:"url"`
}

// MySubscriptions handles GET /v1/subscriptions.  It lists the caller's
// currently-valid subscriptions with the remaining time formatted at read
// time.
func (h *ContentHandler) MySubscriptions(c echo.Context) error {
    ctx := c.Request().Context()
    sess, err := h.Open(ctx)
    if err != nil {
        return failJSON(c, err)
    }

    subs, err := market.NewReader(sess.Contract).ListSubscriptions(ctx, sess.Account, time.Now())
    if err != nil {
        return failJSON(c, err)
    }

    items := make([]subscriptionItem, 0, len(subs))
    for _, s := range subs {
        items = append(items, subscriptionItem{SubscriptionRecord: s, URL: h.GatewayURL + s.ContentHash})
    }
    return c.JSON(http.StatusOK, echo.Map{"subscriptions": items})
}

// Purchase handles POST /v1/content/:id/purchase.  It reads the current
// price, submits the payable purchase transaction and waits for confirmation.
// The synchronizer refresh runs before the success response so the caller
// never observes a stale "not subscribed" state after paying.  A failed
// transaction changes nothing locally.
func (h *ContentHandler) Purchase(c echo.Context) error {
    tokenID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token id"})
    }

    ctx := c.Request().Context()
    sess, err := h.Open(ctx)
    if err != nil {
        return failJSON(c, err)
    }

    exists, err := sess.Contract.ContentExists(ctx, tokenID)
    if err != nil {
        return failJSON(c, err)
    }
    if !exists {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "content not found"})
    }

    price, err := sess.Contract.SubscriptionPrice(ctx)
    if err != nil {
        return failJSON(c, err)
    }

    txHash, err := sess.Contract.PurchaseSubscription(ctx, tokenID, price)
    if err != nil {
        return failJSON(c, err)
    }

    // Chain state changed; re-derive access before reporting success.
    snap, err := h.Sync.Refresh(ctx)
    if err != nil {
        log.Printf("purchase: refresh after tx %s: %v", txHash, err)
        return c.JSON(http.StatusOK, echo.Map{"tx_hash": txHash, "warning": "purchase confirmed but refresh failed"})
    }

    if h.Publish != nil {
        _ = h.Publish(ctx, queue.TxConfirmedEvent{
            Kind:        queue.KindSubscriptionPurchased,
            TxHash:      txHash,
            Account:     sess.Account.Hex(),
            Network:     sess.Profile.Name,
            TokenID:     &tokenID,
            AmountWei:   price.String(),
            ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
        })
    }

    return c.JSON(http.StatusOK, echo.Map{
        "tx_hash":    txHash,
        "accessible": snap.Accessible,
    })
}
