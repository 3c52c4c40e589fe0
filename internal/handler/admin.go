package handler

import (
    "log"
    "math/big"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/velora/submarket-gateway/internal/chain"
    "github.com/velora/submarket-gateway/internal/market"
    "github.com/velora/submarket-gateway/internal/queue"
)

// AdminHandler serves the admin dashboard: pool balances, the approval queue,
// price updates and platform withdrawals.
//
// Every privileged endpoint re-verifies the connected address against the
// contract's admin() before acting.  The "admin" role claim in the bearer
// token only got the request routed here; it is a navigation choice the user
// made about themselves and proves nothing.
type AdminHandler struct {
    Open    OpenSession
    Sync    *market.Synchronizer
    Publish PublishFunc
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(open OpenSession, sync *market.Synchronizer, publish PublishFunc) *AdminHandler {
    if open == nil || sync == nil {
        panic("nil dependency passed to NewAdminHandler")
    }
    return &AdminHandler{Open: open, Sync: sync, Publish: publish}
}

// requireAdmin opens a session and confirms the connected account is the
// on-chain admin.  It returns the session only on success; otherwise it has
// already written the error response.
func (h *AdminHandler) requireAdmin(c echo.Context) (*chain.Session, bool) {
    ctx := c.Request().Context()
    sess, err := h.Open(ctx)
    if err != nil {
        _ = failJSON(c, err)
        return nil, false
    }
    admin, err := sess.Contract.Admin(ctx)
    if err != nil {
        _ = failJSON(c, err)
        return nil, false
    }
    if !strings.EqualFold(admin.Hex(), sess.Account.Hex()) {
        _ = c.JSON(http.StatusForbidden, echo.Map{"error": "connected account is not the contract admin"})
        return nil, false
    }
    return sess, true
}

// Status handles GET /v1/admin/status.  It always reports whether the
// connected account is the on-chain admin; pools and price are included only
// when it is.
func (h *AdminHandler) Status(c echo.Context) error {
    ctx := c.Request().Context()
    sess, err := h.Open(ctx)
    if err != nil {
        return failJSON(c, err)
    }
    admin, err := sess.Contract.Admin(ctx)
    if err != nil {
        return failJSON(c, err)
    }
    isAdmin := strings.EqualFold(admin.Hex(), sess.Account.Hex())
    if !isAdmin {
        return c.JSON(http.StatusOK, echo.Map{"address": sess.Account.Hex(), "is_admin": false})
    }

    pools, err := market.NewReader(sess.Contract).PoolBalances(ctx)
    if err != nil {
        return failJSON(c, err)
    }
    price, err := sess.Contract.SubscriptionPrice(ctx)
    if err != nil {
        return failJSON(c, err)
    }

    return c.JSON(http.StatusOK, echo.Map{
        "address":   sess.Account.Hex(),
        "is_admin":  true,
        "pools":     pools,
        "price_wei": price.String(),
        "price_eth": market.FormatEther(price),
    })
}

// Pending handles GET /v1/admin/content/pending.  It lists the registered
// content still awaiting approval.
func (h *AdminHandler) Pending(c echo.Context) error {
    sess, ok := h.requireAdmin(c)
    if !ok {
        return nil
    }

    records, err := market.NewReader(sess.Contract).ListUnapproved(c.Request().Context())
    if err != nil {
        return failJSON(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"pending": records})
}

// Approve handles POST /v1/admin/content/:id/approve.  On success the
// synchronizer refresh completes before the response, so a follow-up read of
// the approval queue is already consistent.
func (h *AdminHandler) Approve(c echo.Context) error {
    tokenID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token id"})
    }

    sess, ok := h.requireAdmin(c)
    if !ok {
        return nil
    }
    ctx := c.Request().Context()

    exists, err := sess.Contract.ContentExists(ctx, tokenID)
    if err != nil {
        return failJSON(c, err)
    }
    if !exists {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "content not found"})
    }

    txHash, err := sess.Contract.ApproveContent(ctx, tokenID)
    if err != nil {
        return failJSON(c, err)
    }

    if _, err := h.Sync.Refresh(ctx); err != nil {
        log.Printf("approve: refresh after tx %s: %v", txHash, err)
    }

    h.publish(c, queue.TxConfirmedEvent{
        Kind:        queue.KindContentApproved,
        TxHash:      txHash,
        Account:     sess.Account.Hex(),
        Network:     sess.Profile.Name,
        TokenID:     &tokenID,
        ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
    })

    return c.JSON(http.StatusOK, echo.Map{"tx_hash": txHash, "token_id": tokenID, "approved": true})
}

type priceReq struct {
    PriceWei string `json:"price_wei"`
    PriceEth string `json:"price_eth"`
}

func parsePrice(req priceReq) (*big.Int, error) {
    if s := strings.TrimSpace(req.PriceWei); s != "" {
        wei, ok := new(big.Int).SetString(s, 10)
        if !ok || wei.Sign() < 0 {
            return nil, market.ErrBadAmount
        }
        return wei, nil
    }
    if s := strings.TrimSpace(req.PriceEth); s != "" {
        return market.ParseEther(s)
    }
    return nil, market.ErrBadAmount
}

// SetPrice handles PUT /v1/admin/price.  The price can be given in wei or in
// ether; ether is converted with full 18-decimal precision.
func (h *AdminHandler) SetPrice(c echo.Context) error {
    var req priceReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    wei, err := parsePrice(req)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_wei or price_eth required"})
    }

    sess, ok := h.requireAdmin(c)
    if !ok {
        return nil
    }
    ctx := c.Request().Context()

    txHash, err := sess.Contract.SetSubscriptionPrice(ctx, wei)
    if err != nil {
        return failJSON(c, err)
    }

    if _, err := h.Sync.Refresh(ctx); err != nil {
        log.Printf("set-price: refresh after tx %s: %v", txHash, err)
    }

    h.publish(c, queue.TxConfirmedEvent{
        Kind:        queue.KindPriceUpdated,
        TxHash:      txHash,
        Account:     sess.Account.Hex(),
        Network:     sess.Profile.Name,
        AmountWei:   wei.String(),
        ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
    })

    return c.JSON(http.StatusOK, echo.Map{"tx_hash": txHash, "price_wei": wei.String()})
}

// Withdraw handles POST /v1/admin/withdraw.  Pool balances are re-read after
// the transaction so the response reflects the post-withdrawal state.
func (h *AdminHandler) Withdraw(c echo.Context) error {
    sess, ok := h.requireAdmin(c)
    if !ok {
        return nil
    }
    ctx := c.Request().Context()

    txHash, err := sess.Contract.WithdrawPlatformFunds(ctx)
    if err != nil {
        return failJSON(c, err)
    }

    if _, err := h.Sync.Refresh(ctx); err != nil {
        log.Printf("withdraw: refresh after tx %s: %v", txHash, err)
    }

    pools, err := market.NewReader(sess.Contract).PoolBalances(ctx)
    if err != nil {
        return failJSON(c, err)
    }

    h.publish(c, queue.TxConfirmedEvent{
        Kind:        queue.KindFundsWithdrawn,
        TxHash:      txHash,
        Account:     sess.Account.Hex(),
        Network:     sess.Profile.Name,
        ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
    })

    return c.JSON(http.StatusOK, echo.Map{"tx_hash": txHash, "pools": pools})
}

func (h *AdminHandler) publish(c echo.Context, ev queue.TxConfirmedEvent) {
    if h.Publish != nil {
        _ = h.Publish(c.Request().Context(), ev)
    }
}
