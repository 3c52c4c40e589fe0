package handler

import (
    "context"
    "math/big"
    "net/http"
    "strings"

    "github.com/ethereum/go-ethereum/common"
    "github.com/labstack/echo/v4"

    "github.com/velora/submarket-gateway/internal/config"
    "github.com/velora/submarket-gateway/internal/market"
    "github.com/velora/submarket-gateway/internal/session"
    "github.com/velora/submarket-gateway/internal/utils"
)

// WalletControl is the provider surface the session endpoints need beyond the
// session factory: account enumeration with balances and the active-account
// switch.  *chain.KeystoreProvider satisfies it.
type WalletControl interface {
    RequestAccounts(ctx context.Context) ([]common.Address, error)
    Balance(ctx context.Context, addr common.Address) (*big.Int, error)
    SwitchAccount(addr common.Address) error
}

// SessionHandler implements wallet connection, account selection and logout.
type SessionHandler struct {
    Cfg    config.Config
    Open   OpenSession
    Wallet WalletControl
    Store  *session.Store
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(cfg config.Config, open OpenSession, wallet WalletControl, store *session.Store) *SessionHandler {
    if open == nil || store == nil {
        panic("nil dependency passed to NewSessionHandler")
    }
    return &SessionHandler{Cfg: cfg, Open: open, Wallet: wallet, Store: store}
}

type connectReq struct {
    Role string `json:"role"` // creator | subscriber | admin
}

// Connect handles POST /v1/session/connect.  It connects the wallet (account
// authorization + network resolution), records the address and the
// self-declared role in the session store, and issues a bearer token for the
// protected routes.  Picking "admin" here grants nothing: the admin endpoints
// re-verify the connected address against the contract's admin().
func (h *SessionHandler) Connect(c echo.Context) error {
    var req connectReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    role, err := session.ParseRole(req.Role)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be creator, subscriber or admin"})
    }

    sess, err := h.Open(c.Request().Context())
    if err != nil {
        return failJSON(c, err)
    }

    h.Store.SetWalletAddress(sess.Account.Hex())
    h.Store.SetRole(role)

    tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, sess.Account.Hex(), string(role), h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }

    return c.JSON(http.StatusOK, echo.Map{
        "address": sess.Account.Hex(),
        "role":    role,
        "network": sess.Profile.Name,
        "token":   tok.Token,
        "expires": tok.Exp,
    })
}

type accountInfo struct {
    Address    string `json:"address"`
    BalanceWei string `json:"balance_wei"`
    BalanceEth string `json:"balance_eth"`
    Active     bool   `json:"active"`
}

// Accounts handles GET /v1/session/accounts.  It lists the wallet's accounts
// with their ether balances, active account first, for the account selector.
func (h *SessionHandler) Accounts(c echo.Context) error {
    ctx := c.Request().Context()
    accts, err := h.Wallet.RequestAccounts(ctx)
    if err != nil {
        return failJSON(c, err)
    }

    out := make([]accountInfo, 0, len(accts))
    for i, a := range accts {
        bal, err := h.Wallet.Balance(ctx, a)
        if err != nil {
            return failJSON(c, err)
        }
        out = append(out, accountInfo{
            Address:    a.Hex(),
            BalanceWei: bal.String(),
            BalanceEth: market.FormatEther(bal),
            Active:     i == 0,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"accounts": out})
}

type switchReq struct {
    Address string `json:"address"`
}

// SwitchAccount handles POST /v1/session/account.  It makes the given
// keystore account active; the provider fires an account-changed event which
// triggers a synchronizer refresh, so the next read reflects the new account.
// The bearer token keeps its original subject, so a fresh Connect is expected
// after switching; the session store is updated here for consistency.
func (h *SessionHandler) SwitchAccount(c echo.Context) error {
    var req switchReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Address) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "address required"})
    }
    if !common.IsHexAddress(req.Address) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address"})
    }

    addr := common.HexToAddress(req.Address)
    if err := h.Wallet.SwitchAccount(addr); err != nil {
        return failJSON(c, err)
    }
    h.Store.SetWalletAddress(addr.Hex())

    return c.JSON(http.StatusOK, echo.Map{"address": addr.Hex()})
}

// Current handles GET /v1/session.  It reports the session store plus the
// network the wallet is on right now - resolved fresh, never cached.
func (h *SessionHandler) Current(c echo.Context) error {
    st := h.Store.Snapshot()

    network := ""
    if sess, err := h.Open(c.Request().Context()); err == nil {
        network = sess.Profile.Name
    }

    return c.JSON(http.StatusOK, echo.Map{
        "address": st.WalletAddress,
        "role":    st.Role,
        "network": network,
    })
}

// Logout handles POST /v1/session/logout.  It clears address and role in one
// step; the client drops its token and returns to the entry screen.
func (h *SessionHandler) Logout(c echo.Context) error {
    h.Store.Logout()
    return c.JSON(http.StatusOK, echo.Map{"status": "logged out"})
}
