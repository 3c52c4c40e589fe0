package handler

import (
    "context"
    "encoding/json"
    "math/big"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/ethereum/go-ethereum/common"
    "github.com/labstack/echo/v4"

    "github.com/velora/submarket-gateway/internal/chain"
    "github.com/velora/submarket-gateway/internal/config"
    "github.com/velora/submarket-gateway/internal/market"
)

var (
    adminAddr  = common.HexToAddress("0x00000000000000000000000000000000000000Ad")
    viewerAddr = common.HexToAddress("0x00000000000000000000000000000000000000Ee")
)

// gateContract is a minimal in-memory Contract: one pending content item and
// a fixed admin address.  It records which write methods were invoked.
type gateContract struct {
    admin common.Address

    approvedID     uint64
    approveCalled  bool
    withdrawCalled bool
    priceSet       *big.Int
}

func (g *gateContract) Admin(ctx context.Context) (common.Address, error) { return g.admin, nil }
func (g *gateContract) CreatorsPool(ctx context.Context) (*big.Int, error) {
    return big.NewInt(700), nil
}
func (g *gateContract) PlatformPool(ctx context.Context) (*big.Int, error) {
    return big.NewInt(300), nil
}
func (g *gateContract) SubscriptionPrice(ctx context.Context) (*big.Int, error) {
    return big.NewInt(1000), nil
}
func (g *gateContract) TotalContent(ctx context.Context) (uint64, error) { return 1, nil }
func (g *gateContract) ContentExists(ctx context.Context, id uint64) (bool, error) {
    return id == 0, nil
}
func (g *gateContract) ContentByTokenID(ctx context.Context, id uint64) (string, string, common.Address, error) {
    return "clip", "QmPending", viewerAddr, nil
}
func (g *gateContract) IsContentApproved(ctx context.Context, id uint64) (bool, error) {
    return g.approveCalled && id == g.approvedID, nil
}
func (g *gateContract) BalanceOf(ctx context.Context, owner common.Address) (uint64, error) {
    return 0, nil
}
func (g *gateContract) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index uint64) (uint64, error) {
    return 0, nil
}
func (g *gateContract) IsSubscriptionValid(ctx context.Context, id uint64) (bool, error) {
    return false, nil
}
func (g *gateContract) ContentHashOfToken(ctx context.Context, id uint64) (string, error) {
    return "", nil
}
func (g *gateContract) SubscriptionExpiry(ctx context.Context, id uint64) (uint64, error) {
    return 0, nil
}
func (g *gateContract) RegisterContent(ctx context.Context, name, hash string, creator common.Address) (string, error) {
    return "0xreg", nil
}
func (g *gateContract) ApproveContent(ctx context.Context, id uint64) (string, error) {
    g.approveCalled = true
    g.approvedID = id
    return "0xapprove", nil
}
func (g *gateContract) SetSubscriptionPrice(ctx context.Context, wei *big.Int) (string, error) {
    g.priceSet = wei
    return "0xprice", nil
}
func (g *gateContract) PurchaseSubscription(ctx context.Context, id uint64, value *big.Int) (string, error) {
    return "0xbuy", nil
}
func (g *gateContract) WithdrawPlatformFunds(ctx context.Context) (string, error) {
    g.withdrawCalled = true
    return "0xwithdraw", nil
}

func openerFor(account common.Address, contract chain.Contract) OpenSession {
    return func(ctx context.Context) (*chain.Session, error) {
        return &chain.Session{
            Account:  account,
            Profile:  config.NetworkProfile{Name: "local", ChainID: 1337},
            Contract: contract,
        }, nil
    }
}

func adminRequest(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    var rd *strings.Reader
    if body == "" {
        rd = strings.NewReader("")
    } else {
        rd = strings.NewReader(body)
    }
    req := httptest.NewRequest(method, target, rd)
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

// A self-declared admin role routes the request here, but a connected account
// that is not the contract's admin must be refused before any write happens.
func TestWithdrawRefusesNonAdminAccount(t *testing.T) {
    contract := &gateContract{admin: adminAddr}
    open := openerFor(viewerAddr, contract)
    h := NewAdminHandler(open, market.NewSynchronizer(market.OpenSession(open)), nil)

    c, rec := adminRequest(t, http.MethodPost, "/v1/admin/withdraw", "")
    if err := h.Withdraw(c); err != nil {
        t.Fatalf("Withdraw returned error: %v", err)
    }
    if rec.Code != http.StatusForbidden {
        t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
    }
    if contract.withdrawCalled {
        t.Fatalf("withdraw transaction was sent despite failed admin check")
    }
}

func TestApproveRefusesNonAdminAccount(t *testing.T) {
    contract := &gateContract{admin: adminAddr}
    open := openerFor(viewerAddr, contract)
    h := NewAdminHandler(open, market.NewSynchronizer(market.OpenSession(open)), nil)

    c, rec := adminRequest(t, http.MethodPost, "/v1/admin/content/0/approve", "")
    c.SetParamNames("id")
    c.SetParamValues("0")
    if err := h.Approve(c); err != nil {
        t.Fatalf("Approve returned error: %v", err)
    }
    if rec.Code != http.StatusForbidden {
        t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
    }
    if contract.approveCalled {
        t.Fatalf("approve transaction was sent despite failed admin check")
    }
}

func TestApproveAsAdminAccount(t *testing.T) {
    contract := &gateContract{admin: adminAddr}
    open := openerFor(adminAddr, contract)
    h := NewAdminHandler(open, market.NewSynchronizer(market.OpenSession(open)), nil)

    c, rec := adminRequest(t, http.MethodPost, "/v1/admin/content/0/approve", "")
    c.SetParamNames("id")
    c.SetParamValues("0")
    if err := h.Approve(c); err != nil {
        t.Fatalf("Approve returned error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
    }
    if !contract.approveCalled {
        t.Fatalf("approve transaction was not sent")
    }

    var resp map[string]any
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
        t.Fatalf("decode response: %v", err)
    }
    if resp["tx_hash"] != "0xapprove" {
        t.Fatalf("tx_hash = %v, want 0xapprove", resp["tx_hash"])
    }
}

func TestStatusReportsNonAdminWithoutPools(t *testing.T) {
    contract := &gateContract{admin: adminAddr}
    open := openerFor(viewerAddr, contract)
    h := NewAdminHandler(open, market.NewSynchronizer(market.OpenSession(open)), nil)

    c, rec := adminRequest(t, http.MethodGet, "/v1/admin/status", "")
    if err := h.Status(c); err != nil {
        t.Fatalf("Status returned error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
    }

    var resp map[string]any
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
        t.Fatalf("decode response: %v", err)
    }
    if resp["is_admin"] != false {
        t.Fatalf("is_admin = %v, want false", resp["is_admin"])
    }
    if _, ok := resp["pools"]; ok {
        t.Fatalf("pools leaked to a non-admin caller")
    }
}

func TestSetPriceAcceptsEther(t *testing.T) {
    contract := &gateContract{admin: adminAddr}
    open := openerFor(adminAddr, contract)
    h := NewAdminHandler(open, market.NewSynchronizer(market.OpenSession(open)), nil)

    c, rec := adminRequest(t, http.MethodPut, "/v1/admin/price", `{"price_eth":"0.01"}`)
    if err := h.SetPrice(c); err != nil {
        t.Fatalf("SetPrice returned error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
    }

    want := new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil)
    if contract.priceSet == nil || contract.priceSet.Cmp(want) != 0 {
        t.Fatalf("priceSet = %v, want %v", contract.priceSet, want)
    }
}
