package chain

import (
    "context"
    "fmt"
    "math/big"
    "strings"

    "github.com/ethereum/go-ethereum"
    "github.com/ethereum/go-ethereum/accounts/abi"
    "github.com/ethereum/go-ethereum/accounts/abi/bind"
    "github.com/ethereum/go-ethereum/common"
    "github.com/ethereum/go-ethereum/core/types"
    "github.com/ethereum/go-ethereum/ethclient"

    "github.com/velora/submarket-gateway/internal/config"
)

// parsed once at startup; the ABI constant is part of the build, so a parse
// failure is a programming error.
var subManager = func() abi.ABI {
    a, err := abi.JSON(strings.NewReader(subManagerABI))
    if err != nil {
        panic("chain: bad SubManager ABI: " + err.Error())
    }
    return a
}()

// SubManager is the typed binding over a deployed marketplace contract.  It
// implements Contract.  Reads go through eth_call against the latest block;
// writes build, sign and submit a transaction with the bound account and wait
// for it to be mined before returning.
type SubManager struct {
    client  *ethclient.Client
    signer  *KeystoreProvider
    address common.Address
    from    common.Address
    chainID *big.Int
}

// NewSubManager binds the contract at the profile's address for the given
// account.  The profile's chain id is used as the signing chain id; the
// session factory guarantees it matched the node at resolution time.
func NewSubManager(provider *KeystoreProvider, profile config.NetworkProfile, from common.Address) *SubManager {
    return &SubManager{
        client:  provider.Client(),
        signer:  provider,
        address: common.HexToAddress(profile.ContractAddress),
        from:    from,
        chainID: new(big.Int).SetUint64(profile.ChainID),
    }
}

// call performs a read-only contract call and unpacks the result.
func (m *SubManager) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
    data, err := subManager.Pack(method, args...)
    if err != nil {
        return nil, fmt.Errorf("%w: pack %s: %v", ErrChainRead, method, err)
    }
    raw, err := m.client.CallContract(ctx, ethereum.CallMsg{From: m.from, To: &m.address, Data: data}, nil)
    if err != nil {
        return nil, fmt.Errorf("%w: call %s: %v", ErrChainRead, method, err)
    }
    out, err := subManager.Unpack(method, raw)
    if err != nil {
        return nil, fmt.Errorf("%w: unpack %s: %v", ErrChainRead, method, err)
    }
    return out, nil
}

// transact submits a state-mutating call and waits for the receipt.  A failed
// estimate, a rejected submission, or a reverted receipt all surface as
// ErrChainWrite.  There is no retry here: resubmitting a write risks paying
// twice.
func (m *SubManager) transact(ctx context.Context, value *big.Int, method string, args ...interface{}) (string, error) {
    data, err := subManager.Pack(method, args...)
    if err != nil {
        return "", fmt.Errorf("%w: pack %s: %v", ErrChainWrite, method, err)
    }

    nonce, err := m.client.PendingNonceAt(ctx, m.from)
    if err != nil {
        return "", fmt.Errorf("%w: nonce: %v", ErrChainWrite, err)
    }
    gasPrice, err := m.client.SuggestGasPrice(ctx)
    if err != nil {
        return "", fmt.Errorf("%w: gas price: %v", ErrChainWrite, err)
    }
    gasLimit, err := m.client.EstimateGas(ctx, ethereum.CallMsg{
        From:  m.from,
        To:    &m.address,
        Value: value,
        Data:  data,
    })
    if err != nil {
        // Estimation executes the call; most reverts are caught here before
        // any funds move.
        return "", fmt.Errorf("%w: estimate %s: %v", ErrChainWrite, method, err)
    }

    tx := types.NewTx(&types.LegacyTx{
        Nonce:    nonce,
        To:       &m.address,
        Value:    value,
        Gas:      gasLimit,
        GasPrice: gasPrice,
        Data:     data,
    })
    signed, err := m.signer.SignTx(m.from, tx, m.chainID)
    if err != nil {
        return "", err
    }
    if err := m.client.SendTransaction(ctx, signed); err != nil {
        return "", fmt.Errorf("%w: send %s: %v", ErrChainWrite, method, err)
    }

    receipt, err := bind.WaitMined(ctx, m.client, signed)
    if err != nil {
        return "", fmt.Errorf("%w: wait %s: %v", ErrChainWrite, method, err)
    }
    if receipt.Status != types.ReceiptStatusSuccessful {
        return "", fmt.Errorf("%w: %s reverted (tx %s)", ErrChainWrite, method, signed.Hash().Hex())
    }
    return signed.Hash().Hex(), nil
}

func (m *SubManager) Admin(ctx context.Context) (common.Address, error) {
    out, err := m.call(ctx, "admin")
    if err != nil {
        return common.Address{}, err
    }
    return out[0].(common.Address), nil
}

func (m *SubManager) CreatorsPool(ctx context.Context) (*big.Int, error) {
    out, err := m.call(ctx, "creatorsPool")
    if err != nil {
        return nil, err
    }
    return out[0].(*big.Int), nil
}

func (m *SubManager) PlatformPool(ctx context.Context) (*big.Int, error) {
    out, err := m.call(ctx, "platformPool")
    if err != nil {
        return nil, err
    }
    return out[0].(*big.Int), nil
}

func (m *SubManager) SubscriptionPrice(ctx context.Context) (*big.Int, error) {
    out, err := m.call(ctx, "subscriptionPrice")
    if err != nil {
        return nil, err
    }
    return out[0].(*big.Int), nil
}

func (m *SubManager) TotalContent(ctx context.Context) (uint64, error) {
    out, err := m.call(ctx, "getTotalContent")
    if err != nil {
        return 0, err
    }
    return out[0].(*big.Int).Uint64(), nil
}

func (m *SubManager) ContentExists(ctx context.Context, tokenID uint64) (bool, error) {
    out, err := m.call(ctx, "contentExists", new(big.Int).SetUint64(tokenID))
    if err != nil {
        return false, err
    }
    return out[0].(bool), nil
}

func (m *SubManager) ContentByTokenID(ctx context.Context, tokenID uint64) (string, string, common.Address, error) {
    out, err := m.call(ctx, "getContentByTokenId", new(big.Int).SetUint64(tokenID))
    if err != nil {
        return "", "", common.Address{}, err
    }
    return out[0].(string), out[1].(string), out[2].(common.Address), nil
}

func (m *SubManager) IsContentApproved(ctx context.Context, tokenID uint64) (bool, error) {
    out, err := m.call(ctx, "isContentApproved", new(big.Int).SetUint64(tokenID))
    if err != nil {
        return false, err
    }
    return out[0].(bool), nil
}

func (m *SubManager) BalanceOf(ctx context.Context, owner common.Address) (uint64, error) {
    out, err := m.call(ctx, "balanceOf", owner)
    if err != nil {
        return 0, err
    }
    return out[0].(*big.Int).Uint64(), nil
}

func (m *SubManager) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index uint64) (uint64, error) {
    out, err := m.call(ctx, "tokenOfOwnerByIndex", owner, new(big.Int).SetUint64(index))
    if err != nil {
        return 0, err
    }
    return out[0].(*big.Int).Uint64(), nil
}

func (m *SubManager) IsSubscriptionValid(ctx context.Context, tokenID uint64) (bool, error) {
    out, err := m.call(ctx, "isSubscriptionValid", new(big.Int).SetUint64(tokenID))
    if err != nil {
        return false, err
    }
    return out[0].(bool), nil
}

func (m *SubManager) ContentHashOfToken(ctx context.Context, tokenID uint64) (string, error) {
    out, err := m.call(ctx, "getContentIpfsHash", new(big.Int).SetUint64(tokenID))
    if err != nil {
        return "", err
    }
    return out[0].(string), nil
}

func (m *SubManager) SubscriptionExpiry(ctx context.Context, tokenID uint64) (uint64, error) {
    out, err := m.call(ctx, "getSubscriptionExpiry", new(big.Int).SetUint64(tokenID))
    if err != nil {
        return 0, err
    }
    return out[0].(*big.Int).Uint64(), nil
}

func (m *SubManager) RegisterContent(ctx context.Context, name, contentHash string, creator common.Address) (string, error) {
    return m.transact(ctx, nil, "registerContent", name, contentHash, creator)
}

func (m *SubManager) ApproveContent(ctx context.Context, tokenID uint64) (string, error) {
    return m.transact(ctx, nil, "approveContent", new(big.Int).SetUint64(tokenID))
}

func (m *SubManager) SetSubscriptionPrice(ctx context.Context, priceWei *big.Int) (string, error) {
    return m.transact(ctx, nil, "setSubscriptionPrice", priceWei)
}

// PurchaseSubscription pre-checks the buyer's balance against the attached
// value before submitting.  Gas on top of the price is covered by the
// estimate step inside transact; the pre-check exists so an obviously broke
// account fails fast with a specific error instead of a generic revert.
func (m *SubManager) PurchaseSubscription(ctx context.Context, tokenID uint64, value *big.Int) (string, error) {
    bal, err := m.client.BalanceAt(ctx, m.from, nil)
    if err != nil {
        return "", fmt.Errorf("%w: balance: %v", ErrChainRead, err)
    }
    if value != nil && bal.Cmp(value) < 0 {
        return "", fmt.Errorf("%w: have %s wei, need %s wei", ErrInsufficientBalance, bal, value)
    }
    return m.transact(ctx, value, "purchaseSubscription", new(big.Int).SetUint64(tokenID))
}

func (m *SubManager) WithdrawPlatformFunds(ctx context.Context) (string, error) {
    return m.transact(ctx, nil, "withdrawPlatformFunds")
}
