package chain

import (
    "context"
    "math/big"

    "github.com/ethereum/go-ethereum/common"
)

// Contract is the callable surface of the marketplace contract.  It abstracts
// the deployed SubManager so the directory reader, synchronizer and handlers
// can run against a fake in tests.  Amounts are wei as *big.Int; token ids
// are uint64 because the contract allocates them densely from zero.
//
// Write methods block until the transaction is mined and return its hash.
// They fail with ErrChainWrite when the transaction reverts or cannot be
// confirmed, and are never retried by the binding.
type Contract interface {
    // Admin returns the contract's administrator address.  Privileged
    // handlers compare this against the session account before acting; a
    // self-declared admin role alone unlocks nothing.
    Admin(ctx context.Context) (common.Address, error)
    CreatorsPool(ctx context.Context) (*big.Int, error)
    PlatformPool(ctx context.Context) (*big.Int, error)
    SubscriptionPrice(ctx context.Context) (*big.Int, error)

    // TotalContent bounds the dense id space [0, total).  Ids inside the
    // range may still be unallocated and must be existence-checked.
    TotalContent(ctx context.Context) (uint64, error)
    ContentExists(ctx context.Context, tokenID uint64) (bool, error)
    ContentByTokenID(ctx context.Context, tokenID uint64) (name, contentHash string, creator common.Address, err error)
    IsContentApproved(ctx context.Context, tokenID uint64) (bool, error)

    // Subscription enumeration is indexed by owner and position, not token id.
    BalanceOf(ctx context.Context, owner common.Address) (uint64, error)
    TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index uint64) (uint64, error)
    IsSubscriptionValid(ctx context.Context, tokenID uint64) (bool, error)
    ContentHashOfToken(ctx context.Context, tokenID uint64) (string, error)
    SubscriptionExpiry(ctx context.Context, tokenID uint64) (uint64, error)

    RegisterContent(ctx context.Context, name, contentHash string, creator common.Address) (txHash string, err error)
    ApproveContent(ctx context.Context, tokenID uint64) (txHash string, err error)
    SetSubscriptionPrice(ctx context.Context, priceWei *big.Int) (txHash string, err error)
    // PurchaseSubscription sends value with the call and pre-checks that the
    // buyer's balance covers it, failing with ErrInsufficientBalance.
    PurchaseSubscription(ctx context.Context, tokenID uint64, value *big.Int) (txHash string, err error)
    WithdrawPlatformFunds(ctx context.Context) (txHash string, err error)
}
