// Package market derives marketplace views from contract state: the content
// directory projections, subscription validity/expiry, and the synchronizer
// that keeps a published snapshot consistent with on-chain truth.  The
// contract is the single source of truth; nothing in this package is
// authoritative or persisted.
package market

import "github.com/ethereum/go-ethereum/common"

// ContentRecord is a read-through copy of one on-chain content entry.
type ContentRecord struct {
    TokenID     uint64 `json:"token_id"`
    Name        string `json:"name"`
    ContentHash string `json:"content_hash"`
    Creator     string `json:"creator"`
    Approved    bool   `json:"approved"`
}

// SubscriptionRecord describes one subscription token held by an account.
// Remaining is derived at read time from ExpiresAt and is never persisted.
type SubscriptionRecord struct {
    TokenID     uint64 `json:"token_id"`
    ContentHash string `json:"content_hash"`
    ExpiresAt   uint64 `json:"expires_at"`
    Remaining   string `json:"remaining"`
}

// PoolBalances are the contract's aggregate fund pools in wei, formatted for
// display in ether.
type PoolBalances struct {
    CreatorPoolWei  string `json:"creator_pool_wei"`
    PlatformPoolWei string `json:"platform_pool_wei"`
    CreatorPoolEth  string `json:"creator_pool_eth"`
    PlatformPoolEth string `json:"platform_pool_eth"`
}

// Snapshot is the derived access state the synchronizer publishes after a
// refresh: the approved directory plus the accessible hashes and valid
// subscriptions of the account it was computed for.
type Snapshot struct {
    Account       common.Address       `json:"account"`
    Network       string               `json:"network"`
    Approved      []ContentRecord      `json:"approved"`
    Accessible    []string             `json:"accessible"`
    Subscriptions []SubscriptionRecord `json:"subscriptions"`
}
