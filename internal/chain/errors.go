// Package chain connects the gateway's wallet to a marketplace contract
// deployment.  It covers the provider (keystore + JSON-RPC node), the session
// factory that binds an authorized account to the contract deployed on the
// wallet's current chain, and a typed binding over the contract ABI.
package chain

import "errors"

// Sentinel errors for wallet and contract failures.  Handlers map these to
// HTTP responses with errors.Is; everything else is wrapped around one of
// them with fmt.Errorf("%w").
var (
    // ErrNoWalletProvider means no usable wallet backend exists: the node is
    // unreachable or the keystore directory is not configured.
    ErrNoWalletProvider = errors.New("no wallet provider")

    // ErrAuthorizationDenied means account authorization failed: the keystore
    // holds no accounts or the unlock passphrase was rejected.
    ErrAuthorizationDenied = errors.New("wallet authorization denied")

    // ErrChainRead marks a failed contract or node read.
    ErrChainRead = errors.New("chain read failed")

    // ErrChainWrite marks a transaction that reverted or failed to confirm.
    // Writes are never retried automatically; a duplicate submission is worse
    // than a surfaced failure.
    ErrChainWrite = errors.New("chain write failed")

    // ErrInsufficientBalance is the client-side pre-check failure before a
    // paid transaction is submitted.
    ErrInsufficientBalance = errors.New("insufficient balance")
)
