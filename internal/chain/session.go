package chain

import (
    "context"
    "fmt"

    "github.com/ethereum/go-ethereum/common"

    "github.com/velora/submarket-gateway/internal/config"
)

// Session is a ready-to-use contract handle: the authorized account, the
// deployment profile resolved from the wallet's current chain, and the bound
// contract.  A session is consistent by construction - the contract address
// always corresponds to the chain the wallet was on at resolution time.
type Session struct {
    Account  common.Address
    Profile  config.NetworkProfile
    Contract Contract
}

// Binder constructs a contract handle for a resolved deployment and account.
type Binder func(profile config.NetworkProfile, account common.Address) Contract

// Factory produces contract sessions.  It performs no caching: every Open
// re-requests authorization and re-reads the chain id, because the active
// account and chain are externally owned and may have changed between calls.
type Factory struct {
    provider AccountSource
    networks []config.NetworkProfile
    bind     Binder
}

// NewFactory wires a factory over a wallet provider, the known deployment
// table and a contract binder.
func NewFactory(provider AccountSource, networks []config.NetworkProfile, bind Binder) *Factory {
    return &Factory{provider: provider, networks: networks, bind: bind}
}

// Open produces a fresh session.  The steps mirror a browser wallet connect:
// verify a provider exists, request account authorization, read the current
// chain id, resolve it against the known deployments, bind the handle.
// Failure modes: ErrNoWalletProvider, ErrAuthorizationDenied,
// config.ErrUnsupportedNetwork.
func (f *Factory) Open(ctx context.Context) (*Session, error) {
    if f == nil || f.provider == nil {
        return nil, ErrNoWalletProvider
    }

    accts, err := f.provider.RequestAccounts(ctx)
    if err != nil {
        return nil, err
    }
    if len(accts) == 0 {
        return nil, fmt.Errorf("%w: provider returned no accounts", ErrAuthorizationDenied)
    }

    chainID, err := f.provider.ChainID(ctx)
    if err != nil {
        return nil, err
    }

    profile, err := config.Resolve(f.networks, chainID.Uint64())
    if err != nil {
        return nil, fmt.Errorf("chain id %s: %w", chainID, err)
    }

    return &Session{
        Account:  accts[0],
        Profile:  profile,
        Contract: f.bind(profile, accts[0]),
    }, nil
}
