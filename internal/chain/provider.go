package chain

import (
    "context"
    "fmt"
    "log"
    "math/big"
    "sync"
    "time"

    "github.com/ethereum/go-ethereum/accounts"
    "github.com/ethereum/go-ethereum/accounts/keystore"
    "github.com/ethereum/go-ethereum/common"
    "github.com/ethereum/go-ethereum/core/types"
    "github.com/ethereum/go-ethereum/ethclient"
)

// EventKind distinguishes the two provider notifications the synchronizer
// listens for.
type EventKind int

const (
    // AccountChanged fires when the active wallet account is switched.
    AccountChanged EventKind = iota
    // ChainChanged fires when the node starts reporting a different chain id.
    ChainChanged
)

// Event is a wallet provider notification.
type Event struct {
    Kind    EventKind
    Account common.Address // active account after the change
    ChainID *big.Int       // chain id after the change (ChainChanged only)
}

// AccountSource is the subset of the wallet provider the session factory
// needs.  Both values must be read fresh on every call: the active account
// and the node's chain are externally owned and may change between calls.
type AccountSource interface {
    // RequestAccounts returns the authorized accounts, active account first.
    RequestAccounts(ctx context.Context) ([]common.Address, error)
    // ChainID reports the chain the node is currently on.
    ChainID(ctx context.Context) (*big.Int, error)
}

// KeystoreProvider is the wallet provider backing the gateway: an encrypted
// keystore directory for accounts and signing, and a JSON-RPC node for chain
// state.  It is the server-side equivalent of a browser wallet extension and,
// like one, owns the notion of the "active" account.
type KeystoreProvider struct {
    ks         *keystore.KeyStore
    client     *ethclient.Client
    passphrase string

    mu        sync.Mutex
    active    common.Address
    listeners []chan<- Event
    lastChain *big.Int
}

// NewKeystoreProvider dials the node and opens the keystore directory.  A
// failed dial means there is no usable wallet backend and the constructor
// fails with ErrNoWalletProvider.
func NewKeystoreProvider(rpcURL, keystoreDir, passphrase string) (*KeystoreProvider, error) {
    if rpcURL == "" || keystoreDir == "" {
        return nil, fmt.Errorf("%w: rpc url and keystore dir are required", ErrNoWalletProvider)
    }
    client, err := ethclient.Dial(rpcURL)
    if err != nil {
        return nil, fmt.Errorf("%w: dial %s: %v", ErrNoWalletProvider, rpcURL, err)
    }
    ks := keystore.NewKeyStore(keystoreDir, keystore.StandardScryptN, keystore.StandardScryptP)
    return &KeystoreProvider{ks: ks, client: client, passphrase: passphrase}, nil
}

// RequestAccounts authorizes and returns the wallet accounts with the active
// account first.  The active account is unlocked with the configured
// passphrase; an empty keystore or a rejected passphrase fails with
// ErrAuthorizationDenied, mirroring a user rejecting the wallet prompt.
func (p *KeystoreProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
    accts := p.ks.Accounts()
    if len(accts) == 0 {
        return nil, fmt.Errorf("%w: keystore holds no accounts", ErrAuthorizationDenied)
    }

    p.mu.Lock()
    if p.active == (common.Address{}) {
        p.active = accts[0].Address
    }
    active := p.active
    p.mu.Unlock()

    if err := p.ks.Unlock(accounts.Account{Address: active}, p.passphrase); err != nil {
        return nil, fmt.Errorf("%w: unlock %s: %v", ErrAuthorizationDenied, active.Hex(), err)
    }

    out := []common.Address{active}
    for _, a := range accts {
        if a.Address != active {
            out = append(out, a.Address)
        }
    }
    return out, nil
}

// ChainID reads the node's current chain id.  No caching: the node the
// operator points the gateway at may change between calls.
func (p *KeystoreProvider) ChainID(ctx context.Context) (*big.Int, error) {
    id, err := p.client.ChainID(ctx)
    if err != nil {
        return nil, fmt.Errorf("%w: chain id: %v", ErrChainRead, err)
    }
    return id, nil
}

// Balance returns the ether balance of an account in wei.
func (p *KeystoreProvider) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
    bal, err := p.client.BalanceAt(ctx, addr, nil)
    if err != nil {
        return nil, fmt.Errorf("%w: balance of %s: %v", ErrChainRead, addr.Hex(), err)
    }
    return bal, nil
}

// SwitchAccount makes addr the active account and notifies subscribers.  The
// address must exist in the keystore and must unlock with the configured
// passphrase before the switch takes effect.
func (p *KeystoreProvider) SwitchAccount(addr common.Address) error {
    if !p.ks.HasAddress(addr) {
        return fmt.Errorf("%w: %s not in keystore", ErrAuthorizationDenied, addr.Hex())
    }
    if err := p.ks.Unlock(accounts.Account{Address: addr}, p.passphrase); err != nil {
        return fmt.Errorf("%w: unlock %s: %v", ErrAuthorizationDenied, addr.Hex(), err)
    }

    p.mu.Lock()
    p.active = addr
    listeners := append([]chan<- Event(nil), p.listeners...)
    p.mu.Unlock()

    notify(listeners, Event{Kind: AccountChanged, Account: addr})
    return nil
}

// Subscribe registers a channel for account/chain change events.  Sends are
// non-blocking; a subscriber that cannot keep up misses events rather than
// stalling the provider.
func (p *KeystoreProvider) Subscribe(ch chan<- Event) {
    p.mu.Lock()
    p.listeners = append(p.listeners, ch)
    p.mu.Unlock()
}

// WatchChain polls the node's chain id until ctx is cancelled and fires a
// ChainChanged event whenever it drifts.  Poll errors are logged and the loop
// keeps going; a flapping node must not kill the watcher.
func (p *KeystoreProvider) WatchChain(ctx context.Context, interval time.Duration) {
    ticker := time.NewTicker(interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
        }

        id, err := p.ChainID(ctx)
        if err != nil {
            log.Printf("chain-watch: %v", err)
            continue
        }

        p.mu.Lock()
        changed := p.lastChain != nil && p.lastChain.Cmp(id) != 0
        p.lastChain = id
        active := p.active
        listeners := append([]chan<- Event(nil), p.listeners...)
        p.mu.Unlock()

        if changed {
            log.Printf("chain-watch: chain id changed to %s", id)
            notify(listeners, Event{Kind: ChainChanged, Account: active, ChainID: id})
        }
    }
}

// SignTx signs a transaction with the active account.
func (p *KeystoreProvider) SignTx(from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
    signed, err := p.ks.SignTx(accounts.Account{Address: from}, tx, chainID)
    if err != nil {
        return nil, fmt.Errorf("%w: sign: %v", ErrAuthorizationDenied, err)
    }
    return signed, nil
}

// Client exposes the underlying RPC client for the contract binding.
func (p *KeystoreProvider) Client() *ethclient.Client { return p.client }

func notify(listeners []chan<- Event, ev Event) {
    for _, ch := range listeners {
        select {
        case ch <- ev:
        default:
        }
    }
}
