package market

import (
    "context"
    "fmt"
    "time"

    "github.com/ethereum/go-ethereum/common"

    "github.com/velora/submarket-gateway/internal/chain"
)

// Reader produces the read-only directory projections from contract state.
// Every call re-reads the chain: approval flags and subscription validity
// change under other users' transactions, so results are never cached here.
//
// The contract's enumeration interface forces two linear scans: content ids
// are dense-but-gappy (existence-checked per id), and subscriptions are
// indexed by owner position rather than token id.  Both scans stay isolated
// behind this type so an indexed replacement can be swapped in without
// touching handlers.
type Reader struct {
    c chain.Contract
}

// NewReader wraps a contract handle.
func NewReader(c chain.Contract) *Reader {
    return &Reader{c: c}
}

// ListApproved returns every existing content record with the approved flag
// set.
func (r *Reader) ListApproved(ctx context.Context) ([]ContentRecord, error) {
    return r.scan(ctx, true)
}

// ListUnapproved returns every existing record still awaiting approval.
// This is the admin review queue.
func (r *Reader) ListUnapproved(ctx context.Context) ([]ContentRecord, error) {
    return r.scan(ctx, false)
}

// scan walks the dense id space [0, total).  An id inside the range may be
// unallocated; the record is only dereferenced after contentExists confirms
// it.  Any failed read aborts the scan - partial results must not be passed
// off as complete ones.
func (r *Reader) scan(ctx context.Context, approved bool) ([]ContentRecord, error) {
    total, err := r.c.TotalContent(ctx)
    if err != nil {
        return nil, fmt.Errorf("total content: %w", err)
    }

    out := make([]ContentRecord, 0, total)
    for id := uint64(0); id < total; id++ {
        exists, err := r.c.ContentExists(ctx, id)
        if err != nil {
            return nil, fmt.Errorf("content %d exists: %w", id, err)
        }
        if !exists {
            continue
        }
        ok, err := r.c.IsContentApproved(ctx, id)
        if err != nil {
            return nil, fmt.Errorf("content %d approved: %w", id, err)
        }
        if ok != approved {
            continue
        }
        name, hash, creator, err := r.c.ContentByTokenID(ctx, id)
        if err != nil {
            return nil, fmt.Errorf("content %d: %w", id, err)
        }
        out = append(out, ContentRecord{
            TokenID:     id,
            Name:        name,
            ContentHash: hash,
            Creator:     creator.Hex(),
            Approved:    ok,
        })
    }
    return out, nil
}

// ListAccessible returns the content hashes the owner currently has access
// to: one per held token whose subscription is still valid.
func (r *Reader) ListAccessible(ctx context.Context, owner common.Address) ([]string, error) {
    hashes := []string{}
    err := r.eachValidToken(ctx, owner, func(tokenID uint64) error {
        hash, err := r.c.ContentHashOfToken(ctx, tokenID)
        if err != nil {
            return fmt.Errorf("token %d hash: %w", tokenID, err)
        }
        hashes = append(hashes, hash)
        return nil
    })
    if err != nil {
        return nil, err
    }
    return hashes, nil
}

// ListSubscriptions returns the owner's valid subscriptions with their expiry
// and a formatted remaining-time string computed at read time.
func (r *Reader) ListSubscriptions(ctx context.Context, owner common.Address, now time.Time) ([]SubscriptionRecord, error) {
    subs := []SubscriptionRecord{}
    err := r.eachValidToken(ctx, owner, func(tokenID uint64) error {
        hash, err := r.c.ContentHashOfToken(ctx, tokenID)
        if err != nil {
            return fmt.Errorf("token %d hash: %w", tokenID, err)
        }
        expiry, err := r.c.SubscriptionExpiry(ctx, tokenID)
        if err != nil {
            return fmt.Errorf("token %d expiry: %w", tokenID, err)
        }
        subs = append(subs, SubscriptionRecord{
            TokenID:     tokenID,
            ContentHash: hash,
            ExpiresAt:   expiry,
            Remaining:   FormatRemaining(expiry, now),
        })
        return nil
    })
    if err != nil {
        return nil, err
    }
    return subs, nil
}

// eachValidToken enumerates the owner's tokens by position (0..balance-1),
// resolving each position to a token id before checking validity.
func (r *Reader) eachValidToken(ctx context.Context, owner common.Address, fn func(tokenID uint64) error) error {
    balance, err := r.c.BalanceOf(ctx, owner)
    if err != nil {
        return fmt.Errorf("balance of %s: %w", owner.Hex(), err)
    }
    for i := uint64(0); i < balance; i++ {
        tokenID, err := r.c.TokenOfOwnerByIndex(ctx, owner, i)
        if err != nil {
            return fmt.Errorf("token of %s at %d: %w", owner.Hex(), i, err)
        }
        valid, err := r.c.IsSubscriptionValid(ctx, tokenID)
        if err != nil {
            return fmt.Errorf("token %d valid: %w", tokenID, err)
        }
        if !valid {
            continue
        }
        if err := fn(tokenID); err != nil {
            return err
        }
    }
    return nil
}

// PoolBalances reads the contract's aggregate pools.
func (r *Reader) PoolBalances(ctx context.Context) (PoolBalances, error) {
    creator, err := r.c.CreatorsPool(ctx)
    if err != nil {
        return PoolBalances{}, fmt.Errorf("creators pool: %w", err)
    }
    platform, err := r.c.PlatformPool(ctx)
    if err != nil {
        return PoolBalances{}, fmt.Errorf("platform pool: %w", err)
    }
    return PoolBalances{
        CreatorPoolWei:  creator.String(),
        PlatformPoolWei: platform.String(),
        CreatorPoolEth:  FormatEther(creator),
        PlatformPoolEth: FormatEther(platform),
    }, nil
}
