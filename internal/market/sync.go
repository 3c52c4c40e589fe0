package market

import (
    "context"
    "log"
    "sync"
    "sync/atomic"
    "time"

    "github.com/velora/submarket-gateway/internal/chain"
)

// OpenSession produces a fresh contract session.  The synchronizer never
// holds on to one: the wallet's active account and chain can change between
// refreshes.
type OpenSession func(ctx context.Context) (*chain.Session, error)

// Synchronizer recomputes the derived access state whenever the active
// account changes, the chain changes, or a state-mutating transaction
// completes.  It publishes the result as an immutable Snapshot.
//
// Refreshes may overlap: an account switch can arrive while a read for the
// previous account is still in flight.  Each refresh takes a generation
// number at the moment it starts and may only publish if no newer refresh
// has started since - a stale read completing late is discarded rather than
// allowed to overwrite fresher state.
type Synchronizer struct {
    open OpenSession
    gen  atomic.Uint64

    mu   sync.RWMutex
    snap *Snapshot
}

// NewSynchronizer builds a synchronizer over a session opener.
func NewSynchronizer(open OpenSession) *Synchronizer {
    return &Synchronizer{open: open}
}

// Refresh re-derives the full access state for the wallet's current account
// and publishes it unless a newer refresh superseded this one.  The computed
// snapshot is returned either way so the triggering flow can report the state
// it actually observed.  On any failure the published snapshot is left
// untouched - errors never install partial state.
func (s *Synchronizer) Refresh(ctx context.Context) (*Snapshot, error) {
    gen := s.gen.Add(1)

    sess, err := s.open(ctx)
    if err != nil {
        return nil, err
    }
    rd := NewReader(sess.Contract)

    approved, err := rd.ListApproved(ctx)
    if err != nil {
        return nil, err
    }
    accessible, err := rd.ListAccessible(ctx, sess.Account)
    if err != nil {
        return nil, err
    }
    subs, err := rd.ListSubscriptions(ctx, sess.Account, time.Now())
    if err != nil {
        return nil, err
    }

    snap := &Snapshot{
        Account:       sess.Account,
        Network:       sess.Profile.Name,
        Approved:      approved,
        Accessible:    accessible,
        Subscriptions: subs,
    }
    s.commit(gen, snap)
    return snap, nil
}

// commit installs the snapshot unless a newer refresh has started.
func (s *Synchronizer) commit(gen uint64, snap *Snapshot) {
    if s.gen.Load() != gen {
        return
    }
    s.mu.Lock()
    // Re-check under the lock so two finishing refreshes cannot race the
    // generation test.
    if s.gen.Load() == gen {
        s.snap = snap
    }
    s.mu.Unlock()
}

// Current returns the last published snapshot, or nil before the first
// successful refresh.  A nil snapshot is an explicit "not loaded" state and
// must not be conflated with an empty directory.
func (s *Synchronizer) Current() *Snapshot {
    s.mu.RLock()
    defer s.mu.RUnlock()
    return s.snap
}

// Run consumes wallet provider events until ctx is cancelled, triggering a
// refresh for every account or chain change.  Refresh failures are logged;
// the previous snapshot stays published until a refresh succeeds.
func (s *Synchronizer) Run(ctx context.Context, events <-chan chain.Event) {
    for {
        select {
        case <-ctx.Done():
            return
        case ev, ok := <-events:
            if !ok {
                return
            }
            kind := "account"
            if ev.Kind == chain.ChainChanged {
                kind = "chain"
            }
            if _, err := s.Refresh(ctx); err != nil {
                log.Printf("sync: refresh after %s change: %v", kind, err)
            }
        }
    }
}
