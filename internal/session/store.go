// Package session holds the process-wide session state: which wallet address
// is connected and which role the user picked at the entry screen.  The role
// is a navigation convenience only - privileged handlers always re-verify
// capability on-chain and never trust it for authorization.
package session

import (
    "errors"
    "strings"
    "sync"
)

// Role is the self-declared user role selected at login.
type Role string

const (
    RoleNone       Role = "none"
    RoleCreator    Role = "creator"
    RoleSubscriber Role = "subscriber"
    RoleAdmin      Role = "admin"
)

// ErrUnknownRole is returned for role strings outside the known set.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole normalizes a user-supplied role string.  "user" is accepted as a
// legacy alias for subscriber.
func ParseRole(s string) (Role, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "creator":
        return RoleCreator, nil
    case "subscriber", "user":
        return RoleSubscriber, nil
    case "admin":
        return RoleAdmin, nil
    }
    return RoleNone, ErrUnknownRole
}

// State is one immutable view of the session.
type State struct {
    WalletAddress string
    Role          Role
}

// Store owns the session state for the lifetime of the process.  All views
// read through Snapshot; SetWalletAddress, SetRole and Logout are the only
// mutation surface.
type Store struct {
    mu    sync.RWMutex
    state State
}

// NewStore returns an empty, unauthenticated session.
func NewStore() *Store {
    return &Store{state: State{Role: RoleNone}}
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() State {
    s.mu.RLock()
    defer s.mu.RUnlock()
    return s.state
}

// SetWalletAddress records the connected wallet address.
func (s *Store) SetWalletAddress(addr string) {
    s.mu.Lock()
    s.state.WalletAddress = addr
    s.mu.Unlock()
}

// SetRole records the self-declared role.
func (s *Store) SetRole(r Role) {
    s.mu.Lock()
    s.state.Role = r
    s.mu.Unlock()
}

// Logout resets address and role together so no reader can observe a
// half-cleared session.
func (s *Store) Logout() {
    s.mu.Lock()
    s.state = State{Role: RoleNone}
    s.mu.Unlock()
}
