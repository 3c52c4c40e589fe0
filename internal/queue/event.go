// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds published after a confirmed marketplace transaction.
const (
    KindContentRegistered     = "content.registered"
    KindContentApproved       = "content.approved"
    KindSubscriptionPurchased = "subscription.purchased"
    KindPriceUpdated          = "price.updated"
    KindFundsWithdrawn        = "funds.withdrawn"
)

// TxConfirmedEvent is published once a state-mutating transaction has been
// mined successfully.  It carries enough information for downstream consumers
// to log, notify or feed analytics without touching the chain themselves.
// Fields that do not apply to a given kind are left empty.
type TxConfirmedEvent struct {
    Kind        string  `json:"kind"`
    TxHash      string  `json:"tx_hash"`
    Account     string  `json:"account"`
    Network     string  `json:"network"`
    TokenID     *uint64 `json:"token_id,omitempty"`
    ContentName string  `json:"content_name,omitempty"`
    ContentHash string  `json:"content_hash,omitempty"`
    AmountWei   string  `json:"amount_wei,omitempty"`
    ConfirmedAt string  `json:"confirmed_at"`
}
