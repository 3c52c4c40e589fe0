package market

import (
    "fmt"
    "time"
)

// FormatRemaining renders the time left on a subscription.  expiresAt is a
// unix timestamp from the contract.  Expired subscriptions render exactly
// "Expired"; otherwise the remainder is floor-divided into days, hours and
// minutes, largest unit first, all three units always shown.  Seconds are
// truncated, never rounded up.
func FormatRemaining(expiresAt uint64, now time.Time) string {
    secondsLeft := int64(expiresAt) - now.Unix()
    if secondsLeft <= 0 {
        return "Expired"
    }
    days := secondsLeft / 86400
    hours := (secondsLeft % 86400) / 3600
    minutes := (secondsLeft % 3600) / 60
    return fmt.Sprintf("%dd %dh %dm left", days, hours, minutes)
}
