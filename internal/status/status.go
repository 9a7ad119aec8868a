// Package status derives a machine's liveness tier from its last activity.
package status

import "time"

// Tier is the derived liveness label. It is computed per read and never
// stored; the machines table's status column is an independent operational
// flag.
type Tier string

const (
	TierOnline  Tier = "online"
	TierWarning Tier = "warning"
	TierOffline Tier = "offline"
)

const (
	// OnlineWithin is the recency window for the online tier.
	OnlineWithin = time.Hour
	// WarningWithin is the recency window for the warning tier.
	WarningWithin = 24 * time.Hour
)

// Derive maps a last-seen timestamp to a liveness tier relative to now.
// A machine that has never reported is offline.
func Derive(lastSeen *time.Time, now time.Time) Tier {
	if lastSeen == nil {
		return TierOffline
	}
	age := now.Sub(*lastSeen)
	switch {
	case age <= OnlineWithin:
		return TierOnline
	case age <= WarningWithin:
		return TierWarning
	default:
		return TierOffline
	}
}
