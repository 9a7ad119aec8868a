package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ago := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	testCases := []struct {
		name     string
		lastSeen *time.Time
		expected Tier
	}{
		{"seen 30 minutes ago", ago(30 * time.Minute), TierOnline},
		{"seen exactly one hour ago", ago(time.Hour), TierOnline},
		{"seen 2 hours ago", ago(2 * time.Hour), TierWarning},
		{"seen 25 hours ago", ago(25 * time.Hour), TierOffline},
		{"never seen", nil, TierOffline},
		{"seen just now", ago(0), TierOnline},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Derive(tc.lastSeen, now))
		})
	}
}
